// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides abstractions for the inference services used in Parley.
//
// This package defines interfaces for the five boundary collaborators the
// orchestration core consumes: answer generation, text embeddings, translation,
// speech transcription and speech synthesis. The core depends only on these
// abstractions; concrete transports live in sub-packages.
//
// # Readiness
//
// Every service interface carries a Ready method. The request pipeline gates
// each stage on the readiness of its backing service and fails the request,
// not the process, when a required service is down. Readiness is reported by
// a consolidated status endpoint (see StatusClient); implementations fall
// back to a per-service probe when the aggregate endpoint does not cover them.
//
// # Implementation Packages
//
//   - ai/remote: production implementation talking to local inference services
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Public constructors in ai/remote return interface types to enforce
// abstraction; mock constructors return concrete types so tests can inject
// behavior and assert call counts.
package ai
