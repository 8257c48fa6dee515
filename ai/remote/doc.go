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


// Package remote implements the ai service interfaces against locally hosted
// inference services.
//
// Generation and embeddings speak the OpenAI-compatible protocol through
// langchaingo, which covers Ollama, LocalAI, vLLM and similar servers.
// Translation, transcription and synthesis are bespoke local services with
// small JSON request/response contracts, reached with a shared http.Client.
// Readiness for every service comes from the consolidated status endpoint.
package remote
