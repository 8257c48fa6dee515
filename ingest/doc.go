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


// Package ingest turns heterogeneous source material into normalized,
// overlapping text chunks ready for indexing.
//
// Sources are filesystem paths, newline-delimited list files, directories or
// URLs. Each source is dispatched to a type-specific extractor selected by
// extension (PDF, plain text, CSV, DOCX) or URL shape. Extraction runs
// fan-out over a worker pool; a failing source is logged and contributes
// zero chunks while the rest of the ingestion proceeds. Unsupported source
// types are skipped with a warning, not an error.
package ingest
