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


// Package corpus maintains named, on-disk similarity-search indexes.
//
// Each corpus is one BadgerDB directory under the store's base location,
// holding embedded chunk records. Queries embed the input and score every
// record by cosine similarity; vectors are normalized at write time so the
// score is a plain dot product. An index is either fully built or absent:
// a failed build removes whatever it wrote.
//
// Builds for the same corpus identifier are mutually exclusive; builds for
// different identifiers proceed in parallel.
package corpus
