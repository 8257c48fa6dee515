// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package pipeline

import "errors"

// ErrTranscriberUnavailable indicates an audio question arrived while the
// speech recognition service is down.
var ErrTranscriberUnavailable = errors.New("transcriber unavailable")

// ErrTranslatorUnavailable indicates a non-English turn needs translation
// while the translation service is down.
var ErrTranslatorUnavailable = errors.New("translator unavailable")

// ErrGeneratorUnavailable indicates the language model backend is down.
var ErrGeneratorUnavailable = errors.New("generator unavailable")
