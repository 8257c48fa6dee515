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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidMessage indicates a Message failed validation.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrEmptyContent indicates the Content field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrInvalidRole indicates an invalid Role value.
	ErrInvalidRole = errors.New("invalid role")

	// ErrEmptyChunk indicates a Chunk with no text after trimming.
	ErrEmptyChunk = errors.New("chunk text cannot be empty")

	// ErrEmptySource indicates a Chunk or SourceItem without an identifier.
	ErrEmptySource = errors.New("source identifier cannot be empty")

	// ErrEmptySessionID indicates a request or session without a session identifier.
	ErrEmptySessionID = errors.New("session id cannot be empty")

	// ErrEmptyQuestion indicates a chat request with neither text nor audio input.
	ErrEmptyQuestion = errors.New("request needs a question or audio input")
)
