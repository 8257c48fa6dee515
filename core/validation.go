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

import (
	"fmt"
	"strings"
)

// ValidateMessage validates a Message according to domain rules.
//
// Validation rules:
//   - Content must not be empty
//   - Role must be valid (Human or Assistant)
func ValidateMessage(msg *Message) error {
	if msg == nil {
		return fmt.Errorf("%w: message is nil", ErrInvalidMessage)
	}

	if msg.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, ErrEmptyContent)
	}

	if err := ValidateRole(msg.Role); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	return nil
}

// ValidateRole validates that a Role has a valid value.
func ValidateRole(role Role) error {
	if role != RoleHuman && role != RoleAssistant {
		return fmt.Errorf("%w: value %d", ErrInvalidRole, role)
	}
	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty after trimming
//   - Source must not be empty
//
// NOT validated:
//   - ID (derived from content by the index build step)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrEmptyChunk)
	}

	if strings.TrimSpace(chunk.Text) == "" {
		return ErrEmptyChunk
	}

	if chunk.Source == "" {
		return ErrEmptySource
	}

	return nil
}

// ValidateChatRequest validates a ChatRequest before it enters the pipeline.
//
// Validation rules:
//   - SessionID must not be empty
//   - either Question or Audio must be present
func ValidateChatRequest(req *ChatRequest) error {
	if req == nil {
		return ErrEmptyQuestion
	}

	if req.SessionID == "" {
		return ErrEmptySessionID
	}

	if strings.TrimSpace(req.Question) == "" && req.Audio == nil {
		return ErrEmptyQuestion
	}

	return nil
}
