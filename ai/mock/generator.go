package mock

import (
	"context"
	"fmt"

	"github.com/poiesic/parley/ai"
)

// MockGenerator is a test double for ai.Generator.
// It allows custom behavior injection via function fields.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, returns a deterministic echo of the prompt.
	GenerateFunc func(ctx context.Context, prompt string, opts *ai.GenerateOptions) (string, error)

	// ReadyState is what the Ready method reports. Defaults to true.
	ReadyState bool

	// Prompts records every prompt passed to Generate, in order.
	Prompts []string

	callCount int
}

// NewMockGenerator creates a mock generator with default deterministic behavior.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{ReadyState: true}
}

// Generate records the prompt and returns the injected or default answer.
func (m *MockGenerator) Generate(ctx context.Context, prompt string, opts *ai.GenerateOptions) (string, error) {
	m.callCount++
	m.Prompts = append(m.Prompts, prompt)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, opts)
	}

	return fmt.Sprintf("answer for prompt of %d chars", len(prompt)), nil
}

// Ready reports the configured readiness state.
func (m *MockGenerator) Ready(ctx context.Context) bool {
	return m.ReadyState
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return m.callCount
}

// Reset clears recorded calls and injected behavior.
func (m *MockGenerator) Reset() {
	m.callCount = 0
	m.Prompts = nil
	m.GenerateFunc = nil
	m.ReadyState = true
}
