package mock

import (
	"context"
	"fmt"
)

// MockTranslator is a test double for ai.Translator.
// It allows custom behavior injection via function fields.
type MockTranslator struct {
	// TranslateFunc is called by Translate if set.
	// If nil, returns the text tagged with the target language.
	TranslateFunc func(ctx context.Context, text, srcLang, tgtLang string) (string, error)

	// ReadyState is what the Ready method reports. Defaults to true.
	ReadyState bool

	callCount int
}

// NewMockTranslator creates a mock translator with default deterministic behavior.
func NewMockTranslator() *MockTranslator {
	return &MockTranslator{ReadyState: true}
}

// Translate returns the injected or default translation.
func (m *MockTranslator) Translate(ctx context.Context, text, srcLang, tgtLang string) (string, error) {
	m.callCount++

	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, srcLang, tgtLang)
	}

	return fmt.Sprintf("[%s] %s", tgtLang, text), nil
}

// Ready reports the configured readiness state.
func (m *MockTranslator) Ready(ctx context.Context) bool {
	return m.ReadyState
}

// CallCount returns the number of times Translate was called.
func (m *MockTranslator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockTranslator) Reset() {
	m.callCount = 0
	m.TranslateFunc = nil
	m.ReadyState = true
}
