package mock

import (
	"context"

	"github.com/poiesic/parley/ai"
)

// MockTranscriber is a test double for ai.Transcriber.
type MockTranscriber struct {
	// TranscribeFunc is called by Transcribe if set.
	// If nil, returns a fixed English transcript.
	TranscribeFunc func(ctx context.Context, samples []float32, sampleRate int) (*ai.Transcript, error)

	// ReadyState is what the Ready method reports. Defaults to true.
	ReadyState bool

	callCount int
}

// NewMockTranscriber creates a mock transcriber with default deterministic behavior.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{ReadyState: true}
}

// Transcribe returns the injected or default transcript.
func (m *MockTranscriber) Transcribe(ctx context.Context, samples []float32, sampleRate int) (*ai.Transcript, error) {
	m.callCount++

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, samples, sampleRate)
	}

	return &ai.Transcript{Text: "transcribed question", Language: "en"}, nil
}

// Ready reports the configured readiness state.
func (m *MockTranscriber) Ready(ctx context.Context) bool {
	return m.ReadyState
}

// CallCount returns the number of times Transcribe was called.
func (m *MockTranscriber) CallCount() int {
	return m.callCount
}

// MockSynthesizer is a test double for ai.Synthesizer.
type MockSynthesizer struct {
	// SynthesizeFunc is called by Synthesize if set.
	// If nil, returns a short fixed clip.
	SynthesizeFunc func(ctx context.Context, text, language string) (*ai.Synthesis, error)

	// ReadyState is what the Ready method reports. Defaults to true.
	ReadyState bool

	callCount int
}

// NewMockSynthesizer creates a mock synthesizer with default deterministic behavior.
func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{ReadyState: true}
}

// Synthesize returns the injected or default clip.
func (m *MockSynthesizer) Synthesize(ctx context.Context, text, language string) (*ai.Synthesis, error) {
	m.callCount++

	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text, language)
	}

	return &ai.Synthesis{SampleRate: 16000, Samples: []float32{0, 0.5, -0.5, 0}}, nil
}

// Ready reports the configured readiness state.
func (m *MockSynthesizer) Ready(ctx context.Context) bool {
	return m.ReadyState
}

// CallCount returns the number of times Synthesize was called.
func (m *MockSynthesizer) CallCount() int {
	return m.callCount
}
