package mock

import (
	"context"

	"github.com/poiesic/parley/ai"
)

// MockStatusClient is a test double for ai.StatusClient. It derives the
// aggregate report from the readiness of the sibling mocks.
type MockStatusClient struct {
	provider *MockProvider
}

// Status reports the readiness of each mock service.
func (m *MockStatusClient) Status(ctx context.Context) *ai.Status {
	return &ai.Status{
		Generator:   m.provider.generator.ReadyState,
		Translator:  m.provider.translator.ReadyState,
		Embedder:    m.provider.embedder.ReadyState,
		Transcriber: m.provider.transcriber.ReadyState,
		Synthesizer: m.provider.synthesizer.ReadyState,
	}
}

// MockProvider is a test double for ai.Provider aggregating the service mocks.
type MockProvider struct {
	generator   *MockGenerator
	embedder    *MockEmbedder
	translator  *MockTranslator
	transcriber *MockTranscriber
	synthesizer *MockSynthesizer
	status      *MockStatusClient
}

var _ ai.Provider = (*MockProvider)(nil)

// NewMockProvider creates a provider whose services all default to ready
// with deterministic behavior.
func NewMockProvider() *MockProvider {
	p := &MockProvider{
		generator:   NewMockGenerator(),
		embedder:    NewMockEmbedder(),
		translator:  NewMockTranslator(),
		transcriber: NewMockTranscriber(),
		synthesizer: NewMockSynthesizer(),
	}
	p.status = &MockStatusClient{provider: p}
	return p
}

// Generator returns the generation mock.
func (p *MockProvider) Generator() ai.Generator { return p.generator }

// Embedder returns the embedding mock.
func (p *MockProvider) Embedder() ai.Embedder { return p.embedder }

// Translator returns the translation mock.
func (p *MockProvider) Translator() ai.Translator { return p.translator }

// Transcriber returns the transcription mock.
func (p *MockProvider) Transcriber() ai.Transcriber { return p.transcriber }

// Synthesizer returns the synthesis mock.
func (p *MockProvider) Synthesizer() ai.Synthesizer { return p.synthesizer }

// StatusClient returns the aggregate readiness mock.
func (p *MockProvider) StatusClient() ai.StatusClient { return p.status }

// Close is a no-op.
func (p *MockProvider) Close() error { return nil }

// GetMockGenerator returns the concrete generator mock for test assertions.
func (p *MockProvider) GetMockGenerator() *MockGenerator { return p.generator }

// GetMockEmbedder returns the concrete embedder mock for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder { return p.embedder }

// GetMockTranslator returns the concrete translator mock for test assertions.
func (p *MockProvider) GetMockTranslator() *MockTranslator { return p.translator }

// GetMockTranscriber returns the concrete transcriber mock for test assertions.
func (p *MockProvider) GetMockTranscriber() *MockTranscriber { return p.transcriber }

// GetMockSynthesizer returns the concrete synthesizer mock for test assertions.
func (p *MockProvider) GetMockSynthesizer() *MockSynthesizer { return p.synthesizer }
