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


package remote

import (
	"log/slog"
	"net/http"

	"github.com/poiesic/parley/ai"
)

// Provider implements ai.Provider using locally hosted inference services.
// All bespoke JSON services share one http.Client; readiness for every
// service comes from the consolidated status endpoint.
type Provider struct {
	config      *ai.Config
	generator   *Generator
	embedder    *Embedder
	translator  *Translator
	transcriber *Transcriber
	synthesizer *Synthesizer
	statusCli   *Status
	logger      *slog.Logger
}

var _ ai.Provider = (*Provider)(nil)

// NewProvider creates a provider wired to the configured inference services.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction and
// prevent coupling to transport details.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: config.RequestTimeout}
	statusCli := newStatus(config, httpClient)

	generator, err := newGenerator(config, statusCli)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config, statusCli)
	if err != nil {
		return nil, err
	}

	return &Provider{
		config:      config,
		generator:   generator,
		embedder:    embedder,
		translator:  newTranslator(config, statusCli, httpClient),
		transcriber: newTranscriber(config, statusCli, httpClient),
		synthesizer: newSynthesizer(config, statusCli, httpClient),
		statusCli:   statusCli,
		logger:      slog.Default().With("component", "remote-provider"),
	}, nil
}

// Generator returns the text generation service.
func (p *Provider) Generator() ai.Generator {
	return p.generator
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Translator returns the translation service.
func (p *Provider) Translator() ai.Translator {
	return p.translator
}

// Transcriber returns the speech recognition service.
func (p *Provider) Transcriber() ai.Transcriber {
	return p.transcriber
}

// Synthesizer returns the speech synthesis service.
func (p *Provider) Synthesizer() ai.Synthesizer {
	return p.synthesizer
}

// StatusClient returns the aggregate readiness reporter.
func (p *Provider) StatusClient() ai.StatusClient {
	return p.statusCli
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing remote provider")
	return nil
}
