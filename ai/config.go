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


package ai

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for the inference service clients.
type Config struct {
	// GeneratorHost is the base URL for the OpenAI-compatible generation API.
	// Example: "http://localhost:11434/v1"
	GeneratorHost string

	// EmbeddingHost is the base URL for the OpenAI-compatible embedding API.
	EmbeddingHost string

	// GeneratorModel is the model identifier for text generation.
	GeneratorModel string

	// EmbeddingModel is the model identifier for text embeddings.
	EmbeddingModel string

	// TranslatorURL is the endpoint of the translation service.
	TranslatorURL string

	// TranscriberURL is the endpoint of the speech recognition service.
	TranscriberURL string

	// SynthesizerURL is the endpoint of the speech synthesis service.
	SynthesizerURL string

	// StatusURL is the consolidated readiness endpoint.
	StatusURL string

	// RequestTimeout bounds every boundary call. Default: 60s.
	RequestTimeout time.Duration
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets both generator and embedding hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.GeneratorHost = host
		c.EmbeddingHost = host
	}
}

// WithGeneratorHost sets the generation service host URL.
func WithGeneratorHost(host string) ConfigOption {
	return func(c *Config) {
		c.GeneratorHost = host
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithGeneratorModel sets the generation model identifier.
func WithGeneratorModel(model string) ConfigOption {
	return func(c *Config) {
		c.GeneratorModel = model
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithTranslatorURL sets the translation service endpoint.
func WithTranslatorURL(url string) ConfigOption {
	return func(c *Config) {
		c.TranslatorURL = url
	}
}

// WithTranscriberURL sets the speech recognition service endpoint.
func WithTranscriberURL(url string) ConfigOption {
	return func(c *Config) {
		c.TranscriberURL = url
	}
}

// WithSynthesizerURL sets the speech synthesis service endpoint.
func WithSynthesizerURL(url string) ConfigOption {
	return func(c *Config) {
		c.SynthesizerURL = url
	}
}

// WithStatusURL sets the consolidated readiness endpoint.
func WithStatusURL(url string) ConfigOption {
	return func(c *Config) {
		c.StatusURL = url
	}
}

// WithRequestTimeout sets the per-request timeout for boundary calls.
func WithRequestTimeout(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = d
	}
}

// DefaultConfig returns a Config with defaults for local inference services.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		GeneratorHost:  defaultHost,
		EmbeddingHost:  defaultHost,
		GeneratorModel: "qwen2.5:3b",
		EmbeddingModel: "embeddinggemma",
		TranslatorURL:  "http://localhost:8002/translate",
		TranscriberURL: "http://localhost:8003/transcribe",
		SynthesizerURL: "http://localhost:8004/synthesize",
		StatusURL:      "http://localhost:8001/status",
		RequestTimeout: 60 * time.Second,
	}
}

// NewConfig creates a Config with the default values and applies the provided
// options. This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434/v1"),
//	    ai.WithGeneratorModel("llama3"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form. It adds the /v1
// suffix to the OpenAI-compatible hosts if missing, which is required by most
// local servers (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.GeneratorHost = normalizeHost(c.GeneratorHost)
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.GeneratorHost == "" {
		return errors.New("ai config: GeneratorHost is required")
	}
	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.GeneratorModel == "" {
		return errors.New("ai config: GeneratorModel is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.StatusURL == "" {
		return errors.New("ai config: StatusURL is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("ai config: RequestTimeout must be positive")
	}
	return nil
}
