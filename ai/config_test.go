package ai

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg)
	assert.NotEmpty(t, cfg.GeneratorHost)
	assert.NotEmpty(t, cfg.EmbeddingHost)
	assert.NotEmpty(t, cfg.GeneratorModel)
	assert.NotEmpty(t, cfg.EmbeddingModel)
	assert.NotEmpty(t, cfg.StatusURL)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://inference:9000"),
		WithGeneratorModel("llama3"),
		WithEmbeddingModel("nomic-embed-text"),
		WithStatusURL("http://inference:9000/status"),
		WithRequestTimeout(5*time.Second),
	)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://inference:9000/v1", cfg.GeneratorHost)
	assert.Equal(t, "http://inference:9000/v1", cfg.EmbeddingHost)
	assert.Equal(t, "llama3", cfg.GeneratorModel)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"adds v1 suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"strips trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"keeps existing v1", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{GeneratorHost: tt.host, EmbeddingHost: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.GeneratorHost)
			assert.Equal(t, tt.want, cfg.EmbeddingHost)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"missing generator host", func(c *Config) { c.GeneratorHost = "" }, true},
		{"missing embedding host", func(c *Config) { c.EmbeddingHost = "" }, true},
		{"missing generator model", func(c *Config) { c.GeneratorModel = "" }, true},
		{"missing embedding model", func(c *Config) { c.EmbeddingModel = "" }, true},
		{"missing status url", func(c *Config) { c.StatusURL = "" }, true},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
