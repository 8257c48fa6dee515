package remote

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/poiesic/parley/ai"
)

// synthesizeRequest is the JSON body the speech synthesis service expects.
type synthesizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// synthesizeResponse is the JSON body the speech synthesis service returns.
type synthesizeResponse struct {
	SampleRate    int       `json:"sample_rate"`
	AudioResponse []float32 `json:"audio_response"`
}

// Synthesizer implements ai.Synthesizer against the local speech synthesis service.
type Synthesizer struct {
	endpoint string
	client   *http.Client
	status   ai.StatusClient
	logger   *slog.Logger
}

var _ ai.Synthesizer = (*Synthesizer)(nil)

// newSynthesizer is an internal constructor that returns the concrete type.
func newSynthesizer(config *ai.Config, status ai.StatusClient, client *http.Client) *Synthesizer {
	return &Synthesizer{
		endpoint: config.SynthesizerURL,
		client:   client,
		status:   status,
		logger:   slog.Default().With("component", "remote-synthesizer"),
	}
}

// NewSynthesizer creates a synthesizer client using the provided configuration.
//
// Returns ai.Synthesizer interface to enforce abstraction.
func NewSynthesizer(config *ai.Config, status ai.StatusClient) (ai.Synthesizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newSynthesizer(config, status, &http.Client{Timeout: config.RequestTimeout}), nil
}

// Synthesize renders text in the given language as audio.
func (s *Synthesizer) Synthesize(ctx context.Context, text, language string) (*ai.Synthesis, error) {
	if text == "" {
		return nil, ai.ErrEmptyInput
	}

	s.logger.Debug("synthesizing", "language", language, "length", len(text))

	var body synthesizeResponse
	err := postJSON(ctx, s.client, s.endpoint, synthesizeRequest{
		Text:     text,
		Language: language,
	}, &body)
	if err != nil {
		s.logger.Error("failed to get synthesized audio", "err", err)
		return nil, err
	}

	return &ai.Synthesis{SampleRate: body.SampleRate, Samples: body.AudioResponse}, nil
}

// Ready reports the synthesizer field of the consolidated status endpoint.
func (s *Synthesizer) Ready(ctx context.Context) bool {
	return s.status.Status(ctx).Synthesizer
}
