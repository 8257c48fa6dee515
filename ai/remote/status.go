package remote

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/poiesic/parley/ai"
)

// statusResponse mirrors the JSON body of the consolidated status endpoint.
// The speech fields are pointers because older backends report only llm,
// translator and encoder: an absent field means "not covered here", not
// "down", and triggers a direct probe of the service endpoint.
type statusResponse struct {
	LLM         bool  `json:"llm"`
	Translator  bool  `json:"translator"`
	Encoder     bool  `json:"encoder"`
	Transcriber *bool `json:"stt"`
	Synthesizer *bool `json:"tts"`
}

// Status implements ai.StatusClient against the consolidated status endpoint.
type Status struct {
	endpoint       string
	transcriberURL string
	synthesizerURL string
	client         *http.Client
	logger         *slog.Logger
}

var _ ai.StatusClient = (*Status)(nil)

// newStatus is an internal constructor that returns the concrete type.
func newStatus(config *ai.Config, client *http.Client) *Status {
	return &Status{
		endpoint:       config.StatusURL,
		transcriberURL: config.TranscriberURL,
		synthesizerURL: config.SynthesizerURL,
		client:         client,
		logger:         slog.Default().With("component", "remote-status"),
	}
}

// NewStatus creates a status client for the consolidated readiness endpoint.
func NewStatus(config *ai.Config) (ai.StatusClient, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newStatus(config, &http.Client{Timeout: config.RequestTimeout}), nil
}

// Status returns the readiness of each service. A transport or decode failure
// is reported as everything-down. Services the aggregate endpoint does not
// cover are probed directly.
func (s *Status) Status(ctx context.Context) *ai.Status {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		s.logger.Error("error building status request", "err", err)
		return &ai.Status{}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("status endpoint unreachable", "err", err)
		return &ai.Status{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("status endpoint returned non-OK", "status", resp.StatusCode)
		return &ai.Status{}
	}

	var body statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		s.logger.Error("error decoding status response", "err", err)
		return &ai.Status{}
	}

	return &ai.Status{
		Generator:   body.LLM,
		Translator:  body.Translator,
		Embedder:    body.Encoder,
		Transcriber: s.reportedOrProbed(ctx, body.Transcriber, s.transcriberURL),
		Synthesizer: s.reportedOrProbed(ctx, body.Synthesizer, s.synthesizerURL),
	}
}

func (s *Status) reportedOrProbed(ctx context.Context, reported *bool, endpoint string) bool {
	if reported != nil {
		return *reported
	}
	return s.probe(ctx, endpoint)
}

// probe checks whether a service endpoint is reachable at all. The speech
// services serve only POST routes, so any HTTP response, including 405,
// counts as up; only transport failures count as down.
func (s *Status) probe(ctx context.Context, endpoint string) bool {
	if endpoint == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("service probe failed", "endpoint", endpoint, "err", err)
		return false
	}
	resp.Body.Close()
	return true
}
