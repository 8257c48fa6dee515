package remote

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/poiesic/parley/ai"
)

// transcribeRequest is the JSON body the speech recognition service expects.
type transcribeRequest struct {
	Audio      []float32 `json:"audio"`
	SampleRate int       `json:"sample_rate"`
}

// transcribeResponse is the JSON body the speech recognition service returns.
type transcribeResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Transcriber implements ai.Transcriber against the local speech recognition service.
type Transcriber struct {
	endpoint string
	client   *http.Client
	status   ai.StatusClient
	logger   *slog.Logger
}

var _ ai.Transcriber = (*Transcriber)(nil)

// newTranscriber is an internal constructor that returns the concrete type.
func newTranscriber(config *ai.Config, status ai.StatusClient, client *http.Client) *Transcriber {
	return &Transcriber{
		endpoint: config.TranscriberURL,
		client:   client,
		status:   status,
		logger:   slog.Default().With("component", "remote-transcriber"),
	}
}

// NewTranscriber creates a transcriber client using the provided configuration.
//
// Returns ai.Transcriber interface to enforce abstraction.
func NewTranscriber(config *ai.Config, status ai.StatusClient) (ai.Transcriber, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newTranscriber(config, status, &http.Client{Timeout: config.RequestTimeout}), nil
}

// Transcribe recognizes the samples and returns the transcript with the
// detected language.
func (t *Transcriber) Transcribe(ctx context.Context, samples []float32, sampleRate int) (*ai.Transcript, error) {
	if len(samples) == 0 {
		return nil, ai.ErrEmptyInput
	}

	t.logger.Debug("transcribing", "samples", len(samples), "sample_rate", sampleRate)

	var body transcribeResponse
	err := postJSON(ctx, t.client, t.endpoint, transcribeRequest{
		Audio:      samples,
		SampleRate: sampleRate,
	}, &body)
	if err != nil {
		t.logger.Error("failed to get transcript", "err", err)
		return nil, err
	}

	return &ai.Transcript{Text: body.Text, Language: body.Language}, nil
}

// Ready reports the transcriber field of the consolidated status endpoint.
func (t *Transcriber) Ready(ctx context.Context) bool {
	return t.status.Status(ctx).Transcriber
}
