package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/poiesic/parley/ai"
)

// translateRequest is the JSON body the translation service expects.
type translateRequest struct {
	Src     string `json:"src"`
	SrcLang string `json:"src_lang"`
	TgtLang string `json:"tgt_lang"`
}

// translateResponse is the JSON body the translation service returns.
type translateResponse struct {
	Tgt string `json:"tgt"`
}

// Translator implements ai.Translator against the local translation service.
type Translator struct {
	endpoint string
	client   *http.Client
	status   ai.StatusClient
	logger   *slog.Logger
}

var _ ai.Translator = (*Translator)(nil)

// newTranslator is an internal constructor that returns the concrete type.
func newTranslator(config *ai.Config, status ai.StatusClient, client *http.Client) *Translator {
	return &Translator{
		endpoint: config.TranslatorURL,
		client:   client,
		status:   status,
		logger:   slog.Default().With("component", "remote-translator"),
	}
}

// NewTranslator creates a translator client using the provided configuration.
//
// Returns ai.Translator interface to enforce abstraction.
func NewTranslator(config *ai.Config, status ai.StatusClient) (ai.Translator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return newTranslator(config, status, &http.Client{Timeout: config.RequestTimeout}), nil
}

// Translate translates text from srcLang to tgtLang.
func (t *Translator) Translate(ctx context.Context, text, srcLang, tgtLang string) (string, error) {
	t.logger.Debug("translating", "src_lang", srcLang, "tgt_lang", tgtLang, "length", len(text))

	var body translateResponse
	err := postJSON(ctx, t.client, t.endpoint, translateRequest{
		Src:     text,
		SrcLang: srcLang,
		TgtLang: tgtLang,
	}, &body)
	if err != nil {
		t.logger.Error("failed to get translation", "err", err)
		return "", err
	}

	return body.Tgt, nil
}

// Ready reports the translator field of the consolidated status endpoint.
func (t *Translator) Ready(ctx context.Context) bool {
	return t.status.Status(ctx).Translator
}

// postJSON posts a JSON body to a bespoke inference endpoint and decodes the
// JSON response into out.
func postJSON(ctx context.Context, client *http.Client, endpoint string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("endpoint %s returned status %d", endpoint, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
