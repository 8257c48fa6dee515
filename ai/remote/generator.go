package remote

import (
	"context"
	"log/slog"

	"github.com/poiesic/parley/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator implements ai.Generator using OpenAI-compatible chat APIs.
type Generator struct {
	client llms.Model
	status ai.StatusClient
	logger *slog.Logger
}

var _ ai.Generator = (*Generator)(nil)

// newGenerator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newGenerator(config *ai.Config, status ai.StatusClient) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.GeneratorHost),
		openai.WithToken("none"),
		openai.WithModel(config.GeneratorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Generator{
		client: client,
		status: status,
		logger: slog.Default().With("component", "remote-generator"),
	}, nil
}

// NewGenerator creates a new generator using the provided configuration.
//
// Returns ai.Generator interface to enforce abstraction.
func NewGenerator(config *ai.Config, status ai.StatusClient) (ai.Generator, error) {
	return newGenerator(config, status)
}

// Generate runs one completion for the prompt. opts may be nil, in which case
// DefaultGenerateOptions apply.
func (g *Generator) Generate(ctx context.Context, prompt string, opts *ai.GenerateOptions) (string, error) {
	if opts == nil {
		opts = ai.DefaultGenerateOptions()
	}

	g.logger.Debug("generating completion", "prompt_length", len(prompt))

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(prompt)},
		},
	}

	response, err := g.client.GenerateContent(ctx, content,
		llms.WithMaxTokens(opts.MaxTokens),
		llms.WithTemperature(opts.Temperature),
		llms.WithTopP(opts.TopP),
		llms.WithTopK(opts.TopK),
	)
	if err != nil {
		g.logger.Error("failed to generate content", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		g.logger.Warn("no choices returned from model")
		return "", nil
	}

	return response.Choices[0].Content, nil
}

// Ready reports the generator field of the consolidated status endpoint.
func (g *Generator) Ready(ctx context.Context) bool {
	return g.status.Status(ctx).Generator
}
