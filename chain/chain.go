// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package chain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/parley/ai"
	"github.com/poiesic/parley/core"
	"github.com/poiesic/parley/corpus"
)

// Chain answers a question over optional chat history. With a retriever it
// runs rephrase, retrieve, then a grounded answer; without one it is a plain
// free-chat exchange.
type Chain struct {
	generator ai.Generator
	retriever Retriever
	opts      *ai.GenerateOptions
	logger    *slog.Logger
}

// Retriever supplies context passages for a question.
type Retriever interface {
	Relevant(ctx context.Context, query string) ([]corpus.Match, error)
}

// NewRetrievalChain builds a chain that grounds answers in retrieved context.
func NewRetrievalChain(generator ai.Generator, retriever Retriever, opts *ai.GenerateOptions) *Chain {
	if opts == nil {
		opts = ai.DefaultGenerateOptions()
	}
	return &Chain{
		generator: generator,
		retriever: retriever,
		opts:      opts,
		logger:    slog.Default().With("component", "chain"),
	}
}

// NewFreeChatChain builds a chain that answers from history alone.
func NewFreeChatChain(generator ai.Generator, opts *ai.GenerateOptions) *Chain {
	if opts == nil {
		opts = ai.DefaultGenerateOptions()
	}
	return &Chain{
		generator: generator,
		opts:      opts,
		logger:    slog.Default().With("component", "chain"),
	}
}

// Answer runs the chain for one question.
func (c *Chain) Answer(ctx context.Context, question string, history []core.Message) (string, error) {
	if c.retriever == nil {
		return c.freeChat(ctx, question, history)
	}

	standalone, err := c.rephrase(ctx, question, history)
	if err != nil {
		return "", err
	}

	matches, err := c.retriever.Relevant(ctx, standalone)
	if err != nil {
		return "", fmt.Errorf("retrieval failed: %w", err)
	}

	prompt, err := answerPrompt.Format(map[string]any{
		"context": renderContext(matches),
		"history": renderHistory(history),
		"input":   standalone,
	})
	if err != nil {
		return "", fmt.Errorf("failed to format answer prompt: %w", err)
	}

	answer, err := c.generator.Generate(ctx, prompt, c.opts)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

// rephrase folds the history into the question so retrieval sees a
// standalone query. With no history the question already stands alone.
func (c *Chain) rephrase(ctx context.Context, question string, history []core.Message) (string, error) {
	if len(history) == 0 {
		return question, nil
	}

	prompt, err := contextualizePrompt.Format(map[string]any{
		"history": renderHistory(history),
		"input":   question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to format contextualize prompt: %w", err)
	}

	standalone, err := c.generator.Generate(ctx, prompt, c.opts)
	if err != nil {
		return "", fmt.Errorf("rephrasing failed: %w", err)
	}

	standalone = strings.TrimSpace(standalone)
	if standalone == "" {
		c.logger.Debug("rephrase produced empty output, keeping original question")
		return question, nil
	}
	return standalone, nil
}

func (c *Chain) freeChat(ctx context.Context, question string, history []core.Message) (string, error) {
	prompt, err := freeChatPrompt.Format(map[string]any{
		"history": renderHistory(history),
		"input":   question,
	})
	if err != nil {
		return "", fmt.Errorf("failed to format free-chat prompt: %w", err)
	}

	answer, err := c.generator.Generate(ctx, prompt, c.opts)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	return strings.TrimSpace(answer), nil
}

func renderContext(matches []corpus.Match) string {
	if len(matches) == 0 {
		return "(no relevant context found)"
	}

	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Text)
	}
	return strings.Join(texts, "\n\n")
}
