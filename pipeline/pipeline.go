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

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/parley/ai"
	"github.com/poiesic/parley/chain"
	"github.com/poiesic/parley/core"
	"github.com/poiesic/parley/session"
)

const languageEnglish = "en"

// Pipeline executes conversational turns against the registered chains and
// the session history store.
type Pipeline struct {
	provider ai.Provider
	registry *chain.Registry
	sessions *session.Store
	logger   *slog.Logger
}

type Option func(*Pipeline) error

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		p.logger = logger
		return nil
	}
}

func New(provider ai.Provider, registry *chain.Registry, sessions *session.Store, opts ...Option) (*Pipeline, error) {
	if provider == nil {
		return nil, fmt.Errorf("provider cannot be nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("chain registry cannot be nil")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store cannot be nil")
	}

	p := &Pipeline{
		provider: provider,
		registry: registry,
		sessions: sessions,
		logger:   slog.Default().With("component", "pipeline"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// turn is the mutable state threaded through the stages of one run.
type turn struct {
	req        *core.ChatRequest
	srcLang    string
	question   string // question in the source language
	questionEN string
	answerEN   string
	answer     string
	audio      *core.Audio
}

// Run executes one conversational turn. It never panics and responds exactly
// once: the returned result carries either the full answer or the fields
// computed before the first failing stage, with Err naming the cause.
func (p *Pipeline) Run(ctx context.Context, req *core.ChatRequest) *core.ChatResult {
	started := time.Now()
	if req == nil {
		return &core.ChatResult{
			Err:     core.ErrEmptyQuestion,
			Elapsed: time.Since(started),
		}
	}
	t := &turn{req: req, srcLang: strings.TrimSpace(req.SrcLang)}

	err := p.runStages(ctx, t)
	if err != nil {
		p.logger.Warn("turn failed",
			"session_id", req.SessionID, "error", err,
			"elapsed", time.Since(started))
	}

	return &core.ChatResult{
		Question: t.question,
		AnswerEN: t.answerEN,
		Answer:   t.answer,
		Success:  err == nil,
		Err:      err,
		Elapsed:  time.Since(started),
		Audio:    t.audio,
	}
}

func (p *Pipeline) runStages(ctx context.Context, t *turn) error {
	stages := []func(context.Context, *turn) error{
		p.normalizeInput,
		p.translateToEnglish,
		p.generate,
		p.translateFromEnglish,
		p.synthesizeOutput,
	}

	for _, stage := range stages {
		if err := stage(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// normalizeInput validates the request and resolves an audio question into
// text, adopting the detected language as the source language.
func (p *Pipeline) normalizeInput(ctx context.Context, t *turn) error {
	if err := core.ValidateChatRequest(t.req); err != nil {
		return err
	}

	t.question = strings.TrimSpace(t.req.Question)
	if t.question != "" {
		return nil
	}

	transcriber := p.provider.Transcriber()
	if !transcriber.Ready(ctx) {
		return ErrTranscriberUnavailable
	}

	transcript, err := transcriber.Transcribe(ctx, t.req.Audio.Samples, t.req.Audio.SampleRate)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}

	t.question = strings.TrimSpace(transcript.Text)
	if transcript.Language != "" {
		t.srcLang = transcript.Language
	}
	if t.question == "" {
		return core.ErrEmptyQuestion
	}
	return nil
}

func (p *Pipeline) translateToEnglish(ctx context.Context, t *turn) error {
	if t.srcLang == "" {
		t.srcLang = languageEnglish
	}
	if t.srcLang == languageEnglish {
		t.questionEN = t.question
		return nil
	}

	translator := p.provider.Translator()
	if !translator.Ready(ctx) {
		return ErrTranslatorUnavailable
	}

	translated, err := translator.Translate(ctx, t.question, t.srcLang, languageEnglish)
	if err != nil {
		return fmt.Errorf("translation to English failed: %w", err)
	}
	t.questionEN = translated
	return nil
}

// generate answers the English question over the session history and records
// the completed turn. The store's Update runs history load, generation and
// append as one atomic step, so concurrent turns on one session cannot
// interleave.
func (p *Pipeline) generate(ctx context.Context, t *turn) error {
	if !p.provider.Generator().Ready(ctx) {
		return ErrGeneratorUnavailable
	}

	var c *chain.Chain
	if t.req.FreeChat {
		c = p.registry.FreeChat()
	} else {
		var err error
		c, err = p.registry.Get(t.req.CorpusID)
		if err != nil {
			return err
		}
	}

	return p.sessions.Update(t.req.SessionID, func(history []core.Message) ([]core.Message, error) {
		answer, err := c.Answer(ctx, t.questionEN, history)
		if err != nil {
			return nil, err
		}
		t.answerEN = answer

		return []core.Message{
			{Role: core.RoleHuman, Content: t.questionEN},
			{Role: core.RoleAssistant, Content: t.answerEN},
		}, nil
	})
}

func (p *Pipeline) translateFromEnglish(ctx context.Context, t *turn) error {
	tgtLang := strings.TrimSpace(t.req.TgtLang)
	if tgtLang == "" {
		tgtLang = t.srcLang
	}
	if tgtLang == languageEnglish {
		t.answer = t.answerEN
		return nil
	}

	translator := p.provider.Translator()
	if !translator.Ready(ctx) {
		return ErrTranslatorUnavailable
	}

	translated, err := translator.Translate(ctx, t.answerEN, languageEnglish, tgtLang)
	if err != nil {
		return fmt.Errorf("translation from English failed: %w", err)
	}
	t.answer = translated
	return nil
}

// synthesizeOutput renders the final answer as speech when requested. A
// synthesizer that is down or failing never fails the turn; the result just
// ships without audio.
func (p *Pipeline) synthesizeOutput(ctx context.Context, t *turn) error {
	if !t.req.WantAudio {
		return nil
	}

	synthesizer := p.provider.Synthesizer()
	if !synthesizer.Ready(ctx) {
		p.logger.Debug("synthesizer not ready, omitting audio",
			"session_id", t.req.SessionID)
		return nil
	}

	lang := strings.TrimSpace(t.req.TgtLang)
	if lang == "" {
		lang = t.srcLang
	}

	synthesis, err := synthesizer.Synthesize(ctx, t.answer, lang)
	if err != nil {
		p.logger.Warn("synthesis failed, omitting audio",
			"session_id", t.req.SessionID, "error", err)
		return nil
	}

	t.audio = &core.Audio{
		SampleRate: synthesis.SampleRate,
		Samples:    synthesis.Samples,
	}
	return nil
}
