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

// Package parley is a conversational retrieval-augmented answering layer.
// It ingests documents into per-corpus vector indexes, keeps per-session
// chat history, and runs each turn through transcription, translation,
// grounded generation and speech synthesis as needed.
package parley

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/parley/ai"
	"github.com/poiesic/parley/ai/remote"
	"github.com/poiesic/parley/chain"
	"github.com/poiesic/parley/core"
	"github.com/poiesic/parley/corpus"
	"github.com/poiesic/parley/ingest"
	"github.com/poiesic/parley/pipeline"
	"github.com/poiesic/parley/session"
)

// App wires the ingestion pipeline, corpus store, chain registry, session
// store and request pipeline into one conversational service.
type App struct {
	provider ai.Provider
	ingester *ingest.Pipeline
	store    *corpus.Store
	registry *chain.Registry
	sessions *session.Store
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

// AppOption configures an App.
type AppOption func(*appOptions)

type appOptions struct {
	aiConfig      *ai.Config
	provider      ai.Provider
	defaultCorpus string
	sessionTTL    time.Duration
	maxTurns      int
	chunkSize     int
	chunkOverlap  int
}

// WithAIConfig sets the remote inference service configuration. Ignored
// when a provider is injected directly.
func WithAIConfig(config *ai.Config) AppOption {
	return func(o *appOptions) {
		o.aiConfig = config
	}
}

// WithProvider injects an inference provider instead of building one from
// the AI config. Used by tests and embedders with their own transport.
func WithProvider(provider ai.Provider) AppOption {
	return func(o *appOptions) {
		o.provider = provider
	}
}

// WithDefaultCorpus names the corpus registered on startup when none exist.
func WithDefaultCorpus(id string) AppOption {
	return func(o *appOptions) {
		o.defaultCorpus = id
	}
}

// WithSessionTTL sets the idle lifetime of chat sessions.
func WithSessionTTL(ttl time.Duration) AppOption {
	return func(o *appOptions) {
		o.sessionTTL = ttl
	}
}

// WithMaxHistoryTurns caps session history length in turns. Zero keeps
// everything.
func WithMaxHistoryTurns(turns int) AppOption {
	return func(o *appOptions) {
		o.maxTurns = turns
	}
}

// WithChunking overrides the splitter's chunk size and overlap.
func WithChunking(size, overlap int) AppOption {
	return func(o *appOptions) {
		o.chunkSize = size
		o.chunkOverlap = overlap
	}
}

// Open builds the full service rooted at basePath, where each corpus keeps
// its index in a subdirectory, and registers a chain for every corpus found
// there.
func Open(ctx context.Context, basePath string, opts ...AppOption) (*App, error) {
	options := &appOptions{
		aiConfig:      ai.DefaultConfig(),
		defaultCorpus: "default",
	}
	for _, opt := range opts {
		opt(options)
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = remote.NewProvider(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	var ingestOpts []ingest.Option
	if options.chunkSize > 0 {
		ingestOpts = append(ingestOpts,
			ingest.WithChunkSize(options.chunkSize),
			ingest.WithChunkOverlap(options.chunkOverlap))
	}
	ingester, err := ingest.NewPipeline(ingestOpts...)
	if err != nil {
		provider.Close()
		return nil, err
	}

	store, err := corpus.NewStore(basePath, provider.Embedder(), ingester)
	if err != nil {
		ingester.Release()
		provider.Close()
		return nil, err
	}

	registry, err := chain.NewRegistry(store, provider.Generator(),
		chain.WithDefaultCorpus(options.defaultCorpus))
	if err != nil {
		store.Close()
		ingester.Release()
		provider.Close()
		return nil, err
	}
	if err := registry.Initialize(ctx); err != nil {
		store.Close()
		ingester.Release()
		provider.Close()
		return nil, err
	}

	var sessionOpts []session.Option
	if options.sessionTTL > 0 {
		sessionOpts = append(sessionOpts, session.WithTTL(options.sessionTTL))
	}
	if options.maxTurns > 0 {
		sessionOpts = append(sessionOpts, session.WithMaxTurns(options.maxTurns))
	}
	sessions, err := session.NewStore(sessionOpts...)
	if err != nil {
		store.Close()
		ingester.Release()
		provider.Close()
		return nil, err
	}

	requestPipeline, err := pipeline.New(provider, registry, sessions)
	if err != nil {
		store.Close()
		ingester.Release()
		provider.Close()
		return nil, err
	}

	return &App{
		provider: provider,
		ingester: ingester,
		store:    store,
		registry: registry,
		sessions: sessions,
		pipeline: requestPipeline,
		logger:   slog.Default(),
	}, nil
}

// IngestCorpus builds the corpus index from the sources named by dataPath
// and registers its chain. An existing index is left untouched.
func (a *App) IngestCorpus(ctx context.Context, corpusID, dataPath string) error {
	sources, err := ingest.Expand(dataPath)
	if err != nil {
		return err
	}
	if err := a.store.CreateOrLoad(ctx, corpusID, sources); err != nil {
		return err
	}
	return a.registry.Upsert(ctx, corpusID, true)
}

// AddToCorpus appends the sources named by dataPath to an existing corpus,
// building it when absent.
func (a *App) AddToCorpus(ctx context.Context, corpusID, dataPath string) error {
	sources, err := ingest.Expand(dataPath)
	if err != nil {
		return err
	}
	if err := a.store.Add(ctx, corpusID, sources); err != nil {
		return err
	}
	return a.registry.Upsert(ctx, corpusID, true)
}

// QueryCorpus runs a direct similarity query against a corpus.
func (a *App) QueryCorpus(ctx context.Context, corpusID, text string, k int, mode corpus.QueryMode) ([]corpus.Match, error) {
	return a.store.Query(ctx, corpusID, text, k, mode)
}

// ClearCorpus deletes a corpus index and replaces its chain with one over
// empty context, so follow-up chats keep working against nothing.
func (a *App) ClearCorpus(ctx context.Context, corpusID string) error {
	if err := a.store.Clear(corpusID); err != nil {
		return err
	}
	return a.registry.Upsert(ctx, corpusID, true)
}

// Corpora lists the ids with registered chains.
func (a *App) Corpora() []string {
	return a.registry.List()
}

// Chat runs one conversational turn.
func (a *App) Chat(ctx context.Context, req *core.ChatRequest) *core.ChatResult {
	return a.pipeline.Run(ctx, req)
}

// ClearSession drops a session's history, reporting whether it existed.
func (a *App) ClearSession(sessionID string) bool {
	return a.sessions.Delete(sessionID)
}

// Status reports the readiness of the inference services.
func (a *App) Status(ctx context.Context) *ai.Status {
	return a.provider.StatusClient().Status(ctx)
}

// Close releases the corpus store, worker pools and the provider.
func (a *App) Close() error {
	a.ingester.Release()

	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}

	if err := a.store.Close(); err != nil {
		a.logger.Error("error closing corpus store", "err", err)
		return err
	}
	return nil
}
