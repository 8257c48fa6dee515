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
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/parley/ai"
	"github.com/poiesic/parley/corpus"
)

const defaultPoolSize = 4

// Registry maps corpus ids to ready answer chains. It is the single writer
// of the map; lookups are safe for concurrent use.
type Registry struct {
	store         *corpus.Store
	generator     ai.Generator
	genOpts       *ai.GenerateOptions
	defaultCorpus string
	poolSize      int
	logger        *slog.Logger

	mu       sync.RWMutex
	chains   map[string]*Chain
	freeChat *Chain
}

type RegistryOption func(*Registry) error

// WithDefaultCorpus names the corpus a fresh deployment falls back to when
// no index exists yet.
func WithDefaultCorpus(id string) RegistryOption {
	return func(r *Registry) error {
		if id == "" {
			return fmt.Errorf("default corpus id cannot be empty")
		}
		r.defaultCorpus = corpus.NormalizeID(id)
		return nil
	}
}

// WithPoolSize sets the number of workers used to build chains during
// Initialize.
func WithPoolSize(size int) RegistryOption {
	return func(r *Registry) error {
		if size <= 0 {
			return fmt.Errorf("pool size must be positive, got %d", size)
		}
		r.poolSize = size
		return nil
	}
}

// WithGenerateOptions overrides the generation parameters chains run with.
func WithGenerateOptions(opts *ai.GenerateOptions) RegistryOption {
	return func(r *Registry) error {
		if opts == nil {
			return fmt.Errorf("generate options cannot be nil")
		}
		r.genOpts = opts
		return nil
	}
}

func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		r.logger = logger
		return nil
	}
}

func NewRegistry(store *corpus.Store, generator ai.Generator, opts ...RegistryOption) (*Registry, error) {
	if store == nil {
		return nil, fmt.Errorf("corpus store cannot be nil")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator cannot be nil")
	}

	r := &Registry{
		store:         store,
		generator:     generator,
		genOpts:       ai.DefaultGenerateOptions(),
		defaultCorpus: "default",
		poolSize:      defaultPoolSize,
		chains:        make(map[string]*Chain),
		logger:        slog.Default().With("component", "chain-registry"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	r.freeChat = NewFreeChatChain(generator, r.genOpts)
	return r, nil
}

// Initialize builds a chain for every persisted corpus, falling back to the
// default corpus id when none exist yet. Chains are built concurrently; a
// corpus that fails to open is logged and skipped, the rest proceed.
func (r *Registry) Initialize(ctx context.Context) error {
	ids, err := r.store.List()
	if err != nil {
		return fmt.Errorf("failed to enumerate corpora: %w", err)
	}
	if len(ids) == 0 {
		r.logger.Info("no corpora found, registering default", "corpus_id", r.defaultCorpus)
		ids = []string{r.defaultCorpus}
	}

	pool, err := ants.NewPool(r.poolSize)
	if err != nil {
		return fmt.Errorf("failed to create worker pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		id := id
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := r.Upsert(ctx, id, false); err != nil {
				r.logger.Error("failed to build chain", "corpus_id", id, "error", err)
			}
		})
		if submitErr != nil {
			wg.Done()
			r.logger.Error("failed to submit chain build", "corpus_id", id, "error", submitErr)
		}
	}
	wg.Wait()

	r.logger.Info("chain registry initialized", "chains", len(r.List()))
	return nil
}

// Upsert (re)builds the chain for a corpus. Without force an existing chain
// is kept as-is. An absent index is not an error: the chain answers from
// empty context until the corpus is ingested.
func (r *Registry) Upsert(ctx context.Context, corpusID string, force bool) error {
	if strings.TrimSpace(corpusID) == "" {
		return corpus.ErrEmptyID
	}
	id := corpus.NormalizeID(corpusID)

	if !force {
		r.mu.RLock()
		_, ok := r.chains[id]
		r.mu.RUnlock()
		if ok {
			return nil
		}
	}

	// Warm the index handle now so open failures surface here rather than
	// on the first chat request.
	if err := r.store.Load(ctx, id); err != nil {
		if !errors.Is(err, corpus.ErrIndexNotFound) {
			return fmt.Errorf("failed to open corpus %s: %w", id, err)
		}
		r.logger.Debug("no index for corpus yet", "corpus_id", id)
	}

	c := NewRetrievalChain(r.generator, r.store.Retriever(id), r.genOpts)

	r.mu.Lock()
	r.chains[id] = c
	r.mu.Unlock()

	r.logger.Debug("chain registered", "corpus_id", id)
	return nil
}

// Get returns the chain for a corpus id.
func (r *Registry) Get(corpusID string) (*Chain, error) {
	id := corpus.NormalizeID(corpusID)

	r.mu.RLock()
	c, ok := r.chains[id]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrChainNotFound, id)
	}
	return c, nil
}

// FreeChat returns the history-only chain shared by all sessions.
func (r *Registry) FreeChat() *Chain {
	return r.freeChat
}

// List returns the registered corpus ids.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.chains))
	for id := range r.chains {
		ids = append(ids, id)
	}
	return ids
}

// Remove drops the chain for a corpus id, reporting whether one existed.
func (r *Registry) Remove(corpusID string) bool {
	id := corpus.NormalizeID(corpusID)

	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.chains[id]
	delete(r.chains, id)
	return ok
}
