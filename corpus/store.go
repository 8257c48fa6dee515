// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/parley/ai"
	"github.com/poiesic/parley/core"
	"github.com/poiesic/parley/ingest"
)

// badgerLoggerAdapter adapts slog.Logger to the badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// NormalizeID maps a corpus identifier to the directory name that backs it.
// Identifiers that differ only in path decoration map to the same corpus.
func NormalizeID(id string) string {
	return filepath.Base(filepath.Clean(strings.TrimSpace(id)))
}

// Store manages one on-disk similarity index per corpus identifier.
// It is safe for concurrent use; builds for the same identifier are
// serialized, everything else proceeds in parallel.
type Store struct {
	base     string
	embedder ai.Embedder
	pipeline *ingest.Pipeline
	logger   *slog.Logger

	mu      sync.Mutex
	handles map[string]*badger.DB
	builds  map[string]*sync.Mutex
	closed  bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a corpus store rooted at base. The pipeline is used by
// CreateOrLoad and Add to chunk raw sources before indexing.
func NewStore(base string, embedder ai.Embedder, pipeline *ingest.Pipeline, opts ...Option) (*Store, error) {
	if base == "" {
		return nil, ErrEmptyID
	}
	if err := os.MkdirAll(base, 0755); err != nil {
		return nil, err
	}

	s := &Store{
		base:     base,
		embedder: embedder,
		pipeline: pipeline,
		logger:   slog.Default().With("component", "corpus"),
		handles:  make(map[string]*badger.DB),
		builds:   make(map[string]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// path returns the index directory for a normalized identifier.
func (s *Store) path(id string) string {
	return filepath.Join(s.base, id)
}

// Exists reports whether a persisted index exists for the identifier.
func (s *Store) Exists(corpusID string) bool {
	info, err := os.Stat(s.path(NormalizeID(corpusID)))
	return err == nil && info.IsDir()
}

// List enumerates the corpus identifiers persisted under the base location.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.base)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	return ids, nil
}

// buildLock returns the mutex serializing builds for one identifier.
func (s *Store) buildLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.builds[id]
	if !ok {
		lock = &sync.Mutex{}
		s.builds[id] = lock
	}
	return lock
}

// handle returns the open database for an identifier, opening it on first use.
// The index directory must already exist.
func (s *Store) handle(id string) (*badger.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStoreClosed
	}
	if db, ok := s.handles[id]; ok {
		return db, nil
	}

	db, err := s.open(id)
	if err != nil {
		return nil, err
	}
	s.handles[id] = db
	return db, nil
}

func (s *Store) open(id string) (*badger.DB, error) {
	opts := badger.DefaultOptions(s.path(id))
	opts.Logger = &badgerLoggerAdapter{logger: s.logger}
	opts.Compression = options.None
	return badger.Open(opts)
}

// dropHandle closes and forgets the open database for an identifier.
func (s *Store) dropHandle(id string) error {
	s.mu.Lock()
	db, ok := s.handles[id]
	delete(s.handles, id)
	s.mu.Unlock()

	if ok {
		return db.Close()
	}
	return nil
}

// Build embeds the chunks and persists a new index for the identifier.
// It fails with ErrEmptyCorpus when there is nothing to index (no index is
// written) and with ErrIndexExists when an index is already persisted;
// builds are not idempotent and callers must check existence first.
// A failed build removes whatever it wrote.
func (s *Store) Build(ctx context.Context, corpusID string, chunks []core.Chunk) error {
	id := NormalizeID(corpusID)
	if id == "" || id == "." {
		return ErrEmptyID
	}

	lock := s.buildLock(id)
	lock.Lock()
	defer lock.Unlock()

	if s.Exists(corpusID) {
		return fmt.Errorf("%w: %s", ErrIndexExists, id)
	}

	return s.build(ctx, id, chunks)
}

// build writes chunks into the index directory for id. Callers hold the
// build lock.
func (s *Store) build(ctx context.Context, id string, chunks []core.Chunk) error {
	chunks = usableChunks(chunks)
	if len(chunks) == 0 {
		s.logger.Info("no chunks to build the index from", "corpus", id)
		return ErrEmptyCorpus
	}

	s.logger.Info("building index", "corpus", id, "chunks", len(chunks))

	db, err := s.handle(id)
	if err != nil {
		return err
	}

	if err := s.writeChunks(ctx, db, chunks); err != nil {
		// Partial builds are not valid indexes; discard the directory.
		s.dropHandle(id)
		if rmErr := os.RemoveAll(s.path(id)); rmErr != nil {
			s.logger.Error("error discarding partial index", "corpus", id, "err", rmErr)
		}
		return err
	}
	return nil
}

// writeChunks embeds the chunk texts in one batch and stores the records.
func (s *Store) writeChunks(ctx context.Context, db *badger.DB, chunks []core.Chunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	wb := db.NewWriteBatch()
	defer wb.Cancel()

	for i, chunk := range chunks {
		rec := recordFromChunk(chunk, normalize(vectors[i]))
		if err := wb.Set(makeChunkKey(rec.Id), marshalRecord(rec)); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Load opens the persisted index for the identifier.
// It fails with ErrIndexNotFound when no index exists.
func (s *Store) Load(ctx context.Context, corpusID string) error {
	id := NormalizeID(corpusID)
	if !s.Exists(corpusID) {
		return fmt.Errorf("%w: %s", ErrIndexNotFound, id)
	}

	s.logger.Info("loading index", "corpus", id)
	_, err := s.handle(id)
	return err
}

// CreateOrLoad loads the persisted index when one exists, otherwise chunks
// the sources and builds. Indexes are built once: for an existing index the
// sources are ignored, even when they changed.
func (s *Store) CreateOrLoad(ctx context.Context, corpusID string, sources []core.SourceItem) error {
	id := NormalizeID(corpusID)
	if id == "" || id == "." {
		return ErrEmptyID
	}

	lock := s.buildLock(id)
	lock.Lock()
	defer lock.Unlock()

	if s.Exists(corpusID) {
		return s.Load(ctx, corpusID)
	}

	chunks, err := s.pipeline.Chunk(ctx, sources)
	if err != nil {
		return err
	}
	return s.build(ctx, id, chunks)
}

// Add appends newly chunked documents to an existing index; when no index
// exists it behaves as a build.
func (s *Store) Add(ctx context.Context, corpusID string, sources []core.SourceItem) error {
	id := NormalizeID(corpusID)
	if id == "" || id == "." {
		return ErrEmptyID
	}

	lock := s.buildLock(id)
	lock.Lock()
	defer lock.Unlock()

	chunks, err := s.pipeline.Chunk(ctx, sources)
	if err != nil {
		return err
	}

	if !s.Exists(corpusID) {
		return s.build(ctx, id, chunks)
	}

	chunks = usableChunks(chunks)
	if len(chunks) == 0 {
		return ErrEmptyCorpus
	}

	s.logger.Info("adding to index", "corpus", id, "chunks", len(chunks))

	db, err := s.handle(id)
	if err != nil {
		return err
	}
	return s.writeChunks(ctx, db, chunks)
}

// Clear irreversibly deletes the persisted index for the identifier.
// It fails with ErrCorpusNotFound when the location does not exist.
func (s *Store) Clear(corpusID string) error {
	id := NormalizeID(corpusID)

	lock := s.buildLock(id)
	lock.Lock()
	defer lock.Unlock()

	if !s.Exists(corpusID) {
		return fmt.Errorf("%w: %s", ErrCorpusNotFound, id)
	}

	s.logger.Info("clearing index", "corpus", id)

	if err := s.dropHandle(id); err != nil {
		s.logger.Error("error closing index before clear", "corpus", id, "err", err)
	}
	return os.RemoveAll(s.path(id))
}

// Close closes every open index.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	for id, db := range s.handles {
		if err := db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.handles, id)
	}
	return firstErr
}

func usableChunks(chunks []core.Chunk) []core.Chunk {
	usable := chunks[:0:0]
	for _, chunk := range chunks {
		if core.ValidateChunk(&chunk) == nil {
			usable = append(usable, chunk)
		}
	}
	return usable
}
