package corpus

import "errors"

var (
	// ErrEmptyCorpus indicates an index build with zero usable chunks.
	// No index is written in that case.
	ErrEmptyCorpus = errors.New("no chunks to index")

	// ErrIndexNotFound indicates no persisted index exists for the identifier.
	ErrIndexNotFound = errors.New("index not found")

	// ErrIndexExists indicates a build against an already persisted index.
	// Builds are not idempotent; callers must check existence first.
	ErrIndexExists = errors.New("index already exists")

	// ErrCorpusNotFound indicates a clear of a corpus that does not exist.
	ErrCorpusNotFound = errors.New("corpus not found")

	// ErrEmptyID indicates a corpus identifier that normalizes to nothing.
	ErrEmptyID = errors.New("empty corpus identifier")

	// ErrStoreClosed indicates the store was used after Close.
	ErrStoreClosed = errors.New("store is closed")
)
