package ingest

import "errors"

var (
	// ErrSourceNotFound is returned when a source path does not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrUnsupportedSource is returned by an extractor lookup for a source
	// kind no extractor handles. The pipeline treats it as skip-with-warning.
	ErrUnsupportedSource = errors.New("unsupported source type")

	// ErrNoSources is returned when source expansion yields nothing to ingest.
	ErrNoSources = errors.New("no usable sources")
)
