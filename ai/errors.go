package ai

import "errors"

var (
	// ErrNotReady is returned when a required backing service is unavailable.
	// It is fatal to the current request, never to the process.
	ErrNotReady = errors.New("service not ready")

	// ErrEmptyInput is returned when a service is invoked with nothing to process.
	ErrEmptyInput = errors.New("empty input")
)
