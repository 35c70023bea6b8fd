package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrZeroVector is returned when an embedder produces an all-zero vector.
	ErrZeroVector = errors.New("embedding has zero magnitude")

	// ErrEmbeddingCountMismatch is returned when an embedder returns a
	// different number of vectors than texts it was given.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")

	// ErrInvalidConfig is returned by NewReembedder for unusable settings.
	ErrInvalidConfig = errors.New("invalid reembed configuration")
)
