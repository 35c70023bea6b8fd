package ai

import "errors"

var (
	// ErrEmbedderRequired is returned when a wrapper is built without an inner embedder.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmbeddingCountMismatch is returned when a batch call returns the wrong number of vectors.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")
)
