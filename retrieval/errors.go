package retrieval

import "errors"

var (
	// ErrInvalidConfig is returned when a Config fails validation.
	ErrInvalidConfig = errors.New("invalid retrieval config")

	// ErrEmbeddingFailed is returned when the query embedding cannot be produced.
	ErrEmbeddingFailed = errors.New("query embedding failed")

	// ErrDimensionMismatch is returned when the query embedding dimension differs from the index.
	ErrDimensionMismatch = errors.New("query embedding dimension mismatch")

	// ErrDocumentSourceRequired is returned when no document source is provided.
	ErrDocumentSourceRequired = errors.New("document source required")

	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
