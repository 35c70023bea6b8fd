package storage

import (
	"context"

	"github.com/poiesic/grag/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentScanner streams stored documents in insertion order.
type DocumentScanner interface {
	// ForEachDocument calls fn for every stored document, in ID order.
	// Iteration stops at the first error returned by fn.
	ForEachDocument(ctx context.Context, fn func(doc *core.Document) error) error
}

// DocumentRepository provides operations for managing corpus documents.
type DocumentRepository interface {
	Repository
	DocumentScanner

	// AddDocuments adds one or more documents to storage.
	// Generates new IDs from sequence and sets InsertedAt/UpdatedAt.
	// Returns ErrDuplicateKey if a NodeID is already stored.
	AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// UpdateDocuments updates existing documents.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any document doesn't exist.
	UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// UpdateEmbedding replaces the embedding vector of a single document.
	// Returns ErrNotFound if the document doesn't exist.
	UpdateEmbedding(ctx context.Context, id core.ID, vector []float32) error

	// DeleteDocuments removes documents by their IDs.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing documents).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// GetDocumentByNodeID retrieves a document by its external node id.
	// Returns ErrNotFound if no document carries that node id.
	GetDocumentByNodeID(ctx context.Context, nodeID string) (*core.Document, error)

	// FindWithoutEmbeddings returns up to limit documents lacking a vector.
	// A limit <= 0 returns all of them.
	FindWithoutEmbeddings(ctx context.Context, limit int) ([]*core.Document, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)

	// CountWithEmbeddings returns the number of stored documents carrying a vector.
	CountWithEmbeddings(ctx context.Context) (int, error)

	// FindSimilar performs flat cosine search over stored vectors.
	// Returns documents with similarity >= minSimilarity, up to limit results,
	// ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error)
}

// AnswerRepository stores retrieval runs keyed by question and model.
type AnswerRepository interface {
	Repository

	// AddAnswer stores an answer under its content ID.
	// Sets the ID and InsertedAt; replaces any answer for the same question and model.
	AddAnswer(ctx context.Context, answer *core.Answer) (*core.Answer, error)

	// AnswerExists reports whether a question was already answered by a model.
	AnswerExists(ctx context.Context, questionID, model string) (bool, error)

	// GetAnswer retrieves the answer for a question and model.
	// Returns ErrNotFound if none is stored.
	GetAnswer(ctx context.Context, questionID, model string) (*core.Answer, error)

	// GetAnswers returns all answers recorded for a model, ordered by ID.
	GetAnswers(ctx context.Context, model string) ([]*core.Answer, error)

	// CountAnswers returns the number of answers recorded for a model.
	CountAnswers(ctx context.Context, model string) (int, error)

	// ModelStats returns the number of stored answers per model.
	ModelStats(ctx context.Context) (map[string]int, error)

	// DeleteAnswers removes all answers recorded for a model and returns how many were removed.
	DeleteAnswers(ctx context.Context, model string) (int, error)
}
