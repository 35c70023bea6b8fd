package reembed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/grag/ai"
	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/storage"
)

// BatchProcessor embeds and stores one batch of documents.
type BatchProcessor struct {
	documents      storage.DocumentRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(documents storage.DocumentRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		documents:      documents,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		logger:         slog.Default().With("component", "reembed"),
	}
}

// Process embeds the text content of each document, normalizes the vectors
// and writes the documents back in a single update. Documents without text
// content keep their current vector. It returns how many documents were
// updated.
func (bp *BatchProcessor) Process(ctx context.Context, docs []*core.Document) (int, error) {
	targets := make([]*core.Document, 0, len(docs))
	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		text := doc.TextContent()
		if text == "" {
			bp.logger.Debug("skipping document without text content", "nodeid", doc.NodeID)
			continue
		}
		targets = append(targets, doc)
		texts = append(texts, text)
	}
	if len(targets) == 0 {
		return 0, nil
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return 0, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	if len(embeddings) != len(targets) {
		return 0, fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingCountMismatch, len(targets), len(embeddings))
	}

	if err := normalizeAll(targets, embeddings); err != nil {
		return 0, err
	}

	if _, err := bp.documents.UpdateDocuments(ctx, targets...); err != nil {
		return 0, fmt.Errorf("failed to update documents: %w", err)
	}
	return len(targets), nil
}
