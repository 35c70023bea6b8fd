package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/grag/ai"
	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/storage"
)

// embeddingProcessor generates embeddings for stored documents.
type embeddingProcessor struct {
	documents storage.DocumentRepository
	embedder  ai.Embedder
	logger    *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(documents storage.DocumentRepository, embedder ai.Embedder, logger *slog.Logger) (processor, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		documents: documents,
		embedder:  embedder,
		logger:    logger.With("processor", "embeddings"),
	}, nil
}

// process generates embeddings for the specified documents. Documents with no
// text content are left unembedded.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	ep.logger.Info("processing documents for embeddings", "documents", len(ids))

	slices.Sort(ids)

	docs, err := ep.documents.GetDocuments(ctx, ids...)
	if err != nil {
		ep.logger.Error("error retrieving documents", "err", err)
		return err
	}

	targets := make([]*core.Document, 0, len(docs))
	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		text := doc.TextContent()
		if text == "" {
			ep.logger.Warn("skipping document without text content", "nodeid", doc.NodeID)
			continue
		}
		targets = append(targets, doc)
		texts = append(texts, text)
	}
	if len(targets) == 0 {
		return nil
	}

	ep.logger.Debug("generating embeddings for documents", "documents", len(texts))
	embeddings, err := ep.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		ep.logger.Error("error generating embeddings", "err", err)
		return err
	}

	if len(embeddings) != len(targets) {
		return fmt.Errorf("embedding result mismatch. expected %d, received %d", len(targets), len(embeddings))
	}

	for i := range embeddings {
		targets[i].Vector = embeddings[i]
	}

	_, err = ep.documents.UpdateDocuments(ctx, targets...)
	return err
}
