package ingestion

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/grag/ai"
	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/storage"
)

// Pipeline orchestrates the ingestion of documents.
// It stores documents synchronously and embeds them on a worker pool.
type Pipeline struct {
	documents     storage.DocumentRepository
	embeddingPool *ants.Pool
	embeddingProc processor
	pending       sync.WaitGroup
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		p.embeddingPool = embeddingPool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	documents storage.DocumentRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	// Create pipeline with defaults
	p := &Pipeline{
		documents:     documents,
		embeddingPool: embeddingPool,
		logger:        slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Create processor after options are applied (so it gets the final logger)
	embeddingProc, err := newEmbeddingProcessor(documents, embedder, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc

	return p, nil
}

// Ingest adds documents to storage and embeds the ones without a vector
// asynchronously. Documents are assigned IDs and returned as stored.
// Errors during async processing are logged but do not fail the ingestion.
func (p *Pipeline) Ingest(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	added, err := p.documents.AddDocuments(ctx, docs...)
	if err != nil {
		return nil, err
	}

	var ids []core.ID
	for _, doc := range added {
		if !doc.HasEmbedding() {
			ids = append(ids, doc.Id)
		}
	}
	if len(ids) == 0 {
		return added, nil
	}

	// Submit for async processing
	p.pending.Add(1)
	err = p.embeddingPool.Submit(func() {
		defer p.pending.Done()
		if err := p.embeddingProc.process(context.Background(), ids...); err != nil {
			p.logger.Error("error processing embeddings", "err", err)
		}
	})
	if err != nil {
		p.pending.Done()
		p.logger.Error("error submitting embedding work", "documents", len(ids), "err", err)
	}

	return added, nil
}

// IngestRecords converts exported records into documents and ingests them.
// Records that fail conversion are logged and counted as skipped.
func (p *Pipeline) IngestRecords(ctx context.Context, records []map[string]any) ([]*core.Document, int, error) {
	docs := make([]*core.Document, 0, len(records))
	skipped := 0
	for i, rec := range records {
		doc, err := core.DocumentFromRecord(rec)
		if err != nil {
			p.logger.Warn("skipping invalid record", "record", i, "err", err)
			skipped++
			continue
		}
		docs = append(docs, doc)
	}

	added, err := p.Ingest(ctx, docs...)
	return added, skipped, err
}

// Wait blocks until all submitted embedding work has finished.
func (p *Pipeline) Wait() {
	p.pending.Wait()
}

// Release waits for pending work and releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	p.Wait()
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
