// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/poiesic/grag/ai"
	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/storage"
	"golang.org/x/sync/errgroup"
)

// Config holds configuration for a reembedding run.
type Config struct {
	BatchSize      int           // Number of documents per batch
	ReportInterval int           // Report progress every N documents
	MaxRetries     int           // Maximum embedding attempts per batch
	RetryDelay     time.Duration // Base delay for exponential backoff
	Workers        int           // Number of batches embedded concurrently
	MissingOnly    bool          // Only embed documents without a vector
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     time.Second,
		Workers:        1,
	}
}

// Validate reports unusable settings.
func (c *Config) Validate() error {
	switch {
	case c.BatchSize < 1:
		return fmt.Errorf("%w: batch size must be at least 1, got %d", ErrInvalidConfig, c.BatchSize)
	case c.MaxRetries < 1:
		return fmt.Errorf("%w: max retries must be at least 1, got %d", ErrInvalidConfig, c.MaxRetries)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	case c.RetryDelay < 0:
		return fmt.Errorf("%w: retry delay cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// Summary describes a finished run.
type Summary struct {
	Total    int           // Documents selected for the run
	Embedded int           // Documents that received a new vector
	Skipped  int           // Documents without text content
	Elapsed  time.Duration // Wall time of the run
}

// Reembedder orchestrates the reembedding process.
type Reembedder struct {
	documents storage.DocumentRepository
	processor *BatchProcessor
	config    *Config
	progress  io.Writer
	logger    *slog.Logger
}

// NewReembedder creates a new reembedder. A nil config uses DefaultConfig and
// a nil progress writer discards progress output.
func NewReembedder(documents storage.DocumentRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		documents: documents,
		processor: NewBatchProcessor(documents, embedder, config.MaxRetries, config.RetryDelay),
		config:    config,
		progress:  progress,
		logger:    slog.Default().With("component", "reembed"),
	}, nil
}

// Run embeds every selected document. The first failing batch cancels the
// remaining ones and its error is returned.
func (r *Reembedder) Run(ctx context.Context) (*Summary, error) {
	total, err := r.countTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	if total == 0 {
		fmt.Fprintln(r.progress, "No documents to reembed")
		return &Summary{}, nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d documents (batch size: %d, workers: %d)\n",
		total, r.config.BatchSize, r.config.Workers)

	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	var embedded atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.config.Workers)

	iterator := NewDocumentIterator(r.documents, r.config.BatchSize, r.config.MissingOnly)
	iterErr := iterator.ForEach(gctx, func(batch []*core.Document) error {
		g.Go(func() error {
			n, err := r.processor.Process(gctx, batch)
			if err != nil {
				return fmt.Errorf("batch starting at %s: %w", batch[0].DisplayNodeID(), err)
			}
			embedded.Add(int64(n))
			tracker.Increment(len(batch))
			return nil
		})
		return nil
	})

	err = g.Wait()
	tracker.Finish()
	if err == nil {
		err = iterErr
	}
	if err != nil {
		r.logger.Error("reembedding failed", "processed", tracker.Current(), "err", err)
		return nil, err
	}

	summary := &Summary{
		Total:    total,
		Embedded: int(embedded.Load()),
		Elapsed:  tracker.Elapsed(),
	}
	summary.Skipped = tracker.Current() - summary.Embedded

	rate := 0.0
	if secs := summary.Elapsed.Seconds(); secs > 0 {
		rate = float64(summary.Total) / secs
	}
	fmt.Fprintf(r.progress, "Reembedding complete. Embedded %d of %d documents in %v (%.1f docs/sec)\n",
		summary.Embedded, summary.Total, summary.Elapsed.Round(time.Millisecond), rate)

	r.logger.Info("reembedding complete",
		"total", summary.Total,
		"embedded", summary.Embedded,
		"skipped", summary.Skipped,
		"elapsed", summary.Elapsed)
	return summary, nil
}

func (r *Reembedder) countTargets(ctx context.Context) (int, error) {
	total, err := r.documents.CountDocuments(ctx)
	if err != nil || !r.config.MissingOnly {
		return total, err
	}
	withVectors, err := r.documents.CountWithEmbeddings(ctx)
	if err != nil {
		return 0, err
	}
	return total - withVectors, nil
}
