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

	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/storage"
)

// DefaultBatchSize is the default number of documents to process per batch.
const DefaultBatchSize = 100

// DocumentIterator streams stored documents in batches.
type DocumentIterator struct {
	scanner     storage.DocumentScanner
	batchSize   int
	missingOnly bool
}

// NewDocumentIterator creates an iterator over scanner.
// If batchSize <= 0, DefaultBatchSize is used. With missingOnly set, documents
// that already carry an embedding are skipped.
func NewDocumentIterator(scanner storage.DocumentScanner, batchSize int, missingOnly bool) *DocumentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &DocumentIterator{
		scanner:     scanner,
		batchSize:   batchSize,
		missingOnly: missingOnly,
	}
}

// ForEach calls fn with consecutive batches in ID order. Each batch is a fresh
// slice that fn may retain. Iteration stops at the first error from fn or
// when ctx is cancelled.
func (it *DocumentIterator) ForEach(ctx context.Context, fn func(batch []*core.Document) error) error {
	batch := make([]*core.Document, 0, it.batchSize)

	err := it.scanner.ForEachDocument(ctx, func(doc *core.Document) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if it.missingOnly && doc.HasEmbedding() {
			return nil
		}

		batch = append(batch, doc)
		if len(batch) < it.batchSize {
			return nil
		}

		full := batch
		batch = make([]*core.Document, 0, it.batchSize)
		return fn(full)
	})
	if err != nil {
		return err
	}

	if len(batch) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(batch)
	}
	return nil
}
