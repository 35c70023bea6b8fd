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

package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) (*DocumentRepository, error) {
	idSeq, err := backend.GetSequence(documentIDSeq)
	if err != nil {
		return nil, err
	}

	return &DocumentRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *DocumentRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// FindSimilar delegates to the backend.
func (r *DocumentRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.SimilarityMatch, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// AddDocuments adds one or more documents to storage.
//
// Node ids are checked against the store and each other before anything is
// written. Writes are then committed in as many transactions as badger needs,
// so imports larger than one transaction succeed. IDs and timestamps are only
// set on docs once every write has been committed.
func (r *DocumentRepository) AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return nil, err
		}
	}
	if err := r.checkNewNodeIDs(docs); err != nil {
		return nil, err
	}

	stored := make([]core.Document, len(docs))
	err := r.backend.writeBatched(func(set func(key, value []byte) error) error {
		for i, doc := range docs {
			if err := ctx.Err(); err != nil {
				return err
			}
			id, err := r.nextID()
			if err != nil {
				return err
			}

			stored[i] = *doc
			stored[i].Id = id
			stored[i].InsertedAt = time.Now().UTC().Truncate(time.Microsecond)
			stored[i].UpdatedAt = stored[i].InsertedAt

			if err := set(makeDocumentKey(id), storage.MarshalDocument(&stored[i])); err != nil {
				return err
			}
			if err := set(makeNodeIDKey(doc.NodeID), storage.MarshalID(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, doc := range docs {
		doc.Id = stored[i].Id
		doc.InsertedAt = stored[i].InsertedAt
		doc.UpdatedAt = stored[i].UpdatedAt
	}
	return docs, nil
}

// checkNewNodeIDs rejects node ids that repeat within docs or already exist.
func (r *DocumentRepository) checkNewNodeIDs(docs []*core.Document) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		seen := make(map[string]bool, len(docs))
		for _, doc := range docs {
			if seen[doc.NodeID] {
				return fmt.Errorf("%w: node id %q", storage.ErrDuplicateKey, doc.NodeID)
			}
			seen[doc.NodeID] = true

			existing, err := r.lookupNodeID(tx, doc.NodeID)
			if err != nil {
				return err
			}
			if existing != 0 {
				return fmt.Errorf("%w: node id %q", storage.ErrDuplicateKey, doc.NodeID)
			}
		}
		return nil
	}, false)
}

// nextID draws the next document ID from the sequence.
func (r *DocumentRepository) nextID() (core.ID, error) {
	next, err := r.idSeq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if next == 0 {
		if next, err = r.idSeq.Next(); err != nil {
			return 0, err
		}
	}
	return core.ID(next), nil
}

// UpdateDocuments updates existing documents.
func (r *DocumentRepository) UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			old, err := r.readDocument(tx, makeDocumentKey(doc.Id))
			if err != nil {
				return err
			}
			if old == nil {
				return fmt.Errorf("%w: document %d", storage.ErrNotFound, doc.Id)
			}

			// Move the node id index entry if the external id changed
			if old.NodeID != doc.NodeID {
				existing, err := r.lookupNodeID(tx, doc.NodeID)
				if err != nil {
					return err
				}
				if existing != 0 && existing != doc.Id {
					return fmt.Errorf("%w: node id %q", storage.ErrDuplicateKey, doc.NodeID)
				}
				if err := tx.Delete(makeNodeIDKey(old.NodeID)); err != nil {
					return err
				}
				if err := tx.Set(makeNodeIDKey(doc.NodeID), storage.MarshalID(doc.Id)); err != nil {
					return err
				}
			}

			doc.InsertedAt = old.InsertedAt
			doc.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
			if err := r.writeDocument(tx, doc); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// UpdateEmbedding replaces the embedding vector of a single document.
func (r *DocumentRepository) UpdateEmbedding(ctx context.Context, id core.ID, vector []float32) error {
	if err := core.ValidateVector(vector); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		doc, err := r.readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("%w: document %d", storage.ErrNotFound, id)
		}

		doc.Vector = vector
		doc.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
		if err := r.writeDocument(tx, doc); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// DeleteDocuments removes documents by their IDs.
func (r *DocumentRepository) DeleteDocuments(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)

			doc, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}
			if doc == nil {
				return fmt.Errorf("%w: document %d", storage.ErrNotFound, id)
			}

			if err := tx.Delete(makeNodeIDKey(doc.NodeID)); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetDocuments retrieves multiple documents by their IDs.
func (r *DocumentRepository) GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error) {
	var result []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			doc, err := r.readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if doc != nil {
				result = append(result, doc)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetDocumentByNodeID retrieves a document by its external node id.
func (r *DocumentRepository) GetDocumentByNodeID(ctx context.Context, nodeID string) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		id, err := r.lookupNodeID(tx, nodeID)
		if err != nil {
			return err
		}
		if id == 0 {
			return storage.ErrNotFound
		}
		result, err = r.readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ForEachDocument calls fn for every stored document, in ID order.
func (r *DocumentRepository) ForEachDocument(ctx context.Context, fn func(doc *core.Document) error) error {
	return r.backend.scanPrefix(ctx, []byte(documentRecordPrefix), func(_, val []byte) error {
		doc, err := storage.UnmarshalDocument(val)
		if err != nil {
			return err
		}
		return fn(doc)
	})
}

// errScanLimit stops a scan once enough documents were collected.
var errScanLimit = errors.New("scan limit reached")

// FindWithoutEmbeddings returns up to limit documents lacking a vector.
func (r *DocumentRepository) FindWithoutEmbeddings(ctx context.Context, limit int) ([]*core.Document, error) {
	var result []*core.Document
	err := r.ForEachDocument(ctx, func(doc *core.Document) error {
		if doc.HasEmbedding() {
			return nil
		}
		result = append(result, doc)
		if limit > 0 && len(result) >= limit {
			return errScanLimit
		}
		return nil
	})
	if err != nil && !errors.Is(err, errScanLimit) {
		return nil, err
	}
	return result, nil
}

// CountDocuments returns the number of stored documents.
func (r *DocumentRepository) CountDocuments(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentRecordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// CountWithEmbeddings returns the number of stored documents carrying a vector.
func (r *DocumentRepository) CountWithEmbeddings(ctx context.Context) (int, error) {
	count := 0
	err := r.ForEachDocument(ctx, func(doc *core.Document) error {
		if doc.HasEmbedding() {
			count++
		}
		return nil
	})
	return count, err
}

// Helper methods

// readDocument reads a document from the transaction.
func (r *DocumentRepository) readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}

// writeDocument stores the primary document record.
func (r *DocumentRepository) writeDocument(tx *badger.Txn, doc *core.Document) error {
	return tx.Set(makeDocumentKey(doc.Id), storage.MarshalDocument(doc))
}

// lookupNodeID resolves a node id to a document ID, returning 0 when absent.
func (r *DocumentRepository) lookupNodeID(tx *badger.Txn, nodeID string) (core.ID, error) {
	item, err := tx.Get(makeNodeIDKey(nodeID))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}

	var id core.ID
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		id, unmarshalErr = storage.UnmarshalID(val)
		return unmarshalErr
	})
	return id, err
}
