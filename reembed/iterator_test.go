package reembed

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/storage"
	"github.com/poiesic/grag/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) storage.DocumentRepository {
	t.Helper()
	docs, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)

	t.Cleanup(func() {
		docs.Close()
		backend.Close()
	})
	return docs
}

// seedDocuments stores n documents named doc-0..doc-n-1 with text content.
// Every document at an index listed in embedded gets a vector.
func seedDocuments(t *testing.T, repo storage.DocumentRepository, n int, embedded ...int) []*core.Document {
	t.Helper()
	withVector := make(map[int]bool, len(embedded))
	for _, i := range embedded {
		withVector[i] = true
	}

	docs := make([]*core.Document, n)
	for i := range docs {
		docs[i] = &core.Document{
			NodeID: fmt.Sprintf("doc-%d", i),
			Text:   fmt.Sprintf("document number %d", i),
		}
		if withVector[i] {
			docs[i].Vector = []float32{0, 0, 1}
		}
	}
	added, err := repo.AddDocuments(context.Background(), docs...)
	require.NoError(t, err)
	require.Len(t, added, n)
	return added
}

func TestDocumentIterator_Batches(t *testing.T) {
	repo := setupTestDB(t)
	added := seedDocuments(t, repo, 5)

	var sizes []int
	var ids []core.ID
	iter := NewDocumentIterator(repo, 2, false)
	err := iter.ForEach(context.Background(), func(batch []*core.Document) error {
		sizes = append(sizes, len(batch))
		for _, doc := range batch {
			ids = append(ids, doc.Id)
		}
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 2, 1}, sizes)
	require.Len(t, ids, 5)
	for i, doc := range added {
		assert.Equal(t, doc.Id, ids[i], "documents should be visited in ID order")
	}
}

func TestDocumentIterator_BatchesAreIndependent(t *testing.T) {
	repo := setupTestDB(t)
	seedDocuments(t, repo, 4)

	var batches [][]*core.Document
	err := NewDocumentIterator(repo, 2, false).ForEach(context.Background(), func(batch []*core.Document) error {
		batches = append(batches, batch)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, batches, 2)
	assert.Equal(t, "doc-0", batches[0][0].NodeID)
	assert.Equal(t, "doc-2", batches[1][0].NodeID)
}

func TestDocumentIterator_MissingOnly(t *testing.T) {
	repo := setupTestDB(t)
	seedDocuments(t, repo, 5, 0, 3)

	var nodeIDs []string
	err := NewDocumentIterator(repo, 10, true).ForEach(context.Background(), func(batch []*core.Document) error {
		for _, doc := range batch {
			nodeIDs = append(nodeIDs, doc.NodeID)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1", "doc-2", "doc-4"}, nodeIDs)
}

func TestDocumentIterator_Empty(t *testing.T) {
	repo := setupTestDB(t)

	calls := 0
	err := NewDocumentIterator(repo, 10, false).ForEach(context.Background(), func([]*core.Document) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestDocumentIterator_DefaultBatchSize(t *testing.T) {
	iter := NewDocumentIterator(nil, 0, false)
	assert.Equal(t, DefaultBatchSize, iter.batchSize)

	iter = NewDocumentIterator(nil, -5, true)
	assert.Equal(t, DefaultBatchSize, iter.batchSize)
	assert.True(t, iter.missingOnly)
}

func TestDocumentIterator_StopsOnError(t *testing.T) {
	repo := setupTestDB(t)
	seedDocuments(t, repo, 6)

	stop := errors.New("stop")
	calls := 0
	err := NewDocumentIterator(repo, 2, false).ForEach(context.Background(), func([]*core.Document) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestDocumentIterator_ContextCanceled(t *testing.T) {
	repo := setupTestDB(t)
	seedDocuments(t, repo, 6)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := NewDocumentIterator(repo, 2, false).ForEach(ctx, func([]*core.Document) error {
		calls++
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}
