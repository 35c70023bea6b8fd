package badger

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDocRepo(t *testing.T) storage.DocumentRepository {
	t.Helper()
	docRepo, _, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		docRepo.Close()
		backend.Close()
	})
	return docRepo
}

func TestDocumentBasics(t *testing.T) {
	repo := newDocRepo(t)
	ctx := context.Background()

	added, err := repo.AddDocuments(ctx, &core.Document{
		NodeID:     "heart",
		Text:       "Heart",
		Attributes: []core.Attribute{{Name: "organ", Value: "yes"}},
		Vector:     []float32{0.5, 0.5},
		ParentID:   "body",
	})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.NotZero(t, added[0].Id)
	assert.False(t, added[0].InsertedAt.IsZero())

	got, err := repo.GetDocument(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "Heart", got.Text)
	assert.Equal(t, []float32{0.5, 0.5}, got.Vector)
	assert.Equal(t, "body", got.ParentID)

	byNode, err := repo.GetDocumentByNodeID(ctx, "heart")
	require.NoError(t, err)
	assert.Equal(t, added[0].Id, byNode.Id)

	_, err = repo.GetDocumentByNodeID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = repo.GetDocument(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAddDocuments_RejectsInvalidAndDuplicates(t *testing.T) {
	repo := newDocRepo(t)
	ctx := context.Background()

	_, err := repo.AddDocuments(ctx, &core.Document{NodeID: ""})
	assert.ErrorIs(t, err, core.ErrInvalidDocument)

	_, err = repo.AddDocuments(ctx, &core.Document{NodeID: "a"}, &core.Document{NodeID: "a"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	_, err = repo.AddDocuments(ctx, &core.Document{NodeID: "a"})
	require.NoError(t, err)
	_, err = repo.AddDocuments(ctx, &core.Document{NodeID: "a"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	count, err := repo.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAddDocuments_DuplicateLeavesIDsUnset(t *testing.T) {
	repo := newDocRepo(t)
	ctx := context.Background()

	_, err := repo.AddDocuments(ctx, &core.Document{NodeID: "taken"})
	require.NoError(t, err)

	fresh := &core.Document{NodeID: "fresh"}
	taken := &core.Document{NodeID: "taken"}
	_, err = repo.AddDocuments(ctx, fresh, taken)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	assert.Zero(t, fresh.Id)
	assert.True(t, fresh.InsertedAt.IsZero())

	_, err = repo.GetDocumentByNodeID(ctx, "fresh")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestAddDocuments_LargeImport(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping large import in short mode")
	}
	repo := newDocRepo(t)
	ctx := context.Background()

	const n, dim = 4000, 768
	docs := make([]*core.Document, n)
	for i := range docs {
		vector := make([]float32, dim)
		for j := range vector {
			vector[j] = float32(i+j) / float32(n+dim)
		}
		docs[i] = &core.Document{NodeID: fmt.Sprintf("node-%d", i), Text: "text", Vector: vector}
	}

	added, err := repo.AddDocuments(ctx, docs...)
	require.NoError(t, err)
	require.Len(t, added, n)

	count, err := repo.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, n, count)

	last, err := repo.GetDocumentByNodeID(ctx, fmt.Sprintf("node-%d", n-1))
	require.NoError(t, err)
	assert.Equal(t, docs[n-1].Id, last.Id)
	assert.Len(t, last.Vector, dim)

	seen := make(map[core.ID]bool, n)
	for _, doc := range docs {
		require.NotZero(t, doc.Id)
		require.False(t, seen[doc.Id], "IDs must be unique")
		seen[doc.Id] = true
	}
}

func TestUpdateDocuments(t *testing.T) {
	repo := newDocRepo(t)
	ctx := context.Background()

	added, err := repo.AddDocuments(ctx, &core.Document{NodeID: "a", Text: "old"})
	require.NoError(t, err)
	doc := added[0]
	insertedAt := doc.InsertedAt

	doc.Text = "new"
	doc.NodeID = "a2"
	_, err = repo.UpdateDocuments(ctx, doc)
	require.NoError(t, err)

	got, err := repo.GetDocumentByNodeID(ctx, "a2")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Text)
	assert.True(t, got.InsertedAt.Equal(insertedAt))

	_, err = repo.GetDocumentByNodeID(ctx, "a")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = repo.UpdateDocuments(ctx, &core.Document{Id: 4242, NodeID: "ghost"})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateEmbedding(t *testing.T) {
	repo := newDocRepo(t)
	ctx := context.Background()

	added, err := repo.AddDocuments(ctx, &core.Document{NodeID: "a"})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateEmbedding(ctx, added[0].Id, []float32{1, 2, 3}))

	got, err := repo.GetDocument(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, got.Vector)

	assert.ErrorIs(t, repo.UpdateEmbedding(ctx, 777, []float32{1}), storage.ErrNotFound)
}

func TestDeleteDocuments(t *testing.T) {
	repo := newDocRepo(t)
	ctx := context.Background()

	added, err := repo.AddDocuments(ctx, &core.Document{NodeID: "a"}, &core.Document{NodeID: "b"})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteDocuments(ctx, added[0].Id))

	_, err = repo.GetDocumentByNodeID(ctx, "a")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	docs, err := repo.GetDocuments(ctx, added[0].Id, added[1].Id)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "b", docs[0].NodeID)

	assert.ErrorIs(t, repo.DeleteDocuments(ctx, added[0].Id), storage.ErrNotFound)
}

func TestForEachDocument_InsertionOrder(t *testing.T) {
	repo := newDocRepo(t)
	ctx := context.Background()

	var docs []*core.Document
	for _, id := range []string{"n1", "n2", "n3", "n4", "n5"} {
		docs = append(docs, &core.Document{NodeID: id})
	}
	_, err := repo.AddDocuments(ctx, docs...)
	require.NoError(t, err)
	_, err = repo.AddDocuments(ctx, &core.Document{NodeID: "n6"})
	require.NoError(t, err)

	var seen []string
	err = repo.ForEachDocument(ctx, func(doc *core.Document) error {
		seen = append(seen, doc.NodeID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"n1", "n2", "n3", "n4", "n5", "n6"}, seen)
}

func TestEmbeddingCounts(t *testing.T) {
	repo := newDocRepo(t)
	ctx := context.Background()

	_, err := repo.AddDocuments(ctx,
		&core.Document{NodeID: "a", Vector: []float32{1}},
		&core.Document{NodeID: "b"},
		&core.Document{NodeID: "c"},
	)
	require.NoError(t, err)

	total, err := repo.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	embedded, err := repo.CountWithEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, embedded)

	missing, err := repo.FindWithoutEmbeddings(ctx, 0)
	require.NoError(t, err)
	require.Len(t, missing, 2)
	assert.Equal(t, "b", missing[0].NodeID)

	limited, err := repo.FindWithoutEmbeddings(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
