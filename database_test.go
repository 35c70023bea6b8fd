package grag

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/grag/ai/mock"
	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/reembed"
	"github.com/poiesic/grag/retrieval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.NotNil(t, db.DocumentRepository())
		assert.NotNil(t, db.AnswerRepository())
		assert.NotNil(t, db.Embedder())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("reopen keeps documents", func(t *testing.T) {
		tmpDir := t.TempDir()
		db, err := NewDatabase(tmpDir, WithEmbedder(mock.NewMockEmbedder()))
		require.NoError(t, err)
		_, err = db.DocumentRepository().AddDocuments(context.Background(), &core.Document{NodeID: "a", Text: "Alpha"})
		require.NoError(t, err)
		require.NoError(t, db.Close())

		db, err = NewDatabase(tmpDir, WithEmbedder(mock.NewMockEmbedder()))
		require.NoError(t, err)
		defer db.Close()
		doc, err := db.DocumentRepository().GetDocumentByNodeID(context.Background(), "a")
		require.NoError(t, err)
		assert.Equal(t, "Alpha", doc.Text)
	})
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestDatabase_EndToEnd(t *testing.T) {
	ctx := context.Background()
	embedder := mock.NewMockEmbedderWithDimension(16)
	db, err := NewDatabase("", WithInMemory(), WithEmbedder(embedder))
	require.NoError(t, err)
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)
	_, err = pipeline.Ingest(ctx,
		&core.Document{NodeID: "heart", Text: "Heart", ChildrenIDs: []string{"valve"}},
		&core.Document{NodeID: "valve", Text: "Valve", ParentID: "heart"},
		&core.Document{NodeID: "lung", Text: "Lung"},
	)
	require.NoError(t, err)
	pipeline.Release()

	embedded, err := db.DocumentRepository().CountWithEmbeddings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, embedded)

	manager, err := db.NewSearchManager(nil)
	require.NoError(t, err)
	defer manager.Close()

	results, err := manager.Search(ctx, "Title: Heart", 2, -1)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "heart", results[0].NodeID)

	stats, err := manager.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalDocuments)
	assert.Equal(t, 1, stats.IndexedEdges)
	assert.Equal(t, 16, stats.EmbeddingDim)
	assert.Equal(t, "embeddinggemma", stats.EmbeddingModel)
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, err := NewDatabase("", WithInMemory(), WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)
	defer db.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := db.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create retriever", func(t *testing.T) {
		retriever, err := db.NewRetriever(nil)
		require.NoError(t, err)
		assert.Equal(t, *retrieval.DefaultConfig(), retriever.Config())
	})

	t.Run("invalid retrieval config", func(t *testing.T) {
		_, err := db.NewSearchManager(&retrieval.Config{})
		assert.ErrorIs(t, err, retrieval.ErrInvalidConfig)
	})

	t.Run("can create reembedder", func(t *testing.T) {
		r, err := db.NewReembedder(nil, &bytes.Buffer{})
		require.NoError(t, err)
		require.NotNil(t, r)
	})

	t.Run("rejects invalid reembed config", func(t *testing.T) {
		_, err := db.NewReembedder(&reembed.Config{}, nil)
		assert.ErrorIs(t, err, reembed.ErrInvalidConfig)
	})
}
