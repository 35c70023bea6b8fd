package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/poiesic/grag/ai/mock"
	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/storage"
	"github.com/poiesic/grag/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepository(t *testing.T) storage.DocumentRepository {
	backend, err := badger.OpenBackend(t.TempDir(), false)
	require.NoError(t, err)

	docRepo, err := badger.NewDocumentRepository(backend)
	require.NoError(t, err)

	t.Cleanup(func() {
		docRepo.Close()
		backend.Close()
	})
	return docRepo
}

func setupTestPipeline(t *testing.T, embedder *mock.MockEmbedder) (*Pipeline, storage.DocumentRepository) {
	docRepo := setupTestRepository(t)
	p, err := NewPipeline(docRepo, embedder, WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p, docRepo
}

func TestNewPipeline(t *testing.T) {
	docRepo := setupTestRepository(t)
	embedder := mock.NewMockEmbedder()

	t.Run("valid configuration", func(t *testing.T) {
		p, err := NewPipeline(docRepo, embedder)
		require.NoError(t, err)
		p.Release()
	})

	t.Run("with options", func(t *testing.T) {
		p, err := NewPipeline(docRepo, embedder, WithPoolSize(0), WithLogger(slog.Default()), WithLogger(nil))
		require.NoError(t, err)
		p.Release()
	})

	t.Run("nil document repository", func(t *testing.T) {
		_, err := NewPipeline(nil, embedder)
		assert.Equal(t, ErrDocumentRepositoryRequired, err)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewPipeline(docRepo, nil)
		assert.Equal(t, ErrEmbedderRequired, err)
	})
}

func TestIngest_EmbedsDocumentsWithoutVectors(t *testing.T) {
	embedder := mock.NewMockEmbedderWithDimension(8)
	p, docRepo := setupTestPipeline(t, embedder)
	ctx := context.Background()

	preset := []float32{1, 0, 0, 0, 0, 0, 0, 0}
	added, err := p.Ingest(ctx,
		&core.Document{NodeID: "alpha", Text: "Alpha", Notes: "first"},
		&core.Document{NodeID: "beta", Text: "Beta", Vector: preset},
		&core.Document{NodeID: "empty"},
	)
	require.NoError(t, err)
	require.Len(t, added, 3)
	for _, doc := range added {
		assert.NotZero(t, doc.Id)
	}

	p.Wait()

	alpha, err := docRepo.GetDocumentByNodeID(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, mock.GenerateDeterministicVector("Title: Alpha Notes: first", 8), alpha.Vector)

	beta, err := docRepo.GetDocumentByNodeID(ctx, "beta")
	require.NoError(t, err)
	assert.Equal(t, preset, beta.Vector)

	empty, err := docRepo.GetDocumentByNodeID(ctx, "empty")
	require.NoError(t, err)
	assert.False(t, empty.HasEmbedding())

	assert.Equal(t, []string{"Title: Alpha Notes: first"}, embedder.Texts())
}

func TestIngest_EmbeddingErrorIsLogged(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, errors.New("embedder error")
	}
	p, docRepo := setupTestPipeline(t, embedder)
	ctx := context.Background()

	_, err := p.Ingest(ctx, &core.Document{NodeID: "alpha", Text: "Alpha"})
	require.NoError(t, err)
	p.Wait()

	count, err := docRepo.CountWithEmbeddings(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	missing, err := docRepo.FindWithoutEmbeddings(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, missing, 1)
}

func TestIngest_RejectsDuplicates(t *testing.T) {
	p, _ := setupTestPipeline(t, mock.NewMockEmbedder())
	ctx := context.Background()

	_, err := p.Ingest(ctx, &core.Document{NodeID: "alpha", Text: "Alpha"})
	require.NoError(t, err)

	_, err = p.Ingest(ctx, &core.Document{NodeID: "alpha", Text: "Again"})
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestIngest_Empty(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	p, _ := setupTestPipeline(t, embedder)

	added, err := p.Ingest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, added)
	p.Wait()
	assert.Zero(t, embedder.CallCount())
}

func TestIngestRecords(t *testing.T) {
	embedder := mock.NewMockEmbedderWithDimension(4)
	p, docRepo := setupTestPipeline(t, embedder)
	ctx := context.Background()

	records := []map[string]any{
		{"nodeid": "organs", "text": "Organs", "children": []any{"heart"}},
		{"nodeid": "heart", "text": "Heart", "parentID": map[string]any{"$oid": "organs"}},
		{"text": "record without an id"},
	}

	added, skipped, err := p.IngestRecords(ctx, records)
	require.NoError(t, err)
	assert.Len(t, added, 2)
	assert.Equal(t, 1, skipped)
	p.Wait()

	heart, err := docRepo.GetDocumentByNodeID(ctx, "heart")
	require.NoError(t, err)
	assert.Equal(t, "organs", heart.ParentID)
	assert.Len(t, heart.Vector, 4)

	total, err := docRepo.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
