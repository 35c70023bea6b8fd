package reembed

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/grag/ai/mock"
	"github.com/poiesic/grag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		BatchSize:      3,
		ReportInterval: 3,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
		Workers:        1,
	}
}

func allDocuments(t *testing.T, repo interface {
	ForEachDocument(context.Context, func(*core.Document) error) error
}) []*core.Document {
	t.Helper()
	var docs []*core.Document
	require.NoError(t, repo.ForEachDocument(context.Background(), func(doc *core.Document) error {
		docs = append(docs, doc)
		return nil
	}))
	return docs
}

func TestReembedder_Run(t *testing.T) {
	repo := setupTestDB(t)
	seedDocuments(t, repo, 10)

	var buf bytes.Buffer
	reembedder, err := NewReembedder(repo, unnormalizedEmbedder(), testConfig(), &buf)
	require.NoError(t, err)

	summary, err := reembedder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Total)
	assert.Equal(t, 10, summary.Embedded)
	assert.Zero(t, summary.Skipped)

	for _, doc := range allDocuments(t, repo) {
		require.NotEmpty(t, doc.Vector, "document %s should have embedding", doc.NodeID)
		assert.InDelta(t, 1.0, magnitude(doc.Vector), 1e-5)
	}

	output := buf.String()
	assert.Contains(t, output, "Starting reembedding of 10 documents (batch size: 3, workers: 1)")
	assert.Contains(t, output, "10/10 documents")
	assert.Contains(t, output, "Reembedding complete. Embedded 10 of 10 documents")
}

func TestReembedder_ConcurrentWorkers(t *testing.T) {
	repo := setupTestDB(t)
	seedDocuments(t, repo, 25)

	var inFlight, peak atomic.Int32
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(_ context.Context, texts []string) ([][]float32, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if n <= old || peak.CompareAndSwap(old, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)

		out := make([][]float32, len(texts))
		for i := range out {
			out[i] = mock.GenerateDeterministicVector(texts[i], 8)
		}
		return out, nil
	}

	config := testConfig()
	config.Workers = 3
	reembedder, err := NewReembedder(repo, embedder, config, nil)
	require.NoError(t, err)

	summary, err := reembedder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 25, summary.Embedded)
	assert.LessOrEqual(t, peak.Load(), int32(3), "no more batches than workers should run at once")

	for _, doc := range allDocuments(t, repo) {
		assert.Len(t, doc.Vector, 8)
	}
}

func TestReembedder_MissingOnly(t *testing.T) {
	repo := setupTestDB(t)
	seedDocuments(t, repo, 6, 0, 1, 2)

	embedder := unnormalizedEmbedder()
	config := testConfig()
	config.MissingOnly = true

	var buf bytes.Buffer
	reembedder, err := NewReembedder(repo, embedder, config, &buf)
	require.NoError(t, err)

	summary, err := reembedder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Embedded)
	assert.Len(t, embedder.Texts(), 3)

	for _, doc := range allDocuments(t, repo) {
		switch doc.NodeID {
		case "doc-0", "doc-1", "doc-2":
			assert.Equal(t, []float32{0, 0, 1}, doc.Vector, "existing vectors should be kept")
		default:
			assert.InDelta(t, 1.0/3.0, doc.Vector[0], 1e-6)
		}
	}
}

func TestReembedder_CountsSkippedDocuments(t *testing.T) {
	repo := setupTestDB(t)
	_, err := repo.AddDocuments(context.Background(),
		&core.Document{NodeID: "blank"},
		&core.Document{NodeID: "full", Text: "content"},
	)
	require.NoError(t, err)

	reembedder, err := NewReembedder(repo, unnormalizedEmbedder(), testConfig(), nil)
	require.NoError(t, err)

	summary, err := reembedder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Embedded)
	assert.Equal(t, 1, summary.Skipped)
}

func TestReembedder_EmptyRepository(t *testing.T) {
	repo := setupTestDB(t)
	embedder := unnormalizedEmbedder()

	var buf bytes.Buffer
	reembedder, err := NewReembedder(repo, embedder, nil, &buf)
	require.NoError(t, err)

	summary, err := reembedder.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.Zero(t, embedder.CallCount())
	assert.Contains(t, buf.String(), "No documents to reembed")
}

func TestReembedder_BatchFailure(t *testing.T) {
	repo := setupTestDB(t)
	seedDocuments(t, repo, 9)

	failure := errors.New("embedding service down")
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, failure
	}

	config := testConfig()
	config.MaxRetries = 1
	reembedder, err := NewReembedder(repo, embedder, config, nil)
	require.NoError(t, err)

	summary, err := reembedder.Run(context.Background())
	assert.ErrorIs(t, err, failure)
	assert.Nil(t, summary)
	assert.Contains(t, err.Error(), "doc-0")
}

func TestReembedder_ContextCanceled(t *testing.T) {
	repo := setupTestDB(t)
	seedDocuments(t, repo, 9)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reembedder, err := NewReembedder(repo, unnormalizedEmbedder(), testConfig(), nil)
	require.NoError(t, err)

	_, err = reembedder.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }},
		{"zero workers", func(c *Config) { c.Workers = 0 }},
		{"negative delay", func(c *Config) { c.RetryDelay = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			assert.ErrorIs(t, config.Validate(), ErrInvalidConfig)

			_, err := NewReembedder(nil, nil, config, nil)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
