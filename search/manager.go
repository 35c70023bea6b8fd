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

package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/grag/ai"
	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/retrieval"
	"github.com/poiesic/grag/storage"
)

// similarThreshold admits every candidate in find-similar lookups.
const similarThreshold = -1.0

// Manager provides graph-aware search over a document repository.
type Manager struct {
	documents   storage.DocumentRepository
	retriever   *retrieval.Retriever
	embedder    ai.Embedder
	model       string
	concurrency int
	logger      *slog.Logger
}

// BatchResult holds the outcome of one query in a batch.
// Err is set when the query failed; Results is then empty.
type BatchResult struct {
	Query   string               `json:"query" yaml:"query"`
	Results []*core.SearchResult `json:"results" yaml:"results"`
	Err     error                `json:"-" yaml:"-"`
}

// Option configures a Manager.
type Option func(*Manager) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// WithConcurrency sets how many batch queries run at once.
// Default is runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(m *Manager) error {
		if n < 1 {
			return ErrInvalidConcurrency
		}
		m.concurrency = n
		return nil
	}
}

// WithEmbeddingModel sets the model name reported by Stats.
func WithEmbeddingModel(model string) Option {
	return func(m *Manager) error {
		m.model = model
		return nil
	}
}

// NewManager creates a new search manager.
func NewManager(
	documents storage.DocumentRepository,
	retriever *retrieval.Retriever,
	embedder ai.Embedder,
	opts ...Option,
) (*Manager, error) {
	if documents == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	m := &Manager{
		documents:   documents,
		retriever:   retriever,
		embedder:    embedder,
		concurrency: runtime.NumCPU(),
		logger:      slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	m.logger = m.logger.With("component", "search")

	return m, nil
}

// Search returns up to topK graph-aware results scoring at least threshold.
func (m *Manager) Search(ctx context.Context, query string, topK int, threshold float64) ([]*core.SearchResult, error) {
	results, err := m.retriever.Retrieve(ctx, query, topK, threshold)
	if err != nil {
		m.logger.Error("search failed", "query", query, "err", err)
		return nil, err
	}
	return results, nil
}

// BatchSearch runs every query independently on a worker pool. A failed
// query is logged and yields an empty result list; it never fails the batch.
// Results are returned in query order.
func (m *Manager) BatchSearch(ctx context.Context, queries []string, topK int, threshold float64) ([]BatchResult, error) {
	results := make([]BatchResult, len(queries))
	if len(queries) == 0 {
		return results, nil
	}

	pool, err := ants.NewPool(min(m.concurrency, len(queries)))
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, query := range queries {
		results[i].Query = query
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			m.logger.Debug("processing batch query", "index", i+1, "total", len(queries))
			found, err := m.retriever.Retrieve(ctx, query, topK, threshold)
			if err != nil {
				m.logger.Error("failed to process batch query", "query", query, "err", err)
				results[i].Results = []*core.SearchResult{}
				results[i].Err = err
				return
			}
			results[i].Results = found
		})
		if submitErr != nil {
			wg.Done()
			m.logger.Error("failed to submit batch query", "query", query, "err", submitErr)
			results[i].Results = []*core.SearchResult{}
			results[i].Err = submitErr
		}
	}
	wg.Wait()

	return results, nil
}

// FindSimilar returns up to topK documents resembling the document with the
// given node id, using its text fields as the query. A missing node or one
// without text yields an empty list.
func (m *Manager) FindSimilar(ctx context.Context, nodeID string, topK int, excludeSelf bool) ([]*core.SearchResult, error) {
	doc, err := m.documents.GetDocumentByNodeID(ctx, nodeID)
	if errors.Is(err, storage.ErrNotFound) {
		m.logger.Warn("node not found", "nodeid", nodeID)
		return []*core.SearchResult{}, nil
	}
	if err != nil {
		return nil, err
	}

	query := doc.QueryText()
	if query == "" {
		m.logger.Warn("node has no textual content for similarity search", "nodeid", nodeID)
		return []*core.SearchResult{}, nil
	}

	limit := topK
	if excludeSelf {
		limit++
	}
	raw, err := m.Search(ctx, query, limit, similarThreshold)
	if err != nil {
		return nil, err
	}

	filtered := make([]*core.SearchResult, 0, len(raw))
	for _, result := range raw {
		if excludeSelf && result.NodeID == doc.NodeID {
			continue
		}
		filtered = append(filtered, result)
	}
	if len(filtered) > topK {
		filtered = filtered[:topK]
	}
	return filtered, nil
}

// FlatSearch ranks stored documents by plain cosine similarity, without
// graph context. It bypasses the index and scans the store.
func (m *Manager) FlatSearch(ctx context.Context, query string, topK int, threshold float64) ([]*core.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must be a non-empty string", core.ErrInvalidArgument)
	}
	vector, err := m.embedder.EmbedText(ctx, query)
	if err != nil {
		m.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	matches, err := m.documents.FindSimilar(ctx, vector, float32(threshold), topK)
	if err != nil {
		m.logger.Error("error querying for similar documents", "err", err)
		return nil, err
	}

	results := make([]*core.SearchResult, 0, len(matches))
	for _, match := range matches {
		doc := match.Document
		results = append(results, &core.SearchResult{
			NodeID:     doc.DisplayNodeID(),
			Id:         doc.Id,
			Text:       doc.Text,
			RichText:   doc.RichText,
			Notes:      doc.Notes,
			Links:      doc.Links,
			Attributes: doc.Attributes,
			Score:      match.Score,
			GraphContext: core.GraphContext{
				SeedNode:        doc.DisplayNodeID(),
				SubgraphScore:   match.Score,
				LocalSimilarity: match.Score,
			},
		})
	}
	return results, nil
}

// Stats merges document store counts with the current index statistics.
func (m *Manager) Stats(ctx context.Context) (core.SearchStats, error) {
	total, err := m.documents.CountDocuments(ctx)
	if err != nil {
		return core.SearchStats{}, err
	}
	index, err := m.retriever.IndexStats(ctx)
	if err != nil {
		return core.SearchStats{}, err
	}

	stats := core.SearchStats{
		TotalDocuments:     total,
		IndexedDocuments:   index.Nodes,
		UnindexedDocuments: max(total-index.Nodes, 0),
		EmbeddingModel:     m.model,
		IndexedEdges:       index.Edges,
		EmbeddingDim:       index.EmbeddingDim,
		LastBuiltAt:        index.LastBuiltAt,
	}
	m.logger.Info("search stats",
		"total", stats.TotalDocuments,
		"indexed", stats.IndexedDocuments,
		"unindexed", stats.UnindexedDocuments,
		"edges", stats.IndexedEdges)
	return stats, nil
}

// RefreshIndex rebuilds the graph index. Without force the cached index is
// kept while it is fresh.
func (m *Manager) RefreshIndex(ctx context.Context, force bool) error {
	return m.retriever.Refresh(ctx, force)
}

// Close is a no-op; repositories are owned by the caller.
func (m *Manager) Close() error {
	return nil
}
