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

package retrieval

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/poiesic/grag/ai"
	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/graph"
	"github.com/poiesic/grag/storage"
)

// refreshKey is the single-flight key shared by every index rebuild.
const refreshKey = "index"

// snapshot is a published index and the time it was built.
type snapshot struct {
	index   *graph.Index
	builtAt time.Time
}

// Retriever answers queries with graph-aware retrieval over a cached index.
type Retriever struct {
	source   storage.DocumentScanner
	embedder ai.Embedder
	config   Config
	logger   *slog.Logger
	now      func() time.Time

	current  atomic.Pointer[snapshot]
	rebuilds singleflight.Group
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithClock sets the time source used for cache expiry.
// Default is time.Now.
func WithClock(now func() time.Time) Option {
	return func(r *Retriever) error {
		if now == nil {
			now = time.Now
		}
		r.now = now
		return nil
	}
}

// NewRetriever creates a new retriever. A nil config uses DefaultConfig.
// The index is built lazily on first use.
func NewRetriever(source storage.DocumentScanner, embedder ai.Embedder, config *Config, opts ...Option) (*Retriever, error) {
	if source == nil {
		return nil, ErrDocumentSourceRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	r := &Retriever{
		source:   source,
		embedder: embedder,
		config:   *config,
		logger:   slog.Default(),
		now:      time.Now,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	r.logger = r.logger.With("component", "retriever")

	return r, nil
}

// Config returns a copy of the retriever's configuration.
func (r *Retriever) Config() Config {
	return r.config
}

// Refresh rebuilds the index if force is set, no index exists, or the cached
// index is older than CacheTTL. Concurrent calls share a single rebuild. The
// rebuild is detached from ctx, so a caller that gives up only stops waiting;
// the build still completes for everyone else.
func (r *Retriever) Refresh(ctx context.Context, force bool) error {
	if !force && !r.stale(r.current.Load()) {
		return nil
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	buildCtx := context.WithoutCancel(ctx)
	done := r.rebuilds.DoChan(refreshKey, func() (any, error) {
		// Another caller may have published while we waited to enter.
		if !force && !r.stale(r.current.Load()) {
			return nil, nil
		}
		if r.config.DebugLogging {
			r.logger.Debug("rebuilding graph index", "force", force)
		}

		index, err := graph.Build(buildCtx, r.source, r.logger)
		if err != nil {
			r.logger.Error("error building graph index", "err", err)
			return nil, err
		}
		r.current.Store(&snapshot{index: index, builtAt: r.now()})
		return nil, nil
	})

	select {
	case res := <-done:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Retriever) stale(s *snapshot) bool {
	if s == nil {
		return true
	}
	if r.config.CacheTTL <= 0 {
		return false
	}
	return r.now().Sub(s.builtAt) >= r.config.CacheTTL
}

func (r *Retriever) ensureIndex(ctx context.Context) (*snapshot, error) {
	if err := r.Refresh(ctx, false); err != nil {
		return nil, err
	}
	return r.current.Load(), nil
}

// Index returns the current index, building it first if necessary.
func (r *Retriever) Index(ctx context.Context) (*graph.Index, error) {
	s, err := r.ensureIndex(ctx)
	if err != nil {
		return nil, err
	}
	return s.index, nil
}

// IndexStats reports node count, edge count, embedding dimension and the
// time the current index was built.
func (r *Retriever) IndexStats(ctx context.Context) (core.IndexStats, error) {
	s, err := r.ensureIndex(ctx)
	if err != nil {
		return core.IndexStats{}, err
	}
	stats := s.index.Stats()
	stats.LastBuiltAt = s.builtAt
	return stats, nil
}

// Retrieve returns up to topK results for query with a score of at least threshold.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int, threshold float64) ([]*core.SearchResult, error) {
	return r.RetrieveWithMonitor(ctx, query, topK, threshold, nil)
}

// RetrieveWithMonitor is Retrieve with a monitor receiving a callback at each stage.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, topK int, threshold float64, monitor Monitor) ([]*core.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must be a non-empty string", core.ErrInvalidArgument)
	}
	if topK < 1 {
		return nil, fmt.Errorf("%w: top_k must be positive, got %d", core.ErrInvalidArgument, topK)
	}

	if monitor == nil {
		if r.config.DebugLogging {
			monitor = &logMonitor{logger: r.logger}
		} else {
			monitor = &noopMonitor{}
		}
	}
	monitor.Start(query)

	s, err := r.ensureIndex(ctx)
	if err != nil {
		return nil, err
	}
	index := s.index
	if index.Len() == 0 {
		monitor.Finish(nil)
		return []*core.SearchResult{}, nil
	}

	queryVector, err := r.embedQuery(ctx, query, index.Dimension())
	if err != nil {
		r.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	sims := index.Similarities(queryVector)
	seeds := rankByScore(allIndices(index.Len()), sims)[:r.config.seedCount(topK, index.Len())]
	monitor.AfterSeedSelection(seeds, sims)

	scores, contexts, candidates, err := r.expandSeeds(index, seeds, sims, queryVector, monitor)
	if err != nil {
		return nil, err
	}

	candidates = rankByScore(candidates, scores)
	candidates = candidates[:min(len(candidates), r.config.candidateLimit(topK, index.Len()))]
	monitor.AfterCandidateSelection(candidates, scores)

	results := make([]*core.SearchResult, 0, min(topK, len(candidates)))
	for _, i := range candidates {
		if scores[i] < threshold {
			continue
		}
		result, err := r.buildResult(index, i, scores[i], sims[i], contexts[i])
		if err != nil {
			return nil, err
		}
		results = append(results, result)
		if len(results) == topK {
			break
		}
	}

	monitor.Finish(results)
	return results, nil
}

// expandSeeds scores every node reached from the seeds. Seeds are visited in
// rank order and a node's provenance only moves to a later seed on a strictly
// higher score.
func (r *Retriever) expandSeeds(index *graph.Index, seeds []int, sims []float64, queryVector []float32, monitor Monitor) ([]float64, []*core.GraphContext, []int, error) {
	n := index.Len()
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = -1
	}
	contexts := make([]*core.GraphContext, n)
	touched := make([]bool, n)
	var candidates []int

	for _, seed := range seeds {
		neighborhood, err := index.Neighborhood(seed, r.config.Hops)
		if err != nil {
			return nil, nil, nil, err
		}
		members := make([]int, len(neighborhood))
		for k, hop := range neighborhood {
			members[k] = hop.Index
		}
		subgraphScore := graph.Clamp(graph.Dot(index.SubgraphEmbedding(members), queryVector))
		monitor.AfterExpansion(seed, neighborhood, subgraphScore)

		seedNode, err := index.Node(seed)
		if err != nil {
			return nil, nil, nil, err
		}
		for _, hop := range neighborhood {
			i := hop.Index
			if !touched[i] {
				touched[i] = true
				candidates = append(candidates, i)
			}
			combined := r.config.combinedScore(sims[i], subgraphScore, hop.Distance)
			if combined > scores[i] {
				scores[i] = combined
				contexts[i] = &core.GraphContext{
					SeedNode:        seedNode.NodeID,
					HopDistance:     hop.Distance,
					SubgraphScore:   float32(subgraphScore),
					LocalSimilarity: float32(sims[i]),
				}
			}
		}
	}

	// A node never scores below its bare similarity.
	for _, i := range candidates {
		if scores[i] < sims[i] {
			scores[i] = sims[i]
		}
	}

	if len(candidates) == 0 {
		candidates = slices.Clone(seeds)
		for _, i := range candidates {
			scores[i] = sims[i]
		}
	}
	return scores, contexts, candidates, nil
}

func (r *Retriever) buildResult(index *graph.Index, i int, score, similarity float64, graphContext *core.GraphContext) (*core.SearchResult, error) {
	node, err := index.Node(i)
	if err != nil {
		return nil, err
	}

	var gc core.GraphContext
	if graphContext != nil {
		gc = *graphContext
	} else {
		gc = core.GraphContext{
			SeedNode:        node.NodeID,
			SubgraphScore:   float32(similarity),
			LocalSimilarity: float32(similarity),
		}
	}
	if r.config.MaxContextNeighbors > 0 {
		neighbors, err := index.DescribeRelations(i, r.config.MaxContextNeighbors)
		if err != nil {
			return nil, err
		}
		gc.Neighbors = neighbors
	}

	return &core.SearchResult{
		NodeID:       node.NodeID,
		Id:           node.Id,
		Text:         node.Text,
		RichText:     node.RichText,
		Notes:        node.Notes,
		Links:        slices.Clone(node.Links),
		Attributes:   slices.Clone(node.Attributes),
		Score:        float32(score),
		GraphContext: gc,
	}, nil
}

// embedQuery embeds and normalizes the query, checking it against the index dimension.
func (r *Retriever) embedQuery(ctx context.Context, query string, dim int) ([]float32, error) {
	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: embedder returned no vector", ErrEmbeddingFailed)
	}
	if err := core.ValidateVector(vector); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	if len(vector) != dim {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d", ErrDimensionMismatch, len(vector), dim)
	}
	return graph.Normalize(vector), nil
}

func allIndices(n int) []int {
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// rankByScore sorts indices by descending score, ties broken by ascending index.
func rankByScore(indices []int, scores []float64) []int {
	slices.SortFunc(indices, func(a, b int) int {
		if c := cmp.Compare(scores[b], scores[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return indices
}
