package retrieval

import (
	"log/slog"

	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/graph"
)

// Monitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during retrieval.
type Monitor interface {
	Start(query string)
	AfterSeedSelection(seeds []int, similarities []float64)
	AfterExpansion(seed int, neighborhood []graph.Hop, subgraphScore float64)
	AfterCandidateSelection(candidates []int, scores []float64)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                 {}
func (n *noopMonitor) AfterSeedSelection(_ []int, _ []float64)        {}
func (n *noopMonitor) AfterExpansion(_ int, _ []graph.Hop, _ float64) {}
func (n *noopMonitor) AfterCandidateSelection(_ []int, _ []float64)   {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)                  {}

// logMonitor reports each retrieval stage at debug level.
type logMonitor struct {
	logger *slog.Logger
}

var _ Monitor = (*logMonitor)(nil)

func (m *logMonitor) Start(query string) {
	m.logger.Debug("retrieval started", "query", query)
}

func (m *logMonitor) AfterSeedSelection(seeds []int, similarities []float64) {
	top := make([]float64, 0, min(len(seeds), 5))
	for _, s := range seeds[:min(len(seeds), 5)] {
		top = append(top, similarities[s])
	}
	m.logger.Debug("selected seeds", "count", len(seeds), "seeds", seeds, "top_similarities", top)
}

func (m *logMonitor) AfterExpansion(seed int, neighborhood []graph.Hop, subgraphScore float64) {
	m.logger.Debug("expanded seed", "seed", seed, "neighborhood", len(neighborhood), "subgraph_score", subgraphScore)
}

func (m *logMonitor) AfterCandidateSelection(candidates []int, _ []float64) {
	m.logger.Debug("selected candidates", "count", len(candidates))
}

func (m *logMonitor) Finish(results []*core.SearchResult) {
	m.logger.Debug("retrieval finished", "results", len(results))
}
