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
	"fmt"
	"math"
	"time"

	"github.com/poiesic/grag/graph"
)

// Config holds the tunable parameters of graph-aware retrieval.
type Config struct {
	// Hops is the maximum breadth-first expansion depth from each seed.
	// Default: 2
	Hops int

	// SeedTopK is the minimum number of high-similarity seeds expanded per query.
	// Default: 24
	SeedTopK int

	// CandidateMultiplier scales top_k to the number of candidates kept
	// before the threshold filter.
	// Default: 3.0
	CandidateMultiplier float64

	// NodeWeight weights a node's own similarity to the query.
	// Default: 0.6
	NodeWeight float64

	// SubgraphWeight weights the similarity of the seed's neighborhood.
	// Default: 0.4
	SubgraphWeight float64

	// HopDecay attenuates the subgraph signal once per hop from the seed.
	// Default: 0.75
	HopDecay float64

	// CacheTTL is how long a built index is reused before an automatic
	// rebuild. Zero disables time-based rebuilds.
	// Default: 15 minutes
	CacheTTL time.Duration

	// MaxContextNeighbors caps the neighbor summaries attached to each result.
	// Zero omits them.
	// Default: 6
	MaxContextNeighbors int

	// DebugLogging logs seed selection and candidate counts for every query.
	// Default: false
	DebugLogging bool
}

// ConfigOption is a functional option for configuring Config.
type ConfigOption func(*Config)

// WithHops sets the expansion depth.
func WithHops(hops int) ConfigOption {
	return func(c *Config) {
		c.Hops = hops
	}
}

// WithSeedTopK sets the minimum seed count.
func WithSeedTopK(k int) ConfigOption {
	return func(c *Config) {
		c.SeedTopK = k
	}
}

// WithCandidateMultiplier sets the candidate multiplier.
func WithCandidateMultiplier(m float64) ConfigOption {
	return func(c *Config) {
		c.CandidateMultiplier = m
	}
}

// WithWeights sets the node and subgraph weights.
func WithWeights(node, subgraph float64) ConfigOption {
	return func(c *Config) {
		c.NodeWeight = node
		c.SubgraphWeight = subgraph
	}
}

// WithHopDecay sets the per-hop decay.
func WithHopDecay(decay float64) ConfigOption {
	return func(c *Config) {
		c.HopDecay = decay
	}
}

// WithCacheTTL sets the index time-to-live.
func WithCacheTTL(ttl time.Duration) ConfigOption {
	return func(c *Config) {
		c.CacheTTL = ttl
	}
}

// WithMaxContextNeighbors sets the neighbor summary cap.
func WithMaxContextNeighbors(n int) ConfigOption {
	return func(c *Config) {
		c.MaxContextNeighbors = n
	}
}

// WithDebugLogging enables per-query debug logs.
func WithDebugLogging(enabled bool) ConfigOption {
	return func(c *Config) {
		c.DebugLogging = enabled
	}
}

// DefaultConfig returns the default retrieval configuration.
func DefaultConfig() *Config {
	return &Config{
		Hops:                2,
		SeedTopK:            24,
		CandidateMultiplier: 3.0,
		NodeWeight:          0.6,
		SubgraphWeight:      0.4,
		HopDecay:            0.75,
		CacheTTL:            15 * time.Minute,
		MaxContextNeighbors: 6,
	}
}

// NewConfig applies opts over DefaultConfig and validates the result.
func NewConfig(opts ...ConfigOption) (*Config, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every parameter. Invalid values are rejected, never clamped.
func (c *Config) Validate() error {
	if c.Hops < 0 {
		return fmt.Errorf("%w: hops must be non-negative, got %d", ErrInvalidConfig, c.Hops)
	}
	if c.SeedTopK <= 0 {
		return fmt.Errorf("%w: seed_top_k must be positive, got %d", ErrInvalidConfig, c.SeedTopK)
	}
	if !(c.CandidateMultiplier >= 1.0) || math.IsInf(c.CandidateMultiplier, 1) {
		return fmt.Errorf("%w: candidate_multiplier must be >= 1.0, got %v", ErrInvalidConfig, c.CandidateMultiplier)
	}
	if !(c.NodeWeight >= 0 && c.NodeWeight <= 1) {
		return fmt.Errorf("%w: node_weight must be in [0, 1], got %v", ErrInvalidConfig, c.NodeWeight)
	}
	if !(c.SubgraphWeight >= 0 && c.SubgraphWeight <= 1) {
		return fmt.Errorf("%w: subgraph_weight must be in [0, 1], got %v", ErrInvalidConfig, c.SubgraphWeight)
	}
	if c.NodeWeight+c.SubgraphWeight == 0 {
		return fmt.Errorf("%w: node_weight and subgraph_weight cannot both be 0", ErrInvalidConfig)
	}
	if !(c.HopDecay > 0 && c.HopDecay <= 1) {
		return fmt.Errorf("%w: hop_decay must be in (0, 1], got %v", ErrInvalidConfig, c.HopDecay)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: cache_ttl must be non-negative, got %v", ErrInvalidConfig, c.CacheTTL)
	}
	if c.MaxContextNeighbors < 0 {
		return fmt.Errorf("%w: max_context_neighbors must be >= 0, got %d", ErrInvalidConfig, c.MaxContextNeighbors)
	}
	return nil
}

// hopFactor returns the decay applied at the given hop distance.
func (c *Config) hopFactor(hop int) float64 {
	if c.Hops == 0 {
		return 1.0
	}
	return math.Pow(c.HopDecay, float64(hop))
}

// combinedScore fuses a node's similarity with its seed's subgraph score,
// clamped to [-1, 1].
func (c *Config) combinedScore(similarity, subgraphScore float64, hop int) float64 {
	combined := c.NodeWeight*similarity + c.SubgraphWeight*subgraphScore*c.hopFactor(hop)
	return graph.Clamp(combined)
}

// candidateLimit returns how many candidates survive truncation for topK.
func (c *Config) candidateLimit(topK, nodes int) int {
	scaled := int(math.Round(float64(topK) * c.CandidateMultiplier))
	return min(nodes, max(topK, scaled))
}

// seedCount returns how many seeds are expanded for topK.
func (c *Config) seedCount(topK, nodes int) int {
	return min(nodes, max(topK, c.SeedTopK))
}
