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

package graph

import (
	"cmp"
	"slices"

	"github.com/poiesic/grag/core"
)

// Hop is a node reached by breadth-first expansion and its distance from the source.
type Hop struct {
	Index    int
	Distance int
}

// SortedNeighbors returns the neighbors of node i ordered by descending
// degree, ties broken by ascending index.
func (x *Index) SortedNeighbors(i int) ([]int, error) {
	if err := x.checkIndex(i); err != nil {
		return nil, err
	}
	neighbors := slices.Clone(x.adjacency[i])
	slices.SortStableFunc(neighbors, func(a, b int) int {
		if c := cmp.Compare(x.Degree(b), x.Degree(a)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return neighbors, nil
}

// DescribeRelations summarizes up to limit neighbors of node i in
// SortedNeighbors order. A negative limit returns every neighbor.
func (x *Index) DescribeRelations(i, limit int) ([]core.NeighborSummary, error) {
	neighbors, err := x.SortedNeighbors(i)
	if err != nil {
		return nil, err
	}
	if limit >= 0 && len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}

	summaries := make([]core.NeighborSummary, 0, len(neighbors))
	for _, n := range neighbors {
		summaries = append(summaries, core.NeighborSummary{
			NodeID:    x.nodes[n].NodeID,
			Relations: x.Relations(i, n),
		})
	}
	return summaries, nil
}

// Neighborhood returns every node within cutoff hops of node i in
// breadth-first order. The source is always first, at distance 0.
func (x *Index) Neighborhood(i, cutoff int) ([]Hop, error) {
	if err := x.checkIndex(i); err != nil {
		return nil, err
	}

	hops := []Hop{{Index: i, Distance: 0}}
	if cutoff <= 0 {
		return hops, nil
	}

	visited := map[int]bool{i: true}
	for head := 0; head < len(hops); head++ {
		current := hops[head]
		if current.Distance >= cutoff {
			continue
		}
		for _, n := range x.adjacency[current.Index] {
			if visited[n] {
				continue
			}
			visited[n] = true
			hops = append(hops, Hop{Index: n, Distance: current.Distance + 1})
		}
	}
	return hops, nil
}

// ShortestPathLengths maps every node within cutoff hops of node i to its hop
// distance. The source always maps to 0, even when cutoff is 0.
func (x *Index) ShortestPathLengths(i, cutoff int) (map[int]int, error) {
	hops, err := x.Neighborhood(i, cutoff)
	if err != nil {
		return nil, err
	}
	lengths := make(map[int]int, len(hops))
	for _, h := range hops {
		lengths[h.Index] = h.Distance
	}
	return lengths, nil
}
