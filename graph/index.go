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
	"fmt"
	"log/slog"

	"github.com/poiesic/grag/core"
)

// Node is the indexed view of a single document.
type Node struct {
	Index       int
	Id          core.ID
	NodeID      string
	SourceID    string
	Text        string
	RichText    string
	Notes       string
	Links       []string
	Attributes  []core.Attribute
	Category    string
	ParentID    string
	ChildrenIDs []string
	LinkedIDs   []string
}

// relationSet is a bitmask of relation labels carried by one edge.
type relationSet uint8

const (
	relHierarchy relationSet = 1 << iota
	relLink
)

func relationFor(label string) relationSet {
	switch label {
	case core.RelationHierarchy:
		return relHierarchy
	case core.RelationLink:
		return relLink
	default:
		return 0
	}
}

// labels returns the relation labels in sorted order.
func (r relationSet) labels() []string {
	labels := make([]string, 0, 2)
	if r&relHierarchy != 0 {
		labels = append(labels, core.RelationHierarchy)
	}
	if r&relLink != 0 {
		labels = append(labels, core.RelationLink)
	}
	return labels
}

// edgeKey identifies an undirected edge with lo < hi.
type edgeKey struct {
	lo, hi int
}

func makeEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

// Index is an immutable graph snapshot over the embedded documents.
type Index struct {
	nodes     []*Node
	vectors   [][]float32
	dim       int
	bySource  map[string]int
	byNodeID  map[string]int
	byStoreID map[core.ID]int
	adjacency [][]int
	relations map[edgeKey]relationSet
	logger    *slog.Logger
}

// Len returns the number of indexed nodes.
func (x *Index) Len() int {
	return len(x.nodes)
}

// EdgeCount returns the number of distinct undirected edges.
func (x *Index) EdgeCount() int {
	return len(x.relations)
}

// Dimension returns the embedding dimensionality, or 0 for an empty index.
func (x *Index) Dimension() int {
	return x.dim
}

// Stats summarizes the index. LastBuiltAt is left zero; the owner of the
// index knows when it was published.
func (x *Index) Stats() core.IndexStats {
	return core.IndexStats{
		Nodes:        x.Len(),
		Edges:        x.EdgeCount(),
		EmbeddingDim: x.dim,
	}
}

// Node returns the node at index i.
func (x *Index) Node(i int) (*Node, error) {
	if err := x.checkIndex(i); err != nil {
		return nil, err
	}
	return x.nodes[i], nil
}

// Vector returns the unit-norm embedding of node i. The slice is shared and
// must not be modified.
func (x *Index) Vector(i int) ([]float32, error) {
	if err := x.checkIndex(i); err != nil {
		return nil, err
	}
	return x.vectors[i], nil
}

// Lookup resolves a reference to a node index. Source ids are tried first,
// then external node ids. Store IDs only resolve from a core.StoreRef, so a
// numeric node id never binds to the document that happens to hold that ID.
func (x *Index) Lookup(ref string) (int, bool) {
	if i, ok := x.bySource[ref]; ok {
		return i, true
	}
	if i, ok := x.byNodeID[ref]; ok {
		return i, true
	}
	if id, ok := core.ParseStoreRef(ref); ok {
		i, ok := x.byStoreID[id]
		return i, ok
	}
	return 0, false
}

// Degree returns the number of neighbors of node i.
func (x *Index) Degree(i int) int {
	if i < 0 || i >= len(x.adjacency) {
		return 0
	}
	return len(x.adjacency[i])
}

// Relations returns the sorted relation labels on the edge between a and b,
// or nil if the nodes are not adjacent.
func (x *Index) Relations(a, b int) []string {
	rel, ok := x.relations[makeEdgeKey(a, b)]
	if !ok {
		return nil
	}
	return rel.labels()
}

func (x *Index) checkIndex(i int) error {
	if i < 0 || i >= len(x.nodes) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(x.nodes))
	}
	return nil
}
