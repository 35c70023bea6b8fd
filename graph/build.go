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
	"context"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/storage"
)

// pendingRelation is a structural reference waiting for every node to load.
type pendingRelation struct {
	src      int
	ref      string
	relation relationSet
}

// builder accumulates nodes in arrival order.
type builder struct {
	index   *Index
	pending []pendingRelation
	skipped int
	logger  *slog.Logger
}

func newBuilder(logger *slog.Logger) *builder {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "graph-index")
	return &builder{
		index: &Index{
			bySource:  make(map[string]int),
			byNodeID:  make(map[string]int),
			byStoreID: make(map[core.ID]int),
			relations: make(map[edgeKey]relationSet),
			logger:    logger,
		},
		logger: logger,
	}
}

// Build scans every document from source and builds an index over the ones
// carrying an embedding. Documents whose vector dimension disagrees with the
// first indexed vector are skipped with a warning.
func Build(ctx context.Context, source storage.DocumentScanner, logger *slog.Logger) (*Index, error) {
	b := newBuilder(logger)
	err := source.ForEachDocument(ctx, func(doc *core.Document) error {
		b.add(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b.finish(), nil
}

// FromDocuments builds an index from an in-memory document list.
func FromDocuments(docs []*core.Document, logger *slog.Logger) *Index {
	b := newBuilder(logger)
	for _, doc := range docs {
		b.add(doc)
	}
	return b.finish()
}

func (b *builder) add(doc *core.Document) {
	if doc == nil || !doc.HasEmbedding() {
		return
	}
	x := b.index
	nodeID := doc.DisplayNodeID()

	if err := core.ValidateVector(doc.Vector); err != nil {
		b.logger.Warn("skipping node with invalid embedding", "nodeid", nodeID, "err", err)
		b.skipped++
		return
	}
	if x.dim == 0 {
		x.dim = len(doc.Vector)
	} else if len(doc.Vector) != x.dim {
		b.logger.Warn("skipping node due to mismatched embedding dimension",
			"nodeid", nodeID, "expected", x.dim, "got", len(doc.Vector))
		b.skipped++
		return
	}

	i := len(x.nodes)
	node := &Node{
		Index:       i,
		Id:          doc.Id,
		NodeID:      nodeID,
		SourceID:    doc.SourceID,
		Text:        strings.TrimSpace(doc.Text),
		RichText:    strings.TrimSpace(doc.RichText),
		Notes:       strings.TrimSpace(doc.Notes),
		Links:       nonEmpty(doc.Links),
		Attributes:  append([]core.Attribute(nil), doc.Attributes...),
		Category:    doc.Category,
		ParentID:    doc.ParentID,
		ChildrenIDs: append([]string(nil), doc.ChildrenIDs...),
		LinkedIDs:   append([]string(nil), doc.LinkedIDs...),
	}
	x.nodes = append(x.nodes, node)
	x.vectors = append(x.vectors, Normalize(doc.Vector))

	if doc.Id != 0 {
		x.byStoreID[doc.Id] = i
	}
	if doc.SourceID != "" {
		if prev, dup := x.bySource[doc.SourceID]; dup {
			b.logger.Warn("duplicate source id, keeping the first node", "source_id", doc.SourceID, "index", prev)
		} else {
			x.bySource[doc.SourceID] = i
		}
	}
	if prev, dup := x.byNodeID[nodeID]; dup {
		b.logger.Warn("duplicate node id, keeping the first node", "nodeid", nodeID, "index", prev)
	} else {
		x.byNodeID[nodeID] = i
	}

	b.queue(i, doc.ParentID, relHierarchy)
	for _, child := range doc.ChildrenIDs {
		b.queue(i, child, relHierarchy)
	}
	for _, linked := range doc.LinkedIDs {
		b.queue(i, linked, relLink)
	}
}

func (b *builder) queue(src int, raw string, relation relationSet) {
	ref, ok := core.NormalizeRef(raw)
	if !ok {
		return
	}
	b.pending = append(b.pending, pendingRelation{src: src, ref: ref, relation: relation})
}

// finish binds the queued relations and returns the completed index.
func (b *builder) finish() *Index {
	x := b.index
	if len(x.nodes) == 0 {
		b.logger.Warn("graph index built with zero nodes, retrieval will return empty results",
			"skipped", b.skipped)
		return x
	}

	x.adjacency = make([][]int, len(x.nodes))
	dropped := 0
	for _, rel := range b.pending {
		dst, ok := x.Lookup(rel.ref)
		if !ok || dst == rel.src {
			dropped++
			continue
		}
		key := makeEdgeKey(rel.src, dst)
		existing, seen := x.relations[key]
		x.relations[key] = existing | rel.relation
		if !seen {
			x.adjacency[key.lo] = append(x.adjacency[key.lo], key.hi)
			x.adjacency[key.hi] = append(x.adjacency[key.hi], key.lo)
		}
	}
	for i := range x.adjacency {
		slices.Sort(x.adjacency[i])
	}

	b.logger.Info("built graph index",
		"nodes", x.Len(),
		"edges", x.EdgeCount(),
		"embedding_dim", x.dim,
		"skipped", b.skipped,
		"unresolved_relations", dropped)
	return x
}

func nonEmpty(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
