// Package retrieval implements graph-aware retrieval over a graph.Index.
//
// A Retriever embeds the query, selects the most similar nodes as seeds,
// expands each seed through the relation graph up to Config.Hops, and fuses
// every reached node's own similarity with the similarity of its seed's
// neighborhood. Scores are max-combined over seeds and floored at the node's
// own similarity, so graph context can raise a node's rank but never lower it.
//
// The Retriever owns the index lifecycle. The index is rebuilt from the
// document source when it is missing, when Config.CacheTTL has elapsed, or
// when a refresh is forced. Concurrent rebuilds collapse into one and the new
// index is published atomically, so readers never see a partial index.
//
// # Usage Example
//
//	cfg, err := retrieval.NewConfig(retrieval.WithHops(1))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	retriever, err := retrieval.NewRetriever(docRepo, embedder, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	results, err := retriever.Retrieve(ctx, "cardiac muscle", 5, 0.0)
package retrieval
