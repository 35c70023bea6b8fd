// Package graph builds the immutable graph index used by graph-aware retrieval.
//
// An Index is a snapshot of every document that carries an embedding vector.
// Each indexed document becomes a Node with a dense integer position, its
// vector is normalized to unit length, and its structural references (parent,
// children and cross-links) are resolved into an undirected, simple relation
// graph whose edges carry a set of relation labels.
//
// Indexes are built once by Build or FromDocuments and never mutated
// afterwards, so a single Index can be shared by any number of readers.
// Refreshing means building a new Index and swapping it in.
package graph
