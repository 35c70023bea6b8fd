// Package ingestion provides pipeline orchestration for loading documents.
//
// The Pipeline type manages the ingestion workflow for documents, including:
//   - Converting exported records into documents
//   - Adding documents to storage
//   - Generating embeddings asynchronously for documents that arrive without one
//
// Embedding runs on a worker pool. Errors during async processing are logged
// but do not fail the ingestion operation; documents left without an
// embedding can be picked up later by the reembed job.
package ingestion
