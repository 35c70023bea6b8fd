// Package reembed regenerates embeddings for stored documents, typically
// after switching embedding models or after a bulk import without vectors.
//
// Documents are streamed in ID order in fixed-size batches, embedded with
// retry and exponential backoff, normalized to unit length and written back.
// Batches are processed by a bounded number of workers, and progress is
// reported to an io.Writer.
package reembed
