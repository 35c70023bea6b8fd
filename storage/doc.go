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

// Package storage provides the storage abstraction layer for grag.
//
// This package defines repository interfaces that decouple the document store
// from the retrieval engine. The graph index only needs a DocumentScanner, so
// any backend able to stream documents in a stable order can feed it.
//
// # Architecture
//
//   - Repository: transaction and lifecycle operations shared by all repositories
//   - DocumentScanner: ordered streaming of every stored document
//   - DocumentRepository: corpus documents, their embeddings and counts
//   - AnswerRepository: stored retrieval runs keyed by question and model
//
// # Usage
//
// Use in tests with in-memory storage:
//
//	docs, answers, backend, err := badger.NewMemoryRepositories()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer backend.Close()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
//
// # Serialization
//
// Values are stored as JSON documents. IDs used in index values are
// encoded as 8-byte big-endian integers so that key order follows ID order.
package storage
