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

// Package search is the caller-facing facade over graph-aware retrieval.
//
// The Manager type wraps a retrieval.Retriever and adds:
//   - Batch search with per-query failure isolation
//   - Find-similar lookups seeded by an existing document
//   - Combined document store and index statistics
//   - Flat cosine search over the store, kept as a baseline
//   - Recording of batch runs as answers per embedding model
package search
