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

// Package ai provides the embedding abstraction used by grag.
//
// The retrieval engine treats embedding generation as an opaque function from
// text to a fixed-dimension vector. This package defines that contract and the
// wrappers composed around production embedders.
//
// # Interfaces and wrappers
//
//   - Embedder: generates vector embeddings from text
//   - EmbedderFunc: adapts a plain function to Embedder
//   - ChunkingEmbedder: splits texts over the word budget and averages chunk vectors
//   - BreakerEmbedder: fails fast while the embedding service is unhealthy
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//   - ai/mock: test doubles for unit testing without external dependencies
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithEmbeddingModel("embeddinggemma"))
//	embedder, err := openai.NewResilientEmbedder(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	vector, err := embedder.EmbedText(ctx, "Hello world")
package ai
