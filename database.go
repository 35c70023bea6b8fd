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

package grag

import (
	"errors"
	"io"
	"log/slog"

	"github.com/poiesic/grag/ai"
	"github.com/poiesic/grag/ai/openai"
	"github.com/poiesic/grag/ingestion"
	"github.com/poiesic/grag/reembed"
	"github.com/poiesic/grag/retrieval"
	"github.com/poiesic/grag/search"
	"github.com/poiesic/grag/storage"
	"github.com/poiesic/grag/storage/badger"
)

// Database owns the document store and the embedding client and hands out
// the components built on top of them.
type Database struct {
	backend   *badger.Backend
	documents *badger.DocumentRepository
	answers   *badger.AnswerRepository
	embedder  ai.Embedder
	aiConfig  *ai.Config
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	embedder ai.Embedder
	inMemory bool
	logger   *slog.Logger
}

// WithAIConfig sets the embedding service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithEmbedder uses embedder instead of building an OpenAI-compatible client.
func WithEmbedder(embedder ai.Embedder) DatabaseOption {
	return func(o *databaseOptions) {
		o.embedder = embedder
	}
}

// WithInMemory keeps the store in memory; the file path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithDatabaseLogger sets the logger handed to every component.
// Default is slog.Default().
func WithDatabaseLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// NewDatabase opens (or creates) the store at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	if options.aiConfig == nil {
		options.aiConfig = ai.DefaultConfig()
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	documents, err := badger.NewDocumentRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	embedder := options.embedder
	if embedder == nil {
		embedder, err = openai.NewResilientEmbedder(options.aiConfig)
		if err != nil {
			documents.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:   backend,
		documents: documents,
		answers:   badger.NewAnswerRepository(backend),
		embedder:  embedder,
		aiConfig:  options.aiConfig,
		logger:    options.logger,
	}, nil
}

// Close releases the repositories and the backend.
func (db *Database) Close() error {
	var errs []error
	if err := db.documents.Close(); err != nil {
		db.logger.Error("error closing document repository", "err", err)
		errs = append(errs, err)
	}
	if err := db.answers.Close(); err != nil {
		db.logger.Error("error closing answer repository", "err", err)
		errs = append(errs, err)
	}
	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (db *Database) DocumentRepository() storage.DocumentRepository {
	return db.documents
}

func (db *Database) AnswerRepository() storage.AnswerRepository {
	return db.answers
}

func (db *Database) Embedder() ai.Embedder {
	return db.embedder
}

// NewRetriever builds a graph-aware retriever over the stored documents.
// A nil config uses retrieval.DefaultConfig().
func (db *Database) NewRetriever(config *retrieval.Config, opts ...retrieval.Option) (*retrieval.Retriever, error) {
	opts = append([]retrieval.Option{retrieval.WithLogger(db.logger)}, opts...)
	return retrieval.NewRetriever(db.documents, db.embedder, config, opts...)
}

// NewSearchManager builds a retriever and the search facade over it.
func (db *Database) NewSearchManager(config *retrieval.Config, opts ...search.Option) (*search.Manager, error) {
	retriever, err := db.NewRetriever(config)
	if err != nil {
		return nil, err
	}
	opts = append([]search.Option{
		search.WithLogger(db.logger),
		search.WithEmbeddingModel(db.aiConfig.EmbeddingModel),
	}, opts...)
	return search.NewManager(db.documents, retriever, db.embedder, opts...)
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	opts = append([]ingestion.Option{ingestion.WithLogger(db.logger)}, opts...)
	return ingestion.NewPipeline(db.documents, db.embedder, opts...)
}

// NewReembedder builds a batch embedding job writing progress to progress.
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(db.documents, db.embedder, config, progress)
}
