// Copyright 2025 the rag-recipe-finder authors
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


package recipefinder

import (
	"io"
	"log/slog"

	"github.com/dswho2/rag-recipe-finder/ai"
	"github.com/dswho2/rag-recipe-finder/ai/openai"
	"github.com/dswho2/rag-recipe-finder/ingestion"
	"github.com/dswho2/rag-recipe-finder/reconcile"
	"github.com/dswho2/rag-recipe-finder/search"
	"github.com/dswho2/rag-recipe-finder/storage"
	"github.com/dswho2/rag-recipe-finder/storage/badger"
)

// Database is the top-level façade: it owns the Badger backend, the two
// store adapters, and the AI provider, and hands out coordinators,
// rankers, and sweepers built on them.
type Database struct {
	backend  *badger.Backend
	store    storage.RecipeStore
	index    storage.VectorIndex
	provider ai.AIProvider
	logger   *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
}

// WithAIConfig overrides the AI provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider injects a pre-built AI provider (used in tests).
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// NewDatabase opens (or creates) a recipe database at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	return newDatabase(filePath, false, opts...)
}

// NewMemoryDatabase creates an in-memory database for testing.
func NewMemoryDatabase(opts ...DatabaseOption) (*Database, error) {
	return newDatabase("", true, opts...)
}

func newDatabase(filePath string, inMemory bool, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			return nil, err
		}
	}

	backend, err := badger.OpenBackend(filePath, inMemory)
	if err != nil {
		provider.Close()
		return nil, err
	}

	store := badger.NewRecipeStoreWithBackend(backend)
	index := badger.NewVectorIndexWithBackend(backend, provider.Embedder())

	return &Database{
		backend:  backend,
		store:    store,
		index:    index,
		provider: provider,
		logger:   slog.Default(),
	}, nil
}

// Close releases the AI provider and the backing database.
func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// RecipeStore returns the record store adapter.
func (db *Database) RecipeStore() storage.RecipeStore {
	return db.store
}

// VectorIndex returns the similarity index adapter.
func (db *Database) VectorIndex() storage.VectorIndex {
	return db.index
}

// NewCoordinator builds an ingestion coordinator over this database.
func (db *Database) NewCoordinator(opts ...ingestion.Option) (*ingestion.Coordinator, error) {
	return ingestion.NewCoordinator(db.store, db.index, opts...)
}

// NewRanker builds a search ranker over this database, wired to the
// provider's recipe suggester.
func (db *Database) NewRanker(opts ...search.Option) (*search.Ranker, error) {
	opts = append([]search.Option{search.WithSuggester(db.provider.RecipeSuggester())}, opts...)
	return search.NewRanker(db.index, opts...)
}

// NewSweeper builds a reconciliation sweeper over this database.
func (db *Database) NewSweeper(config *reconcile.Config, progress io.Writer) (*reconcile.Sweeper, error) {
	return reconcile.NewSweeper(db.store, db.index, config, progress)
}
