package storage

import (
	"context"

	"github.com/dswho2/rag-recipe-finder/core"
)

// RecipeStore provides durable persistence of full recipe documents,
// keyed by identifier with a secondary lookup by content fingerprint.
// Implementations must be thread-safe and support concurrent access.
type RecipeStore interface {
	// PutRecipe stores a recipe, overwriting any existing document with
	// the same ID and updating the fingerprint index.
	PutRecipe(ctx context.Context, recipe *core.Recipe) error

	// GetRecipe retrieves a recipe by ID.
	// Returns ErrNotFound if no recipe with that ID exists.
	GetRecipe(ctx context.Context, id string) (*core.Recipe, error)

	// DeleteRecipe removes a recipe and its fingerprint index entry.
	// Returns false without error when the recipe does not exist.
	DeleteRecipe(ctx context.Context, id string) (bool, error)

	// FindByFingerprint looks up a recipe by its content fingerprint.
	// Returns ErrNotFound when no recipe has that fingerprint.
	FindByFingerprint(ctx context.Context, fingerprint string) (*core.Recipe, error)

	// BulkPutRecipes stores multiple recipes. Items that could not be
	// written are returned as the unprocessed subset for the caller to
	// retry; the error is the last write failure observed, or nil when
	// everything was stored.
	BulkPutRecipes(ctx context.Context, recipes []*core.Recipe) ([]*core.Recipe, error)

	// ForEachRecipe iterates over every stored recipe. Iteration stops
	// on the first error returned by fn.
	ForEachRecipe(ctx context.Context, fn func(*core.Recipe) error) error

	// Close closes the store and releases resources.
	Close() error
}

// VectorIndex stores a text embedding plus a small metadata payload per
// recipe and answers nearest-neighbor queries. Callers hand over text,
// never vectors; embedding happens behind this interface.
// Implementations must be thread-safe.
type VectorIndex interface {
	// Upsert embeds text and stores the vector and metadata under id,
	// replacing any existing entry.
	Upsert(ctx context.Context, id, text string, metadata core.IndexMetadata) error

	// BulkUpsert embeds and stores multiple entries. The three slices
	// must have equal length.
	BulkUpsert(ctx context.Context, ids, texts []string, metadatas []core.IndexMetadata) error

	// Delete removes index entries. Missing ids are ignored.
	Delete(ctx context.Context, ids ...string) error

	// Contains reports whether an entry exists for id.
	Contains(ctx context.Context, id string) (bool, error)

	// QuerySimilar embeds text and returns up to k nearest entries,
	// ordered by similarity score descending.
	QuerySimilar(ctx context.Context, text string, k int) ([]core.SimilarityMatch, error)

	// Close closes the index and releases resources.
	Close() error
}
