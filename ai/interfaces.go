package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// RecipeSuggester generates a recipe suggestion in prose from a list of
// available ingredients, optionally grounded on the titles of similar
// stored recipes. Implementations must be thread-safe for concurrent use.
type RecipeSuggester interface {
	// SuggestRecipe produces a short recipe suggestion for the given
	// ingredients. similarTitles, when non-empty, are titles of recipes
	// already known to be close matches and are offered to the model as
	// inspiration. Returns an error if generation fails.
	SuggestRecipe(ctx context.Context, ingredients []string, similarTitles []string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and RecipeSuggester instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// RecipeSuggester returns the recipe suggestion service.
	// The returned RecipeSuggester is safe for concurrent use.
	RecipeSuggester() RecipeSuggester

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
