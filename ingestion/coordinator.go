package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/dswho2/rag-recipe-finder/core"
	"github.com/dswho2/rag-recipe-finder/storage"
)

const (
	defaultChunkSize   = 25
	defaultMaxAttempts = 5
	defaultBaseDelay   = 2 * time.Second
	defaultMaxDelay    = 32 * time.Second
)

// Coordinator orchestrates the ingestion of recipes: dedup check,
// normalization, and the dual write across the record store and the
// similarity index, with compensation on partial failure.
type Coordinator struct {
	store       storage.RecipeStore
	index       storage.VectorIndex
	pool        *ants.Pool
	chunkSize   int
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	logger      *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator) error

// WithPoolSize sets the worker pool size for concurrent batch chunk
// processing. Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(c *Coordinator) error {
		if size < 1 {
			size = 1
		}
		if c.pool != nil {
			c.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		c.pool = pool
		return nil
	}
}

// WithChunkSize sets the maximum number of recipes per bulk store write.
// Default is 25.
func WithChunkSize(size int) Option {
	return func(c *Coordinator) error {
		if size < 1 {
			size = 1
		}
		c.chunkSize = size
		return nil
	}
}

// WithRetryPolicy sets the bulk-write retry parameters: maximum attempts,
// base delay, and delay cap. Defaults are 5 attempts, 2s base, 32s cap.
func WithRetryPolicy(maxAttempts int, baseDelay, maxDelay time.Duration) Option {
	return func(c *Coordinator) error {
		if maxAttempts < 1 {
			return ErrInvalidMaxAttempts
		}
		c.maxAttempts = maxAttempts
		c.baseDelay = baseDelay
		c.maxDelay = maxDelay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewCoordinator creates a new ingestion coordinator.
func NewCoordinator(store storage.RecipeStore, index storage.VectorIndex, opts ...Option) (*Coordinator, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	c := &Coordinator{
		store:       store,
		index:       index,
		pool:        pool,
		chunkSize:   defaultChunkSize,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		maxDelay:    defaultMaxDelay,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(c); optErr != nil {
			c.Release()
			return nil, optErr
		}
	}

	return c, nil
}

// Ingest processes a single raw recipe. Each step is a hard checkpoint:
// fingerprint, dedup check, store write, index write. An index write
// failure triggers a compensating delete of the stored record; a failed
// compensation is logged and swallowed, the original failure is what the
// caller sees. Failures come back as outcome values, never panics or
// raised errors.
func (c *Coordinator) Ingest(ctx context.Context, raw *core.RawRecipe, source string) Outcome {
	if err := core.ValidateRawRecipe(raw); err != nil {
		return Failed(err)
	}

	// The raw text is hashed, not the normalized text, so hashing stays
	// independent of normalizer behavior.
	fingerprint := core.Fingerprint(raw.Title, raw.Ingredients, raw.Instructions)

	existing, err := c.store.FindByFingerprint(ctx, fingerprint)
	if err == nil {
		return Duplicate(existing.ID)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return Failed(fmt.Errorf("fingerprint lookup: %w", err))
	}

	recipe := assembleRecipe(raw, source, fingerprint)

	if err := c.store.PutRecipe(ctx, recipe); err != nil {
		// Nothing was written, no compensation needed.
		return Failed(fmt.Errorf("store write: %w", err))
	}

	text, metadata := indexPayload(recipe)
	if err := c.index.Upsert(ctx, recipe.ID, text, metadata); err != nil {
		c.logger.Warn("index write failed, compensating", "recipe", recipe.ID, "err", err)
		if _, delErr := c.store.DeleteRecipe(ctx, recipe.ID); delErr != nil {
			c.logger.Error("compensating delete failed, record orphaned",
				"recipe", recipe.ID, "err", delErr)
		}
		return Failed(fmt.Errorf("index write: %w", err))
	}

	return Stored(recipe.ID)
}

// Release releases the worker pool.
// The coordinator should not be used after calling Release.
func (c *Coordinator) Release() {
	if c.pool != nil {
		c.pool.Release()
	}
}

// assembleRecipe derives the identifier and runs the normalizer over all
// ingredients and steps to build the canonical Recipe.
func assembleRecipe(raw *core.RawRecipe, source, fingerprint string) *core.Recipe {
	ingredients := make([]core.Ingredient, len(raw.Ingredients))
	for i, text := range raw.Ingredients {
		ingredients[i] = core.NormalizeIngredient(text)
	}

	steps := make([]core.RecipeStep, len(raw.Instructions))
	for i, text := range raw.Instructions {
		steps[i] = core.NormalizeStep(text, i+1)
	}

	return &core.Recipe{
		ID:           core.NewRecipeID(source, raw.ID),
		Title:        strings.TrimSpace(raw.Title),
		Description:  strings.TrimSpace(raw.Description),
		Ingredients:  ingredients,
		Instructions: steps,
		CookingTime:  raw.CookingTime,
		PrepTime:     raw.PrepTime,
		Servings:     raw.Servings,
		Cuisine:      strings.ToLower(strings.TrimSpace(raw.Cuisine)),
		Tags:         raw.Tags,
		Source:       source,
		SourceURL:    raw.URL,
		Fingerprint:  fingerprint,
	}
}

// indexPayload prepares the compact search payload: the embedded text is
// title + normalized ingredient names + instruction text, the metadata
// subset is what the ranker filters and scores on.
func indexPayload(recipe *core.Recipe) (string, core.IndexMetadata) {
	return recipe.SearchText(), recipe.IndexMetadata()
}
