package reconcile

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dswho2/rag-recipe-finder/ai/mock"
	"github.com/dswho2/rag-recipe-finder/core"
	"github.com/dswho2/rag-recipe-finder/storage"
	"github.com/dswho2/rag-recipe-finder/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenIndex wraps a real index and fails Upsert a configurable number
// of times.
type brokenIndex struct {
	storage.VectorIndex
	mu           sync.Mutex
	failuresLeft int
}

func (b *brokenIndex) Upsert(ctx context.Context, id, text string, metadata core.IndexMetadata) error {
	b.mu.Lock()
	fail := b.failuresLeft > 0
	if fail {
		b.failuresLeft--
	}
	b.mu.Unlock()

	if fail {
		return errors.New("index unavailable")
	}
	return b.VectorIndex.Upsert(ctx, id, text, metadata)
}

func fastConfig() *Config {
	return &Config{
		BatchSize:      2,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     time.Millisecond,
	}
}

func storeRecipe(t *testing.T, store storage.RecipeStore, id, title string) *core.Recipe {
	t.Helper()
	recipe := &core.Recipe{
		ID:          id,
		Title:       title,
		Ingredients: []core.Ingredient{{Text: "1 egg", Name: "egg"}},
		Fingerprint: "fp-" + id,
	}
	require.NoError(t, store.PutRecipe(context.Background(), recipe))
	return recipe
}

func TestSweepReindexesOrphans(t *testing.T) {
	store, index, backend, err := badger.NewMemoryStores(mock.NewMockEmbedder())
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	// One record is indexed, one is an orphan.
	indexed := storeRecipe(t, store, "r1", "Indexed")
	require.NoError(t, index.Upsert(ctx, indexed.ID, indexed.SearchText(), indexed.IndexMetadata()))
	orphan := storeRecipe(t, store, "r2", "Orphan")

	var out bytes.Buffer
	sweeper, err := NewSweeper(store, index, fastConfig(), &out)
	require.NoError(t, err)

	report, err := sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, report.Orphaned)
	assert.Equal(t, 1, report.Reindexed)
	assert.Equal(t, 0, report.Pruned)
	assert.Equal(t, 0, report.Failed)

	found, err := index.Contains(ctx, orphan.ID)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSweepPruneMode(t *testing.T) {
	store, index, backend, err := badger.NewMemoryStores(mock.NewMockEmbedder())
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	orphan := storeRecipe(t, store, "r1", "Orphan")

	cfg := fastConfig()
	cfg.Prune = true

	var out bytes.Buffer
	sweeper, err := NewSweeper(store, index, cfg, &out)
	require.NoError(t, err)

	report, err := sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Orphaned)
	assert.Equal(t, 1, report.Pruned)
	assert.Equal(t, 0, report.Reindexed)

	_, err = store.GetRecipe(ctx, orphan.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSweepRetriesTransientIndexFailure(t *testing.T) {
	store, realIndex, backend, err := badger.NewMemoryStores(mock.NewMockEmbedder())
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	orphan := storeRecipe(t, store, "r1", "Orphan")

	index := &brokenIndex{VectorIndex: realIndex, failuresLeft: 2}

	var out bytes.Buffer
	sweeper, err := NewSweeper(store, index, fastConfig(), &out)
	require.NoError(t, err)

	report, err := sweeper.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Reindexed)
	assert.Equal(t, 0, report.Failed)

	found, err := index.Contains(ctx, orphan.ID)
	require.NoError(t, err)
	assert.True(t, found)
}

func TestSweepCountsUnrepairableOrphans(t *testing.T) {
	store, realIndex, backend, err := badger.NewMemoryStores(mock.NewMockEmbedder())
	require.NoError(t, err)
	defer backend.Close()

	storeRecipe(t, store, "r1", "Orphan")

	index := &brokenIndex{VectorIndex: realIndex, failuresLeft: 100}

	var out bytes.Buffer
	sweeper, err := NewSweeper(store, index, fastConfig(), &out)
	require.NoError(t, err)

	report, err := sweeper.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Orphaned)
	assert.Equal(t, 0, report.Reindexed)
	assert.Equal(t, 1, report.Failed)
}

func TestSweepEmptyStore(t *testing.T) {
	store, index, backend, err := badger.NewMemoryStores(mock.NewMockEmbedder())
	require.NoError(t, err)
	defer backend.Close()

	var out bytes.Buffer
	sweeper, err := NewSweeper(store, index, fastConfig(), &out)
	require.NoError(t, err)

	report, err := sweeper.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.Scanned)
	assert.Contains(t, out.String(), "No recipes found")
}

func TestNewSweeperValidation(t *testing.T) {
	store, index, backend, err := badger.NewMemoryStores(mock.NewMockEmbedder())
	require.NoError(t, err)
	defer backend.Close()

	var out bytes.Buffer
	_, err = NewSweeper(nil, index, nil, &out)
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewSweeper(store, nil, nil, &out)
	assert.ErrorIs(t, err, ErrIndexRequired)
}
