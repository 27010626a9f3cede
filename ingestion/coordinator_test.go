package ingestion

import (
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

// spyIndex implements storage.VectorIndex for testing. It records calls
// and can be configured to fail writes.
type spyIndex struct {
	mu          sync.Mutex
	failUpsert  bool
	failBulk    bool
	upserts     int
	bulkUpserts int
	entries     map[string]core.IndexMetadata
}

func newSpyIndex() *spyIndex {
	return &spyIndex{entries: make(map[string]core.IndexMetadata)}
}

func (s *spyIndex) Upsert(ctx context.Context, id, text string, metadata core.IndexMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	if s.failUpsert {
		return errors.New("index unavailable")
	}
	s.entries[id] = metadata
	return nil
}

func (s *spyIndex) BulkUpsert(ctx context.Context, ids, texts []string, metadatas []core.IndexMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bulkUpserts++
	if s.failBulk {
		return errors.New("index unavailable")
	}
	for i, id := range ids {
		s.entries[id] = metadatas[i]
	}
	return nil
}

func (s *spyIndex) Delete(ctx context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.entries, id)
	}
	return nil
}

func (s *spyIndex) Contains(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok, nil
}

func (s *spyIndex) QuerySimilar(ctx context.Context, text string, k int) ([]core.SimilarityMatch, error) {
	return nil, nil
}

func (s *spyIndex) Close() error { return nil }

func (s *spyIndex) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.upserts + s.bulkUpserts
}

// failingStore wraps a real store and fails every single-item write.
type failingStore struct {
	storage.RecipeStore
}

func (s *failingStore) PutRecipe(ctx context.Context, recipe *core.Recipe) error {
	return errors.New("store down")
}

func newRawRecipe(id, title string) *core.RawRecipe {
	return &core.RawRecipe{
		ID:           id,
		Title:        title,
		Ingredients:  []string{"2 cups flour", "1 egg"},
		Instructions: []string{"Mix.", "Bake."},
	}
}

func newTestCoordinator(t *testing.T, store storage.RecipeStore, index storage.VectorIndex) *Coordinator {
	t.Helper()
	coordinator, err := NewCoordinator(store, index,
		WithRetryPolicy(3, time.Millisecond, 4*time.Millisecond))
	require.NoError(t, err)
	t.Cleanup(coordinator.Release)
	return coordinator
}

func TestIngestStoresRecipe(t *testing.T) {
	store, index, backend, err := badger.NewMemoryStores(mock.NewMockEmbedder())
	require.NoError(t, err)
	defer backend.Close()

	coordinator := newTestCoordinator(t, store, index)
	ctx := context.Background()

	outcome := coordinator.Ingest(ctx, newRawRecipe("123", "Pancakes"), "allrecipes")
	require.Equal(t, StatusStored, outcome.Status)
	assert.Equal(t, "web-allrecipes-123", outcome.RecipeID)

	recipe, err := store.GetRecipe(ctx, outcome.RecipeID)
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", recipe.Title)
	assert.Equal(t, "flour", recipe.Ingredients[0].Name)
	assert.Equal(t, 1, recipe.Instructions[0].StepNumber)
	assert.NotEmpty(t, recipe.Fingerprint)

	indexed, err := index.Contains(ctx, outcome.RecipeID)
	require.NoError(t, err)
	assert.True(t, indexed)
}

func TestIngestDuplicateShortCircuits(t *testing.T) {
	store, _, backend, err := badger.NewMemoryStores(mock.NewMockEmbedder())
	require.NoError(t, err)
	defer backend.Close()

	index := newSpyIndex()
	coordinator := newTestCoordinator(t, store, index)
	ctx := context.Background()

	first := coordinator.Ingest(ctx, newRawRecipe("123", "Pancakes"), "allrecipes")
	require.Equal(t, StatusStored, first.Status)

	// Same content under a different source id is still a duplicate.
	second := coordinator.Ingest(ctx, newRawRecipe("999", "Pancakes"), "tasty")
	require.Equal(t, StatusDuplicate, second.Status)
	assert.Equal(t, first.RecipeID, second.DuplicateOf)

	// The duplicate path performs no writes.
	assert.Equal(t, 1, index.writeCount())
}

func TestIngestReingestionIsIdempotent(t *testing.T) {
	store, index, backend, err := badger.NewMemoryStores(mock.NewMockEmbedder())
	require.NoError(t, err)
	defer backend.Close()

	coordinator := newTestCoordinator(t, store, index)
	ctx := context.Background()

	first := coordinator.Ingest(ctx, newRawRecipe("123", "Pancakes"), "allrecipes")
	require.Equal(t, StatusStored, first.Status)
	second := coordinator.Ingest(ctx, newRawRecipe("123", "Pancakes"), "allrecipes")
	require.Equal(t, StatusDuplicate, second.Status)
	assert.Equal(t, first.RecipeID, second.DuplicateOf)
}

func TestIngestValidationFailure(t *testing.T) {
	store, _, backend, err := badger.NewMemoryStores(mock.NewMockEmbedder())
	require.NoError(t, err)
	defer backend.Close()

	index := newSpyIndex()
	coordinator := newTestCoordinator(t, store, index)

	outcome := coordinator.Ingest(context.Background(), &core.RawRecipe{Title: "No ingredients"}, "user")
	require.Equal(t, StatusFailed, outcome.Status)
	assert.ErrorIs(t, outcome.Err, core.ErrInvalidRecipe)
	assert.Equal(t, 0, index.writeCount())
}

func TestIngestCompensatesOnIndexFailure(t *testing.T) {
	store, _, backend, err := badger.NewMemoryStores(mock.NewMockEmbedder())
	require.NoError(t, err)
	defer backend.Close()

	index := newSpyIndex()
	index.failUpsert = true
	coordinator := newTestCoordinator(t, store, index)
	ctx := context.Background()

	outcome := coordinator.Ingest(ctx, newRawRecipe("123", "Pancakes"), "allrecipes")
	require.Equal(t, StatusFailed, outcome.Status)

	// The compensating delete must have removed the stored record.
	_, err = store.GetRecipe(ctx, "web-allrecipes-123")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// And the fingerprint is free again, so a later ingest succeeds.
	index.failUpsert = false
	retry := coordinator.Ingest(ctx, newRawRecipe("123", "Pancakes"), "allrecipes")
	assert.Equal(t, StatusStored, retry.Status)
}

func TestIngestStoreFailureSkipsIndex(t *testing.T) {
	store, _, backend, err := badger.NewMemoryStores(mock.NewMockEmbedder())
	require.NoError(t, err)
	defer backend.Close()

	index := newSpyIndex()
	coordinator := newTestCoordinator(t, &failingStore{RecipeStore: store}, index)

	outcome := coordinator.Ingest(context.Background(), newRawRecipe("123", "Pancakes"), "allrecipes")
	require.Equal(t, StatusFailed, outcome.Status)

	// Nothing was written, so the index is never touched.
	assert.Equal(t, 0, index.writeCount())
}

func TestNewCoordinatorValidation(t *testing.T) {
	store, index, backend, err := badger.NewMemoryStores(mock.NewMockEmbedder())
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewCoordinator(nil, index)
	assert.ErrorIs(t, err, ErrStoreRequired)

	_, err = NewCoordinator(store, nil)
	assert.ErrorIs(t, err, ErrIndexRequired)

	_, err = NewCoordinator(store, index, WithRetryPolicy(0, time.Second, time.Second))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}
