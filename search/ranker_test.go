package search

import (
	"context"
	"errors"
	"testing"

	"github.com/dswho2/rag-recipe-finder/ai/mock"
	"github.com/dswho2/rag-recipe-finder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex implements storage.VectorIndex with canned query results.
type fakeIndex struct {
	matches  []core.SimilarityMatch
	err      error
	lastText string
	lastK    int
}

func (f *fakeIndex) Upsert(ctx context.Context, id, text string, metadata core.IndexMetadata) error {
	return nil
}

func (f *fakeIndex) BulkUpsert(ctx context.Context, ids, texts []string, metadatas []core.IndexMetadata) error {
	return nil
}

func (f *fakeIndex) Delete(ctx context.Context, ids ...string) error { return nil }

func (f *fakeIndex) Contains(ctx context.Context, id string) (bool, error) { return false, nil }

func (f *fakeIndex) QuerySimilar(ctx context.Context, text string, k int) ([]core.SimilarityMatch, error) {
	f.lastText = text
	f.lastK = k
	return f.matches, f.err
}

func (f *fakeIndex) Close() error { return nil }

func match(id, title string, score float32, ingredients []string, tags []string, cuisine string) core.SimilarityMatch {
	return core.SimilarityMatch{
		ID:    id,
		Score: score,
		Metadata: core.IndexMetadata{
			Title:       title,
			Ingredients: ingredients,
			Tags:        tags,
			Cuisine:     cuisine,
		},
	}
}

func TestSearchOverlapDominatesScore(t *testing.T) {
	index := &fakeIndex{matches: []core.SimilarityMatch{
		match("high-score", "High score", 0.9, []string{"beef", "onion"}, nil, ""),
		match("high-overlap", "High overlap", 0.5, []string{"chicken breast", "rice"}, nil, ""),
	}}
	ranker, err := NewRanker(index)
	require.NoError(t, err)

	results, err := ranker.Search(context.Background(), Query{
		Ingredients: []string{"chicken", "noodles"},
		Limit:       10,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// 50% overlap beats a better raw similarity score.
	assert.Equal(t, "high-overlap", results[0].ID)
	assert.Equal(t, 50.0, results[0].Overlap)
	assert.Equal(t, "high-score", results[1].ID)
	assert.Equal(t, 0.0, results[1].Overlap)
}

func TestSearchQuantityLadenIngredientsOverlap(t *testing.T) {
	index := &fakeIndex{matches: []core.SimilarityMatch{
		match("bread", "Sandwich Bread", 0.8, []string{"all-purpose flour", "butter"}, nil, ""),
	}}
	ranker, err := NewRanker(index)
	require.NoError(t, err)

	results, err := ranker.Search(context.Background(), Query{
		Ingredients: []string{"2 cups flour", "1 tbsp of butter"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// Query ingredients are cleaned to bare names before matching, so
	// quantities and units never defeat the overlap metric.
	assert.Equal(t, 100.0, results[0].Overlap)
	assert.Equal(t, "recipe with ingredients: flour butter cooking meal food dish", index.lastText)
}

func TestSearchScoreBreaksOverlapTies(t *testing.T) {
	index := &fakeIndex{matches: []core.SimilarityMatch{
		match("weaker", "Weaker", 0.4, []string{"egg"}, nil, ""),
		match("stronger", "Stronger", 0.8, []string{"egg"}, nil, ""),
	}}
	ranker, err := NewRanker(index)
	require.NoError(t, err)

	results, err := ranker.Search(context.Background(), Query{
		Ingredients: []string{"egg"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "stronger", results[0].ID)
	assert.Equal(t, "weaker", results[1].ID)
}

func TestSearchMinScoreFilter(t *testing.T) {
	index := &fakeIndex{matches: []core.SimilarityMatch{
		match("good", "Good", 0.8, nil, nil, ""),
		match("weak", "Weak", 0.2, nil, nil, ""),
	}}
	ranker, err := NewRanker(index)
	require.NoError(t, err)

	results, err := ranker.Search(context.Background(), Query{
		Text:     "noodle soup",
		MinScore: 0.5,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].ID)
}

func TestSearchTagFilter(t *testing.T) {
	index := &fakeIndex{matches: []core.SimilarityMatch{
		match("both", "Both", 0.9, nil, []string{"vegan", "quick"}, ""),
		match("one", "One", 0.9, nil, []string{"vegan"}, ""),
		match("none", "None", 0.9, nil, nil, ""),
	}}
	ranker, err := NewRanker(index)
	require.NoError(t, err)

	results, err := ranker.Search(context.Background(), Query{
		Text: "dinner",
		Tags: []string{"vegan", "quick"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "both", results[0].ID)
}

func TestSearchCuisineFilter(t *testing.T) {
	index := &fakeIndex{matches: []core.SimilarityMatch{
		match("thai", "Thai", 0.9, nil, nil, "thai"),
		match("french", "French", 0.9, nil, nil, "french"),
	}}
	ranker, err := NewRanker(index)
	require.NoError(t, err)

	results, err := ranker.Search(context.Background(), Query{
		Text:    "curry",
		Cuisine: "Thai",
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "thai", results[0].ID)
}

func TestSearchOverFetchAndTruncate(t *testing.T) {
	var matches []core.SimilarityMatch
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		matches = append(matches, match(id, id, 0.5, nil, nil, ""))
	}
	index := &fakeIndex{matches: matches}
	ranker, err := NewRanker(index)
	require.NoError(t, err)

	results, err := ranker.Search(context.Background(), Query{Text: "soup", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	// Candidates are over-fetched at twice the limit.
	assert.Equal(t, 4, index.lastK)
}

func TestSearchFreeTextWithoutIngredients(t *testing.T) {
	index := &fakeIndex{matches: []core.SimilarityMatch{
		match("r1", "Soup", 0.7, []string{"leek"}, nil, ""),
	}}
	ranker, err := NewRanker(index)
	require.NoError(t, err)

	results, err := ranker.Search(context.Background(), Query{Text: "cozy winter soup"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.0, results[0].Overlap)
	// Free text is embedded as-is, no framing phrase.
	assert.Equal(t, "cozy winter soup", index.lastText)
}

func TestSearchIngredientFraming(t *testing.T) {
	index := &fakeIndex{}
	ranker, err := NewRanker(index)
	require.NoError(t, err)

	_, err = ranker.Search(context.Background(), Query{Ingredients: []string{"Chicken", "  Rice "}})
	require.NoError(t, err)
	assert.Equal(t, "recipe with ingredients: chicken rice cooking meal food dish", index.lastText)
}

func TestSearchEmptyQuery(t *testing.T) {
	ranker, err := NewRanker(&fakeIndex{})
	require.NoError(t, err)

	_, err = ranker.Search(context.Background(), Query{})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearchIndexError(t *testing.T) {
	boom := errors.New("index down")
	ranker, err := NewRanker(&fakeIndex{err: boom})
	require.NoError(t, err)

	_, err = ranker.Search(context.Background(), Query{Text: "soup"})
	assert.ErrorIs(t, err, boom)
}

func TestOverlapPercentRounding(t *testing.T) {
	// 1 of 3 ingredients matched: 33.333... -> 33.3
	pct := overlapPercent([]string{"egg", "kale", "tofu"}, []string{"egg noodles"})
	assert.Equal(t, 33.3, pct)

	// 2 of 3: 66.666... -> 66.7
	pct = overlapPercent([]string{"egg", "kale", "tofu"}, []string{"egg noodles", "kale"})
	assert.Equal(t, 66.7, pct)

	assert.Equal(t, 0.0, overlapPercent(nil, []string{"egg"}))
	assert.Equal(t, 100.0, overlapPercent([]string{"egg"}, []string{"fried egg"}))
}

func TestSuggestUsesTopTitles(t *testing.T) {
	index := &fakeIndex{matches: []core.SimilarityMatch{
		match("r1", "Chicken Fried Rice", 0.9, []string{"chicken", "rice"}, nil, ""),
		match("r2", "Chicken Soup", 0.8, []string{"chicken"}, nil, ""),
	}}

	suggester := mock.NewMockSuggester()
	var gotIngredients, gotTitles []string
	suggester.SuggestRecipeFunc = func(ctx context.Context, ingredients, similarTitles []string) (string, error) {
		gotIngredients = ingredients
		gotTitles = similarTitles
		return "Make fried rice.", nil
	}

	ranker, err := NewRanker(index, WithSuggester(suggester))
	require.NoError(t, err)

	suggestion, err := ranker.Suggest(context.Background(), []string{"Chicken", "Rice"})
	require.NoError(t, err)
	assert.Equal(t, "Make fried rice.", suggestion)
	assert.Equal(t, []string{"chicken", "rice"}, gotIngredients)
	assert.Equal(t, []string{"Chicken Fried Rice", "Chicken Soup"}, gotTitles)
}

func TestSuggestValidation(t *testing.T) {
	ranker, err := NewRanker(&fakeIndex{})
	require.NoError(t, err)

	_, err = ranker.Suggest(context.Background(), []string{"egg"})
	assert.ErrorIs(t, err, ErrSuggesterRequired)

	ranker, err = NewRanker(&fakeIndex{}, WithSuggester(mock.NewMockSuggester()))
	require.NoError(t, err)

	_, err = ranker.Suggest(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoIngredients)
}
