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


package search

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/dswho2/rag-recipe-finder/ai"
	"github.com/dswho2/rag-recipe-finder/core"
	"github.com/dswho2/rag-recipe-finder/storage"
)

const defaultLimit = 10

// Query describes one ranked search.
type Query struct {
	// Text is free-form search text. Optional when Ingredients is set.
	Text string

	// Ingredients are the ingredients on hand. Optional when Text is set.
	Ingredients []string

	// Limit caps the number of results. Defaults to 10.
	Limit int

	// MinScore drops candidates below this similarity score when > 0.
	MinScore float32

	// Cuisine, when set, keeps only candidates with that cuisine.
	Cuisine string

	// Tags, when set, keeps only candidates carrying every listed tag.
	Tags []string
}

// RankedResult is one search hit after filtering and overlap ranking.
type RankedResult struct {
	ID       string
	Title    string
	Score    float32
	Overlap  float64 // percentage of query ingredients matched, one decimal
	Metadata core.IndexMetadata
}

// Ranker runs similarity queries against a vector index and ranks the
// candidates by ingredient overlap and similarity score.
type Ranker struct {
	index     storage.VectorIndex
	suggester ai.RecipeSuggester
	logger    *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker)

// WithSuggester wires a RecipeSuggester, enabling Suggest.
func WithSuggester(suggester ai.RecipeSuggester) Option {
	return func(r *Ranker) {
		r.suggester = suggester
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewRanker creates a ranker over the given vector index.
func NewRanker(index storage.VectorIndex, opts ...Option) (*Ranker, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}

	r := &Ranker{
		index:  index,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Search runs a ranked search. Candidates are over-fetched at twice the
// limit, filtered by minimum score, cuisine, and required tags, scored by
// ingredient overlap, then sorted by (overlap, score) descending and
// truncated to the limit.
//
// A query without ingredients still works as plain semantic search; every
// overlap is then 0 and ordering falls to the similarity score.
func (r *Ranker) Search(ctx context.Context, query Query) ([]*RankedResult, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	text := PrepareSearchText(query.Text, query.Ingredients)
	if text == "" {
		return nil, ErrEmptyQuery
	}

	matches, err := r.index.QuerySimilar(ctx, text, 2*limit)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("similarity query returned candidates", "count", len(matches))

	queryNames := make([]string, 0, len(query.Ingredients))
	for _, ing := range query.Ingredients {
		if name := ExtractIngredientName(ing); name != "" {
			queryNames = append(queryNames, name)
		}
	}
	wantCuisine := strings.ToLower(strings.TrimSpace(query.Cuisine))

	results := make([]*RankedResult, 0, len(matches))
	for _, match := range matches {
		if query.MinScore > 0 && match.Score < query.MinScore {
			continue
		}
		if wantCuisine != "" && strings.ToLower(match.Metadata.Cuisine) != wantCuisine {
			continue
		}
		if !hasAllTags(match.Metadata.Tags, query.Tags) {
			continue
		}

		results = append(results, &RankedResult{
			ID:       match.ID,
			Title:    match.Metadata.Title,
			Score:    match.Score,
			Overlap:  overlapPercent(queryNames, match.Metadata.Ingredients),
			Metadata: match.Metadata,
		})
	}

	// Overlap dominates; score breaks ties.
	slices.SortFunc(results, func(a, b *RankedResult) int {
		if a.Overlap != b.Overlap {
			if a.Overlap > b.Overlap {
				return -1
			}
			return 1
		}
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Suggest feeds the titles of the closest stored recipes to the
// configured RecipeSuggester and returns its suggestion.
func (r *Ranker) Suggest(ctx context.Context, ingredients []string) (string, error) {
	if r.suggester == nil {
		return "", ErrSuggesterRequired
	}
	if len(ingredients) == 0 {
		return "", ErrNoIngredients
	}

	results, err := r.Search(ctx, Query{Ingredients: ingredients, Limit: 3})
	if err != nil {
		return "", err
	}

	titles := make([]string, 0, len(results))
	for _, result := range results {
		if result.Title != "" {
			titles = append(titles, result.Title)
		}
	}

	names := make([]string, len(ingredients))
	for i, ing := range ingredients {
		names[i] = ExtractIngredientName(ing)
	}

	return r.suggester.SuggestRecipe(ctx, names, titles)
}

// hasAllTags reports whether candidate tags include every required tag,
// case-insensitively. An empty requirement always passes.
func hasAllTags(candidate, required []string) bool {
	for _, want := range required {
		want = strings.ToLower(strings.TrimSpace(want))
		found := false
		for _, have := range candidate {
			if strings.ToLower(have) == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// overlapPercent computes the share of query ingredients whose name
// appears as a substring of some candidate ingredient name, as a
// percentage rounded to one decimal. Returns 0 when the query supplied
// no ingredients.
func overlapPercent(queryNames, candidateNames []string) float64 {
	if len(queryNames) == 0 {
		return 0
	}

	matched := 0
	for _, want := range queryNames {
		for _, have := range candidateNames {
			if strings.Contains(strings.ToLower(have), want) {
				matched++
				break
			}
		}
	}

	pct := float64(matched) / float64(len(queryNames)) * 100
	return math.Round(pct*10) / 10
}
