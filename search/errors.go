package search

import "errors"

var (
	// ErrIndexRequired is returned when a Ranker is built without a vector index.
	ErrIndexRequired = errors.New("vector index is required")

	// ErrEmptyQuery is returned when a query has neither text nor ingredients.
	ErrEmptyQuery = errors.New("query needs text or ingredients")

	// ErrNoIngredients is returned when Suggest is called without ingredients.
	ErrNoIngredients = errors.New("suggestion needs at least one ingredient")

	// ErrSuggesterRequired is returned when Suggest is called on a Ranker
	// built without a RecipeSuggester.
	ErrSuggesterRequired = errors.New("recipe suggester is not configured")
)
