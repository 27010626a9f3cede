// Package search ranks recipes for a query over the similarity index.
//
// The Ranker over-fetches similarity candidates, applies the optional
// score, cuisine, and tag filters, computes the ingredient-overlap
// percentage for each survivor, and sorts by (overlap, score) descending.
// Overlap dominates the similarity score: a recipe using half the
// ingredients on hand outranks a semantically closer one using none.
//
// When built with a RecipeSuggester, the Ranker can also turn a list of
// available ingredients into a generated recipe suggestion grounded on
// the closest stored recipes.
package search
