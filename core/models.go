package core

import (
	"strings"
	"time"
)

// Ingredient is a single recipe ingredient. Text preserves the source text
// verbatim; Name, Quantity and Unit are best-effort extractions produced by
// NormalizeIngredient. Quantity is nil and Unit empty when extraction fails.
type Ingredient struct {
	Text     string
	Name     string
	Quantity *float64
	Unit     string
}

// RecipeStep is a single instruction step. StepNumber is 1-based and dense,
// assigned from the original ordering regardless of gaps in source numbering.
type RecipeStep struct {
	StepNumber int
	Text       string
}

// Recipe is the canonical recipe entity persisted in the record store.
// Fingerprint is derived from content, never supplied by a caller; two
// recipes with equal fingerprints are the same content regardless of ID
// or source.
type Recipe struct {
	ID           string
	Title        string
	Description  string
	Ingredients  []Ingredient
	Instructions []RecipeStep
	CookingTime  int // minutes, 0 when unknown
	PrepTime     int // minutes, 0 when unknown
	Servings     int // 0 when unknown
	Cuisine      string
	Tags         []string
	Source       string
	SourceURL    string
	Fingerprint  string
	InsertedAt   time.Time
	UpdatedAt    time.Time
}

// RawRecipe is an unnormalized recipe as received from an upstream source
// (dataset import, web scrape, user submission). Ingredients and
// Instructions hold raw text lines.
type RawRecipe struct {
	ID           string   `json:"id,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	CookingTime  int      `json:"cooking_time,omitempty"`
	PrepTime     int      `json:"prep_time,omitempty"`
	Servings     int      `json:"servings,omitempty"`
	Cuisine      string   `json:"cuisine,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	URL          string   `json:"url,omitempty"`
}

// IndexMetadata is the compact payload stored alongside a vector in the
// similarity index. It carries just enough for post-filtering and
// ingredient-overlap ranking without a record-store round trip.
type IndexMetadata struct {
	Title       string
	Ingredients []string // normalized ingredient names
	Tags        []string
	Cuisine     string
}

// SimilarityMatch is a nearest-neighbor hit from the similarity index.
type SimilarityMatch struct {
	ID       string
	Metadata IndexMetadata
	Score    float32
}

// SearchText returns the text embedded for this recipe: title, normalized
// ingredient names, and instruction text joined with spaces.
func (r *Recipe) SearchText() string {
	parts := make([]string, 0, 1+len(r.Ingredients)+len(r.Instructions))
	parts = append(parts, r.Title)
	for _, ing := range r.Ingredients {
		parts = append(parts, ing.Name)
	}
	for _, step := range r.Instructions {
		parts = append(parts, step.Text)
	}
	return strings.Join(parts, " ")
}

// IndexMetadata returns the metadata subset stored in the similarity index.
func (r *Recipe) IndexMetadata() IndexMetadata {
	names := make([]string, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		names[i] = ing.Name
	}
	return IndexMetadata{
		Title:       r.Title,
		Ingredients: names,
		Tags:        r.Tags,
		Cuisine:     r.Cuisine,
	}
}
