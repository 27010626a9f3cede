package mock

import (
	"context"
	"fmt"
	"strings"
)

// MockSuggester is a test double for ai.RecipeSuggester.
// It allows custom behavior injection via a function field.
type MockSuggester struct {
	// SuggestRecipeFunc is called by SuggestRecipe if set.
	// If nil, uses default deterministic behavior.
	SuggestRecipeFunc func(ctx context.Context, ingredients []string, similarTitles []string) (string, error)

	callCount int
}

// NewMockSuggester creates a mock suggester with default deterministic behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockSuggester() *MockSuggester {
	return &MockSuggester{}
}

// SuggestRecipe returns a canned suggestion built from the inputs.
func (m *MockSuggester) SuggestRecipe(ctx context.Context, ingredients []string, similarTitles []string) (string, error) {
	m.callCount++

	if m.SuggestRecipeFunc != nil {
		return m.SuggestRecipeFunc(ctx, ingredients, similarTitles)
	}

	suggestion := fmt.Sprintf("A simple dish using %s.", strings.Join(ingredients, ", "))
	if len(similarTitles) > 0 {
		suggestion += fmt.Sprintf(" Inspired by: %s.", strings.Join(similarTitles, "; "))
	}
	return suggestion, nil
}

// CallCount returns the number of times SuggestRecipe was called.
func (m *MockSuggester) CallCount() int {
	return m.callCount
}

// Reset clears the call count and injected behavior.
func (m *MockSuggester) Reset() {
	m.callCount = 0
	m.SuggestRecipeFunc = nil
}
