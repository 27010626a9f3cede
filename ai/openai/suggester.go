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


package openai

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/dswho2/rag-recipe-finder/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const suggesterSystemPrompt = `You are a helpful cooking assistant. Given a list of ingredients the user has on hand, suggest one realistic recipe they could cook. Name the dish, list which of their ingredients it uses, mention common pantry staples they may need, and give brief preparation steps. Keep the answer under 200 words.`

// RecipeSuggester implements ai.RecipeSuggester using OpenAI-compatible chat APIs.
type RecipeSuggester struct {
	client llms.Model
	logger *slog.Logger
}

// newRecipeSuggester is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newRecipeSuggester(config *ai.Config) (*RecipeSuggester, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.SuggesterHost),
		openai.WithToken("none"),
		openai.WithModel(config.SuggesterModel),
	)
	if err != nil {
		return nil, err
	}

	return &RecipeSuggester{
		client: client,
		logger: slog.Default().With("component", "openai-suggester"),
	}, nil
}

// NewRecipeSuggester creates a new suggester using the provided configuration.
//
// Returns ai.RecipeSuggester interface to enforce abstraction.
func NewRecipeSuggester(config *ai.Config) (ai.RecipeSuggester, error) {
	return newRecipeSuggester(config)
}

// SuggestRecipe generates a recipe suggestion for the given ingredients.
func (s *RecipeSuggester) SuggestRecipe(ctx context.Context, ingredients []string, similarTitles []string) (string, error) {
	if len(ingredients) == 0 {
		return "", errors.New("no ingredients provided")
	}

	prompt := buildSuggestionPrompt(ingredients, similarTitles)

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(suggesterSystemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
			},
		},
	}

	response, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.7))
	if err != nil {
		s.logger.Error("failed to generate suggestion", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		s.logger.Warn("no choices returned from model")
		return "", errors.New("model returned no suggestion")
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}

// buildSuggestionPrompt assembles the user prompt from the available
// ingredients and any similar stored recipe titles.
func buildSuggestionPrompt(ingredients, similarTitles []string) string {
	var sb strings.Builder
	sb.WriteString("I have these ingredients: ")
	sb.WriteString(strings.Join(ingredients, ", "))
	sb.WriteString(".")
	if len(similarTitles) > 0 {
		sb.WriteString(" Recipes similar to what I like include: ")
		sb.WriteString(strings.Join(similarTitles, "; "))
		sb.WriteString(".")
	}
	sb.WriteString(" What should I cook?")
	return sb.String()
}
