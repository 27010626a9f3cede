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


package core

import (
	"fmt"
	"strings"
)

// ValidateRawRecipe validates an incoming recipe according to domain rules.
//
// Validation rules:
//   - Title must not be empty or whitespace
//   - At least one ingredient must be present
//
// NOT validated (best-effort fields):
//   - Instructions (a recipe without steps is stored as-is)
//   - Timing, servings, cuisine, tags (all optional)
func ValidateRawRecipe(raw *RawRecipe) error {
	if raw == nil {
		return fmt.Errorf("%w: recipe is nil", ErrInvalidRecipe)
	}

	if strings.TrimSpace(raw.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecipe, ErrMissingTitle)
	}

	if len(raw.Ingredients) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRecipe, ErrNoIngredients)
	}

	return nil
}
