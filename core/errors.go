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

import "errors"

// Domain validation errors
var (
	// ErrInvalidRecipe indicates a RawRecipe failed validation.
	ErrInvalidRecipe = errors.New("invalid recipe")

	// ErrMissingTitle indicates the recipe title is empty.
	ErrMissingTitle = errors.New("title cannot be empty")

	// ErrNoIngredients indicates the recipe has no ingredients.
	ErrNoIngredients = errors.New("recipe must have at least one ingredient")
)
