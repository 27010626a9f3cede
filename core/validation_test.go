package core

import (
	"errors"
	"testing"
)

func TestValidateRawRecipe(t *testing.T) {
	tests := []struct {
		name    string
		recipe  *RawRecipe
		wantErr error
	}{
		{
			name: "valid recipe",
			recipe: &RawRecipe{
				Title:        "Pancakes",
				Ingredients:  []string{"2 cups flour", "2 eggs"},
				Instructions: []string{"Mix", "Cook"},
			},
			wantErr: nil,
		},
		{
			name: "no instructions is valid",
			recipe: &RawRecipe{
				Title:       "Fruit Bowl",
				Ingredients: []string{"1 apple"},
			},
			wantErr: nil,
		},
		{
			name:    "nil recipe",
			recipe:  nil,
			wantErr: ErrInvalidRecipe,
		},
		{
			name: "empty title",
			recipe: &RawRecipe{
				Title:       "",
				Ingredients: []string{"flour"},
			},
			wantErr: ErrMissingTitle,
		},
		{
			name: "whitespace title",
			recipe: &RawRecipe{
				Title:       "   ",
				Ingredients: []string{"flour"},
			},
			wantErr: ErrMissingTitle,
		},
		{
			name: "no ingredients",
			recipe: &RawRecipe{
				Title:        "Air Soup",
				Instructions: []string{"Simmer"},
			},
			wantErr: ErrNoIngredients,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRawRecipe(tt.recipe)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateRawRecipe() = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateRawRecipe() = %v, want %v", err, tt.wantErr)
			}
			if !errors.Is(err, ErrInvalidRecipe) && tt.wantErr != ErrInvalidRecipe {
				t.Errorf("ValidateRawRecipe() = %v, want wrapped ErrInvalidRecipe", err)
			}
		})
	}
}
