package core

import (
	"regexp"
	"testing"
)

func TestClassifySource(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind SourceKind
	}{
		{"dataset import", "dataset", SourceKindDataset},
		{"known web source", "allrecipes", SourceKindWeb},
		{"another web source", "bonappetit", SourceKindWeb},
		{"user submission", "user", SourceKindUser},
		{"api", "api", SourceKindAPI},
		{"admin", "admin", SourceKindAdmin},
		{"test", "test", SourceKindTest},
		{"unknown label", "grandmas-blog", SourceKindOther},
		{"mixed case", "AllRecipes", SourceKindWeb},
		{"surrounding whitespace", "  user ", SourceKindUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifySource(tt.raw)
			if got.Kind != tt.wantKind {
				t.Errorf("ClassifySource(%q).Kind = %d, want %d", tt.raw, got.Kind, tt.wantKind)
			}
		})
	}
}

func TestNewRecipeID_WithOriginalID(t *testing.T) {
	tests := []struct {
		name       string
		source     string
		originalID string
		want       string
	}{
		{"web source", "allrecipes", "123", "web-allrecipes-123"},
		{"dataset source", "dataset", "recipe_42", "dataset-recipe42"},
		{"user source", "user", "ABC-9", "user-abc-9"},
		{"other source", "grandmas blog!", "7", "other-grandmasblog-7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewRecipeID(tt.source, tt.originalID)
			if got != tt.want {
				t.Errorf("NewRecipeID(%q, %q) = %q, want %q", tt.source, tt.originalID, got, tt.want)
			}
		})
	}
}

func TestNewRecipeID_Generated(t *testing.T) {
	pattern := regexp.MustCompile(`^other-unknownsrc-\d{8}-\d{6}-[a-z0-9]{8}$`)

	id := NewRecipeID("unknownsrc", "")
	if !pattern.MatchString(id) {
		t.Errorf("NewRecipeID generated id %q does not match %s", id, pattern)
	}

	// Generated ids must not collide
	other := NewRecipeID("unknownsrc", "")
	if id == other {
		t.Errorf("two generated ids collided: %q", id)
	}
}

func TestNewRecipeID_Charset(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9-]+$`)

	ids := []string{
		NewRecipeID("AllRecipes", "Best_Pie #1"),
		NewRecipeID("user", ""),
		NewRecipeID("Some Random Source!", ""),
	}

	for _, id := range ids {
		if !valid.MatchString(id) {
			t.Errorf("id %q contains characters outside [a-z0-9-]", id)
		}
	}
}
