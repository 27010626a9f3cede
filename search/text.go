package search

import (
	"regexp"
	"strings"

	"github.com/dswho2/rag-recipe-finder/core"
)

// searchTextSuffix anchors ingredient queries in the food domain so the
// embedding lands near recipe payloads rather than bare shopping lists.
const searchTextSuffix = "cooking meal food dish"

var leadingArticlePattern = regexp.MustCompile(`^(?:of|the|a|an)\s+`)

// ExtractIngredientName cleans a query ingredient down to its bare name:
// leading quantity and unit stripped through the same normalizer that
// produces stored ingredient names, then any leading article removed.
// "2 cups of flour" becomes "flour".
func ExtractIngredientName(text string) string {
	name := core.NormalizeIngredient(text).Name
	name = leadingArticlePattern.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// PrepareSearchText builds the text that gets embedded for a query. Free
// text is used as-is; ingredient lists are wrapped in a framing phrase.
func PrepareSearchText(freeText string, ingredients []string) string {
	freeText = strings.TrimSpace(freeText)
	if len(ingredients) == 0 {
		return freeText
	}

	names := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		if name := ExtractIngredientName(ing); name != "" {
			names = append(names, name)
		}
	}

	var sb strings.Builder
	sb.WriteString("recipe with ingredients: ")
	sb.WriteString(strings.Join(names, " "))
	sb.WriteString(" ")
	sb.WriteString(searchTextSuffix)
	if freeText != "" {
		sb.WriteString(" ")
		sb.WriteString(freeText)
	}
	return sb.String()
}
