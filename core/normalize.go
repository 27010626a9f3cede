package core

import (
	"regexp"
	"strconv"
	"strings"
)

// Quantity is a leading decimal ("2", "1.5") or simple fraction ("1/2").
var quantityPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?(?:/\d+)?)\s*`)

// Fixed unit vocabulary: volume, weight and count units with plural forms.
var unitPattern = regexp.MustCompile(`(?i)\b(?:cups|cup|tbsp|tsp|kg|g|ml|l|pounds|pound|oz|ounces|ounce|pieces|piece)\b`)

var whitespacePattern = regexp.MustCompile(`\s+`)

// NormalizeIngredient parses raw ingredient text into structured fields.
// The three sub-extractions (quantity, unit, name) are independent and
// best-effort: a failed extraction leaves the field absent rather than
// blocking the others or defaulting to a sentinel.
func NormalizeIngredient(text string) Ingredient {
	text = strings.TrimSpace(text)
	ing := Ingredient{Text: text}
	name := text

	if m := quantityPattern.FindStringSubmatch(name); m != nil {
		if q, ok := parseQuantity(m[1]); ok {
			ing.Quantity = &q
			name = strings.TrimSpace(name[len(m[0]):])
		}
	}

	if loc := unitPattern.FindStringIndex(name); loc != nil {
		ing.Unit = strings.ToLower(name[loc[0]:loc[1]])
		name = strings.TrimSpace(name[:loc[0]] + name[loc[1]:])
	}

	name = whitespacePattern.ReplaceAllString(name, " ")
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimPrefix(name, "of ")
	ing.Name = strings.TrimSpace(name)

	return ing
}

// NormalizeStep trims an instruction and assigns its position. Positions
// are expected to be dense 1-based sequence numbers from the caller,
// independent of any numbering present in the source text.
func NormalizeStep(text string, position int) RecipeStep {
	return RecipeStep{
		StepNumber: position,
		Text:       strings.TrimSpace(text),
	}
}

// parseQuantity parses a decimal or an a/b fraction.
func parseQuantity(s string) (float64, bool) {
	if num, den, found := strings.Cut(s, "/"); found {
		n, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return 0, false
		}
		d, err := strconv.ParseFloat(den, 64)
		if err != nil || d == 0 {
			return 0, false
		}
		return n / d, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
