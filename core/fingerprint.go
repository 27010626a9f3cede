package core

import (
	"encoding/hex"
	"sort"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// Fingerprint derives the deterministic content hash used as the
// deduplication key. The title and each text are lowercased and trimmed;
// ingredient texts are sorted so their order never affects the hash, while
// instruction order is preserved (swapping steps is a different recipe).
// The raw source texts are hashed, not normalized ones, so the fingerprint
// stays stable across normalizer changes.
func Fingerprint(title string, ingredients, instructions []string) string {
	parts := make([]string, 0, 1+len(ingredients)+len(instructions))
	parts = append(parts, strings.ToLower(strings.TrimSpace(title)))

	sortedIngredients := make([]string, len(ingredients))
	for i, ing := range ingredients {
		sortedIngredients[i] = strings.ToLower(strings.TrimSpace(ing))
	}
	sort.Strings(sortedIngredients)
	parts = append(parts, sortedIngredients...)

	for _, inst := range instructions {
		parts = append(parts, strings.ToLower(strings.TrimSpace(inst)))
	}

	h, _ := blake2b.New(32, nil) // 32 bytes = 256-bit digest
	h.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))
}
