package badger

import "fmt"

// Key prefixes for different data types
const (
	recipeRecordPrefix = "recipe"
	fingerprintPrefix  = "recipefp"
	indexEntryPrefix   = "vecrec"
)

// makeRecipeKey generates a key for a recipe record by ID.
func makeRecipeKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", recipeRecordPrefix, id))
}

// makeFingerprintKey generates a key for the fingerprint index.
// The value stored under it is the owning recipe's ID.
func makeFingerprintKey(fingerprint string) []byte {
	return []byte(fmt.Sprintf("%s:%s", fingerprintPrefix, fingerprint))
}

// makeIndexEntryKey generates a key for a vector index entry by recipe ID.
func makeIndexEntryKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", indexEntryPrefix, id))
}
