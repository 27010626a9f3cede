package ingestion

// Status is the terminal state of a single recipe's ingestion.
type Status int

const (
	// StatusStored means the recipe was written to both stores.
	StatusStored Status = iota + 1

	// StatusDuplicate means content-identical recipe already exists; no writes occurred.
	StatusDuplicate

	// StatusFailed means ingestion failed; any partial write was compensated.
	StatusFailed
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusStored:
		return "stored"
	case StatusDuplicate:
		return "duplicate"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome reports what happened to one ingested recipe. Failures are
// reported as values, never raised, so batch callers can keep going.
type Outcome struct {
	// Status is the terminal state.
	Status Status

	// RecipeID is the derived identifier, set when Status is StatusStored.
	RecipeID string

	// DuplicateOf is the existing recipe's identifier, set when Status is
	// StatusDuplicate.
	DuplicateOf string

	// Err describes the failure, set when Status is StatusFailed.
	Err error
}

// Stored builds a stored outcome.
func Stored(recipeID string) Outcome {
	return Outcome{Status: StatusStored, RecipeID: recipeID}
}

// Duplicate builds a duplicate outcome referencing the existing recipe.
func Duplicate(existingID string) Outcome {
	return Outcome{Status: StatusDuplicate, DuplicateOf: existingID}
}

// Failed builds a failure outcome.
func Failed(err error) Outcome {
	return Outcome{Status: StatusFailed, Err: err}
}
