package reconcile

import "errors"

var (
	// ErrStoreRequired is returned when a Sweeper is built without a record store.
	ErrStoreRequired = errors.New("recipe store is required")

	// ErrIndexRequired is returned when a Sweeper is built without a vector index.
	ErrIndexRequired = errors.New("vector index is required")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
