// Package ingestion orchestrates the recipe ingestion flow.
//
// The Coordinator type manages the workflow for each recipe:
//   - Content fingerprinting and duplicate detection
//   - Normalization into the canonical schema
//   - The dual write across record store and similarity index
//   - Compensating delete when the index write fails after the store write
//
// Batch ingestion processes chunks concurrently on a worker pool, retrying
// partial bulk-write failures with capped exponential backoff. Per-item
// results are reported as Outcome values, never raised errors, so callers
// can continue processing the remaining items.
package ingestion
