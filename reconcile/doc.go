// Package reconcile repairs drift between the record store and the
// similarity index.
//
// The dual-write path compensates on partial failure, but a crash
// between the store write and the index write can leave an orphaned
// record with no index counterpart, and a failed bulk index write
// deliberately keeps the stored records. The Sweeper scans the record
// store, verifies each recipe id is present in the index, and either
// re-indexes orphans (with bounded retry) or, in prune mode, deletes
// them. Progress is reported to a configurable writer.
package reconcile
