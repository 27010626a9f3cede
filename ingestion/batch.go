// Copyright 2025 the rag-recipe-finder authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dswho2/rag-recipe-finder/core"
	"github.com/dswho2/rag-recipe-finder/storage"
)

var errBulkStoreWrite = errors.New("bulk store write failed")

// IngestBatch processes many raw recipes with coarser-grained
// compensation than the single-item path, traded for throughput:
// fingerprints are deduplicated against the store and within the batch
// before any write, non-duplicates are bulk-written in chunks with
// capped exponential backoff on the unprocessed subset, and each chunk's
// index write is attempted only after its store write fully succeeded.
// Chunks run concurrently on the coordinator's worker pool.
//
// Outcome order: stored ids first, then duplicate markers, then failures.
func (c *Coordinator) IngestBatch(ctx context.Context, raws []*core.RawRecipe, source string) []Outcome {
	var duplicates, failures []Outcome
	var pending []*core.Recipe
	seen := make(map[string]string) // fingerprint -> pending derived id

	for _, raw := range raws {
		if err := core.ValidateRawRecipe(raw); err != nil {
			failures = append(failures, Failed(err))
			continue
		}

		fingerprint := core.Fingerprint(raw.Title, raw.Ingredients, raw.Instructions)

		// First occurrence of a fingerprint within the batch wins; later
		// ones are duplicates of the pending id.
		if pendingID, ok := seen[fingerprint]; ok {
			duplicates = append(duplicates, Duplicate(pendingID))
			continue
		}

		existing, err := c.store.FindByFingerprint(ctx, fingerprint)
		if err == nil {
			duplicates = append(duplicates, Duplicate(existing.ID))
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			failures = append(failures, Failed(fmt.Errorf("fingerprint lookup: %w", err)))
			continue
		}

		recipe := assembleRecipe(raw, source, fingerprint)
		seen[fingerprint] = recipe.ID
		pending = append(pending, recipe)
	}

	var mu sync.Mutex
	var stored []Outcome
	var wg sync.WaitGroup

	for start := 0; start < len(pending); start += c.chunkSize {
		end := start + c.chunkSize
		if end > len(pending) {
			end = len(pending)
		}
		chunk := pending[start:end]

		wg.Add(1)
		task := func() {
			defer wg.Done()
			chunkStored, chunkFailed := c.ingestChunk(ctx, chunk)
			mu.Lock()
			stored = append(stored, chunkStored...)
			failures = append(failures, chunkFailed...)
			mu.Unlock()
		}
		if err := c.pool.Submit(task); err != nil {
			// Pool unavailable; run the chunk on this goroutine.
			task()
		}
	}
	wg.Wait()

	outcomes := make([]Outcome, 0, len(stored)+len(duplicates)+len(failures))
	outcomes = append(outcomes, stored...)
	outcomes = append(outcomes, duplicates...)
	outcomes = append(outcomes, failures...)
	return outcomes
}

// ingestChunk bulk-writes one chunk to the record store, retrying the
// unprocessed subset with capped exponential backoff, then bulk-writes
// the index only if every record in the chunk was stored. Retries block
// only this chunk's goroutine.
func (c *Coordinator) ingestChunk(ctx context.Context, chunk []*core.Recipe) (stored, failed []Outcome) {
	remaining := chunk
	delay := c.baseDelay
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		unprocessed, err := c.store.BulkPutRecipes(ctx, remaining)
		if err != nil {
			lastErr = err
		}
		remaining = unprocessed
		if len(remaining) == 0 || attempt == c.maxAttempts {
			break
		}

		c.logger.Warn("bulk store write left unprocessed items, backing off",
			"unprocessed", len(remaining), "attempt", attempt, "delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			lastErr = ctx.Err()
		case <-timer.C:
		}
		if ctx.Err() != nil {
			break
		}

		delay *= 2
		if delay > c.maxDelay {
			delay = c.maxDelay
		}
	}

	if lastErr == nil && len(remaining) > 0 {
		lastErr = errBulkStoreWrite
	}

	failedSet := make(map[string]bool, len(remaining))
	for _, r := range remaining {
		failedSet[r.ID] = true
	}
	for _, r := range chunk {
		if failedSet[r.ID] {
			failed = append(failed, Failed(fmt.Errorf("bulk store write: %w", lastErr)))
		} else {
			stored = append(stored, Stored(r.ID))
		}
	}

	if len(remaining) > 0 {
		// Partial store failure: skip the index write for the whole
		// chunk. Stored records without index entries are picked up by
		// the reconciliation sweep.
		c.logger.Warn("skipping index write after partial store failure",
			"chunk", len(chunk), "unprocessed", len(remaining))
		return stored, failed
	}

	ids := make([]string, len(chunk))
	texts := make([]string, len(chunk))
	metadatas := make([]core.IndexMetadata, len(chunk))
	for i, r := range chunk {
		ids[i] = r.ID
		texts[i], metadatas[i] = indexPayload(r)
	}

	if err := c.index.BulkUpsert(ctx, ids, texts, metadatas); err != nil {
		// Records are kept; the reconciliation sweep re-indexes them.
		c.logger.Error("bulk index write failed, records kept for reconciliation",
			"count", len(ids), "err", err)
	}

	return stored, failed
}
