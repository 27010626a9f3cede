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


package reconcile

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/dswho2/rag-recipe-finder/core"
	"github.com/dswho2/rag-recipe-finder/storage"
)

// Config holds configuration for the reconciliation sweep.
type Config struct {
	// BatchSize is the number of recipes to collect before checking the index
	BatchSize int

	// ReportInterval is how often to report progress (number of recipes)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for re-index writes
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// Prune deletes orphaned records instead of re-indexing them
	Prune bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Report summarizes one sweep.
type Report struct {
	// Scanned is the number of records examined.
	Scanned int

	// Orphaned is the number of records found with no index entry.
	Orphaned int

	// Reindexed is the number of orphans written back to the index.
	Reindexed int

	// Pruned is the number of orphaned records deleted (prune mode).
	Pruned int

	// Failed is the number of orphans that could not be repaired.
	Failed int
}

// Sweeper repairs drift between the record store and the similarity
// index. Dual writes compensate on failure but a crash between the two
// phases can leave a stored record with no index entry; the sweep scans
// the store, verifies each id against the index, and re-indexes (or, in
// prune mode, deletes) the orphans.
type Sweeper struct {
	store    storage.RecipeStore
	index    storage.VectorIndex
	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// NewSweeper creates a new sweeper.
// progress: where to write progress output (typically os.Stderr)
func NewSweeper(store storage.RecipeStore, index storage.VectorIndex, config *Config, progress io.Writer) (*Sweeper, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	if config == nil {
		config = DefaultConfig()
	}

	return &Sweeper{
		store:    store,
		index:    index,
		config:   config,
		progress: progress,
		logger:   slog.Default().With("component", "reconcile-sweeper"),
	}, nil
}

// Run executes the sweep over every stored recipe.
func (s *Sweeper) Run(ctx context.Context) (*Report, error) {
	total := 0
	err := s.store.ForEachRecipe(ctx, func(*core.Recipe) error {
		total++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	report := &Report{}
	if total == 0 {
		fmt.Fprintf(s.progress, "No recipes found in database (0 records)\n")
		return report, nil
	}

	fmt.Fprintf(s.progress, "Starting reconciliation of %d recipes (batch size: %d)\n",
		total, s.config.BatchSize)

	tracker := NewProgressTracker(s.progress, total, s.config.ReportInterval)
	tracker.Start()

	batch := make([]*core.Recipe, 0, s.config.BatchSize)
	flush := func() error {
		if err := s.reconcileBatch(ctx, batch, report); err != nil {
			return err
		}
		tracker.Increment(len(batch))
		batch = batch[:0]
		return nil
	}

	err = s.store.ForEachRecipe(ctx, func(recipe *core.Recipe) error {
		batch = append(batch, recipe)
		if len(batch) >= s.config.BatchSize {
			return flush()
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("sweep aborted: %w", err)
	}
	if err := flush(); err != nil {
		return report, fmt.Errorf("sweep aborted: %w", err)
	}

	tracker.Finish()
	fmt.Fprintf(s.progress, "Scanned %d, orphaned %d, reindexed %d, pruned %d, failed %d (%.1fs)\n",
		report.Scanned, report.Orphaned, report.Reindexed, report.Pruned, report.Failed,
		tracker.Elapsed().Seconds())

	return report, nil
}

// reconcileBatch checks each recipe's index entry and repairs orphans.
// Repair failures are counted, not escalated, so one bad record does not
// abort the sweep.
func (s *Sweeper) reconcileBatch(ctx context.Context, batch []*core.Recipe, report *Report) error {
	for _, recipe := range batch {
		if err := ctx.Err(); err != nil {
			return err
		}

		report.Scanned++

		indexed, err := s.index.Contains(ctx, recipe.ID)
		if err != nil {
			return fmt.Errorf("index check for %s: %w", recipe.ID, err)
		}
		if indexed {
			continue
		}

		report.Orphaned++
		s.logger.Info("found orphaned record", "recipe", recipe.ID, "prune", s.config.Prune)

		if s.config.Prune {
			if _, err := s.store.DeleteRecipe(ctx, recipe.ID); err != nil {
				s.logger.Error("failed to prune orphan", "recipe", recipe.ID, "err", err)
				report.Failed++
				continue
			}
			report.Pruned++
			continue
		}

		err = RetryWithBackoff(ctx, func() error {
			return s.index.Upsert(ctx, recipe.ID, recipe.SearchText(), recipe.IndexMetadata())
		}, s.config.MaxRetries, s.config.RetryDelay)
		if err != nil {
			s.logger.Error("failed to reindex orphan", "recipe", recipe.ID, "err", err)
			report.Failed++
			continue
		}
		report.Reindexed++
	}
	return nil
}
