package badger

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dswho2/rag-recipe-finder/ai"
	"github.com/dswho2/rag-recipe-finder/core"
	"github.com/dswho2/rag-recipe-finder/storage"
)

// VectorIndex implements storage.VectorIndex for BadgerDB. Embedding
// happens behind this type: callers hand over text and the configured
// ai.Embedder turns it into a vector before storage or query.
//
// Similarity queries are a brute-force cosine scan over all entries,
// which is adequate for collections up to the low hundreds of thousands.
type VectorIndex struct {
	backend     *Backend
	embedder    ai.Embedder
	ownsBackend bool
	logger      *slog.Logger
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex opens a BadgerDB-backed vector index at the given path.
//
// Returns storage.VectorIndex interface to enforce abstraction.
func NewVectorIndex(path string, embedder ai.Embedder) (storage.VectorIndex, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	idx := NewVectorIndexWithBackend(backend, embedder)
	idx.ownsBackend = true
	return idx, nil
}

// NewVectorIndexWithBackend creates a vector index on a shared backend.
// The caller remains responsible for closing the backend.
func NewVectorIndexWithBackend(backend *Backend, embedder ai.Embedder) *VectorIndex {
	return &VectorIndex{
		backend:  backend,
		embedder: embedder,
		logger:   slog.Default().With("component", "vector-index"),
	}
}

// Close closes the underlying database if this index owns it.
func (x *VectorIndex) Close() error {
	if x.ownsBackend {
		return x.backend.Close()
	}
	return nil
}

// Upsert embeds text and stores the vector and metadata under id.
func (x *VectorIndex) Upsert(ctx context.Context, id, text string, metadata core.IndexMetadata) error {
	vector, err := x.embedder.EmbedText(ctx, text)
	if err != nil {
		return fmt.Errorf("embedding %q: %w", id, err)
	}

	entry := &storage.IndexEntry{ID: id, Vector: vector, Metadata: metadata}
	return x.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeIndexEntryKey(id), storage.MarshalIndexEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// BulkUpsert embeds and stores multiple entries in one embedding batch
// and one write transaction.
func (x *VectorIndex) BulkUpsert(ctx context.Context, ids, texts []string, metadatas []core.IndexMetadata) error {
	if len(ids) != len(texts) || len(ids) != len(metadatas) {
		return storage.ErrLengthMismatch
	}
	if len(ids) == 0 {
		return nil
	}

	vectors, err := x.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding batch: %w", err)
	}
	if len(vectors) != len(ids) {
		return storage.ErrLengthMismatch
	}

	return x.backend.WithTx(func(tx *badger.Txn) error {
		for i, id := range ids {
			entry := &storage.IndexEntry{ID: id, Vector: vectors[i], Metadata: metadatas[i]}
			if err := tx.Set(makeIndexEntryKey(id), storage.MarshalIndexEntry(entry)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Delete removes index entries. Missing ids are ignored.
func (x *VectorIndex) Delete(ctx context.Context, ids ...string) error {
	return x.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeIndexEntryKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// Contains reports whether an entry exists for id.
func (x *VectorIndex) Contains(ctx context.Context, id string) (bool, error) {
	found := false
	err := x.backend.WithTx(func(tx *badger.Txn) error {
		_, err := tx.Get(makeIndexEntryKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		found = true
		return nil
	}, false)
	return found, err
}

// QuerySimilar embeds text and returns up to k nearest entries, ordered
// by cosine similarity descending.
func (x *VectorIndex) QuerySimilar(ctx context.Context, text string, k int) ([]core.SimilarityMatch, error) {
	queryVector, err := x.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	var results []core.SimilarityMatch
	err = x.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(indexEntryPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var entry *storage.IndexEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalIndexEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if len(entry.Vector) == 0 {
				continue
			}

			results = append(results, core.SimilarityMatch{
				ID:       entry.ID,
				Metadata: entry.Metadata,
				Score:    cosineSimilarity(queryVector, entry.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b core.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > k {
		results = results[:k]
	}

	return results, nil
}

// cosineSimilarity calculates the cosine similarity of two vectors.
// Returns 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
