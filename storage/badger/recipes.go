package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dswho2/rag-recipe-finder/core"
	"github.com/dswho2/rag-recipe-finder/storage"
)

// RecipeStore implements storage.RecipeStore for BadgerDB.
type RecipeStore struct {
	backend     *Backend
	ownsBackend bool
}

var _ storage.RecipeStore = (*RecipeStore)(nil)

// NewRecipeStore opens a BadgerDB-backed recipe store at the given path.
//
// Returns storage.RecipeStore interface to enforce abstraction.
func NewRecipeStore(path string) (storage.RecipeStore, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &RecipeStore{backend: backend, ownsBackend: true}, nil
}

// NewRecipeStoreWithBackend creates a recipe store on a shared backend.
// The caller remains responsible for closing the backend.
func NewRecipeStoreWithBackend(backend *Backend) *RecipeStore {
	return &RecipeStore{backend: backend}
}

// Close closes the underlying database if this store owns it.
func (s *RecipeStore) Close() error {
	if s.ownsBackend {
		return s.backend.Close()
	}
	return nil
}

// PutRecipe stores a recipe and updates the fingerprint index.
// If the recipe already exists with a different fingerprint, the stale
// fingerprint entry is removed in the same transaction.
func (s *RecipeStore) PutRecipe(ctx context.Context, recipe *core.Recipe) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		old, err := readRecipe(tx, makeRecipeKey(recipe.ID))
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if old == nil {
			if recipe.InsertedAt.IsZero() {
				recipe.InsertedAt = now
			}
		} else {
			recipe.InsertedAt = old.InsertedAt
			if old.Fingerprint != "" && old.Fingerprint != recipe.Fingerprint {
				if err := tx.Delete(makeFingerprintKey(old.Fingerprint)); err != nil {
					return err
				}
			}
		}
		recipe.UpdatedAt = now

		if err := tx.Set(makeRecipeKey(recipe.ID), storage.MarshalRecipe(recipe)); err != nil {
			return err
		}
		if recipe.Fingerprint != "" {
			if err := tx.Set(makeFingerprintKey(recipe.Fingerprint), []byte(recipe.ID)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetRecipe retrieves a recipe by ID.
func (s *RecipeStore) GetRecipe(ctx context.Context, id string) (*core.Recipe, error) {
	var result *core.Recipe
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readRecipe(tx, makeRecipeKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// DeleteRecipe removes a recipe and its fingerprint index entry.
// Returns false without error when no recipe with that ID exists.
func (s *RecipeStore) DeleteRecipe(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		key := makeRecipeKey(id)
		record, err := readRecipe(tx, key)
		if err != nil {
			return err
		}
		if record == nil {
			return nil
		}

		if record.Fingerprint != "" {
			if err := tx.Delete(makeFingerprintKey(record.Fingerprint)); err != nil {
				return err
			}
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		deleted = true
		return tx.Commit()
	}, true)
	return deleted, err
}

// FindByFingerprint looks up a recipe by its content fingerprint.
func (s *RecipeStore) FindByFingerprint(ctx context.Context, fingerprint string) (*core.Recipe, error) {
	var result *core.Recipe
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeFingerprintKey(fingerprint))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var id string
		if err := item.Value(func(val []byte) error {
			id = string(val)
			return nil
		}); err != nil {
			return err
		}

		result, err = readRecipe(tx, makeRecipeKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			// Dangling fingerprint entry; treat as absent.
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// BulkPutRecipes stores multiple recipes, each in its own transaction so
// a single failure does not abort the rest. Recipes that could not be
// written are returned as the unprocessed subset together with the last
// write error observed.
func (s *RecipeStore) BulkPutRecipes(ctx context.Context, recipes []*core.Recipe) ([]*core.Recipe, error) {
	var unprocessed []*core.Recipe
	var lastErr error

	for _, recipe := range recipes {
		if err := ctx.Err(); err != nil {
			unprocessed = append(unprocessed, recipe)
			lastErr = err
			continue
		}
		if err := s.PutRecipe(ctx, recipe); err != nil {
			unprocessed = append(unprocessed, recipe)
			lastErr = err
		}
	}

	return unprocessed, lastErr
}

// ForEachRecipe iterates over every stored recipe in key order.
func (s *RecipeStore) ForEachRecipe(ctx context.Context, fn func(*core.Recipe) error) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recipeRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var recipe *core.Recipe
			err := iter.Item().Value(func(val []byte) error {
				var err error
				recipe, err = storage.UnmarshalRecipe(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(recipe); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// readRecipe reads a recipe record from the transaction.
// Returns nil without error when the key does not exist.
func readRecipe(tx *badger.Txn, key []byte) (*core.Recipe, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.Recipe
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalRecipe(val)
		return unmarshalErr
	})
	return record, err
}
