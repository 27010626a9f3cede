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


// Package storage provides the storage abstraction layer for the recipe
// finder.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic, so different backends (BadgerDB,
// in-memory, etc.) can be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the interfaces defined
// here rather than concrete types:
//
//	store, err := badger.NewRecipeStore(path)  // returns storage.RecipeStore
//
// This keeps consumers decoupled from BadgerDB specifics and lets tests
// substitute mock implementations without modification. Internal
// constructors (newBackend, etc.) may return concrete types since they
// are only used within the implementation package.
//
// # Architecture
//
//   - RecipeStore: the canonical record store, including the fingerprint
//     index used for duplicate detection
//   - VectorIndex: the similarity index over recipe embeddings
//
// The two are deliberately separate interfaces: ingestion coordinates
// dual writes across them and must be able to compensate when the
// second write fails.
//
// # Usage
//
//	store, err := badger.NewRecipeStore("/path/to/db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
// Use in tests with in-memory storage:
//
//	store, err := badger.NewMemoryRecipeStore()
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
//
// # Context Support
//
// All methods accept context.Context for cancellation and timeout
// support. Pass context.Background() for operations without specific
// timeout requirements.
package storage
