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


package badger

import (
	"github.com/dswho2/rag-recipe-finder/ai"
	"github.com/dswho2/rag-recipe-finder/storage"
)

// NewMemoryStores creates an in-memory recipe store and vector index
// sharing one backend, for testing. Returns store, index, backend, and
// error. Caller must close the backend when done.
func NewMemoryStores(embedder ai.Embedder) (storage.RecipeStore, storage.VectorIndex, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	store := NewRecipeStoreWithBackend(backend)
	index := NewVectorIndexWithBackend(backend, embedder)

	return store, index, backend, nil
}
