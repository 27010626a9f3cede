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


package storage

import (
	"fmt"
	"time"

	"github.com/dswho2/rag-recipe-finder/core"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// IndexEntry is the stored payload of a similarity index entry: the
// embedding vector plus the compact metadata used for filtering and
// overlap ranking.
type IndexEntry struct {
	ID       string
	Vector   []float32
	Metadata core.IndexMetadata
}

// MarshalRecipe serializes a Recipe to bytes.
func MarshalRecipe(recipe *core.Recipe) []byte {
	bs := make([]byte, sizeRecipe(recipe))
	marshalRecipe(recipe, bs)
	return bs
}

// UnmarshalRecipe deserializes a Recipe from bytes.
func UnmarshalRecipe(data []byte) (*core.Recipe, error) {
	recipe, _, err := unmarshalRecipe(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return recipe, nil
}

// MarshalIndexEntry serializes an IndexEntry to bytes.
func MarshalIndexEntry(entry *IndexEntry) []byte {
	bs := make([]byte, sizeIndexEntry(entry))
	marshalIndexEntry(entry, bs)
	return bs
}

// UnmarshalIndexEntry deserializes an IndexEntry from bytes.
func UnmarshalIndexEntry(data []byte) (*IndexEntry, error) {
	entry, _, err := unmarshalIndexEntry(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return entry, nil
}

// reader tracks the read offset through a buffer so the field-by-field
// unmarshal code stays linear. The first error sticks; subsequent reads
// are no-ops.
type reader struct {
	bs  []byte
	n   int
	err error
}

func (r *reader) str() string {
	if r.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) boolean() bool {
	if r.err != nil {
		return false
	}
	v, n, err := ord.Bool.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) integer() int {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) int64() int64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int64.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) float64() float64 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Float64.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) float32() float32 {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Float32.Unmarshal(r.bs[r.n:])
	r.n += n
	r.err = err
	return v
}

// count reads a slice length and rejects negative values.
func (r *reader) count() int {
	v := r.integer()
	if r.err == nil && v < 0 {
		r.err = ErrSerializationFailed
	}
	if r.err != nil {
		return 0
	}
	return v
}

func (r *reader) strSlice() []string {
	n := r.count()
	if n == 0 {
		return nil
	}
	v := make([]string, n)
	for i := range v {
		v[i] = r.str()
	}
	return v
}

// Recipe

func marshalRecipe(r *core.Recipe, bs []byte) (n int) {
	n = ord.String.Marshal(r.ID, bs)
	n += ord.String.Marshal(r.Title, bs[n:])
	n += ord.String.Marshal(r.Description, bs[n:])

	n += varint.Int.Marshal(len(r.Ingredients), bs[n:])
	for i := range r.Ingredients {
		n += marshalIngredient(&r.Ingredients[i], bs[n:])
	}

	n += varint.Int.Marshal(len(r.Instructions), bs[n:])
	for i := range r.Instructions {
		n += varint.Int.Marshal(r.Instructions[i].StepNumber, bs[n:])
		n += ord.String.Marshal(r.Instructions[i].Text, bs[n:])
	}

	n += varint.Int.Marshal(r.CookingTime, bs[n:])
	n += varint.Int.Marshal(r.PrepTime, bs[n:])
	n += varint.Int.Marshal(r.Servings, bs[n:])
	n += ord.String.Marshal(r.Cuisine, bs[n:])
	n += marshalStringSlice(r.Tags, bs[n:])
	n += ord.String.Marshal(r.Source, bs[n:])
	n += ord.String.Marshal(r.SourceURL, bs[n:])
	n += ord.String.Marshal(r.Fingerprint, bs[n:])
	n += varint.Int64.Marshal(r.InsertedAt.UnixMicro(), bs[n:])
	n += varint.Int64.Marshal(r.UpdatedAt.UnixMicro(), bs[n:])
	return n
}

func unmarshalRecipe(bs []byte) (*core.Recipe, int, error) {
	rd := &reader{bs: bs}
	r := &core.Recipe{}

	r.ID = rd.str()
	r.Title = rd.str()
	r.Description = rd.str()

	if n := rd.count(); n > 0 {
		r.Ingredients = make([]core.Ingredient, n)
		for i := range r.Ingredients {
			unmarshalIngredient(&r.Ingredients[i], rd)
		}
	}

	if n := rd.count(); n > 0 {
		r.Instructions = make([]core.RecipeStep, n)
		for i := range r.Instructions {
			r.Instructions[i].StepNumber = rd.integer()
			r.Instructions[i].Text = rd.str()
		}
	}

	r.CookingTime = rd.integer()
	r.PrepTime = rd.integer()
	r.Servings = rd.integer()
	r.Cuisine = rd.str()
	r.Tags = rd.strSlice()
	r.Source = rd.str()
	r.SourceURL = rd.str()
	r.Fingerprint = rd.str()
	r.InsertedAt = time.UnixMicro(rd.int64()).UTC()
	r.UpdatedAt = time.UnixMicro(rd.int64()).UTC()

	if rd.err != nil {
		return nil, rd.n, rd.err
	}
	return r, rd.n, nil
}

func sizeRecipe(r *core.Recipe) (size int) {
	size = ord.String.Size(r.ID)
	size += ord.String.Size(r.Title)
	size += ord.String.Size(r.Description)

	size += varint.Int.Size(len(r.Ingredients))
	for i := range r.Ingredients {
		size += sizeIngredient(&r.Ingredients[i])
	}

	size += varint.Int.Size(len(r.Instructions))
	for i := range r.Instructions {
		size += varint.Int.Size(r.Instructions[i].StepNumber)
		size += ord.String.Size(r.Instructions[i].Text)
	}

	size += varint.Int.Size(r.CookingTime)
	size += varint.Int.Size(r.PrepTime)
	size += varint.Int.Size(r.Servings)
	size += ord.String.Size(r.Cuisine)
	size += sizeStringSlice(r.Tags)
	size += ord.String.Size(r.Source)
	size += ord.String.Size(r.SourceURL)
	size += ord.String.Size(r.Fingerprint)
	size += varint.Int64.Size(r.InsertedAt.UnixMicro())
	size += varint.Int64.Size(r.UpdatedAt.UnixMicro())
	return size
}

// Ingredient

func marshalIngredient(ing *core.Ingredient, bs []byte) (n int) {
	n = ord.String.Marshal(ing.Text, bs)
	n += ord.String.Marshal(ing.Name, bs[n:])
	n += ord.Bool.Marshal(ing.Quantity != nil, bs[n:])
	if ing.Quantity != nil {
		n += varint.Float64.Marshal(*ing.Quantity, bs[n:])
	}
	n += ord.String.Marshal(ing.Unit, bs[n:])
	return n
}

func unmarshalIngredient(ing *core.Ingredient, rd *reader) {
	ing.Text = rd.str()
	ing.Name = rd.str()
	if rd.boolean() {
		q := rd.float64()
		if rd.err == nil {
			ing.Quantity = &q
		}
	}
	ing.Unit = rd.str()
}

func sizeIngredient(ing *core.Ingredient) (size int) {
	size = ord.String.Size(ing.Text)
	size += ord.String.Size(ing.Name)
	size += ord.Bool.Size(ing.Quantity != nil)
	if ing.Quantity != nil {
		size += varint.Float64.Size(*ing.Quantity)
	}
	size += ord.String.Size(ing.Unit)
	return size
}

// IndexEntry

func marshalIndexEntry(e *IndexEntry, bs []byte) (n int) {
	n = ord.String.Marshal(e.ID, bs)
	n += varint.Int.Marshal(len(e.Vector), bs[n:])
	for _, v := range e.Vector {
		n += varint.Float32.Marshal(v, bs[n:])
	}
	n += ord.String.Marshal(e.Metadata.Title, bs[n:])
	n += marshalStringSlice(e.Metadata.Ingredients, bs[n:])
	n += marshalStringSlice(e.Metadata.Tags, bs[n:])
	n += ord.String.Marshal(e.Metadata.Cuisine, bs[n:])
	return n
}

func unmarshalIndexEntry(bs []byte) (*IndexEntry, int, error) {
	rd := &reader{bs: bs}
	e := &IndexEntry{}

	e.ID = rd.str()
	if n := rd.count(); n > 0 {
		e.Vector = make([]float32, n)
		for i := range e.Vector {
			e.Vector[i] = rd.float32()
		}
	}
	e.Metadata.Title = rd.str()
	e.Metadata.Ingredients = rd.strSlice()
	e.Metadata.Tags = rd.strSlice()
	e.Metadata.Cuisine = rd.str()

	if rd.err != nil {
		return nil, rd.n, rd.err
	}
	return e, rd.n, nil
}

func sizeIndexEntry(e *IndexEntry) (size int) {
	size = ord.String.Size(e.ID)
	size += varint.Int.Size(len(e.Vector))
	for _, v := range e.Vector {
		size += varint.Float32.Size(v)
	}
	size += ord.String.Size(e.Metadata.Title)
	size += sizeStringSlice(e.Metadata.Ingredients)
	size += sizeStringSlice(e.Metadata.Tags)
	size += ord.String.Size(e.Metadata.Cuisine)
	return size
}

// string slices

func marshalStringSlice(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func sizeStringSlice(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}
