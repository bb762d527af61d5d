// Package memory provides an in-process document store. It is the default
// backend for local runs and the workhorse of the test suite.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"finledger/internal/store"
)

type Store struct {
	mu          sync.Mutex
	collections map[string]map[string]store.Document
}

func New() *Store {
	return &Store{collections: make(map[string]map[string]store.Document)}
}

var _ store.Store = (*Store)(nil)

func (s *Store) Insert(_ context.Context, collection string, doc store.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]store.Document)
		s.collections[collection] = coll
	}

	id := uuid.NewString()
	stored := clone(doc)
	stored["id"] = id
	coll[id] = stored
	return id, nil
}

func (s *Store) GetByID(_ context.Context, collection, id string) (store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(doc), nil
}

func (s *Store) UpdateByID(_ context.Context, collection, id string, fields store.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return store.ErrNotFound
	}
	for k, v := range clone(fields) {
		if k == "id" {
			continue
		}
		doc[k] = v
	}
	return nil
}

func (s *Store) DeleteByID(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return store.ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *Store) QueryByEquality(_ context.Context, collection, field string, value any) ([]store.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.Document
	for _, doc := range s.collections[collection] {
		if equalJSON(doc[field], value) {
			out = append(out, clone(doc))
		}
	}
	return out, nil
}

// clone deep-copies a document through its JSON form so callers never share
// mutable state with the store.
func clone(doc store.Document) store.Document {
	data, err := json.Marshal(doc)
	if err != nil {
		// Documents come out of Encode and are always marshalable.
		return store.Document{}
	}
	var out store.Document
	if err := json.Unmarshal(data, &out); err != nil {
		return store.Document{}
	}
	return out
}

// equalJSON compares a stored value with a query value, normalizing both
// through JSON so int64(3) matches the float64(3) a decoded document holds.
func equalJSON(a, b any) bool {
	da, err := json.Marshal(a)
	if err != nil {
		return false
	}
	db, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(da) == string(db)
}
