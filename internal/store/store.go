// Package store defines the document persistence contract the domain engine
// is written against. Backends only need field-equality queries; all richer
// filtering happens in the services, so no backend has to maintain compound
// indexes.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Collection names used by the engine.
const (
	Incomes    = "incomes"
	Expenses   = "expenses"
	Budgets    = "budgets"
	Goals      = "goals"
	Bills      = "bills"
	Activities = "activities"
)

// ErrNotFound is returned by GetByID, UpdateByID and DeleteByID when the
// record does not exist in the collection.
var ErrNotFound = errors.New("document not found")

// Document is a schemaless record as held by a backend. Values are the JSON
// scalar types plus nested maps and slices.
type Document map[string]any

// Store is the persistence collaborator.
//
// UpdateByID has merge semantics: only the named top-level fields change,
// everything else in the stored document is left untouched. Timestamps
// round-trip as RFC 3339 strings, so second precision survives any backend.
type Store interface {
	Insert(ctx context.Context, collection string, doc Document) (id string, err error)
	GetByID(ctx context.Context, collection, id string) (Document, error)
	UpdateByID(ctx context.Context, collection, id string, fields Document) error
	DeleteByID(ctx context.Context, collection, id string) error
	QueryByEquality(ctx context.Context, collection, field string, value any) ([]Document, error)
}

// Encode converts a domain struct into a Document via its JSON form.
func Encode(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return doc, nil
}

// Decode fills a domain struct from a Document.
func Decode(doc Document, v any) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	return nil
}

// DecodeAll fills a slice of domain structs from query results.
func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := Decode(doc, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
