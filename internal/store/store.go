// Package store defines the document-store port the application is written
// against. Production uses the Firestore adapter; tests use the in-memory
// adapter. Membership fields are mutated through ArrayUnion/ArrayRemove so
// concurrent writers converge to the set union instead of overwriting each
// other.
package store

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("document not found")

// Doc is a single document: its ID plus a flat field map.
type Doc struct {
	ID   string
	Data map[string]any
}

// Filter is a single query condition. Op is "==" or "array-contains".
type Filter struct {
	Path  string
	Op    string
	Value any
}

// Update mutates a single field. Value may be a plain value, nil (stored as
// null), or an ArrayUnion/ArrayRemove transform.
type Update struct {
	Path  string
	Value any
}

// ArrayUnion adds the given elements to an array field, skipping elements
// already present.
type ArrayUnion struct {
	Values []string
}

// ArrayRemove removes all instances of the given elements from an array
// field.
type ArrayRemove struct {
	Values []string
}

func Union(values ...string) ArrayUnion   { return ArrayUnion{Values: values} }
func Remove(values ...string) ArrayRemove { return ArrayRemove{Values: values} }

type OpKind int

const (
	OpSet OpKind = iota
	OpUpdate
	OpDelete
)

// WriteOp is one element of an atomic batch.
type WriteOp struct {
	Kind       OpKind
	Collection string
	DocID      string
	Data       map[string]any // OpSet
	Updates    []Update       // OpUpdate
}

// Store is the generic document store contract (spec'd collections: users,
// lists, items, groups).
type Store interface {
	// Create adds a document with a generated ID and returns the ID.
	Create(ctx context.Context, collection string, data map[string]any) (string, error)
	// Set writes a document at a known ID, overwriting any existing data.
	Set(ctx context.Context, collection, id string, data map[string]any) error
	Get(ctx context.Context, collection, id string) (Doc, error)
	Update(ctx context.Context, collection, id string, updates []Update) error
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, filters ...Filter) ([]Doc, error)
	// Subscribe registers a live query. The callback fires once immediately
	// with the current result set and again after every matching change.
	// The returned func cancels the subscription.
	Subscribe(ctx context.Context, collection string, filters []Filter, fn func([]Doc)) (func(), error)
	// BatchWrite applies all ops atomically: either every op is committed or
	// none are.
	BatchWrite(ctx context.Context, ops []WriteOp) error
}

// Field accessors tolerate missing fields and wrong types, returning zero
// values, so repositories stay free of type-assertion noise.

func (d Doc) String(key string) string {
	if v, ok := d.Data[key].(string); ok {
		return v
	}
	return ""
}

func (d Doc) Bool(key string) bool {
	if v, ok := d.Data[key].(bool); ok {
		return v
	}
	return false
}

func (d Doc) StringSlice(key string) []string {
	switch v := d.Data[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (d Doc) Time(key string) time.Time {
	switch v := d.Data[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (d Doc) Map(key string) map[string]any {
	if v, ok := d.Data[key].(map[string]any); ok {
		return v
	}
	return nil
}
