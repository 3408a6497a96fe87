// Package memory is an in-process implementation of the store port. It backs
// the policy-layer tests and supports fault injection so cascade atomicity
// and best-effort semantics can be exercised without a live backend.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/shoplist-app/shoplist-backend/internal/store"
)

type subscription struct {
	id         int
	collection string
	filters    []store.Filter
	fn         func([]store.Doc)
}

type Store struct {
	mu      sync.Mutex
	data    map[string]map[string]map[string]any // collection -> id -> fields
	subs    map[int]*subscription
	nextSub int

	docFailures map[string]error // collection/id -> error on any write
	batchErr    error
}

func New() *Store {
	return &Store{
		data:        make(map[string]map[string]map[string]any),
		subs:        make(map[int]*subscription),
		docFailures: make(map[string]error),
	}
}

// FailWrites makes every subsequent write touching collection/id return err.
func (s *Store) FailWrites(collection, id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docFailures[collection+"/"+id] = err
}

// FailBatch makes every subsequent BatchWrite fail without applying any op.
func (s *Store) FailBatch(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchErr = err
}

func (s *Store) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.New().String()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Set(_ context.Context, collection, id string, data map[string]any) error {
	s.mu.Lock()
	if err := s.docFailures[collection+"/"+id]; err != nil {
		s.mu.Unlock()
		return err
	}
	s.col(collection)[id] = cloneData(data)
	notify := s.pendingNotifications(collection)
	s.mu.Unlock()

	deliver(notify)
	return nil
}

func (s *Store) Get(_ context.Context, collection, id string) (store.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.col(collection)[id]
	if !ok {
		return store.Doc{}, store.ErrNotFound
	}
	return store.Doc{ID: id, Data: cloneData(data)}, nil
}

func (s *Store) Update(_ context.Context, collection, id string, updates []store.Update) error {
	s.mu.Lock()
	if err := s.docFailures[collection+"/"+id]; err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.applyUpdates(collection, id, updates); err != nil {
		s.mu.Unlock()
		return err
	}
	notify := s.pendingNotifications(collection)
	s.mu.Unlock()

	deliver(notify)
	return nil
}

func (s *Store) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	if err := s.docFailures[collection+"/"+id]; err != nil {
		s.mu.Unlock()
		return err
	}
	delete(s.col(collection), id)
	notify := s.pendingNotifications(collection)
	s.mu.Unlock()

	deliver(notify)
	return nil
}

func (s *Store) Query(_ context.Context, collection string, filters ...store.Filter) ([]store.Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runQuery(collection, filters), nil
}

func (s *Store) Subscribe(_ context.Context, collection string, filters []store.Filter, fn func([]store.Doc)) (func(), error) {
	s.mu.Lock()
	s.nextSub++
	sub := &subscription{id: s.nextSub, collection: collection, filters: filters, fn: fn}
	s.subs[sub.id] = sub
	initial := s.runQuery(collection, filters)
	s.mu.Unlock()

	// Immediate delivery of the current result set, per the port contract.
	fn(initial)

	return func() {
		s.mu.Lock()
		delete(s.subs, sub.id)
		s.mu.Unlock()
	}, nil
}

// BatchWrite validates every op before applying any, so a failing op leaves
// the store untouched (all-or-nothing).
func (s *Store) BatchWrite(_ context.Context, ops []store.WriteOp) error {
	s.mu.Lock()
	if s.batchErr != nil {
		err := s.batchErr
		s.mu.Unlock()
		return err
	}
	for _, op := range ops {
		if err := s.docFailures[op.Collection+"/"+op.DocID]; err != nil {
			s.mu.Unlock()
			return fmt.Errorf("batch write %s/%s: %w", op.Collection, op.DocID, err)
		}
		if op.Kind == store.OpUpdate {
			if _, ok := s.col(op.Collection)[op.DocID]; !ok {
				s.mu.Unlock()
				return fmt.Errorf("batch write %s/%s: %w", op.Collection, op.DocID, store.ErrNotFound)
			}
		}
	}
	touched := make([]string, 0, len(ops))
	for _, op := range ops {
		switch op.Kind {
		case store.OpSet:
			s.col(op.Collection)[op.DocID] = cloneData(op.Data)
		case store.OpUpdate:
			// Existence checked above; updates cannot fail here.
			_ = s.applyUpdates(op.Collection, op.DocID, op.Updates)
		case store.OpDelete:
			delete(s.col(op.Collection), op.DocID)
		}
		touched = append(touched, op.Collection)
	}
	notify := s.pendingNotifications(touched...)
	s.mu.Unlock()

	deliver(notify)
	return nil
}

func (s *Store) col(name string) map[string]map[string]any {
	c, ok := s.data[name]
	if !ok {
		c = make(map[string]map[string]any)
		s.data[name] = c
	}
	return c
}

func (s *Store) applyUpdates(collection, id string, updates []store.Update) error {
	doc, ok := s.col(collection)[id]
	if !ok {
		return store.ErrNotFound
	}
	for _, u := range updates {
		switch v := u.Value.(type) {
		case store.ArrayUnion:
			doc[u.Path] = unionSlice(toStrings(doc[u.Path]), v.Values)
		case store.ArrayRemove:
			doc[u.Path] = removeSlice(toStrings(doc[u.Path]), v.Values)
		default:
			doc[u.Path] = v
		}
	}
	return nil
}

func (s *Store) runQuery(collection string, filters []store.Filter) []store.Doc {
	docs := make([]store.Doc, 0)
	for id, data := range s.col(collection) {
		if matches(data, filters) {
			docs = append(docs, store.Doc{ID: id, Data: cloneData(data)})
		}
	}
	return docs
}

// pendingNotifications re-runs the live queries on the changed collections
// under the lock and returns closures to invoke after unlocking, so callbacks
// never run while the store is locked. Subscriptions on other collections are
// untouched; only matching changes are delivered.
func (s *Store) pendingNotifications(collections ...string) []func() {
	changed := make(map[string]bool, len(collections))
	for _, c := range collections {
		changed[c] = true
	}

	var notify []func()
	for _, sub := range s.subs {
		if !changed[sub.collection] {
			continue
		}
		docs := s.runQuery(sub.collection, sub.filters)
		fn := sub.fn
		notify = append(notify, func() { fn(docs) })
	}
	return notify
}

func deliver(notify []func()) {
	for _, fn := range notify {
		fn()
	}
}

func matches(data map[string]any, filters []store.Filter) bool {
	for _, f := range filters {
		switch f.Op {
		case "==":
			if data[f.Path] != f.Value {
				return false
			}
		case "array-contains":
			found := false
			want, _ := f.Value.(string)
			for _, v := range toStrings(data[f.Path]) {
				if v == want {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func toStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func unionSlice(current, add []string) []string {
	out := make([]string, 0, len(current)+len(add))
	seen := make(map[string]bool, len(current)+len(add))
	for _, v := range current {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, v := range add {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func removeSlice(current, drop []string) []string {
	gone := make(map[string]bool, len(drop))
	for _, v := range drop {
		gone[v] = true
	}
	out := make([]string, 0, len(current))
	for _, v := range current {
		if !gone[v] {
			out = append(out, v)
		}
	}
	return out
}

func cloneData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if s, ok := v.([]string); ok {
			c := make([]string, len(s))
			copy(c, s)
			out[k] = c
			continue
		}
		out[k] = v
	}
	return out
}
