// Package firestore adapts Cloud Firestore to the store port.
package firestore

import (
	"context"
	"fmt"
	"log/slog"

	gfs "cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/shoplist-app/shoplist-backend/internal/store"
)

type Store struct {
	client *gfs.Client
}

func New(client *gfs.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, data)
	if err != nil {
		return "", fmt.Errorf("create %s document: %w", collection, err)
	}
	return ref.ID, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, data map[string]any) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, data); err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Doc, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return store.Doc{}, store.ErrNotFound
	}
	if err != nil {
		return store.Doc{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return store.Doc{ID: snap.Ref.ID, Data: snap.Data()}, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, updates []store.Update) error {
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, toFirestoreUpdates(updates))
	if status.Code(err) == codes.NotFound {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, collection string, filters ...store.Filter) ([]store.Doc, error) {
	snaps, err := s.buildQuery(collection, filters).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	docs := make([]store.Doc, 0, len(snaps))
	for _, snap := range snaps {
		docs = append(docs, store.Doc{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

// Subscribe wraps Firestore's snapshot listener. The iterator delivers the
// current result set first, then a new snapshot after every change, matching
// the port contract.
func (s *Store) Subscribe(ctx context.Context, collection string, filters []store.Filter, fn func([]store.Doc)) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	it := s.buildQuery(collection, filters).Snapshots(subCtx)

	go func() {
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					slog.Error("snapshot listener stopped", "collection", collection, "error", err)
				}
				return
			}
			docs, err := collectSnapshot(snap)
			if err != nil {
				slog.Error("reading snapshot", "collection", collection, "error", err)
				continue
			}
			fn(docs)
		}
	}()

	return cancel, nil
}

// BatchWrite runs all ops in a single transaction so a crash cannot apply a
// prefix of the batch.
func (s *Store) BatchWrite(ctx context.Context, ops []store.WriteOp) error {
	err := s.client.RunTransaction(ctx, func(_ context.Context, tx *gfs.Transaction) error {
		for _, op := range ops {
			ref := s.client.Collection(op.Collection).Doc(op.DocID)
			var err error
			switch op.Kind {
			case store.OpSet:
				err = tx.Set(ref, op.Data)
			case store.OpUpdate:
				err = tx.Update(ref, toFirestoreUpdates(op.Updates))
			case store.OpDelete:
				err = tx.Delete(ref)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("batch write: %w", err)
	}
	return nil
}

func (s *Store) buildQuery(collection string, filters []store.Filter) gfs.Query {
	q := s.client.Collection(collection).Query
	for _, f := range filters {
		q = q.Where(f.Path, f.Op, f.Value)
	}
	return q
}

func collectSnapshot(snap *gfs.QuerySnapshot) ([]store.Doc, error) {
	var docs []store.Doc
	for {
		d, err := snap.Documents.Next()
		if err == iterator.Done {
			return docs, nil
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, store.Doc{ID: d.Ref.ID, Data: d.Data()})
	}
}

func toFirestoreUpdates(updates []store.Update) []gfs.Update {
	out := make([]gfs.Update, 0, len(updates))
	for _, u := range updates {
		out = append(out, gfs.Update{Path: u.Path, Value: toFirestoreValue(u.Value)})
	}
	return out
}

func toFirestoreValue(v any) any {
	switch t := v.(type) {
	case store.ArrayUnion:
		return gfs.ArrayUnion(toAnySlice(t.Values)...)
	case store.ArrayRemove:
		return gfs.ArrayRemove(toAnySlice(t.Values)...)
	default:
		return v
	}
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
