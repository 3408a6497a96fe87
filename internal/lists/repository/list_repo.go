package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shoplist-app/shoplist-backend/internal/lists/domain"
	"github.com/shoplist-app/shoplist-backend/internal/store"
)

const (
	listsCollection = "lists"
	itemsCollection = "items"
)

// ListRepository handles the lists collection. Membership writes go through
// array-union / array-remove so concurrent sharers converge to the union
// instead of overwriting each other.
type ListRepository struct {
	store store.Store
}

func NewListRepository(s store.Store) *ListRepository {
	return &ListRepository{store: s}
}

func (r *ListRepository) Create(ctx context.Context, list domain.List) (string, error) {
	var linkedGroup any
	if list.LinkedGroupID != "" {
		linkedGroup = list.LinkedGroupID
	}
	return r.store.Create(ctx, listsCollection, map[string]any{
		"listName":      list.ListName,
		"icon":          list.Icon,
		"color":         list.Color,
		"location":      list.Location,
		"creatorId":     list.CreatorID,
		"members":       list.Members,
		"linkedGroupId": linkedGroup,
		"status":        domain.StatusActive,
		"isArchived":    false,
		"createdAt":     time.Now().UTC(),
	})
}

func (r *ListRepository) Get(ctx context.Context, id string) (domain.List, error) {
	doc, err := r.store.Get(ctx, listsCollection, id)
	if err == store.ErrNotFound {
		return domain.List{}, domain.ErrListNotFound
	}
	if err != nil {
		return domain.List{}, err
	}
	return docToList(doc), nil
}

// SetFields does a partial field-level update (rename, recolor, archive).
// Concurrent edits to different fields are safe; same-field edits are
// last-writer-wins.
func (r *ListRepository) SetFields(ctx context.Context, id string, fields map[string]any) error {
	updates := make([]store.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, store.Update{Path: path, Value: value})
	}
	err := r.store.Update(ctx, listsCollection, id, updates)
	if err == store.ErrNotFound {
		return domain.ErrListNotFound
	}
	return err
}

func (r *ListRepository) AddMember(ctx context.Context, id, uid string) error {
	err := r.store.Update(ctx, listsCollection, id, []store.Update{
		{Path: "members", Value: store.Union(uid)},
	})
	if err == store.ErrNotFound {
		return domain.ErrListNotFound
	}
	return err
}

func (r *ListRepository) RemoveMember(ctx context.Context, id, uid string) error {
	err := r.store.Update(ctx, listsCollection, id, []store.Update{
		{Path: "members", Value: store.Remove(uid)},
	})
	if err == store.ErrNotFound {
		return domain.ErrListNotFound
	}
	return err
}

// LinkGroup records the group link and snapshot-unions the group's current
// members into the list in a single write. Later group edits do not
// propagate until the list is linked again.
func (r *ListRepository) LinkGroup(ctx context.Context, id, groupID string, memberUIDs []string) error {
	err := r.store.Update(ctx, listsCollection, id, []store.Update{
		{Path: "linkedGroupId", Value: groupID},
		{Path: "members", Value: store.Union(memberUIDs...)},
	})
	if err == store.ErrNotFound {
		return domain.ErrListNotFound
	}
	return err
}

// Unlink clears the group reference. Current members stay.
func (r *ListRepository) Unlink(ctx context.Context, id string) error {
	err := r.store.Update(ctx, listsCollection, id, []store.Update{
		{Path: "linkedGroupId", Value: nil},
	})
	if err == store.ErrNotFound {
		return domain.ErrListNotFound
	}
	return err
}

// TransferCreator hands the list to a new creator with an explicit member
// set. Used only by the account-deletion cascade, which computes the
// remaining members itself.
func (r *ListRepository) TransferCreator(ctx context.Context, id, newCreatorID string, members []string) error {
	err := r.store.Update(ctx, listsCollection, id, []store.Update{
		{Path: "creatorId", Value: newCreatorID},
		{Path: "members", Value: members},
	})
	if err == store.ErrNotFound {
		return domain.ErrListNotFound
	}
	return err
}

func (r *ListRepository) ListByMember(ctx context.Context, uid string) ([]domain.List, error) {
	docs, err := r.store.Query(ctx, listsCollection,
		store.Filter{Path: "members", Op: "array-contains", Value: uid})
	if err != nil {
		return nil, err
	}
	return docsToLists(docs), nil
}

func (r *ListRepository) ListByCreator(ctx context.Context, uid string) ([]domain.List, error) {
	docs, err := r.store.Query(ctx, listsCollection,
		store.Filter{Path: "creatorId", Op: "==", Value: uid})
	if err != nil {
		return nil, err
	}
	return docsToLists(docs), nil
}

func (r *ListRepository) ListAll(ctx context.Context) ([]domain.List, error) {
	docs, err := r.store.Query(ctx, listsCollection)
	if err != nil {
		return nil, err
	}
	return docsToLists(docs), nil
}

// SubscribeByMember delivers the user's lists immediately and again after
// every change.
func (r *ListRepository) SubscribeByMember(ctx context.Context, uid string, fn func([]domain.List)) (func(), error) {
	filters := []store.Filter{{Path: "members", Op: "array-contains", Value: uid}}
	return r.store.Subscribe(ctx, listsCollection, filters, func(docs []store.Doc) {
		fn(docsToLists(docs))
	})
}

// DeleteWithItems deletes the list and every item referencing it as one
// atomic batch. A failure leaves the list and all its items in place.
func (r *ListRepository) DeleteWithItems(ctx context.Context, id string) error {
	itemDocs, err := r.store.Query(ctx, itemsCollection,
		store.Filter{Path: "listId", Op: "==", Value: id})
	if err != nil {
		return fmt.Errorf("loading items for cascade delete: %w", err)
	}

	ops := make([]store.WriteOp, 0, len(itemDocs)+1)
	for _, doc := range itemDocs {
		ops = append(ops, store.WriteOp{Kind: store.OpDelete, Collection: itemsCollection, DocID: doc.ID})
	}
	ops = append(ops, store.WriteOp{Kind: store.OpDelete, Collection: listsCollection, DocID: id})

	return r.store.BatchWrite(ctx, ops)
}

func docToList(doc store.Doc) domain.List {
	return domain.List{
		ID:            doc.ID,
		ListName:      doc.String("listName"),
		Icon:          doc.String("icon"),
		Color:         doc.String("color"),
		Location:      doc.String("location"),
		CreatorID:     doc.String("creatorId"),
		Members:       doc.StringSlice("members"),
		LinkedGroupID: doc.String("linkedGroupId"),
		Status:        doc.String("status"),
		IsArchived:    doc.Bool("isArchived"),
		CreatedAt:     doc.Time("createdAt"),
	}
}

func docsToLists(docs []store.Doc) []domain.List {
	lists := make([]domain.List, 0, len(docs))
	for _, doc := range docs {
		lists = append(lists, docToList(doc))
	}
	return lists
}
