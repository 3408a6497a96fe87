package repository

import (
	"context"

	"github.com/shoplist-app/shoplist-backend/internal/lists/domain"
	"github.com/shoplist-app/shoplist-backend/internal/store"
)

type ItemRepository struct {
	store store.Store
}

func NewItemRepository(s store.Store) *ItemRepository {
	return &ItemRepository{store: s}
}

func (r *ItemRepository) Create(ctx context.Context, item domain.Item) (string, error) {
	return r.store.Create(ctx, itemsCollection, map[string]any{
		"itemName":    item.ItemName,
		"quantity":    item.Quantity,
		"unit":        item.Unit,
		"isPurchased": false,
		"listId":      item.ListID,
		"addedBy":     item.AddedBy,
	})
}

func (r *ItemRepository) Get(ctx context.Context, id string) (domain.Item, error) {
	doc, err := r.store.Get(ctx, itemsCollection, id)
	if err == store.ErrNotFound {
		return domain.Item{}, domain.ErrItemNotFound
	}
	if err != nil {
		return domain.Item{}, err
	}
	return docToItem(doc), nil
}

func (r *ItemRepository) ListByList(ctx context.Context, listID string) ([]domain.Item, error) {
	docs, err := r.store.Query(ctx, itemsCollection,
		store.Filter{Path: "listId", Op: "==", Value: listID})
	if err != nil {
		return nil, err
	}
	return docsToItems(docs), nil
}

// SetPurchased is a direct field write, safe under concurrent edits to other
// fields, last-writer-wins on this one.
func (r *ItemRepository) SetPurchased(ctx context.Context, id string, purchased bool) error {
	err := r.store.Update(ctx, itemsCollection, id, []store.Update{
		{Path: "isPurchased", Value: purchased},
	})
	if err == store.ErrNotFound {
		return domain.ErrItemNotFound
	}
	return err
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, itemsCollection, id)
}

// SubscribeByList delivers the list's items immediately and again after
// every change.
func (r *ItemRepository) SubscribeByList(ctx context.Context, listID string, fn func([]domain.Item)) (func(), error) {
	filters := []store.Filter{{Path: "listId", Op: "==", Value: listID}}
	return r.store.Subscribe(ctx, itemsCollection, filters, func(docs []store.Doc) {
		fn(docsToItems(docs))
	})
}

func docToItem(doc store.Doc) domain.Item {
	return domain.Item{
		ID:          doc.ID,
		ListID:      doc.String("listId"),
		ItemName:    doc.String("itemName"),
		Quantity:    doc.String("quantity"),
		Unit:        doc.String("unit"),
		IsPurchased: doc.Bool("isPurchased"),
		AddedBy:     doc.String("addedBy"),
	}
}

func docsToItems(docs []store.Doc) []domain.Item {
	items := make([]domain.Item, 0, len(docs))
	for _, doc := range docs {
		items = append(items, docToItem(doc))
	}
	return items
}
