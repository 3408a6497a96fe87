package repository

import (
	"context"
	"time"

	"github.com/shoplist-app/shoplist-backend/internal/groups/domain"
	"github.com/shoplist-app/shoplist-backend/internal/store"
)

const groupsCollection = "groups"

type GroupRepository struct {
	store store.Store
}

func NewGroupRepository(s store.Store) *GroupRepository {
	return &GroupRepository{store: s}
}

func (r *GroupRepository) Create(ctx context.Context, group domain.Group) (string, error) {
	return r.store.Create(ctx, groupsCollection, map[string]any{
		"groupName":  group.GroupName,
		"ownerId":    group.OwnerID,
		"memberUids": group.MemberUIDs,
		"createdAt":  time.Now().UTC(),
	})
}

func (r *GroupRepository) Get(ctx context.Context, id string) (domain.Group, error) {
	doc, err := r.store.Get(ctx, groupsCollection, id)
	if err == store.ErrNotFound {
		return domain.Group{}, domain.ErrGroupNotFound
	}
	if err != nil {
		return domain.Group{}, err
	}
	return docToGroup(doc), nil
}

// SetMembers replaces the whole member set. Callers run the owner-membership
// validation first; this is the raw write.
func (r *GroupRepository) SetMembers(ctx context.Context, id string, memberUIDs []string) error {
	err := r.store.Update(ctx, groupsCollection, id, []store.Update{
		{Path: "memberUids", Value: memberUIDs},
	})
	if err == store.ErrNotFound {
		return domain.ErrGroupNotFound
	}
	return err
}

func (r *GroupRepository) Rename(ctx context.Context, id, name string) error {
	err := r.store.Update(ctx, groupsCollection, id, []store.Update{
		{Path: "groupName", Value: name},
	})
	if err == store.ErrNotFound {
		return domain.ErrGroupNotFound
	}
	return err
}

// Delete removes the group document only. Lists linked to the group keep
// their dangling linkedGroupId reference on purpose.
func (r *GroupRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, groupsCollection, id)
}

func (r *GroupRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Group, error) {
	docs, err := r.store.Query(ctx, groupsCollection,
		store.Filter{Path: "ownerId", Op: "==", Value: ownerID})
	if err != nil {
		return nil, err
	}
	return docsToGroups(docs), nil
}

// SubscribeByOwner delivers the owner's groups immediately and again after
// every change.
func (r *GroupRepository) SubscribeByOwner(ctx context.Context, ownerID string, fn func([]domain.Group)) (func(), error) {
	filters := []store.Filter{{Path: "ownerId", Op: "==", Value: ownerID}}
	return r.store.Subscribe(ctx, groupsCollection, filters, func(docs []store.Doc) {
		fn(docsToGroups(docs))
	})
}

func docToGroup(doc store.Doc) domain.Group {
	return domain.Group{
		ID:         doc.ID,
		GroupName:  doc.String("groupName"),
		OwnerID:    doc.String("ownerId"),
		MemberUIDs: doc.StringSlice("memberUids"),
		CreatedAt:  doc.Time("createdAt"),
	}
}

func docsToGroups(docs []store.Doc) []domain.Group {
	groups := make([]domain.Group, 0, len(docs))
	for _, doc := range docs {
		groups = append(groups, docToGroup(doc))
	}
	return groups
}
