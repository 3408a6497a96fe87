package repository

import (
	"context"
	"strings"
	"time"

	"github.com/shoplist-app/shoplist-backend/internal/store"
	"github.com/shoplist-app/shoplist-backend/internal/users/domain"
)

const usersCollection = "users"

// UserRepository handles the users collection. Emails are case-folded to
// lowercase before storage and lookup.
type UserRepository struct {
	store store.Store
}

func NewUserRepository(s store.Store) *UserRepository {
	return &UserRepository{store: s}
}

// Upsert creates the user document or merges profile fields into an existing
// one. The document ID is the identity provider's UID.
func (r *UserRepository) Upsert(ctx context.Context, user domain.User) error {
	data := map[string]any{
		"uid":         user.UID,
		"email":       strings.ToLower(user.Email),
		"displayName": user.DisplayName,
	}
	if user.Role != "" {
		data["role"] = user.Role
	}

	existing, err := r.store.Get(ctx, usersCollection, user.UID)
	if err == nil {
		merged := existing.Data
		for k, v := range data {
			merged[k] = v
		}
		return r.store.Set(ctx, usersCollection, user.UID, merged)
	}
	if err != store.ErrNotFound {
		return err
	}

	data["deleted"] = false
	data["createdAt"] = time.Now().UTC()
	if user.Preferences != nil {
		data["preferences"] = user.Preferences
	}
	return r.store.Set(ctx, usersCollection, user.UID, data)
}

func (r *UserRepository) GetByID(ctx context.Context, uid string) (domain.User, error) {
	doc, err := r.store.Get(ctx, usersCollection, uid)
	if err == store.ErrNotFound {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, err
	}
	return docToUser(doc), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	docs, err := r.store.Query(ctx, usersCollection,
		store.Filter{Path: "email", Op: "==", Value: strings.ToLower(strings.TrimSpace(email))})
	if err != nil {
		return domain.User{}, err
	}
	if len(docs) == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}
	return docToUser(docs[0]), nil
}

func (r *UserRepository) ListAll(ctx context.Context) ([]domain.User, error) {
	docs, err := r.store.Query(ctx, usersCollection)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, docToUser(doc))
	}
	return users, nil
}

// MarkDeleted soft-deletes the user document. The auth record stays: the
// identity provider requires the user's own fresh credential to remove it.
func (r *UserRepository) MarkDeleted(ctx context.Context, uid string) error {
	err := r.store.Update(ctx, usersCollection, uid, []store.Update{
		{Path: "deleted", Value: true},
		{Path: "deletedAt", Value: time.Now().UTC().Format(time.RFC3339)},
	})
	if err == store.ErrNotFound {
		return domain.ErrUserNotFound
	}
	return err
}

func (r *UserRepository) UpdatePreferences(ctx context.Context, uid string, preferences map[string]any) error {
	err := r.store.Update(ctx, usersCollection, uid, []store.Update{
		{Path: "preferences", Value: preferences},
	})
	if err == store.ErrNotFound {
		return domain.ErrUserNotFound
	}
	return err
}

// IsDeleted reports whether the user is soft-deleted. Unknown UIDs are not
// deleted: the document may simply not be provisioned yet.
func (r *UserRepository) IsDeleted(ctx context.Context, uid string) (bool, error) {
	user, err := r.GetByID(ctx, uid)
	if err == domain.ErrUserNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return user.Deleted, nil
}

func docToUser(doc store.Doc) domain.User {
	return domain.User{
		UID:         doc.ID,
		Email:       doc.String("email"),
		DisplayName: doc.String("displayName"),
		Role:        doc.String("role"),
		Preferences: doc.Map("preferences"),
		Deleted:     doc.Bool("deleted"),
		DeletedAt:   doc.String("deletedAt"),
		CreatedAt:   doc.Time("createdAt"),
	}
}
