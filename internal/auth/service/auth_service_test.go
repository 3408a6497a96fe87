package service_test

import (
	"context"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplist-app/shoplist-backend/internal/auth/service"
	"github.com/shoplist-app/shoplist-backend/internal/store/memory"
	userrepo "github.com/shoplist-app/shoplist-backend/internal/users/repository"
)

type stubCreator struct {
	created []*fbauth.UserToCreate
	err     error
}

func (s *stubCreator) CreateUser(_ context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.created = append(s.created, user)
	return &fbauth.UserRecord{UserInfo: &fbauth.UserInfo{UID: "uid-new"}}, nil
}

func newAuthService(t *testing.T) (*service.AuthService, *stubCreator, *userrepo.UserRepository) {
	t.Helper()
	creator := &stubCreator{}
	users := userrepo.NewUserRepository(memory.New())
	return service.NewAuthService(creator, users), creator, users
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the account and the user document", func(t *testing.T) {
		svc, creator, users := newAuthService(t)

		user, err := svc.Register(ctx, service.RegisterRequest{
			Email:       "  New@Example.COM ",
			Password:    "secret1",
			DisplayName: " New User ",
		})
		require.NoError(t, err)
		assert.Equal(t, "uid-new", user.UID)
		assert.Equal(t, "new@example.com", user.Email)
		assert.Equal(t, "New User", user.DisplayName)
		assert.Len(t, creator.created, 1)

		stored, err := users.GetByEmail(ctx, "new@example.com")
		require.NoError(t, err)
		assert.Equal(t, "uid-new", stored.UID)
		assert.False(t, stored.Deleted)
	})

	t.Run("invalid email", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		_, err := svc.Register(ctx, service.RegisterRequest{
			Email: "not-an-email", Password: "secret1", DisplayName: "X",
		})
		assert.ErrorIs(t, err, service.ErrEmailRequired)
	})

	t.Run("short password", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		_, err := svc.Register(ctx, service.RegisterRequest{
			Email: "a@b.com", Password: "12345", DisplayName: "X",
		})
		assert.ErrorIs(t, err, service.ErrPasswordTooShort)
	})

	t.Run("missing display name", func(t *testing.T) {
		svc, _, _ := newAuthService(t)
		_, err := svc.Register(ctx, service.RegisterRequest{
			Email: "a@b.com", Password: "secret1", DisplayName: "  ",
		})
		assert.ErrorIs(t, err, service.ErrDisplayNameRequired)
	})
}
