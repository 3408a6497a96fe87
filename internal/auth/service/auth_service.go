package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	userdomain "github.com/shoplist-app/shoplist-backend/internal/users/domain"
	userrepo "github.com/shoplist-app/shoplist-backend/internal/users/repository"
)

var (
	ErrEmailRequired       = errors.New("a valid email address is required")
	ErrPasswordTooShort    = errors.New("password must be at least 6 characters")
	ErrDisplayNameRequired = errors.New("display name is required")
	ErrEmailTaken          = errors.New("an account with this email already exists")
)

// UserCreator creates accounts in the identity provider. *fbauth.Client
// satisfies it.
type UserCreator interface {
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
}

// AuthService handles server-side registration: the account is created in
// the identity provider, then mirrored as a user document. Sign-in and
// token minting stay client-side; the server only ever sees verified ID
// tokens.
type AuthService struct {
	creator UserCreator
	users   *userrepo.UserRepository
}

func NewAuthService(creator UserCreator, users *userrepo.UserRepository) *AuthService {
	return &AuthService{creator: creator, users: users}
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (userdomain.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	displayName := strings.TrimSpace(req.DisplayName)

	if email == "" || !strings.Contains(email, "@") {
		return userdomain.User{}, ErrEmailRequired
	}
	if len(req.Password) < 6 {
		return userdomain.User{}, ErrPasswordTooShort
	}
	if displayName == "" {
		return userdomain.User{}, ErrDisplayNameRequired
	}

	params := (&fbauth.UserToCreate{}).
		Email(email).
		Password(req.Password).
		DisplayName(displayName)

	record, err := s.creator.CreateUser(ctx, params)
	if err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return userdomain.User{}, ErrEmailTaken
		}
		return userdomain.User{}, fmt.Errorf("creating auth user: %w", err)
	}

	user := userdomain.User{
		UID:         record.UID,
		Email:       email,
		DisplayName: displayName,
	}
	if err := s.users.Upsert(ctx, user); err != nil {
		return userdomain.User{}, fmt.Errorf("creating user document: %w", err)
	}
	return user, nil
}
