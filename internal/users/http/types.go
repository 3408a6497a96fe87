package http

import "github.com/shoplist-app/shoplist-backend/internal/users/repository"

// Handler bundles the dependencies for user HTTP endpoints.
type Handler struct {
	users *repository.UserRepository
}

func New(users *repository.UserRepository) *Handler {
	return &Handler{users: users}
}
