package http

import "github.com/shoplist-app/shoplist-backend/internal/groups/service"

// Handler bundles the dependencies for group HTTP endpoints.
type Handler struct {
	svc *service.GroupService
}

func New(svc *service.GroupService) *Handler {
	return &Handler{svc: svc}
}
