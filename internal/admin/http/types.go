package http

import "github.com/shoplist-app/shoplist-backend/internal/admin/service"

// Handler bundles the dependencies for admin HTTP endpoints.
type Handler struct {
	svc *service.AdminService
}

func New(svc *service.AdminService) *Handler {
	return &Handler{svc: svc}
}
