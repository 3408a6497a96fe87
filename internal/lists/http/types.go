package http

import (
	"github.com/shoplist-app/shoplist-backend/internal/lists/service"
	"github.com/shoplist-app/shoplist-backend/internal/realtime"
)

// Handler bundles the dependencies for list HTTP endpoints.
type Handler struct {
	svc *service.ListService
	bus *realtime.Bus
}

func New(svc *service.ListService, bus *realtime.Bus) *Handler {
	return &Handler{svc: svc, bus: bus}
}
