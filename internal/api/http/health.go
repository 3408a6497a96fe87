package http

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	AuditDB   string    `json:"auditDb,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	auditDB     *sql.DB
}

func NewHealthHandler(serviceName, version string, auditDB *sql.DB) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		auditDB:     auditDB,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := "disabled"
	if h.auditDB != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := h.auditDB.PingContext(pingCtx); err != nil {
			dbStatus = "down"
		} else {
			dbStatus = "up"
		}
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		AuditDB:   dbStatus,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
