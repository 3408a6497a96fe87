package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shoplist-app/shoplist-backend/internal/auth/service"
)

// RegisterUser creates an account in the identity provider and mirrors it as
// a user document. This is the only unauthenticated mutation; it sits behind
// a per-IP rate limit.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req service.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		switch err {
		case service.ErrEmailRequired, service.ErrPasswordTooShort, service.ErrDisplayNameRequired:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case service.ErrEmailTaken:
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}
