package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shoplist-app/shoplist-backend/internal/auth"
	"github.com/shoplist-app/shoplist-backend/internal/users/domain"
)

func (h *Handler) me(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), auth.UserUID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type syncReq struct {
	DisplayName string `json:"displayName"`
}

// sync upserts the caller's user document from their verified token. First
// sign-in through a federated provider reaches the backend without a
// registration call, so the document is created lazily here.
func (h *Handler) sync(c *gin.Context) {
	var req syncReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	user := domain.User{
		UID:         auth.UserUID(c),
		Email:       auth.UserEmail(c),
		DisplayName: strings.TrimSpace(req.DisplayName),
	}
	if err := h.users.Upsert(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	stored, err := h.users.GetByID(c.Request.Context(), user.UID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stored)
}

type preferencesReq struct {
	Preferences map[string]any `json:"preferences"`
}

func (h *Handler) updatePreferences(c *gin.Context) {
	var req preferencesReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Preferences == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if err := h.users.UpdatePreferences(c.Request.Context(), auth.UserUID(c), req.Preferences); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// resolve looks up a user by email for the share dialogs. Soft-deleted
// accounts do not resolve.
func (h *Handler) resolve(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter is required"})
		return
	}

	user, err := h.users.GetByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}
	if user.Deleted {
		respondError(c, domain.ErrUserNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"uid":         user.UID,
		"email":       user.Email,
		"displayName": user.DisplayName,
	})
}

func respondError(c *gin.Context, err error) {
	switch err {
	case domain.ErrUserNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
