package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shoplist-app/shoplist-backend/internal/auth"
	listdomain "github.com/shoplist-app/shoplist-backend/internal/lists/domain"
	userdomain "github.com/shoplist-app/shoplist-backend/internal/users/domain"
)

func (h *Handler) overview(c *gin.Context) {
	overview, err := h.svc.Overview(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *Handler) deleteList(c *gin.Context) {
	if err := h.svc.DeleteList(c.Request.Context(), auth.UserEmail(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) deleteUser(c *gin.Context) {
	report, err := h.svc.DeleteUser(c.Request.Context(), auth.UserEmail(c), c.Param("uid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) audit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := h.svc.RecentAudit(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *Handler) danglingLinks(c *gin.Context) {
	listIDs, err := h.svc.ReportDanglingGroupLinks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listIds": listIDs})
}

func respondError(c *gin.Context, err error) {
	switch err {
	case listdomain.ErrListNotFound, userdomain.ErrUserNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
