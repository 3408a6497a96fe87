package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shoplist-app/shoplist-backend/internal/auth"
	groupdomain "github.com/shoplist-app/shoplist-backend/internal/groups/domain"
	"github.com/shoplist-app/shoplist-backend/internal/lists/domain"
	"github.com/shoplist-app/shoplist-backend/internal/lists/service"
	userdomain "github.com/shoplist-app/shoplist-backend/internal/users/domain"
)

func (h *Handler) create(c *gin.Context) {
	var req service.CreateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	list, err := h.svc.CreateList(c.Request.Context(), auth.UserUID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, list)
}

func (h *Handler) list(c *gin.Context) {
	lists, err := h.svc.ListForUser(c.Request.Context(), auth.UserUID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lists": lists})
}

func (h *Handler) get(c *gin.Context) {
	list, err := h.svc.Get(c.Request.Context(), auth.UserUID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) update(c *gin.Context) {
	var req service.UpdateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if err := h.svc.Update(c.Request.Context(), auth.UserUID(c), c.Param("id"), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) archive(c *gin.Context) {
	if err := h.svc.Archive(c.Request.Context(), auth.UserUID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) reactivate(c *gin.Context) {
	if err := h.svc.Reactivate(c.Request.Context(), auth.UserUID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.DeleteList(c.Request.Context(), auth.UserUID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type shareReq struct {
	Email string `json:"email"`
}

func (h *Handler) share(c *gin.Context) {
	var req shareReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	user, err := h.svc.AddMemberByEmail(c.Request.Context(), auth.UserUID(c), c.Param("id"), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": user})
}

func (h *Handler) removeMember(c *gin.Context) {
	if err := h.svc.RemoveMember(c.Request.Context(), auth.UserUID(c), c.Param("id"), c.Param("uid")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type linkReq struct {
	GroupID string `json:"groupId"`
}

func (h *Handler) link(c *gin.Context) {
	var req linkReq
	if err := c.ShouldBindJSON(&req); err != nil || req.GroupID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if err := h.svc.LinkListToGroup(c.Request.Context(), auth.UserUID(c), c.Param("id"), req.GroupID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) unlink(c *gin.Context) {
	if err := h.svc.UnlinkListFromGroup(c.Request.Context(), auth.UserUID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) addItem(c *gin.Context) {
	var req service.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	item, err := h.svc.AddItem(c.Request.Context(), auth.UserUID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) listItems(c *gin.Context) {
	items, err := h.svc.ListItems(c.Request.Context(), auth.UserUID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) togglePurchased(c *gin.Context) {
	item, err := h.svc.TogglePurchased(c.Request.Context(), auth.UserUID(c), c.Param("itemId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) deleteItem(c *gin.Context) {
	if err := h.svc.DeleteItem(c.Request.Context(), auth.UserUID(c), c.Param("itemId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// respondError maps domain sentinels to HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch err {
	case domain.ErrListNotFound, domain.ErrItemNotFound, userdomain.ErrUserNotFound, groupdomain.ErrGroupNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case domain.ErrNameRequired, domain.ErrItemNameRequired:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.ErrNotMember, domain.ErrCreatorRemoval, domain.ErrGroupMemberRemoval:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case domain.ErrAlreadyMember, domain.ErrAdminShare:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
