package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shoplist-app/shoplist-backend/internal/auth"
	"github.com/shoplist-app/shoplist-backend/internal/groups/domain"
	userdomain "github.com/shoplist-app/shoplist-backend/internal/users/domain"
)

type createReq struct {
	GroupName string `json:"groupName"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	group, err := h.svc.CreateGroup(c.Request.Context(), auth.UserUID(c), req.GroupName)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

func (h *Handler) list(c *gin.Context) {
	groups, err := h.svc.ListForOwner(c.Request.Context(), auth.UserUID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (h *Handler) get(c *gin.Context) {
	group, err := h.svc.Get(c.Request.Context(), auth.UserUID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

type renameReq struct {
	GroupName string `json:"groupName"`
}

func (h *Handler) rename(c *gin.Context) {
	var req renameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if err := h.svc.Rename(c.Request.Context(), auth.UserUID(c), c.Param("id"), req.GroupName); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type setMembersReq struct {
	MemberUIDs []string `json:"memberUids"`
}

func (h *Handler) setMembers(c *gin.Context) {
	var req setMembersReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	group, err := h.svc.SetMembers(c.Request.Context(), auth.UserUID(c), c.Param("id"), req.MemberUIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

type addMemberReq struct {
	Email string `json:"email"`
}

func (h *Handler) addMember(c *gin.Context) {
	var req addMemberReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	group, err := h.svc.AddMemberByEmail(c.Request.Context(), auth.UserUID(c), c.Param("id"), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *Handler) removeMember(c *gin.Context) {
	group, err := h.svc.RemoveMember(c.Request.Context(), auth.UserUID(c), c.Param("id"), c.Param("uid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, group)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.DeleteGroup(c.Request.Context(), auth.UserUID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func respondError(c *gin.Context, err error) {
	switch err {
	case domain.ErrGroupNotFound, userdomain.ErrUserNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case domain.ErrNameRequired:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case domain.ErrNotOwner, domain.ErrOwnerRemoval:
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case domain.ErrAlreadyMember:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
