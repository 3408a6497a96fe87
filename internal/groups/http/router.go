package http

import "github.com/gin-gonic/gin"

// Register attaches group routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.rename)
	rg.DELETE("/:id", h.delete)

	rg.PUT("/:id/members", h.setMembers)
	rg.POST("/:id/members", h.addMember)
	rg.DELETE("/:id/members/:uid", h.removeMember)
}
