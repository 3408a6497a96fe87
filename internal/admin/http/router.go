package http

import "github.com/gin-gonic/gin"

// Register attaches admin routes to the given router group. The group must
// already enforce admin access.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/overview", h.overview)
	rg.DELETE("/lists/:id", h.deleteList)
	rg.DELETE("/users/:uid", h.deleteUser)
	rg.GET("/audit", h.audit)
	rg.GET("/dangling-links", h.danglingLinks)
}
