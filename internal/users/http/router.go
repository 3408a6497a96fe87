package http

import "github.com/gin-gonic/gin"

// Register attaches user routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.PUT("/me", h.sync)
	rg.PATCH("/me/preferences", h.updatePreferences)
	rg.GET("/resolve", h.resolve)
}
