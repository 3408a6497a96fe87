package http

import "github.com/gin-gonic/gin"

// Register attaches list and item routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.delete)

	rg.POST("/:id/archive", h.archive)
	rg.POST("/:id/reactivate", h.reactivate)

	rg.POST("/:id/members", h.share)
	rg.DELETE("/:id/members/:uid", h.removeMember)

	rg.POST("/:id/link", h.link)
	rg.DELETE("/:id/link", h.unlink)

	rg.POST("/:id/items", h.addItem)
	rg.GET("/:id/items", h.listItems)
	rg.PATCH("/:id/items/:itemId/toggle", h.togglePurchased)
	rg.DELETE("/:id/items/:itemId", h.deleteItem)

	rg.GET("/:id/ws", h.watch)
}
