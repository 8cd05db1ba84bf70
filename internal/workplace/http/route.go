package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers workplace routes. The catalogue is public.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/workplaces")
	{
		group.GET("", h.List)
	}
}
