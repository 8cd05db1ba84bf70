package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/bookings")

	// === Public Routes ===
	group.GET("/check-availability", h.CheckAvailability)
	group.GET("/by-place", h.ByPlace)

	// === Authenticated Routes ===
	authed := group.Group("")
	authed.Use(authMiddleware)
	{
		authed.GET("", h.List)
		authed.POST("", h.Create)
		authed.DELETE("/:id", h.Cancel)
	}
}
