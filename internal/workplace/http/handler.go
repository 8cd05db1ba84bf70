package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/workplace-booking/internal/pkg/response"
	"github.com/nekogravitycat/workplace-booking/internal/workplace"
)

type Handler struct {
	service workplace.Service
}

func NewHandler(service workplace.Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/workplaces?branch=moscow|spb.
func (h *Handler) List(c *gin.Context) {
	var req ListWorkplacesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	list, err := h.service.List(c.Request.Context(), workplace.Branch(req.Branch))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}
