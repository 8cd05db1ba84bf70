package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/workplace-booking/internal/auth"
	"github.com/nekogravitycat/workplace-booking/internal/booking"
	"github.com/nekogravitycat/workplace-booking/internal/pkg/apperror"
	"github.com/nekogravitycat/workplace-booking/internal/pkg/request"
	"github.com/nekogravitycat/workplace-booking/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /bookings?userId=. Employees may only list their own bookings.
func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	if req.UserID != auth.GetUserID(c) && !auth.IsAdmin(c) {
		response.Error(c, booking.ErrPermissionDenied)
		return
	}

	list, err := h.service.ListByUser(c.Request.Context(), req.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ByPlace handles GET /bookings/by-place?workplaceId=.
func (h *Handler) ByPlace(c *gin.Context) {
	var req ByPlaceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	list, err := h.service.ListUpcomingByResource(c.Request.Context(), req.WorkplaceID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// CheckAvailability handles GET /bookings/check-availability.
func (h *Handler) CheckAvailability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, AvailabilityResponse{Available: false, Error: "invalid query parameters"})
		return
	}

	available, err := h.service.CheckAvailability(c.Request.Context(), booking.AvailabilityQuery{
		ResourceID: req.WorkplaceID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	})
	if err != nil {
		status := apperror.StatusOf(err)
		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = "internal server error"
		}
		c.JSON(status, AvailabilityResponse{Available: false, Error: msg})
		return
	}

	c.JSON(http.StatusOK, AvailabilityResponse{
		Available:   available,
		WorkplaceID: req.WorkplaceID,
		Date:        req.Date,
	})
}

// Create handles POST /bookings.
func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, response.Result{Success: false, Error: "invalid request body"})
		return
	}

	userID := auth.GetUserID(c)
	if body.UserID != "" && body.UserID != userID && !auth.IsAdmin(c) {
		response.Failure(c, booking.ErrPermissionDenied)
		return
	}
	if body.UserID == "" {
		body.UserID = userID
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		UserID:     body.UserID,
		ResourceID: body.WorkplaceID,
		Date:       body.Date,
		StartTime:  body.StartTime,
		EndTime:    body.EndTime,
		Purpose:    body.Purpose,
	})
	if err != nil {
		response.Failure(c, err)
		return
	}

	response.Success(c, http.StatusCreated, b.ID, "Booking created")
}

// Cancel handles DELETE /bookings/:id. The booking is kept with status cancelled.
func (h *Handler) Cancel(c *gin.Context) {
	var req request.ByIDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Result{Success: false, Error: "invalid booking id"})
		return
	}

	err := h.service.Cancel(c.Request.Context(), req.ID, auth.GetUserID(c), auth.IsAdmin(c))
	if err != nil {
		response.Failure(c, err)
		return
	}

	response.Success(c, http.StatusOK, req.ID, "Booking cancelled")
}
