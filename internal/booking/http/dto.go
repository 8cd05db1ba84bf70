package http

// ListBookingsRequest defines query parameters for GET /bookings.
type ListBookingsRequest struct {
	UserID string `form:"userId" binding:"required"`
}

// ByPlaceRequest defines query parameters for GET /bookings/by-place.
type ByPlaceRequest struct {
	WorkplaceID string `form:"workplaceId" binding:"required"`
}

// AvailabilityRequest defines query parameters for GET /bookings/check-availability.
type AvailabilityRequest struct {
	WorkplaceID string `form:"workplaceId" binding:"required"`
	Date        string `form:"date" binding:"required"`
	StartTime   string `form:"startTime" binding:"required"`
	EndTime     string `form:"endTime" binding:"required"`
}

// AvailabilityResponse is the body of GET /bookings/check-availability.
type AvailabilityResponse struct {
	Available   bool   `json:"available"`
	WorkplaceID string `json:"workplaceId,omitempty"`
	Date        string `json:"date,omitempty"`
	Error       string `json:"error,omitempty"`
}

// CreateBookingBody is the payload for POST /bookings. Name and branch are
// accepted for compatibility but the server derives them from the catalogue.
type CreateBookingBody struct {
	UserID        string `json:"userId"`
	WorkplaceID   string `json:"workplaceId" binding:"required"`
	WorkplaceName string `json:"workplaceName"`
	Branch        string `json:"branch"`
	Date          string `json:"date" binding:"required"`
	StartTime     string `json:"startTime" binding:"required"`
	EndTime       string `json:"endTime" binding:"required"`
	Purpose       string `json:"purpose"`
}
