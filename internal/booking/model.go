package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/workplace-booking/internal/pkg/apperror"
	"github.com/nekogravitycat/workplace-booking/internal/workplace"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "booking not found")
	ErrTimeConflict      = apperror.New(http.StatusConflict, "the workplace is already booked for this time")
	ErrAlreadyCancelled  = apperror.New(http.StatusConflict, "booking is already cancelled")
	ErrInvalidDate       = apperror.New(http.StatusBadRequest, "date must be in DD.MM.YYYY format")
	ErrInvalidTime       = apperror.New(http.StatusBadRequest, "time must be in HH:MM format")
	ErrInvalidTimeRange  = apperror.New(http.StatusBadRequest, "end time must be after start time")
	ErrOutsideHours      = apperror.New(http.StatusBadRequest, "bookings are possible from 09:00 to 18:00")
	ErrTooShort          = apperror.New(http.StatusBadRequest, "minimum booking duration is 30 minutes")
	ErrDateInPast        = apperror.New(http.StatusBadRequest, "cannot create booking in the past")
	ErrResourceNotFound  = apperror.New(http.StatusNotFound, "workplace not found")
	ErrPermissionDenied  = apperror.New(http.StatusForbidden, "permission denied")
	ErrMissingIdentifier = apperror.New(http.StatusBadRequest, "user id is required")
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Booking is a reservation of one resource for a time range on one day.
// Date and times travel in their wire formats (DD.MM.YYYY, HH:MM).
type Booking struct {
	ID           string           `json:"id"`
	UserID       string           `json:"userId"`
	ResourceID   string           `json:"workplaceId"`
	ResourceName string           `json:"workplaceName"`
	Branch       workplace.Branch `json:"branch"`
	Date         string           `json:"date"`
	StartTime    string           `json:"startTime"`
	EndTime      string           `json:"endTime"`
	Purpose      string           `json:"purpose,omitempty"`
	Status       Status           `json:"status"`
}

// Cancelable reports whether the booking can still be cancelled.
func (b Booking) Cancelable() bool {
	return b.Status == StatusConfirmed
}

// Filter defines parameters for listing bookings.
type Filter struct {
	UserID     string
	ResourceID string
	Status     Status
	DateFrom   *time.Time // bookings dated on or after this day
}
