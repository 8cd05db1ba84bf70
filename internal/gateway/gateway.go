// Package gateway is the client's only channel to the booking backend.
package gateway

import (
	"context"

	"github.com/nekogravitycat/workplace-booking/internal/booking"
	"github.com/nekogravitycat/workplace-booking/internal/workplace"
)

// LoginResult is the profile returned by a successful login.
type LoginResult struct {
	Username string
	Name     string
	Role     string
	Email    string
	Token    string
}

// BookingRequest is a confirmed selection plus the identity of the caller.
type BookingRequest struct {
	UserID       string
	ResourceID   string
	ResourceName string
	Branch       workplace.Branch
	Date         string // DD.MM.YYYY
	StartTime    string // HH:MM
	EndTime      string // HH:MM
	Purpose      string
}

// Gateway is the backend contract consumed by the client core.
type Gateway interface {
	HealthCheck(ctx context.Context) bool
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	GetWorkplaces(ctx context.Context, branch workplace.Branch) ([]workplace.Resource, error)
	GetMyBookings(ctx context.Context, userID string) ([]booking.Booking, error)
	GetBookingsByResource(ctx context.Context, resourceID string) ([]booking.Booking, error)
	CheckAvailability(ctx context.Context, resourceID, date, startTime, endTime string) (bool, error)
	// CreateBooking returns the id of the new booking.
	CreateBooking(ctx context.Context, req BookingRequest) (string, error)
	CancelBooking(ctx context.Context, bookingID string) error
}

// BackendError is a failure reported by the backend itself. Message is
// meant to be shown to the user as is.
type BackendError struct {
	Status  int
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}
