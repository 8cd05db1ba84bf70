package console

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/workplace-booking/internal/booking"
	"github.com/nekogravitycat/workplace-booking/internal/bookingform"
	"github.com/nekogravitycat/workplace-booking/internal/gateway"
	"github.com/nekogravitycat/workplace-booking/internal/pkg/storage"
	"github.com/nekogravitycat/workplace-booking/internal/session"
	"github.com/nekogravitycat/workplace-booking/internal/workplace"
)

// memGateway keeps bookings in memory and accepts "user"/"user123".
type memGateway struct {
	bookings  []booking.Booking
	cancelled []string
}

func (g *memGateway) HealthCheck(ctx context.Context) bool { return true }

func (g *memGateway) Login(ctx context.Context, username, password string) (*gateway.LoginResult, error) {
	if username != "user" || password != "user123" {
		return nil, &gateway.BackendError{Status: 401, Message: "invalid username or password"}
	}
	return &gateway.LoginResult{Username: "user", Name: "Ivan Petrov", Role: "employee", Token: "t"}, nil
}

func (g *memGateway) GetWorkplaces(ctx context.Context, branch workplace.Branch) ([]workplace.Resource, error) {
	return workplace.Catalogue(branch), nil
}

func (g *memGateway) GetMyBookings(ctx context.Context, userID string) ([]booking.Booking, error) {
	return g.bookings, nil
}

func (g *memGateway) GetBookingsByResource(ctx context.Context, resourceID string) ([]booking.Booking, error) {
	var out []booking.Booking
	for _, b := range g.bookings {
		if b.ResourceID == resourceID && b.Status == booking.StatusConfirmed {
			out = append(out, b)
		}
	}
	return out, nil
}

func (g *memGateway) CheckAvailability(ctx context.Context, resourceID, date, startTime, endTime string) (bool, error) {
	for _, b := range g.bookings {
		if b.ResourceID == resourceID && b.Date == date && b.Status == booking.StatusConfirmed &&
			startTime < b.EndTime && b.StartTime < endTime {
			return false, nil
		}
	}
	return true, nil
}

func (g *memGateway) CreateBooking(ctx context.Context, req gateway.BookingRequest) (string, error) {
	id := "b-" + string(rune('1'+len(g.bookings)))
	g.bookings = append(g.bookings, booking.Booking{
		ID:           id,
		UserID:       req.UserID,
		ResourceID:   req.ResourceID,
		ResourceName: req.ResourceName,
		Branch:       req.Branch,
		Date:         req.Date,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Purpose:      req.Purpose,
		Status:       booking.StatusConfirmed,
	})
	return id, nil
}

func (g *memGateway) CancelBooking(ctx context.Context, bookingID string) error {
	for i := range g.bookings {
		if g.bookings[i].ID == bookingID {
			g.bookings[i].Status = booking.StatusCancelled
		}
	}
	g.cancelled = append(g.cancelled, bookingID)
	return nil
}

func runConsole(t *testing.T, gw *memGateway, input string) string {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	store := session.NewStore(st, session.WithLogger(logger))

	var out bytes.Buffer
	prompter := NewPrompter(strings.NewReader(input), &out)
	monday := time.Date(2024, time.March, 11, 8, 0, 0, 0, time.UTC)
	form := bookingform.NewController(bookingform.Config{
		Gateway:   gw,
		Identity:  store.UserID,
		Confirmer: prompter,
		Clock:     func() time.Time { return monday },
		Logger:    logger,
	})

	c := New(form, session.NewAuthenticator(gw, store, logger), prompter, &out, logger)
	require.NoError(t, c.Run(context.Background()))
	return out.String()
}

func TestConsole_BookAndCancel(t *testing.T) {
	gw := &memGateway{}
	out := runConsole(t, gw, strings.Join([]string{
		"user", "wrong",
		"user", "user123",
		"date 12.03.2024",
		"start 10:00",
		"end 11:00",
		"purpose Team sync",
		"check",
		"book",
		"confirm",
		"bookings",
		"cancel b-1",
		"y",
		"quit",
	}, "\n"))

	assert.Contains(t, out, "Login failed: invalid username or password")
	assert.Contains(t, out, "Welcome, Ivan Petrov.")
	assert.Contains(t, out, "[i] The place is available. You can book it now.")
	assert.Contains(t, out, "Purpose: Team sync")
	assert.Contains(t, out, "[ok] Computer 1 booked for 12.03.2024, 10:00 - 11:00")
	assert.Contains(t, out, "b-1  Computer 1, Moscow  12.03.2024  10:00 - 11:00  [Confirmed]")
	assert.Contains(t, out, "Cancel the booking of Computer 1 on 12.03.2024, 10:00 - 11:00? [y/N]: ")
	assert.Contains(t, out, "[ok] Booking cancelled")

	require.Len(t, gw.bookings, 1)
	assert.Equal(t, "user", gw.bookings[0].UserID)
	assert.Equal(t, []string{"b-1"}, gw.cancelled)
}

func TestConsole_ValidationAndOccupied(t *testing.T) {
	gw := &memGateway{bookings: []booking.Booking{{
		ID: "b-1", ResourceID: "moscow-wp-1", ResourceName: "Computer 1", Branch: workplace.BranchMoscow,
		Date: "11.03.2024", StartTime: "09:00", EndTime: "10:00", Status: booking.StatusConfirmed,
	}}}
	out := runConsole(t, gw, strings.Join([]string{
		"user", "user123",
		"end 09:00",
		"check",
		"end 10:00",
		"check",
		"book",
		"slots",
		"cancel b-1",
		"n",
		"frobnicate",
	}, "\n"))

	assert.Contains(t, out, "  - End time must be later than start time")
	assert.Contains(t, out, "[!] This place is already occupied at the selected time")
	assert.Contains(t, out, "Error: check availability before booking")
	assert.Contains(t, out, "11.03.2024  09:00 - 10:00")
	assert.Contains(t, out, "Nothing was cancelled.")
	assert.Contains(t, out, `unknown command "frobnicate"`)
	assert.Empty(t, gw.cancelled)
}

func TestPrompter_Confirm(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("Y\nno\n"), &out)

	ok, err := p.Confirm(context.Background(), "Sure?")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Confirm(context.Background(), "Sure?")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = p.Confirm(context.Background(), "Sure?")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "Sure? [y/N]: Sure? [y/N]: Sure? [y/N]: ", out.String())
}
