package booking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/workplace-booking/internal/workplace"
)

// fakeRepo keeps bookings in memory and applies the same overlap rule as Postgres.
type fakeRepo struct {
	mu       sync.Mutex
	bookings []Booking
}

func (r *fakeRepo) Create(ctx context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bookings {
		if existing.ResourceID == b.ResourceID && existing.Date == b.Date &&
			existing.Status == StatusConfirmed && b.StartTime < existing.EndTime && existing.StartTime < b.EndTime {
			return ErrTimeConflict
		}
	}
	r.bookings = append(r.bookings, *b)
	return nil
}

func (r *fakeRepo) GetByID(ctx context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			cp := b
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *fakeRepo) List(ctx context.Context, filter Filter) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Booking{}
	for _, b := range r.bookings {
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		if filter.ResourceID != "" && b.ResourceID != filter.ResourceID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		if filter.DateFrom != nil {
			d, _ := ParseDate(b.Date)
			if d.Before(*filter.DateFrom) {
				continue
			}
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *fakeRepo) UpdateStatus(ctx context.Context, id string, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bookings {
		if r.bookings[i].ID == id {
			r.bookings[i].Status = status
			return nil
		}
	}
	return ErrNotFound
}

func (r *fakeRepo) HasOverlap(ctx context.Context, resourceID string, date time.Time, startTime, endTime string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	day := FormatDate(date)
	for _, b := range r.bookings {
		if b.ResourceID == resourceID && b.Date == day && b.Status == StatusConfirmed &&
			startTime < b.EndTime && b.StartTime < endTime {
			return true, nil
		}
	}
	return false, nil
}

type fakeWorkplaces struct{}

func (fakeWorkplaces) List(ctx context.Context, branch workplace.Branch) ([]workplace.Resource, error) {
	return workplace.Catalogue(branch), nil
}

func (fakeWorkplaces) GetByID(ctx context.Context, id string) (*workplace.Resource, error) {
	for _, b := range workplace.Branches {
		if res, ok := workplace.FindByID(workplace.Catalogue(b), id); ok {
			return &res, nil
		}
	}
	return nil, workplace.ErrNotFound
}

func (fakeWorkplaces) SeedCatalogue(ctx context.Context) error { return nil }

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return p.err
}

var fixedNow = time.Date(2024, time.March, 11, 8, 0, 0, 0, time.UTC) // Monday

func newTestService(t *testing.T) (Service, *fakeRepo, *recordingPublisher) {
	t.Helper()
	repo := &fakeRepo{}
	pub := &recordingPublisher{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(repo, fakeWorkplaces{}, pub, logger, WithClock(func() time.Time { return fixedNow }))
	return svc, repo, pub
}

func validRequest() CreateRequest {
	return CreateRequest{
		UserID:     "user",
		ResourceID: "moscow-wp-1",
		Date:       "12.03.2024",
		StartTime:  "10:00",
		EndTime:    "11:00",
		Purpose:    "  Planning  ",
	}
}

func TestCreate_Success(t *testing.T) {
	svc, repo, pub := newTestService(t)

	b, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, "Computer 1", b.ResourceName)
	assert.Equal(t, workplace.BranchMoscow, b.Branch)
	assert.Equal(t, "Planning", b.Purpose)
	assert.Len(t, repo.bookings, 1)
	assert.Equal(t, []string{"booking.created"}, pub.keys)
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *CreateRequest)
		want   error
	}{
		{"missing user", func(r *CreateRequest) { r.UserID = " " }, ErrMissingIdentifier},
		{"bad date", func(r *CreateRequest) { r.Date = "2024-03-12" }, ErrInvalidDate},
		{"past date", func(r *CreateRequest) { r.Date = "10.03.2024" }, ErrDateInPast},
		{"bad time", func(r *CreateRequest) { r.StartTime = "9:00" }, ErrInvalidTime},
		{"before opening", func(r *CreateRequest) { r.StartTime = "08:30" }, ErrOutsideHours},
		{"after closing", func(r *CreateRequest) { r.EndTime = "18:30" }, ErrOutsideHours},
		{"end before start", func(r *CreateRequest) { r.StartTime, r.EndTime = "11:00", "10:00" }, ErrInvalidTimeRange},
		{"too short", func(r *CreateRequest) { r.StartTime, r.EndTime = "10:00", "10:15" }, ErrTooShort},
		{"unknown workplace", func(r *CreateRequest) { r.ResourceID = "nowhere" }, ErrResourceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _ := newTestService(t)
			req := validRequest()
			tt.mutate(&req)

			_, err := svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, repo.bookings)
		})
	}
}

func TestCreate_TodayIsAllowed(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := validRequest()
	req.Date = "11.03.2024"

	_, err := svc.Create(context.Background(), req)
	assert.NoError(t, err)
}

func TestCreate_Conflict(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	overlapping := validRequest()
	overlapping.StartTime, overlapping.EndTime = "10:30", "11:30"
	_, err = svc.Create(ctx, overlapping)
	assert.ErrorIs(t, err, ErrTimeConflict)

	adjacent := validRequest()
	adjacent.StartTime, adjacent.EndTime = "11:00", "12:00"
	_, err = svc.Create(ctx, adjacent)
	assert.NoError(t, err)
}

func TestCheckAvailability(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	q := AvailabilityQuery{ResourceID: "moscow-wp-1", Date: "12.03.2024", StartTime: "10:30", EndTime: "11:30"}
	ok, err := svc.CheckAvailability(ctx, q)
	require.NoError(t, err)
	assert.False(t, ok)

	q.StartTime, q.EndTime = "11:00", "12:00"
	ok, err = svc.CheckAvailability(ctx, q)
	require.NoError(t, err)
	assert.True(t, ok)

	q.ResourceID = "moscow-wp-2"
	q.StartTime, q.EndTime = "10:00", "11:00"
	ok, err = svc.CheckAvailability(ctx, q)
	require.NoError(t, err)
	assert.True(t, ok)

	q.EndTime = "10:15"
	_, err = svc.CheckAvailability(ctx, q)
	assert.ErrorIs(t, err, ErrTooShort)

	q.EndTime = "11:00"
	q.ResourceID = "missing"
	_, err = svc.CheckAvailability(ctx, q)
	assert.ErrorIs(t, err, ErrResourceNotFound)
}

func TestCancel(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	err = svc.Cancel(ctx, b.ID, "someone-else", false)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, svc.Cancel(ctx, b.ID, "user", false))
	assert.Equal(t, StatusCancelled, repo.bookings[0].Status)
	assert.Equal(t, []string{"booking.created", "booking.cancelled"}, pub.keys)

	err = svc.Cancel(ctx, b.ID, "user", false)
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	err = svc.Cancel(ctx, "missing", "admin", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancel_FreesTheSlot(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	b, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(ctx, b.ID, "admin", true))

	_, err = svc.Create(ctx, validRequest())
	assert.NoError(t, err)
}

func TestListUpcomingByResource(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.bookings = []Booking{
		{ID: "past", ResourceID: "moscow-wp-1", Date: "08.03.2024", StartTime: "10:00", EndTime: "11:00", Status: StatusConfirmed},
		{ID: "today", ResourceID: "moscow-wp-1", Date: "11.03.2024", StartTime: "10:00", EndTime: "11:00", Status: StatusConfirmed},
		{ID: "cancelled", ResourceID: "moscow-wp-1", Date: "12.03.2024", StartTime: "10:00", EndTime: "11:00", Status: StatusCancelled},
		{ID: "other", ResourceID: "moscow-wp-2", Date: "12.03.2024", StartTime: "10:00", EndTime: "11:00", Status: StatusConfirmed},
	}

	list, err := svc.ListUpcomingByResource(context.Background(), "moscow-wp-1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "today", list[0].ID)
}

func TestListByUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	list, err := svc.ListByUser(ctx, "user")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = svc.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.ListByUser(ctx, "")
	assert.ErrorIs(t, err, ErrMissingIdentifier)
}

func TestPublishFailureDoesNotFailCreate(t *testing.T) {
	svc, _, pub := newTestService(t)
	pub.err = errors.New("broker down")

	_, err := svc.Create(context.Background(), validRequest())
	assert.NoError(t, err)
}
