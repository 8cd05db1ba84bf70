package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/workplace-booking/internal/events"
	"github.com/nekogravitycat/workplace-booking/internal/workplace"
)

type CreateRequest struct {
	UserID     string
	ResourceID string
	Date       string
	StartTime  string
	EndTime    string
	Purpose    string
}

type AvailabilityQuery struct {
	ResourceID string
	Date       string
	StartTime  string
	EndTime    string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByUser(ctx context.Context, userID string) ([]Booking, error)
	// ListUpcomingByResource returns confirmed bookings of a resource dated today or later.
	ListUpcomingByResource(ctx context.Context, resourceID string) ([]Booking, error)
	CheckAvailability(ctx context.Context, q AvailabilityQuery) (bool, error)
	Cancel(ctx context.Context, id string, actorUserID string, isAdmin bool) error
}

type Option func(*service)

// WithClock overrides the time source used for "today".
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

type service struct {
	repo      Repository
	wpService workplace.Service
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, wpService workplace.Service, publisher events.Publisher, logger *slog.Logger, opts ...Option) Service {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &service{
		repo:      repo,
		wpService: wpService,
		publisher: publisher,
		logger:    logger.With("service", "booking"),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) today() time.Time {
	n := s.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// resolveResource maps a missing workplace to ErrResourceNotFound.
func (s *service) resolveResource(ctx context.Context, id string) (*workplace.Resource, error) {
	res, err := s.wpService.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, workplace.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}
	return res, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, ErrMissingIdentifier
	}

	// 1. Validate wire formats and the opening-hours window
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	if date.Before(s.today()) {
		return nil, ErrDateInPast
	}
	if err := ValidateRange(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	// 2. Resource must exist; its name and branch come from the catalogue, not the caller
	res, err := s.resolveResource(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}

	// 3. Insert; the repository rejects overlaps atomically
	b := &Booking{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		ResourceID:   res.ID,
		ResourceName: res.Name,
		Branch:       res.Branch,
		Date:         FormatDate(date),
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Purpose:      strings.TrimSpace(req.Purpose),
		Status:       StatusConfirmed,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("booking created", "booking_id", b.ID, "user_id", b.UserID, "workplace_id", b.ResourceID, "date", b.Date)
	s.publish(ctx, events.BookingCreated, b)
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Booking, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingIdentifier
	}
	return s.repo.List(ctx, Filter{UserID: userID})
}

func (s *service) ListUpcomingByResource(ctx context.Context, resourceID string) ([]Booking, error) {
	today := s.today()
	return s.repo.List(ctx, Filter{
		ResourceID: resourceID,
		Status:     StatusConfirmed,
		DateFrom:   &today,
	})
}

func (s *service) CheckAvailability(ctx context.Context, q AvailabilityQuery) (bool, error) {
	date, err := ParseDate(q.Date)
	if err != nil {
		return false, err
	}
	if err := ValidateRange(q.StartTime, q.EndTime); err != nil {
		return false, err
	}
	if _, err := s.resolveResource(ctx, q.ResourceID); err != nil {
		return false, err
	}

	overlap, err := s.repo.HasOverlap(ctx, q.ResourceID, date, q.StartTime, q.EndTime)
	if err != nil {
		return false, err
	}
	return !overlap, nil
}

func (s *service) Cancel(ctx context.Context, id string, actorUserID string, isAdmin bool) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Permission Check: booking owner or admin
	if !isAdmin && b.UserID != actorUserID {
		return ErrPermissionDenied
	}
	if b.Status == StatusCancelled {
		return ErrAlreadyCancelled
	}

	if err := s.repo.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return err
	}
	b.Status = StatusCancelled

	s.logger.Info("booking cancelled", "booking_id", b.ID, "actor", actorUserID)
	s.publish(ctx, events.BookingCancelled, b)
	return nil
}

func (s *service) publish(ctx context.Context, kind string, b *Booking) {
	ev := events.BookingEvent{
		Type:        kind,
		BookingID:   b.ID,
		UserID:      b.UserID,
		WorkplaceID: b.ResourceID,
		Branch:      string(b.Branch),
		Date:        b.Date,
		StartTime:   b.StartTime,
		EndTime:     b.EndTime,
		OccurredAt:  s.now().UTC(),
	}
	if err := s.publisher.Publish(ctx, kind, ev); err != nil {
		s.logger.Warn("publish booking event failed", "type", kind, "booking_id", b.ID, "error", err)
	}
}
