// Package bookingform drives the booking workflow: choosing a place and a
// time, checking availability, confirming and cancelling bookings.
//
// Gateway calls run without holding the controller lock. Every completion
// is checked against the selection it was issued for and dropped with
// ErrStale when the user has moved on in the meantime.
package bookingform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/nekogravitycat/workplace-booking/internal/booking"
	"github.com/nekogravitycat/workplace-booking/internal/bookinglist"
	"github.com/nekogravitycat/workplace-booking/internal/gateway"
	"github.com/nekogravitycat/workplace-booking/internal/workplace"
)

// IdentityFunc returns the username bookings are made for.
type IdentityFunc func(ctx context.Context) (string, error)

// Config holds the collaborators of a Controller. Only Gateway is required.
type Config struct {
	Gateway   gateway.Gateway
	Identity  IdentityFunc
	Confirmer Confirmer
	Clock     func() time.Time
	Logger    *slog.Logger

	// Initial branch and kind; default to Moscow workplaces.
	Branch workplace.Branch
	Kind   workplace.Kind
}

// tuple is the part of the selection an availability verdict is bound to.
type tuple struct {
	resourceID string
	date       string
	startTime  string
	endTime    string
}

type verdict struct {
	key       tuple
	available bool
}

// Controller owns the booking selection and its workflow state. It is safe
// for concurrent use.
type Controller struct {
	gw        gateway.Gateway
	identity  IdentityFunc
	confirmer Confirmer
	now       func() time.Time
	logger    *slog.Logger

	mu        sync.Mutex
	state     State
	sel       Selection
	resources []workplace.Resource // whole branch, in floor-plan order
	branchSeq uint64
	verdict   *verdict
	pending   *PendingBooking
	// gen changes on every selection mutation that invalidates a verdict.
	gen uint64
	// checkSeq orders availability checks and confirmation requests; only
	// the latest of them may move the state.
	checkSeq uint64

	myBookings  []booking.Booking
	bookingsSeq uint64
	occupied    []booking.Booking
	occupiedFor string
	occupiedSeq uint64
	filter      bookinglist.Filter

	notice    *Notice
	noticeSeq uint64
}

// NewController returns an Idle controller. Call Load to fetch the resources.
func NewController(cfg Config) *Controller {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if !cfg.Branch.Valid() {
		cfg.Branch = workplace.BranchMoscow
	}
	if !cfg.Kind.Valid() {
		cfg.Kind = workplace.KindWorkplace
	}
	if cfg.Identity == nil {
		cfg.Identity = func(context.Context) (string, error) { return "", ErrNotAuthenticated }
	}

	c := &Controller{
		gw:        cfg.Gateway,
		identity:  cfg.Identity,
		confirmer: cfg.Confirmer,
		now:       cfg.Clock,
		logger:    cfg.Logger.With("component", "bookingform"),
		state:     Idle,
		filter:    bookinglist.FilterAll,
		sel: Selection{
			Branch:    cfg.Branch,
			Kind:      cfg.Kind,
			StartTime: "09:00",
			EndTime:   "10:00",
		},
	}
	if today := c.today(); !isWeekend(today) {
		c.sel.Date = booking.FormatDate(today)
	}
	return c
}

// Load fetches the initial branch resources and the user's bookings.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	branch := c.sel.Branch
	c.mu.Unlock()

	if err := c.SelectBranch(ctx, branch); err != nil {
		return err
	}
	if err := c.RefreshMyBookings(ctx); err != nil && !errors.Is(err, ErrStale) {
		return err
	}
	return nil
}

func (c *Controller) today() time.Time {
	n := c.now()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func (c *Controller) currentTuple() tuple {
	return tuple{
		resourceID: c.sel.ResourceID,
		date:       c.sel.Date,
		startTime:  c.sel.StartTime,
		endTime:    c.sel.EndTime,
	}
}

// invalidate drops the verdict and any open confirmation. Callers hold mu.
func (c *Controller) invalidate() {
	c.gen++
	c.verdict = nil
	c.pending = nil
	if c.sel.ResourceID == "" {
		c.state = Idle
	} else {
		c.state = ResourceChosen
	}
}

func (c *Controller) options() []workplace.Resource {
	return workplace.FilterByKind(c.resources, c.sel.Kind)
}

func (c *Controller) firstOption() string {
	if opts := c.options(); len(opts) > 0 {
		return opts[0].ID
	}
	return ""
}

// setNotice replaces the current notice. Callers hold mu.
func (c *Controller) setNotice(level NoticeLevel, text string, ttl time.Duration) {
	c.noticeSeq++
	n := &Notice{Seq: c.noticeSeq, Level: level, Text: text}
	if ttl > 0 {
		n.ExpiresAt = c.now().Add(ttl)
	}
	c.notice = n
}

// userID resolves the caller. Any failure is reported as ErrNotAuthenticated.
func (c *Controller) userID(ctx context.Context) (string, error) {
	id, err := c.identity(ctx)
	if err != nil {
		if errors.Is(err, ErrNotAuthenticated) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}
	if id == "" {
		return "", ErrNotAuthenticated
	}
	return id, nil
}

// userMessage prefers the backend's own wording over fallback.
func userMessage(err error, fallback string) string {
	var berr *gateway.BackendError
	if errors.As(err, &berr) && berr.Message != "" {
		return berr.Message
	}
	return fallback
}

// SelectBranch loads the resources of branch and selects the first one of
// the current kind.
func (c *Controller) SelectBranch(ctx context.Context, branch workplace.Branch) error {
	if !branch.Valid() {
		return fmt.Errorf("%w: %q", workplace.ErrInvalidBranch, branch)
	}

	c.mu.Lock()
	c.sel.Branch = branch
	c.sel.ResourceID = ""
	c.resources = nil
	c.invalidate()
	c.branchSeq++
	seq := c.branchSeq
	c.mu.Unlock()

	list, err := c.gw.GetWorkplaces(ctx, branch)

	c.mu.Lock()
	if seq != c.branchSeq {
		c.mu.Unlock()
		c.logger.Debug("discarding stale workplace list", "branch", branch)
		return ErrStale
	}
	if err != nil {
		c.setNotice(NoticeError, userMessage(err, "Failed to load workplaces. Please try again."), 0)
		c.mu.Unlock()
		c.logger.Error("load workplaces failed", "branch", branch, "error", err)
		return err
	}
	c.resources = list
	c.sel.ResourceID = c.firstOption()
	c.invalidate()
	c.mu.Unlock()

	c.refreshOccupiedQuietly(ctx)
	return nil
}

// SelectResourceKind narrows the options to kind and selects the first one.
func (c *Controller) SelectResourceKind(ctx context.Context, kind workplace.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", workplace.ErrInvalidKind, kind)
	}

	c.mu.Lock()
	c.sel.Kind = kind
	c.sel.ResourceID = c.firstOption()
	c.invalidate()
	c.mu.Unlock()

	c.refreshOccupiedQuietly(ctx)
	return nil
}

// SelectResource picks a resource from the current options.
func (c *Controller) SelectResource(ctx context.Context, id string) error {
	c.mu.Lock()
	if _, ok := workplace.FindByID(c.options(), id); !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrUnknownResource, id)
	}
	c.sel.ResourceID = id
	c.invalidate()
	c.mu.Unlock()

	c.refreshOccupiedQuietly(ctx)
	return nil
}

// SetDate selects a working day that is today or later.
func (c *Controller) SetDate(d time.Time) error {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	if day.Before(c.today()) {
		return ErrDateInPast
	}
	if isWeekend(day) {
		return ErrWeekend
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if formatted := booking.FormatDate(day); formatted != c.sel.Date {
		c.sel.Date = formatted
		c.invalidate()
	}
	return nil
}

// SetStartTime sets the start slot. An empty value unsets it.
func (c *Controller) SetStartTime(t string) error {
	return c.setTime(&c.sel.StartTime, t)
}

// SetEndTime sets the end slot. An empty value unsets it.
func (c *Controller) SetEndTime(t string) error {
	return c.setTime(&c.sel.EndTime, t)
}

func (c *Controller) setTime(field *string, t string) error {
	t = strings.TrimSpace(t)
	if t != "" && !IsSlot(t) {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, t)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if *field != t {
		*field = t
		c.invalidate()
	}
	return nil
}

// SetPurpose stores the free-text purpose. It does not affect the verdict.
func (c *Controller) SetPurpose(p string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sel.Purpose = p
}

// Validate returns the rule violations of the current selection.
func (c *Controller) Validate() []Failure {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Validate(c.sel)
}

// CheckAvailability asks the backend whether the selected slot is free.
// A free slot moves the form to Checked; anything else leaves it in
// ResourceChosen with a notice.
func (c *Controller) CheckAvailability(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.state == Confirming {
		c.mu.Unlock()
		return false, ErrConfirmationOpen
	}
	if failures := Validate(c.sel); len(failures) > 0 {
		c.mu.Unlock()
		return false, &ValidationError{Failures: failures}
	}
	tup := c.currentTuple()
	gen := c.gen
	c.checkSeq++
	seq := c.checkSeq
	c.mu.Unlock()

	available, err := c.gw.CheckAvailability(ctx, tup.resourceID, tup.date, tup.startTime, tup.endTime)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen || c.checkSeq != seq {
		c.logger.Debug("discarding stale availability result", "workplace_id", tup.resourceID)
		return false, ErrStale
	}

	c.verdict = nil
	c.pending = nil
	c.state = ResourceChosen

	if err != nil {
		c.logger.Error("availability check failed", "workplace_id", tup.resourceID, "date", tup.date, "error", err)
		c.setNotice(NoticeError, userMessage(err, "Failed to check availability. Please try again."), 0)
		return false, err
	}
	if !available {
		c.setNotice(NoticeError, "This place is already occupied at the selected time", 0)
		return false, ErrOccupied
	}

	c.verdict = &verdict{key: tup, available: true}
	c.state = Checked
	c.setNotice(NoticeInfo, "The place is available. You can book it now.", 0)
	return true, nil
}

// RequestConfirmation opens the confirmation for a checked selection.
func (c *Controller) RequestConfirmation() (*PendingBooking, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Checked || c.verdict == nil || !c.verdict.available || c.verdict.key != c.currentTuple() {
		return nil, ErrNotChecked
	}

	res, ok := workplace.FindByID(c.resources, c.sel.ResourceID)
	if !ok {
		c.logger.Error("checked workplace missing from list", "workplace_id", c.sel.ResourceID)
		c.setNotice(NoticeError, "The selected place could not be found. Please choose it again.", 0)
		return nil, ErrResourceMissing
	}

	purpose := strings.TrimSpace(c.sel.Purpose)
	if purpose == "" {
		purpose = PlaceholderPurpose
	}

	c.checkSeq++
	c.pending = &PendingBooking{
		Resource:  res,
		Date:      c.sel.Date,
		StartTime: c.sel.StartTime,
		EndTime:   c.sel.EndTime,
		Purpose:   purpose,
	}
	c.state = Confirming

	p := *c.pending
	return &p, nil
}

// CancelConfirmation closes the confirmation without booking.
func (c *Controller) CancelConfirmation() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Confirming {
		return
	}
	c.pending = nil
	c.verdict = nil
	c.state = ResourceChosen
}

// ConfirmBooking creates the pending booking and returns its id.
func (c *Controller) ConfirmBooking(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return "", ErrNoPending
	}
	p := *c.pending
	c.pending = nil
	gen := c.gen
	c.mu.Unlock()

	// closeConfirmation is called with mu held.
	closeConfirmation := func() {
		if c.gen == gen {
			c.verdict = nil
			c.state = ResourceChosen
		}
	}

	userID, err := c.userID(ctx)
	if err != nil {
		c.mu.Lock()
		closeConfirmation()
		c.setNotice(NoticeError, "Your session has expired. Please log in again.", 0)
		c.mu.Unlock()
		return "", err
	}

	id, err := c.gw.CreateBooking(ctx, gateway.BookingRequest{
		UserID:       userID,
		ResourceID:   p.Resource.ID,
		ResourceName: p.Resource.Name,
		Branch:       p.Resource.Branch,
		Date:         p.Date,
		StartTime:    p.StartTime,
		EndTime:      p.EndTime,
		Purpose:      p.Purpose,
	})

	c.mu.Lock()
	closeConfirmation()
	if err != nil {
		c.setNotice(NoticeError, userMessage(err, "Failed to create the booking. Please try again."), 0)
		c.mu.Unlock()
		c.logger.Error("create booking failed", "workplace_id", p.Resource.ID, "date", p.Date, "error", err)
		return "", err
	}
	if c.gen == gen {
		c.sel.Purpose = ""
	}
	c.setNotice(NoticeSuccess, fmt.Sprintf("%s booked for %s, %s - %s", p.Resource.Name, p.Date, p.StartTime, p.EndTime), NoticeTTL)
	c.mu.Unlock()

	c.logger.Info("booking created", "booking_id", id, "workplace_id", p.Resource.ID, "date", p.Date)
	c.refreshMyBookingsQuietly(ctx)
	c.refreshOccupiedQuietly(ctx)
	return id, nil
}

// CancelBooking cancels one of the user's bookings after the Confirmer agrees.
func (c *Controller) CancelBooking(ctx context.Context, bookingID string) error {
	if c.confirmer == nil {
		return ErrCancelDeclined
	}

	ok, err := c.confirmer.Confirm(ctx, c.cancelPrompt(bookingID))
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelDeclined
	}

	if err := c.gw.CancelBooking(ctx, bookingID); err != nil {
		c.mu.Lock()
		c.setNotice(NoticeError, userMessage(err, "Failed to cancel the booking. Please try again."), 0)
		c.mu.Unlock()
		c.logger.Error("cancel booking failed", "booking_id", bookingID, "error", err)
		return err
	}

	c.mu.Lock()
	c.setNotice(NoticeSuccess, "Booking cancelled", NoticeTTL)
	c.mu.Unlock()

	c.logger.Info("booking cancelled", "booking_id", bookingID)
	c.refreshMyBookingsQuietly(ctx)
	c.refreshOccupiedQuietly(ctx)
	return nil
}

func (c *Controller) cancelPrompt(bookingID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.myBookings {
		if b.ID == bookingID {
			return fmt.Sprintf("Cancel the booking of %s on %s, %s - %s?", b.ResourceName, b.Date, b.StartTime, b.EndTime)
		}
	}
	return "Cancel this booking?"
}

// SetBookingsFilter chooses which branch the "my bookings" view shows.
func (c *Controller) SetBookingsFilter(f bookinglist.Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filter = f
}

// RefreshMyBookings reloads the current user's bookings.
func (c *Controller) RefreshMyBookings(ctx context.Context) error {
	userID, err := c.userID(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.bookingsSeq++
	seq := c.bookingsSeq
	c.mu.Unlock()

	list, err := c.gw.GetMyBookings(ctx, userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.bookingsSeq {
		return ErrStale
	}
	if err != nil {
		c.setNotice(NoticeError, userMessage(err, "Failed to load your bookings."), 0)
		c.logger.Error("load bookings failed", "user_id", userID, "error", err)
		return err
	}
	c.myBookings = list
	return nil
}

// RefreshOccupied reloads the bookings of the selected resource.
func (c *Controller) RefreshOccupied(ctx context.Context) error {
	c.mu.Lock()
	c.occupiedSeq++
	seq := c.occupiedSeq
	id := c.sel.ResourceID
	if id == "" {
		c.occupied = nil
		c.occupiedFor = ""
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	list, err := c.gw.GetBookingsByResource(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.occupiedSeq || c.sel.ResourceID != id {
		return ErrStale
	}
	if err != nil {
		c.setNotice(NoticeError, userMessage(err, "Failed to load bookings of this place."), 0)
		c.logger.Error("load occupied slots failed", "workplace_id", id, "error", err)
		return err
	}
	c.occupied = list
	c.occupiedFor = id
	return nil
}

func (c *Controller) refreshMyBookingsQuietly(ctx context.Context) {
	if err := c.RefreshMyBookings(ctx); err != nil && !errors.Is(err, ErrStale) {
		c.logger.Debug("bookings refresh skipped", "error", err)
	}
}

func (c *Controller) refreshOccupiedQuietly(ctx context.Context) {
	if err := c.RefreshOccupied(ctx); err != nil && !errors.Is(err, ErrStale) {
		c.logger.Debug("occupied refresh skipped", "error", err)
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		State:      c.state,
		Selection:  c.sel,
		Options:    c.options(),
		CanConfirm: c.state == Checked && c.verdict != nil && c.verdict.available && c.verdict.key == c.currentTuple(),
		Failures:   Validate(c.sel),
		StartSlots: StartSlots(),
		EndSlots:   EndSlots(c.sel.StartTime),
	}
	if res, ok := workplace.FindByID(c.resources, c.sel.ResourceID); ok {
		s.Resource = &res
	}
	if c.pending != nil {
		p := *c.pending
		s.Pending = &p
	}
	return s
}

// MyBookings renders the user's bookings with the current filter.
func (c *Controller) MyBookings() bookinglist.MyBookingsView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return bookinglist.RenderMyBookings(c.myBookings, c.filter)
}

// Occupied renders the known bookings of the selected resource.
func (c *Controller) Occupied() bookinglist.OccupiedView {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.occupiedFor != c.sel.ResourceID {
		return bookinglist.RenderOccupiedSlots(c.sel.ResourceID, nil)
	}
	return bookinglist.RenderOccupiedSlots(c.occupiedFor, c.occupied)
}

// Notice returns the current notice unless it has expired.
func (c *Controller) Notice() *Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notice == nil {
		return nil
	}
	if !c.notice.ExpiresAt.IsZero() && !c.now().Before(c.notice.ExpiresAt) {
		c.notice = nil
		return nil
	}
	n := *c.notice
	return &n
}
