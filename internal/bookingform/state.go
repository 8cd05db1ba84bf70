package bookingform

import (
	"context"
	"errors"
	"time"

	"github.com/nekogravitycat/workplace-booking/internal/workplace"
)

// State is the position of the form in the booking workflow.
type State int

const (
	Idle State = iota
	ResourceChosen
	Checked
	Confirming
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ResourceChosen:
		return "resource-chosen"
	case Checked:
		return "checked"
	case Confirming:
		return "confirming"
	}
	return "unknown"
}

var (
	ErrUnknownResource  = errors.New("place is not in the current list")
	ErrInvalidSlot      = errors.New("time must be a half-hour slot between 09:00 and 18:00")
	ErrDateInPast       = errors.New("cannot book a date in the past")
	ErrWeekend          = errors.New("bookings are not available on weekends")
	ErrOccupied         = errors.New("this place is already occupied at the selected time")
	ErrStale            = errors.New("result no longer matches the current selection")
	ErrNotChecked       = errors.New("check availability before booking")
	ErrNoPending        = errors.New("nothing to confirm")
	ErrConfirmationOpen = errors.New("confirm or dismiss the open booking first")
	ErrResourceMissing  = errors.New("selected place is missing from the loaded list")
	ErrCancelDeclined   = errors.New("cancellation declined")
	ErrNotAuthenticated = errors.New("please log in again")
)

// PlaceholderPurpose is used when the user leaves the purpose empty.
const PlaceholderPurpose = "Not specified"

// NoticeTTL is how long a success notice stays visible.
const NoticeTTL = 5 * time.Second

// PendingBooking is the snapshot shown for confirmation.
type PendingBooking struct {
	Resource  workplace.Resource
	Date      string
	StartTime string
	EndTime   string
	Purpose   string
}

// NoticeLevel tells how a Notice should be presented.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeSuccess
	NoticeError
)

// Notice is a message for the user. A zero ExpiresAt never expires.
type Notice struct {
	Seq       uint64
	Level     NoticeLevel
	Text      string
	ExpiresAt time.Time
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// Snapshot is a consistent copy of the controller state for rendering.
type Snapshot struct {
	State     State
	Selection Selection
	// Options are the resources of the selected branch and kind.
	Options    []workplace.Resource
	Resource   *workplace.Resource
	CanConfirm bool
	Pending    *PendingBooking
	Failures   []Failure
	StartSlots []string
	EndSlots   []string
}
