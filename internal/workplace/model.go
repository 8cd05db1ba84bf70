package workplace

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("workplace not found")
	ErrInvalidBranch = errors.New("invalid branch")
	ErrInvalidKind   = errors.New("invalid workplace type")
)

// Branch is a physical office location. It partitions resources and bookings.
type Branch string

const (
	BranchMoscow Branch = "moscow"
	BranchSPb    Branch = "spb"
)

// Branches lists every known branch in display order.
var Branches = []Branch{BranchMoscow, BranchSPb}

// Valid reports whether b is a known branch.
func (b Branch) Valid() bool {
	return b == BranchMoscow || b == BranchSPb
}

// Label returns the human-readable office name.
func (b Branch) Label() string {
	switch b {
	case BranchMoscow:
		return "Moscow"
	case BranchSPb:
		return "Saint Petersburg"
	}
	return string(b)
}

// ShortLabel is used in compact list rows.
func (b Branch) ShortLabel() string {
	if b == BranchSPb {
		return "SPb"
	}
	return b.Label()
}

// ParseBranch converts user input into a Branch.
func ParseBranch(s string) (Branch, error) {
	b := Branch(s)
	if !b.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidBranch, s)
	}
	return b, nil
}

// Kind is the type of a bookable resource.
type Kind string

const (
	KindWorkplace   Kind = "workplace"
	KindNegotiation Kind = "negotiation"
	KindConference  Kind = "conference"
)

// Kinds lists every resource kind in display order.
var Kinds = []Kind{KindWorkplace, KindNegotiation, KindConference}

func (k Kind) Valid() bool {
	return k == KindWorkplace || k == KindNegotiation || k == KindConference
}

// ParseKind converts user input into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

// Resource is a bookable entity: a desk, a negotiation room or a conference hall.
// Capacity is set only for rooms.
type Resource struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Number   string `json:"number,omitempty"`
	Kind     Kind   `json:"type"`
	Branch   Branch `json:"branch"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Capacity *int   `json:"capacity,omitempty"`
}

// OptionLabel is the text shown when the resource is offered for selection.
func (r Resource) OptionLabel() string {
	if r.Kind == KindWorkplace || r.Capacity == nil {
		if r.Number == "" {
			return r.Name
		}
		return fmt.Sprintf("%s (%s)", r.Name, r.Number)
	}
	return fmt.Sprintf("%s - up to %d people", r.Name, *r.Capacity)
}

// FilterByKind returns the resources of the given kind, preserving order.
func FilterByKind(resources []Resource, kind Kind) []Resource {
	var out []Resource
	for _, r := range resources {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// FindByID returns the resource with the given id.
func FindByID(resources []Resource, id string) (Resource, bool) {
	for _, r := range resources {
		if r.ID == id {
			return r, true
		}
	}
	return Resource{}, false
}
