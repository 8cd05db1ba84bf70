package bookingform

import (
	"strings"

	"github.com/nekogravitycat/workplace-booking/internal/booking"
	"github.com/nekogravitycat/workplace-booking/internal/workplace"
)

// Selection is what the user has picked so far. Date is DD.MM.YYYY and
// times are HH:MM; empty strings mean "not chosen".
type Selection struct {
	Branch     workplace.Branch
	Kind       workplace.Kind
	ResourceID string
	Date       string
	StartTime  string
	EndTime    string
	Purpose    string
}

// Rule identifies one validation check. Rules are reported in this order.
type Rule int

const (
	RuleResourceRequired Rule = iota + 1
	RuleDateRequired
	RuleTimesRequired
	RuleStartAfterOpening
	RuleEndBeforeClosing
	RuleStartBeforeEnd
	RuleMinimumDuration
)

var ruleMessages = map[Rule]string{
	RuleResourceRequired:  "Select a place",
	RuleDateRequired:      "Select a date",
	RuleTimesRequired:     "Select start and end time",
	RuleStartAfterOpening: "Start time cannot be earlier than 09:00",
	RuleEndBeforeClosing:  "End time cannot be later than 18:00",
	RuleStartBeforeEnd:    "End time must be later than start time",
	RuleMinimumDuration:   "Booking is too short: minimum duration 30 minutes",
}

// Failure is one violated rule with its user-facing message.
type Failure struct {
	Rule    Rule
	Message string
}

func failure(r Rule) Failure {
	return Failure{Rule: r, Message: ruleMessages[r]}
}

// Validate checks every rule against sel and returns all violations in rule
// order. Time rules are evaluated only when both times parse, and the
// duration rule only when start is before end.
func Validate(sel Selection) []Failure {
	var out []Failure

	if sel.ResourceID == "" {
		out = append(out, failure(RuleResourceRequired))
	}
	if sel.Date == "" {
		out = append(out, failure(RuleDateRequired))
	}

	start, startErr := booking.ParseClock(sel.StartTime)
	end, endErr := booking.ParseClock(sel.EndTime)
	if startErr != nil || endErr != nil {
		return append(out, failure(RuleTimesRequired))
	}

	if start < booking.OpeningMinutes {
		out = append(out, failure(RuleStartAfterOpening))
	}
	if end > booking.ClosingMinutes {
		out = append(out, failure(RuleEndBeforeClosing))
	}
	if start >= end {
		out = append(out, failure(RuleStartBeforeEnd))
	} else if end-start < booking.SlotMinutes {
		out = append(out, failure(RuleMinimumDuration))
	}
	return out
}

// ValidationError carries the failures that blocked an availability check.
type ValidationError struct {
	Failures []Failure
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "; ")
}
