// Package bookinglist turns booking records into display-ready rows.
// Every function here is a pure projection.
package bookinglist

import (
	"fmt"
	"sort"

	"github.com/nekogravitycat/workplace-booking/internal/booking"
	"github.com/nekogravitycat/workplace-booking/internal/workplace"
)

// Filter selects which branch's bookings are shown.
type Filter string

const FilterAll Filter = "all"

// ParseFilter accepts "all" or a branch name.
func ParseFilter(s string) (Filter, error) {
	if s == string(FilterAll) {
		return FilterAll, nil
	}
	b, err := workplace.ParseBranch(s)
	if err != nil {
		return "", fmt.Errorf("unknown filter %q: use all, moscow or spb", s)
	}
	return Filter(b), nil
}

const unknownName = "Unknown"

// Item is one row of the "my bookings" list.
type Item struct {
	ID           string
	ResourceName string
	Branch       string
	Date         string
	TimeRange    string
	Purpose      string
	Status       booking.Status
	StatusLabel  string
	// Cancelable is true only for confirmed bookings.
	Cancelable bool
}

type MyBookingsView struct {
	Filter       Filter
	Items        []Item
	EmptyMessage string
}

func (v MyBookingsView) Empty() bool { return len(v.Items) == 0 }

// RenderMyBookings keeps the bookings of the filter's branch in the order
// they were received.
func RenderMyBookings(bookings []booking.Booking, filter Filter) MyBookingsView {
	if filter == "" {
		filter = FilterAll
	}
	view := MyBookingsView{Filter: filter, Items: []Item{}}

	for _, b := range bookings {
		if filter != FilterAll && string(b.Branch) != string(filter) {
			continue
		}
		view.Items = append(view.Items, newItem(b))
	}

	if len(view.Items) == 0 {
		if filter == FilterAll {
			view.EmptyMessage = "You have no bookings yet"
		} else {
			view.EmptyMessage = fmt.Sprintf("You have no bookings in %s", workplace.Branch(filter).Label())
		}
	}
	return view
}

func newItem(b booking.Booking) Item {
	name := b.ResourceName
	if name == "" {
		name = unknownName
	}
	branch := unknownName
	if b.Branch != "" {
		branch = b.Branch.ShortLabel()
	}
	return Item{
		ID:           b.ID,
		ResourceName: name,
		Branch:       branch,
		Date:         b.Date,
		TimeRange:    timeRange(b.StartTime, b.EndTime),
		Purpose:      b.Purpose,
		Status:       b.Status,
		StatusLabel:  statusLabel(b.Status),
		Cancelable:   b.Cancelable(),
	}
}

func statusLabel(s booking.Status) string {
	switch s {
	case booking.StatusConfirmed:
		return "Confirmed"
	case booking.StatusCancelled:
		return "Cancelled"
	}
	return unknownName
}

func timeRange(start, end string) string {
	return start + " - " + end
}

// Slot is one occupied interval of a resource.
type Slot struct {
	BookingID string
	Date      string
	TimeRange string
	Purpose   string
}

type OccupiedView struct {
	ResourceID   string
	Slots        []Slot
	EmptyMessage string
}

func (v OccupiedView) Empty() bool { return len(v.Slots) == 0 }

// RenderOccupiedSlots lists the bookings of one resource sorted by day.
// The input is expected to hold only current and future bookings and is not
// filtered again.
func RenderOccupiedSlots(resourceID string, bookings []booking.Booking) OccupiedView {
	sorted := make([]booking.Booking, len(bookings))
	copy(sorted, bookings)
	sort.SliceStable(sorted, func(i, j int) bool {
		return dateKey(sorted[i].Date) < dateKey(sorted[j].Date)
	})

	view := OccupiedView{ResourceID: resourceID, Slots: make([]Slot, 0, len(sorted))}
	for _, b := range sorted {
		view.Slots = append(view.Slots, Slot{
			BookingID: b.ID,
			Date:      b.Date,
			TimeRange: timeRange(b.StartTime, b.EndTime),
			Purpose:   b.Purpose,
		})
	}
	if len(view.Slots) == 0 {
		view.EmptyMessage = "No future bookings for this place"
	}
	return view
}

// dateKey rewrites DD.MM.YYYY as YYYY.MM.DD so that string order is
// calendar order. Other strings are compared as they are.
func dateKey(date string) string {
	if len(date) != 10 || date[2] != '.' || date[5] != '.' {
		return date
	}
	return date[6:] + "." + date[3:5] + "." + date[0:2]
}
