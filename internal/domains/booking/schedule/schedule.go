package schedule

import (
	"context"
	"time"
)

// Status values a slot can carry. Mirrors the booking status column.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

const dateLayout = "2006-01-02"

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share at least one minute.
// Touching ranges do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// Range is a half-open span of minutes since midnight.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ParseRange builds a Range from two HH:MM strings. It does not check ordering.
func ParseRange(start, end string) (Range, error) {
	s, err := ParseClock(start)
	if err != nil {
		return Range{}, err
	}

	e, err := ParseClock(end)
	if err != nil {
		return Range{}, err
	}

	return Range{Start: s, End: e}, nil
}

func (r Range) Duration() int {
	return r.End - r.Start
}

// Valid reports whether the range is ordered and lasts at least minDuration minutes.
func (r Range) Valid(minDuration int) bool {
	return r.End > r.Start && r.Duration() >= minDuration
}

func (r Range) Overlaps(other Range) bool {
	return Overlaps(r.Start, r.End, other.Start, other.End)
}

func (r Range) String() string {
	return FormatClock(r.Start) + "-" + FormatClock(r.End)
}

// IsBlocking reports whether a booking in this status occupies its slot.
func IsBlocking(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusActive:
		return true
	default:
		return false
	}
}

// Slot is a room occupied on a calendar date for a range.
type Slot struct {
	ID     string
	RoomID string
	Date   time.Time
	Range  Range
	Status string
}

// SameDay compares calendar dates only.
func SameDay(a, b time.Time) bool {
	return a.Format(dateLayout) == b.Format(dateLayout)
}

// Conflicts reports whether candidate overlaps any blocking slot of the same room and day.
// A slot sharing the candidate's ID is the candidate itself and never conflicts.
func Conflicts(candidate Slot, existing []Slot) bool {
	for _, slot := range existing {
		if candidate.ID != "" && slot.ID == candidate.ID {
			continue
		}

		if slot.RoomID != candidate.RoomID || !SameDay(slot.Date, candidate.Date) {
			continue
		}

		if !IsBlocking(slot.Status) {
			continue
		}

		if slot.Range.Overlaps(candidate.Range) {
			return true
		}
	}

	return false
}

// Bookings is an in-memory set of slots that answers conflict queries.
type Bookings []Slot

func (b Bookings) HasConflict(_ context.Context, candidate Slot) (bool, error) {
	return Conflicts(candidate, b), nil
}
