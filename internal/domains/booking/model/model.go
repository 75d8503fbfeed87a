package model

import (
	"database/sql"
	"roombook/internal/domains/booking/schedule"
	"roombook/shared/model"
	"slices"
	"time"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID              = "id"
	FieldRoomID          = "room_id"
	FieldName            = "name"
	FieldPhone           = "phone"
	FieldUnit            = "unit"
	FieldBookingDate     = "booking_date"
	FieldStartMinute     = "start_minute"
	FieldEndMinute       = "end_minute"
	FieldStatus          = "status"
	FieldNotes           = "notes"
	FieldRejectionReason = "rejection_reason"
	FieldCreatedAt       = "created_at"
)

const (
	StatusPending   = schedule.StatusPending
	StatusApproved  = schedule.StatusApproved
	StatusRejected  = schedule.StatusRejected
	StatusActive    = schedule.StatusActive
	StatusCompleted = schedule.StatusCompleted
)

// Statuses lists every status in lifecycle order.
var Statuses = []string{StatusPending, StatusApproved, StatusRejected, StatusActive, StatusCompleted}

// BlockingStatuses occupy their slot.
var BlockingStatuses = []string{StatusPending, StatusApproved, StatusActive}

var transitions = map[string][]string{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusActive, StatusCompleted, StatusRejected},
	StatusActive:   {StatusCompleted},
}

type Booking struct {
	ID              string         `db:"id"`
	RoomID          string         `db:"room_id"`
	RoomName        string         `column:"name"          db:"room_name" table:"rooms"`
	Name            string         `db:"name"`
	Phone           string         `db:"phone"`
	Unit            string         `db:"unit"`
	BookingDate     time.Time      `db:"booking_date"`
	StartMinute     int            `db:"start_minute"`
	EndMinute       int            `db:"end_minute"`
	Status          string         `db:"status"`
	Notes           string         `db:"notes"`
	RejectionReason sql.NullString `db:"rejection_reason"`
	model.Metadata
}

func (Booking) GetJoinQuery() string {
	return "LEFT JOIN rooms ON rooms.id = bookings.room_id"
}

func (b Booking) Slot() schedule.Slot {
	return schedule.Slot{
		ID:     b.ID,
		RoomID: b.RoomID,
		Date:   b.BookingDate,
		Range:  schedule.Range{Start: b.StartMinute, End: b.EndMinute},
		Status: b.Status,
	}
}

func ValidStatus(status string) bool {
	return slices.Contains(Statuses, status)
}

// CanTransition reports whether the natural lifecycle allows moving from one status to another.
func CanTransition(from, to string) bool {
	if from == to {
		return ValidStatus(from)
	}

	return slices.Contains(transitions[from], to)
}

// Slot is the narrow projection used by conflict and calendar queries.
type Slot struct {
	ID          string    `db:"id"`
	RoomID      string    `db:"room_id"`
	BookingDate time.Time `db:"booking_date"`
	StartMinute int       `db:"start_minute"`
	EndMinute   int       `db:"end_minute"`
	Status      string    `db:"status"`
}

func (s Slot) ToSchedule() schedule.Slot {
	return schedule.Slot{
		ID:     s.ID,
		RoomID: s.RoomID,
		Date:   s.BookingDate,
		Range:  schedule.Range{Start: s.StartMinute, End: s.EndMinute},
		Status: s.Status,
	}
}
