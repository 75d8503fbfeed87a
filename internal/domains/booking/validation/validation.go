// Package validation checks a booking submission field by field and reports every
// failing field with a reason code that can be rendered in the caller's language.
package validation

import (
	"context"
	"fmt"
	"roombook/config"
	"roombook/internal/domains/booking/schedule"
	"roombook/shared/i18n"
	"roombook/shared/timezone"
	"roombook/shared/validator"
	"strings"
	"time"
)

// Field names, as they appear in request payloads.
const (
	FieldName        = "name"
	FieldPhone       = "phone"
	FieldUnit        = "unit"
	FieldRoomID      = "room_id"
	FieldBookingDate = "booking_date"
	FieldStartTime   = "start_time"
	FieldEndTime     = "end_time"
)

const (
	DateLayout = "2006-01-02"

	DefaultMinDuration = 30
)

type Reason string

const (
	ReasonRequired       Reason = "required"
	ReasonInvalidDate    Reason = "invalid_date"
	ReasonPastDate       Reason = "past_date"
	ReasonWeekend        Reason = "weekend"
	ReasonTimeFormat     Reason = "time_format"
	ReasonEndBeforeStart Reason = "end_before_start"
	ReasonMinDuration    Reason = "min_duration"
	ReasonConflict       Reason = "conflict"

	// ReasonRoomUnavailable is set by callers that look the room up; Validate never reports it.
	ReasonRoomUnavailable Reason = "room_unavailable"
)

var reasonKeys = map[Reason]string{
	ReasonRequired:       i18n.KeyRequired,
	ReasonInvalidDate:    i18n.KeyInvalidDate,
	ReasonPastDate:       i18n.KeyPastDate,
	ReasonWeekend:        i18n.KeyWeekend,
	ReasonTimeFormat:     i18n.KeyTimeFormat,
	ReasonEndBeforeStart: i18n.KeyEndBeforeStart,
	ReasonMinDuration:    i18n.KeyMinDuration,
	ReasonConflict:       i18n.KeyConflict,

	ReasonRoomUnavailable: i18n.KeyRoomUnavailable,
}

// Submission is the raw booking form. Every field is kept as text so malformed input
// can be reported per field instead of failing the whole decode.
type Submission struct {
	Name        string `json:"name"         validate:"notblank"`
	Phone       string `json:"phone"        validate:"notblank"`
	Unit        string `json:"unit"         validate:"notblank"`
	RoomID      string `json:"room_id"      validate:"notblank"`
	BookingDate string `json:"booking_date" validate:"notblank"`
	StartTime   string `json:"start_time"   validate:"notblank"`
	EndTime     string `json:"end_time"     validate:"notblank"`
	Notes       string `json:"notes"`
}

// Trimmed returns a copy with surrounding whitespace removed from every field.
func (s Submission) Trimmed() Submission {
	return Submission{
		Name:        strings.TrimSpace(s.Name),
		Phone:       strings.TrimSpace(s.Phone),
		Unit:        strings.TrimSpace(s.Unit),
		RoomID:      strings.TrimSpace(s.RoomID),
		BookingDate: strings.TrimSpace(s.BookingDate),
		StartTime:   strings.TrimSpace(s.StartTime),
		EndTime:     strings.TrimSpace(s.EndTime),
		Notes:       strings.TrimSpace(s.Notes),
	}
}

// Slot converts a submission that already passed validation.
func (s Submission) Slot() (schedule.Slot, error) {
	date, err := time.Parse(DateLayout, s.BookingDate)
	if err != nil {
		return schedule.Slot{}, fmt.Errorf("failed to parse booking date: %w", err)
	}

	r, err := schedule.ParseRange(s.StartTime, s.EndTime)
	if err != nil {
		return schedule.Slot{}, err
	}

	return schedule.Slot{RoomID: s.RoomID, Date: date, Range: r}, nil
}

// Errors maps a field name to the first rule it broke. Empty means valid.
type Errors map[string]Reason

func (e Errors) Valid() bool {
	return len(e) == 0
}

// Conflict reports whether the only thing wrong is the slot being taken.
func (e Errors) Conflict() bool {
	return len(e) == 1 && e[FieldStartTime] == ReasonConflict
}

// Localize renders every reason in lang.
func (e Errors) Localize(lang i18n.Lang, minDuration int) map[string]string {
	if len(e) == 0 {
		return nil
	}

	res := make(map[string]string, len(e))

	for field, reason := range e {
		msg := i18n.T(lang, reasonKeys[reason])
		if reason == ReasonMinDuration {
			msg = fmt.Sprintf(msg, minDuration)
		}

		res[field] = msg
	}

	return res
}

// ConflictChecker answers whether a candidate slot collides with stored bookings.
type ConflictChecker interface {
	HasConflict(ctx context.Context, candidate schedule.Slot) (bool, error)
}

type Validator struct {
	minDuration int
	today       func() time.Time
}

// FromConfig builds the Validator the application uses, judging dates against the app timezone.
func FromConfig(cfg *config.Config) *Validator {
	return New(cfg.App.Booking.MinDurationMinutes, timezone.Today)
}

// New builds a Validator. today must return the current date in the application timezone.
func New(minDuration int, today func() time.Time) *Validator {
	if minDuration <= 0 {
		minDuration = DefaultMinDuration
	}

	return &Validator{
		minDuration: minDuration,
		today:       today,
	}
}

func (v *Validator) MinDuration() int {
	return v.minDuration
}

// Validate runs the checks in form order. Within a dependent chain the first failure
// wins; independent fields are all reported. The checker is consulted only when the
// slot itself is well formed, and its error is returned as is.
func (v *Validator) Validate(ctx context.Context, sub Submission, checker ConflictChecker) (Errors, error) {
	sub = sub.Trimmed()
	errs := Errors{}

	for field := range validator.FieldErrors(&sub) {
		errs[field] = ReasonRequired
	}

	date, dateOK := v.checkDate(sub.BookingDate, errs)

	startOK := v.checkClock(FieldStartTime, sub.StartTime, errs)
	endOK := v.checkClock(FieldEndTime, sub.EndTime, errs)

	if !startOK || !endOK {
		return errs, nil
	}

	r, _ := schedule.ParseRange(sub.StartTime, sub.EndTime)

	switch {
	case r.End <= r.Start:
		errs[FieldEndTime] = ReasonEndBeforeStart

		return errs, nil
	case r.Duration() < v.minDuration:
		errs[FieldEndTime] = ReasonMinDuration

		return errs, nil
	}

	if !dateOK || sub.RoomID == "" || checker == nil {
		return errs, nil
	}

	conflict, err := checker.HasConflict(ctx, schedule.Slot{RoomID: sub.RoomID, Date: date, Range: r})
	if err != nil {
		return errs, fmt.Errorf("failed to check booking conflict: %w", err)
	}

	if conflict {
		errs[FieldStartTime] = ReasonConflict
	}

	return errs, nil
}

// checkDate returns the parsed date and whether it could be parsed at all.
func (v *Validator) checkDate(value string, errs Errors) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}

	date, err := time.Parse(DateLayout, value)
	if err != nil {
		errs[FieldBookingDate] = ReasonInvalidDate

		return time.Time{}, false
	}

	switch {
	case value < v.today().Format(DateLayout):
		errs[FieldBookingDate] = ReasonPastDate
	case date.Weekday() == time.Saturday || date.Weekday() == time.Sunday:
		errs[FieldBookingDate] = ReasonWeekend
	}

	return date, true
}

func (v *Validator) checkClock(field, value string, errs Errors) bool {
	if value == "" {
		return false
	}

	if !schedule.ValidClock(value) {
		errs[field] = ReasonTimeFormat

		return false
	}

	return true
}
