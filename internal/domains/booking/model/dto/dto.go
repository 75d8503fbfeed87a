package dto

import (
	"database/sql"
	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/booking/schedule"
	"roombook/internal/domains/booking/validation"
	"roombook/shared"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	gModel "roombook/shared/model"
	"roombook/shared/timezone"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	SortNewest = "newest"
	SortOldest = "oldest"
	SortName   = "name"
)

// CreateBookingRequest is the booking form as submitted. Fields are checked by the
// booking validator, not by struct tags alone.
type CreateBookingRequest = validation.Submission

// NewBooking builds the row to insert for a validated request.
func NewBooking(req CreateBookingRequest, slot schedule.Slot, status, user string) model.Booking {
	now := timezone.Now()

	return model.Booking{
		ID:          uuid.NewString(),
		RoomID:      req.RoomID,
		Name:        req.Name,
		Phone:       req.Phone,
		Unit:        req.Unit,
		BookingDate: slot.Date,
		StartMinute: slot.Range.Start,
		EndMinute:   slot.Range.End,
		Status:      status,
		Notes:       req.Notes,
		Metadata:    gModel.NewMetadata(user, now),
	}
}

type UpdateStatusRequest struct {
	Status          string `json:"status"           validate:"required,oneof=pending approved rejected active completed"`
	RejectionReason string `json:"rejection_reason" validate:"omitempty,max=500"`
}

// Reason returns the value to store in rejection_reason for this request.
func (r *UpdateStatusRequest) Reason() sql.NullString {
	if r.Status != model.StatusRejected {
		return sql.NullString{}
	}

	return sql.NullString{String: strings.TrimSpace(r.RejectionReason), Valid: true}
}

type BookingResponse struct {
	ID              string `json:"id"`
	RoomID          string `json:"room_id"`
	RoomName        string `json:"room_name"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	Unit            string `json:"unit"`
	BookingDate     string `json:"booking_date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Status          string `json:"status"`
	Notes           string `json:"notes"`
	RejectionReason string `json:"rejection_reason,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(model model.Booking) {
	r.ID = model.ID
	r.RoomID = model.RoomID
	r.RoomName = model.RoomName
	r.Name = model.Name
	r.Phone = model.Phone
	r.Unit = model.Unit
	r.BookingDate = model.BookingDate.Format(constant.DayFormat)
	r.StartTime = schedule.FormatClock(model.StartMinute)
	r.EndTime = schedule.FormatClock(model.EndMinute)
	r.Status = model.Status
	r.Notes = model.Notes
	r.RejectionReason = model.RejectionReason.String
	r.Metadata.FromModel(model.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, mod := range models {
		r.Bookings[i].FromModel(mod)
	}
}

type ValidateBookingResponse struct {
	Valid  bool              `json:"valid"`
	Fields map[string]string `json:"fields,omitempty"`
}

type CalendarEntry struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	RoomName  string `json:"room_name"`
	Name      string `json:"name"`
	Unit      string `json:"unit"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Status    string `json:"status"`
}

type CalendarDay struct {
	Date     string          `json:"date"`
	Bookings []CalendarEntry `json:"bookings"`
}

type CalendarResponse struct {
	Month string        `json:"month"`
	Days  []CalendarDay `json:"days"`
}

// FromModels groups bookings by date, both days and entries in ascending order.
func (r *CalendarResponse) FromModels(month string, models []model.Booking) {
	r.Month = month
	r.Days = []CalendarDay{}

	byDate := map[string][]model.Booking{}
	for _, mod := range models {
		date := mod.BookingDate.Format(constant.DayFormat)
		byDate[date] = append(byDate[date], mod)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}

	sort.Strings(dates)

	for _, date := range dates {
		items := byDate[date]
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].StartMinute < items[j].StartMinute
		})

		day := CalendarDay{Date: date, Bookings: make([]CalendarEntry, len(items))}
		for i, mod := range items {
			day.Bookings[i] = CalendarEntry{
				ID:        mod.ID,
				RoomID:    mod.RoomID,
				RoomName:  mod.RoomName,
				Name:      mod.Name,
				Unit:      mod.Unit,
				StartTime: schedule.FormatClock(mod.StartMinute),
				EndTime:   schedule.FormatClock(mod.EndMinute),
				Status:    mod.Status,
			}
		}

		r.Days = append(r.Days, day)
	}
}

// SortColumn maps a public sort key to an ORDER BY pair. Unknown keys fall back to newest.
func SortColumn(sort string) (string, string) {
	switch sort {
	case SortOldest:
		return model.TableName + "." + model.FieldCreatedAt, gDto.SortDirAsc
	case SortName:
		return model.TableName + "." + model.FieldName, gDto.SortDirAsc
	default:
		return model.TableName + "." + model.FieldCreatedAt, gDto.SortDirDesc
	}
}
