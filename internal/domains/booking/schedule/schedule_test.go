package schedule_test

import (
	"context"
	"roombook/internal/domains/booking/schedule"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int
		wantErr bool
	}{
		{name: "midnight", value: "00:00", want: 0},
		{name: "single digit hour", value: "9:05", want: 9*60 + 5},
		{name: "last minute", value: "23:59", want: 23*60 + 59},
		{name: "afternoon", value: "14:30", want: 14*60 + 30},
		{name: "hour out of range", value: "24:00", wantErr: true},
		{name: "minute out of range", value: "10:60", wantErr: true},
		{name: "missing minutes", value: "10", wantErr: true},
		{name: "seconds", value: "10:00:00", wantErr: true},
		{name: "twelve hour suffix", value: "10:00 PM", wantErr: true},
		{name: "empty", value: "", wantErr: true},
		{name: "three digit hour", value: "009:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := schedule.ParseClock(tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, schedule.ErrInvalidClock)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClockRoundTrip(t *testing.T) {
	for minute := 0; minute < 24*60; minute++ {
		formatted := schedule.FormatClock(minute)

		got, err := schedule.ParseClock(formatted)
		require.NoError(t, err, formatted)
		require.Equal(t, minute, got, formatted)
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{name: "touching at end", aStart: 540, aEnd: 600, bStart: 600, bEnd: 660, want: false},
		{name: "touching at start", aStart: 600, aEnd: 660, bStart: 540, bEnd: 600, want: false},
		{name: "partial overlap", aStart: 540, aEnd: 630, bStart: 600, bEnd: 660, want: true},
		{name: "contained", aStart: 540, aEnd: 720, bStart: 600, bEnd: 630, want: true},
		{name: "identical", aStart: 600, aEnd: 660, bStart: 600, bEnd: 660, want: true},
		{name: "disjoint", aStart: 480, aEnd: 510, bStart: 600, bEnd: 660, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schedule.Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
			assert.Equal(t, tt.want, schedule.Overlaps(tt.bStart, tt.bEnd, tt.aStart, tt.aEnd), "overlap must be symmetric")
		})
	}
}

func TestOverlapsSymmetric(t *testing.T) {
	for a := 0; a < 8; a++ {
		for b := a; b < 8; b++ {
			for c := 0; c < 8; c++ {
				for d := c; d < 8; d++ {
					assert.Equal(t, schedule.Overlaps(a, b, c, d), schedule.Overlaps(c, d, a, b))
				}
			}
		}
	}
}

func TestRange(t *testing.T) {
	r, err := schedule.ParseRange("09:00", "09:30")
	require.NoError(t, err)

	assert.Equal(t, 30, r.Duration())
	assert.True(t, r.Valid(30))
	assert.False(t, r.Valid(31))
	assert.Equal(t, "09:00-09:30", r.String())

	short, err := schedule.ParseRange("09:00", "09:15")
	require.NoError(t, err)
	assert.False(t, short.Valid(30))

	reversed, err := schedule.ParseRange("10:00", "09:00")
	require.NoError(t, err)
	assert.False(t, reversed.Valid(0))

	_, err = schedule.ParseRange("9am", "10:00")
	assert.Error(t, err)
}

func TestIsBlocking(t *testing.T) {
	assert.True(t, schedule.IsBlocking(schedule.StatusPending))
	assert.True(t, schedule.IsBlocking(schedule.StatusApproved))
	assert.True(t, schedule.IsBlocking(schedule.StatusActive))
	assert.False(t, schedule.IsBlocking(schedule.StatusRejected))
	assert.False(t, schedule.IsBlocking(schedule.StatusCompleted))
	assert.False(t, schedule.IsBlocking("unknown"))
}

func day(value string) time.Time {
	d, _ := time.Parse("2006-01-02", value)

	return d
}

func slot(id, room, date, start, end, status string) schedule.Slot {
	r, _ := schedule.ParseRange(start, end)

	return schedule.Slot{ID: id, RoomID: room, Date: day(date), Range: r, Status: status}
}

func TestConflicts(t *testing.T) {
	existing := []schedule.Slot{
		slot("b1", "room-a", "2025-06-10", "10:00", "11:00", schedule.StatusApproved),
		slot("b2", "room-a", "2025-06-10", "13:00", "14:00", schedule.StatusRejected),
		slot("b3", "room-a", "2025-06-10", "15:00", "16:00", schedule.StatusCompleted),
		slot("b4", "room-b", "2025-06-10", "08:00", "09:00", schedule.StatusPending),
		slot("b5", "room-a", "2025-06-11", "08:00", "09:00", schedule.StatusActive),
	}

	tests := []struct {
		name      string
		candidate schedule.Slot
		want      bool
	}{
		{name: "overlaps approved", candidate: slot("", "room-a", "2025-06-10", "10:30", "11:30", ""), want: true},
		{name: "touches approved", candidate: slot("", "room-a", "2025-06-10", "11:00", "12:00", ""), want: false},
		{name: "ends where approved starts", candidate: slot("", "room-a", "2025-06-10", "09:00", "10:00", ""), want: false},
		{name: "rejected does not block", candidate: slot("", "room-a", "2025-06-10", "13:00", "14:00", ""), want: false},
		{name: "completed does not block", candidate: slot("", "room-a", "2025-06-10", "15:00", "16:00", ""), want: false},
		{name: "other room", candidate: slot("", "room-a", "2025-06-10", "08:00", "09:00", ""), want: false},
		{name: "other day", candidate: slot("", "room-b", "2025-06-11", "08:00", "09:00", ""), want: false},
		{name: "pending blocks", candidate: slot("", "room-b", "2025-06-10", "08:30", "09:30", ""), want: true},
		{name: "same booking ignored", candidate: slot("b1", "room-a", "2025-06-10", "10:00", "11:00", ""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, schedule.Conflicts(tt.candidate, existing))

			got, err := schedule.Bookings(existing).HasConflict(context.Background(), tt.candidate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
