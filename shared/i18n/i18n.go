// Package i18n holds the message catalog for user facing texts and resolves the
// request language from Accept-Language.
package i18n

import (
	"context"
	"roombook/shared/constant"
	"strings"

	"golang.org/x/text/language"
)

// Lang is a supported catalog language.
type Lang string

const (
	English    Lang = "en"
	Indonesian Lang = "id"
)

// Message keys.
const (
	KeyRequired        = "booking.errorRequired"
	KeyInvalidDate     = "booking.errorInvalidDate"
	KeyPastDate        = "booking.errorPastDate"
	KeyWeekend         = "booking.errorWeekend"
	KeyTimeFormat      = "booking.errorTimeFormat"
	KeyEndBeforeStart  = "booking.errorEndTime"
	KeyMinDuration     = "booking.errorMinDuration"
	KeyConflict        = "booking.conflictDesc"
	KeyInvalid         = "booking.errorInvalid"
	KeyRejectionReason = "booking.errorRejectionReason"
	KeyTransition      = "booking.errorTransition"
	KeyRoomUnavailable = "booking.errorRoomUnavailable"
)

var supported = []language.Tag{
	language.English,
	language.Indonesian,
}

var matcher = language.NewMatcher(supported)

var catalog = map[Lang]map[string]string{
	English: {
		KeyRequired:        "Please fill in all required fields",
		KeyInvalidDate:     "Booking date must be a valid date (YYYY-MM-DD)",
		KeyPastDate:        "Booking can only be made for tomorrow or later",
		KeyWeekend:         "Booking not available on weekends (Saturday & Sunday)",
		KeyTimeFormat:      "Time format must be 00:00 - 23:59 (24-hour)",
		KeyEndBeforeStart:  "End time must be later than start time",
		KeyMinDuration:     "Minimum booking duration is %d minutes",
		KeyConflict:        "Selected time is already booked. Please choose another time.",
		KeyInvalid:         "Booking request is invalid",
		KeyRejectionReason: "Rejection reason is required when rejecting a booking",
		KeyTransition:      "Booking cannot move from %s to %s",
		KeyRoomUnavailable: "Selected room is not available",
	},
	Indonesian: {
		KeyRequired:        "Mohon lengkapi semua field yang wajib diisi",
		KeyInvalidDate:     "Tanggal booking harus berupa tanggal yang valid (YYYY-MM-DD)",
		KeyPastDate:        "Booking hanya bisa dilakukan untuk besok atau hari setelahnya",
		KeyWeekend:         "Booking tidak tersedia untuk hari Sabtu dan Minggu",
		KeyTimeFormat:      "Format waktu harus 00:00 - 23:59 (24 jam)",
		KeyEndBeforeStart:  "Waktu selesai harus lebih dari waktu mulai",
		KeyMinDuration:     "Durasi booking minimal %d menit",
		KeyConflict:        "Waktu yang dipilih sudah dibooking. Silakan pilih waktu lain.",
		KeyInvalid:         "Permintaan booking tidak valid",
		KeyRejectionReason: "Alasan penolakan wajib diisi saat menolak booking",
		KeyTransition:      "Status booking tidak dapat diubah dari %s ke %s",
		KeyRoomUnavailable: "Ruangan yang dipilih tidak tersedia",
	},
}

// Parse maps a language string (a tag or an Accept-Language header) to a supported Lang.
// Anything unknown resolves to fallback.
func Parse(value string, fallback Lang) Lang {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}

	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil || len(tags) == 0 {
		return fallback
	}

	_, idx, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return fallback
	}

	switch supported[idx] {
	case language.Indonesian:
		return Indonesian
	default:
		return English
	}
}

// WithLanguage stores the language on the context.
func WithLanguage(ctx context.Context, lang Lang) context.Context {
	return context.WithValue(ctx, constant.ContextKeyLanguage, lang)
}

// FromContext returns the language stored by WithLanguage, or English.
func FromContext(ctx context.Context) Lang {
	if lang, ok := ctx.Value(constant.ContextKeyLanguage).(Lang); ok {
		return lang
	}

	return English
}

// T looks up key in lang, then English, then returns the key itself.
func T(lang Lang, key string) string {
	if msg, ok := catalog[lang][key]; ok {
		return msg
	}

	if msg, ok := catalog[English][key]; ok {
		return msg
	}

	return key
}
