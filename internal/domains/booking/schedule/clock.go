// Package schedule models booking slots as half-open minute ranges within a day and
// decides whether two slots collide.
package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
)

var (
	ErrInvalidClock = errors.New("time must match HH:MM in 24-hour format")

	clockPattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9]$`)
)

// ValidClock reports whether value is a 24-hour HH:MM wall-clock time. The hour may have one digit.
func ValidClock(value string) bool {
	return clockPattern.MatchString(value)
}

// ParseClock converts HH:MM into minutes since midnight.
func ParseClock(value string) (int, error) {
	if !ValidClock(value) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}

	hour, minute, _ := strings.Cut(value, ":")

	h, _ := strconv.Atoi(hour)
	m, _ := strconv.Atoi(minute)

	return h*minutesPerHour + m, nil
}

// FormatClock renders minutes since midnight as zero padded HH:MM.
func FormatClock(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay

	return fmt.Sprintf("%02d:%02d", minutes/minutesPerHour, minutes%minutesPerHour)
}
