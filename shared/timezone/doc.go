// Package timezone pins every wall clock decision to APP_TIMEZONE (an IANA name such as
// "Asia/Jakarta"). Booking dates, "today" and calendar months are all computed here, so
// a server running in UTC still closes the booking day at local midnight.
//
// An unknown or empty name falls back to UTC with a log line.
package timezone
