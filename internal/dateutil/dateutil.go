// Package dateutil provides pure calendar arithmetic for weekly
// accounting periods. Weeks are Sunday-aligned; all comparisons use
// date-only semantics (local midnight for starts, end-of-day for ends).
package dateutil

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate is returned when a date string cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

// Truncate returns t at local midnight.
func Truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns t at 23:59:59.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// WeekStart returns the Sunday on or before t, at local midnight.
func WeekStart(t time.Time) time.Time {
	return Truncate(t).AddDate(0, 0, -int(t.Weekday()))
}

// WeekEnd returns the Saturday ending the week containing t, at 23:59:59.
func WeekEnd(t time.Time) time.Time {
	return EndOfDay(WeekStart(t).AddDate(0, 0, 6))
}

// InRange reports whether date falls within [start, end], ignoring the
// time of day on date and start and extending end to end-of-day.
func InRange(date, start, end time.Time) bool {
	d := Truncate(date)

	return !d.Before(Truncate(start)) && !d.After(EndOfDay(end))
}

// NextWeekday returns the first date strictly after t whose weekday is
// w, at local midnight. It always advances at least one day, even when
// t itself falls on w.
func NextWeekday(t time.Time, w time.Weekday) time.Time {
	next := Truncate(t).AddDate(0, 0, 1)
	for next.Weekday() != w {
		next = next.AddDate(0, 0, 1)
	}

	return next
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Truncate(a).Equal(Truncate(b))
}

// ParseDate parses a date-only string in 2006-01-02 form into local
// midnight of that day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(time.DateOnly, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	return t, nil
}

// FormatDate renders t as a date-only 2006-01-02 string.
func FormatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
