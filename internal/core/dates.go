package core

import (
	"fmt"
	"time"
)

// DayLayout is the calendar-day key format used for grouping and for
// budget month keys ("2006-01" prefix).
const (
	DayLayout       = "2006-01-02"
	MonthYearLayout = "2006-01"
)

// StartOfDay clips t to 00:00:00 in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// EndOfDay clips t to the last representable instant of its calendar day.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// DayKey returns the calendar-day bucket key for t.
func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// ParseMonthYear parses a "YYYY-MM" key.
func ParseMonthYear(monthYear string) (year int, month time.Month, err error) {
	t, err := time.Parse(MonthYearLayout, monthYear)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month key %q: %w", monthYear, err)
	}
	return t.Year(), t.Month(), nil
}

// DaysInMonth returns the number of calendar days in a "YYYY-MM" month.
func DaysInMonth(monthYear string) (int, error) {
	year, month, err := ParseMonthYear(monthYear)
	if err != nil {
		return 0, err
	}
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day(), nil
}
