// Package clock converts between instants and tenant-local wall-clock
// values: "HH:MM" times of day and "YYYY-MM-DD" dates.
package clock

import (
	"fmt"
	"time"

	"visitly/pkg/model"
)

// Parse returns the offset of an "HH:MM" time from midnight.
func Parse(hhmm string) (time.Duration, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", hhmm, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// Midnight returns the start of the local day containing t.
func Midnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// LocalDate formats the local calendar date of t.
func LocalDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(model.DateLayout)
}

// Weekday returns the local weekday of t.
func Weekday(t time.Time, loc *time.Location) time.Weekday {
	return t.In(loc).Weekday()
}

// Within reports whether [start, end) lies inside the window
// [open, close) of the local day containing start. An interval that
// crosses midnight never fits.
func Within(start, end time.Time, openAt, closeAt string, loc *time.Location) (bool, error) {
	openOffset, err := Parse(openAt)
	if err != nil {
		return false, err
	}
	closeOffset, err := Parse(closeAt)
	if err != nil {
		return false, err
	}
	if !end.After(start) {
		return false, nil
	}

	day := Midnight(start, loc)
	// Wall-clock arithmetic keeps DST days correct.
	windowStart := at(day, openOffset, loc)
	windowEnd := at(day, closeOffset, loc)

	return !start.Before(windowStart) && !end.After(windowEnd), nil
}

func at(day time.Time, offset time.Duration, loc *time.Location) time.Time {
	h := int(offset / time.Hour)
	m := int((offset % time.Hour) / time.Minute)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, loc)
}

// ParseDate parses a "YYYY-MM-DD" date as UTC midnight.
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", date, err)
	}
	return t, nil
}
