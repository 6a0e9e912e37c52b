package service

import (
	"visitly/internal/calendar/clock"
	"visitly/pkg/model"
)

// Matches reports whether the blocked-date rule covers date ("YYYY-MM-DD").
//
// A recurring rule repeats from its own date up to and including Until:
// weekly on the same weekday, monthly on the same day of month, yearly on
// the same month and day. Months without that day (the 31st, Feb 29) are
// skipped rather than clamped.
func Matches(rule *model.BlockedDate, date string) bool {
	if rule == nil {
		return false
	}
	if rule.Date == date {
		return true
	}
	if !rule.IsRecurring {
		return false
	}

	// Same-layout strings compare like the dates they name.
	if date < rule.Date {
		return false
	}
	if rule.Until != "" && date > rule.Until {
		return false
	}

	anchor, err := clock.ParseDate(rule.Date)
	if err != nil {
		return false
	}
	d, err := clock.ParseDate(date)
	if err != nil {
		return false
	}

	switch rule.RecurringPattern {
	case model.RecurrenceWeekly:
		return d.Weekday() == anchor.Weekday()
	case model.RecurrenceMonthly:
		return d.Day() == anchor.Day()
	case model.RecurrenceYearly:
		return d.Month() == anchor.Month() && d.Day() == anchor.Day()
	default:
		return false
	}
}

// matchAny returns the first rule covering date.
func matchAny(rules []*model.BlockedDate, date string) *model.BlockedDate {
	for _, rule := range rules {
		if Matches(rule, date) {
			return rule
		}
	}
	return nil
}
