package errors

import "errors"

var (
	ErrBusinessHoursNotFound = errors.New("business hours not configured")

	ErrBlockedDateNotFound = errors.New("blocked date not found")
)
