package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStaleBooking means the booking changed between read and write.
	ErrStaleBooking = errors.New("booking was modified concurrently")

	ErrLockHeld = errors.New("staff lock is held by another request")
)
