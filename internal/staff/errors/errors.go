package errors

import "errors"

var (
	ErrStaffNotFound = errors.New("staff member not found")

	ErrScheduleNotFound = errors.New("weekly schedule not found")

	ErrCapabilityNotFound = errors.New("staff capability not found")
)
