package errors

import "errors"

var (
	ErrNotFound = errors.New("tenant not found")

	ErrInactive = errors.New("tenant is not active")

	ErrDuplicateSubdomain = errors.New("tenant subdomain already exists")
)
