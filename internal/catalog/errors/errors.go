package errors

import "errors"

var (
	ErrServiceNotFound = errors.New("service not found")

	ErrCustomerNotFound = errors.New("customer not found")

	ErrDuplicateCustomer = errors.New("customer phone already registered")
)
