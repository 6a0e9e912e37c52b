package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeTimeout      = "TIMEOUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInvalidInput = "INVALID_INPUT"
	CodeRateLimited  = "RATE_LIMITED"
	CodeMediaType    = "UNSUPPORTED_MEDIA_TYPE"
	CodeTooLarge     = "REQUEST_TOO_LARGE"

	CodeOutsideBusinessHours = "OUTSIDE_BUSINESS_HOURS"
	CodeDateBlocked          = "DATE_BLOCKED"
	CodeStaffInactive        = "STAFF_INACTIVE"
	CodeStaffNotQualified    = "STAFF_NOT_QUALIFIED"
	CodeOutsideWorkingHours  = "OUTSIDE_WORKING_HOURS"
	CodeTimeConflict         = "TIME_CONFLICT"
	CodeQuotaExceeded        = "QUOTA_EXCEEDED"
	CodeSlotUnavailable      = "SLOT_UNAVAILABLE"
	CodeInvalidTransition    = "INVALID_TRANSITION"
)

// Scope tells the caller whether another staff member or time could work
// ("time") or whether the whole date is closed ("date").
const (
	ScopeTime = "time"
	ScopeDate = "date"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Retryable  bool           `json:"retryable,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(e.Response())
	return data
}

func (e *AppError) Response() ErrorResponse {
	return ErrorResponse{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   e.Details,
	}
}

type ErrorResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func Wrap(err error, code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

func (e *AppError) WithDetail(key string, value any) *AppError {
	return e.WithDetails(map[string]any{key: value})
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// Timeout is always retryable: the operation left no state behind.
func Timeout(message string) *AppError {
	return &AppError{
		Code:       CodeTimeout,
		Message:    message,
		HTTPStatus: http.StatusGatewayTimeout,
		Retryable:  true,
	}
}

func Unavailable(service string) *AppError {
	return &AppError{
		Code:       CodeUnavailable,
		Message:    fmt.Sprintf("%s is temporarily unavailable", service),
		HTTPStatus: http.StatusServiceUnavailable,
		Retryable:  true,
	}
}

func RateLimited() *AppError {
	return &AppError{
		Code:       CodeRateLimited,
		Message:    "Rate limit exceeded",
		HTTPStatus: http.StatusTooManyRequests,
		Retryable:  true,
	}
}

func UnsupportedMediaType(contentType string) *AppError {
	return &AppError{
		Code:       CodeMediaType,
		Message:    "Content-Type must be application/json",
		HTTPStatus: http.StatusUnsupportedMediaType,
		Details:    map[string]any{"content_type": contentType},
	}
}

func RequestTooLarge(limit int64) *AppError {
	return &AppError{
		Code:       CodeTooLarge,
		Message:    "Request body too large",
		HTTPStatus: http.StatusRequestEntityTooLarge,
		Details:    map[string]any{"max_bytes": limit},
	}
}

func OutsideBusinessHours(message string) *AppError {
	return scoped(CodeOutsideBusinessHours, message, http.StatusUnprocessableEntity, ScopeTime)
}

func DateBlocked(date string) *AppError {
	return scoped(CodeDateBlocked, fmt.Sprintf("Bookings are closed on %s", date), http.StatusUnprocessableEntity, ScopeDate).
		WithDetail("date", date)
}

func StaffInactive(staffID string) *AppError {
	return scoped(CodeStaffInactive, "Staff member is not active", http.StatusConflict, ScopeTime).
		WithDetail("staff_id", staffID)
}

func StaffNotQualified(staffID, serviceID string) *AppError {
	return scoped(CodeStaffNotQualified, "Staff member cannot perform this service", http.StatusUnprocessableEntity, ScopeTime).
		WithDetails(map[string]any{"staff_id": staffID, "service_id": serviceID})
}

func OutsideWorkingHours(staffID string) *AppError {
	return scoped(CodeOutsideWorkingHours, "Requested time is outside the staff member's working hours", http.StatusConflict, ScopeTime).
		WithDetail("staff_id", staffID)
}

func TimeConflict(staffID string) *AppError {
	return scoped(CodeTimeConflict, "Requested time overlaps an existing booking", http.StatusConflict, ScopeTime).
		WithDetail("staff_id", staffID)
}

func QuotaExceeded(staffID string, limit int) *AppError {
	return scoped(CodeQuotaExceeded, "Staff member reached the daily home visit quota", http.StatusConflict, ScopeTime).
		WithDetails(map[string]any{"staff_id": staffID, "max_home_visits": limit})
}

func SlotUnavailable(message string) *AppError {
	return scoped(CodeSlotUnavailable, message, http.StatusConflict, ScopeTime)
}

func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:       CodeInvalidTransition,
		Message:    fmt.Sprintf("Booking cannot move from %s to %s", from, to),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"from": from, "to": to},
	}
}

func scoped(code, message string, status int, scope string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		Details:    map[string]any{"scope": scope},
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
