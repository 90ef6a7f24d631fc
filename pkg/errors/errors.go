package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeForbidden         = "FORBIDDEN"
	CodeConflict          = "CONFLICT"
	CodeInternal          = "INTERNAL_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeMissingField      = "MISSING_FIELD"
	CodePastSlot          = "PAST_SLOT"
	CodeAlreadyBooked     = "ALREADY_BOOKED"
	CodeExpired           = "EXPIRED"
	CodeAlreadyRegistered = "ALREADY_REGISTERED"
	CodeMultipleDays      = "INTERVAL_SPANS_MULTIPLE_DAYS"
	CodeRateLimited       = "RATE_LIMITED"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
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
	data, _ := json.Marshal(e)
	return data
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
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

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func NotFoundWithID(resource, id string) *AppError {
	return NotFound(resource).WithDetails(map[string]any{
		"resource": resource,
		"id":       id,
	})
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message, http.StatusBadRequest)
}

// MissingField reports an absent required request field.
func MissingField(field string) *AppError {
	return New(CodeMissingField, fmt.Sprintf("%s is required", field), http.StatusBadRequest).
		WithDetails(map[string]any{"field": field})
}

func Unauthorized(message string) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict)
}

// ConflictingRange reports an overlap with an existing [start, end) range.
func ConflictingRange(message string, start, end time.Time) *AppError {
	return Conflict(message).WithDetails(map[string]any{
		"conflicting_start": start.UTC().Format(time.RFC3339),
		"conflicting_end":   end.UTC().Format(time.RFC3339),
	})
}

func PastSlot(message string) *AppError {
	return New(CodePastSlot, message, http.StatusBadRequest)
}

func AlreadyBooked(message string) *AppError {
	return New(CodeAlreadyBooked, message, http.StatusConflict)
}

func Expired(message string) *AppError {
	return New(CodeExpired, message, http.StatusBadRequest)
}

func AlreadyRegistered(message string) *AppError {
	return New(CodeAlreadyRegistered, message, http.StatusConflict)
}

func IntervalSpansMultipleDays(message string) *AppError {
	return New(CodeMultipleDays, message, http.StatusBadRequest)
}

func RateLimited(message string) *AppError {
	return New(CodeRateLimited, message, http.StatusTooManyRequests)
}

func Internal(message string, err error) *AppError {
	return Wrap(err, CodeInternal, message, http.StatusInternalServerError)
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
