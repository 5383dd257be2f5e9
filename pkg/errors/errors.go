package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Error kinds. Every failure crossing a service boundary carries one.
const (
	ErrAuthenticationRequired ErrorCode = iota + 1000
	ErrAuthorizationDenied
	ErrNotFound
	ErrInvalidTransition
	ErrSlotUnavailable
	ErrValidation
	ErrDataAccess
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// CodeOf extracts the error code from err, defaulting to ErrDataAccess for
// anything that is not an AppError.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrDataAccess
}

func AuthenticationRequired() *AppError {
	return &AppError{
		Code:    ErrAuthenticationRequired,
		Message: "authentication required",
	}
}

func AuthorizationDenied(message string) *AppError {
	return &AppError{
		Code:    ErrAuthorizationDenied,
		Message: message,
	}
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:    ErrInvalidTransition,
		Message: fmt.Sprintf("invalid status transition from %s to %s", from, to),
	}
}

func SlotUnavailable(message string) *AppError {
	return &AppError{
		Code:    ErrSlotUnavailable,
		Message: message,
	}
}

func Validation(message string) *AppError {
	return &AppError{
		Code:    ErrValidation,
		Message: message,
	}
}

func DataAccess(err error) *AppError {
	return &AppError{
		Code:    ErrDataAccess,
		Message: "data access failed",
		Err:     err,
	}
}
