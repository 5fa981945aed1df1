package models

import (
	"errors"
	"fmt"
)

// Error codes surfaced to callers alongside the human-readable message.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeRequestFailed      = "REQUEST_FAILED"
	CodeDecode             = "DECODE_ERROR"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeNetwork            = "NETWORK_ERROR"
)

// AppError is a custom application error carrying a machine-readable code.
type AppError struct {
	Code    string
	Message string
	// Status and Body are set for REQUEST_FAILED errors only.
	Status int
	Body   string
	Err    error
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

// Predefined error constructors

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

func NewRequestFailedError(status int, body string) *AppError {
	return &AppError{
		Code:    CodeRequestFailed,
		Message: fmt.Sprintf("request failed with status %d", status),
		Status:  status,
		Body:    body,
	}
}

func NewDecodeError(err error) *AppError {
	return &AppError{
		Code:    CodeDecode,
		Message: "malformed token",
		Err:     err,
	}
}

func NewTokenExpiredError() *AppError {
	return &AppError{
		Code:    CodeTokenExpired,
		Message: "token is expired",
	}
}

func NewStorageUnavailableError(err error) *AppError {
	return &AppError{
		Code:    CodeStorageUnavailable,
		Message: "secure storage unavailable",
		Err:     err,
	}
}

func NewNetworkError(err error) *AppError {
	return &AppError{
		Code:    CodeNetwork,
		Message: "network request failed",
		Err:     err,
	}
}

// CodeOf extracts the machine-readable code from err, or "" when err is not
// an AppError.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
