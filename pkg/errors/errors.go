// Package errors provides custom error types for the application.
// It defines domain-specific errors with error codes for better error handling and API responses.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents application error codes
type ErrorCode string

// Error codes for different error categories
const (
	// General errors (1xxx)
	ErrCodeInternal     ErrorCode = "E1000"
	ErrCodeValidation   ErrorCode = "E1001"
	ErrCodeNotFound     ErrorCode = "E1002"
	ErrCodeConflict     ErrorCode = "E1003"
	ErrCodeForbidden    ErrorCode = "E1004"
	ErrCodeUnauthorized ErrorCode = "E1005"

	// Generation backend errors (2xxx)
	ErrCodeBackendUnavailable ErrorCode = "E2001"
	ErrCodeBackendResponse    ErrorCode = "E2002"
	ErrCodeBackendNotFound    ErrorCode = "E2003"
	ErrCodeBackendAuth        ErrorCode = "E2004"
	ErrCodeBackendTimeout     ErrorCode = "E2005"

	// Render errors (3xxx)
	ErrCodeUnknownLayout ErrorCode = "E3001"
	ErrCodeRenderFailed  ErrorCode = "E3002"

	// Export errors (4xxx)
	ErrCodeExportFormat   ErrorCode = "E4001"
	ErrCodeExportFailed   ErrorCode = "E4002"
	ErrCodeExportInFlight ErrorCode = "E4003"
	ErrCodeReportNotReady ErrorCode = "E4004"

	// Database errors (5xxx)
	ErrCodeDBConnection ErrorCode = "E5001"
	ErrCodeDBQuery      ErrorCode = "E5002"
	ErrCodeDBMigration  ErrorCode = "E5003"

	// Configuration errors (6xxx)
	ErrCodeConfigNotFound ErrorCode = "E6001"
	ErrCodeConfigInvalid  ErrorCode = "E6002"
	ErrCodeConfigParse    ErrorCode = "E6003"

	// Polling errors (7xxx)
	ErrCodePollFetch      ErrorCode = "E7001"
	ErrCodePollActive     ErrorCode = "E7002"
	ErrCodeReportFailed   ErrorCode = "E7003"
	ErrCodeSessionClosed  ErrorCode = "E7004"
	ErrCodeSessionMissing ErrorCode = "E7005"
)

// Exit codes for application startup failures
const (
	// ExitCodeConfigValidation indicates configuration validation failure
	ExitCodeConfigValidation = 2
)

// AppError represents an application-level error with code and context
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
	Details any       `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code for the error
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeNotFound, ErrCodeBackendNotFound, ErrCodeSessionMissing:
		return http.StatusNotFound
	case ErrCodeValidation, ErrCodeUnknownLayout, ErrCodeExportFormat:
		return http.StatusBadRequest
	case ErrCodeUnauthorized, ErrCodeBackendAuth:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeConflict, ErrCodePollActive, ErrCodeExportInFlight, ErrCodeReportNotReady, ErrCodeSessionClosed:
		return http.StatusConflict
	case ErrCodeBackendTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeBackendUnavailable, ErrCodePollFetch:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with AppError
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// Common error constructors for convenience

// ErrInternal creates an internal server error
func ErrInternal(message string, err error) *AppError {
	return Wrap(ErrCodeInternal, message, err)
}

// ErrValidation creates a validation error
func ErrValidation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// ErrNotFound creates a not found error
func ErrNotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

// ErrUnauthorized creates an unauthorized error
func ErrUnauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

// ErrForbidden creates a forbidden error
func ErrForbidden(message string) *AppError {
	return New(ErrCodeForbidden, message)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError attempts to convert an error to AppError, looking through wrapped errors
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err is an AppError carrying the given code
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}
