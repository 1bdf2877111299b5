package errors

import (
	"net/http"

	"credsvc/internal/errors"
)

// AppError defines the interface for application-specific errors
type AppError interface {
	error
	HTTPCode() int     // HTTP status code
	ErrorCode() string // Business error code
	Message() string   // User-friendly error message
	Details() string   // Detailed error information (optional)
}

// BaseError is a basic error structure that implements the AppError interface
type BaseError struct {
	httpCode  int
	errorCode string
	message   string
	details   string
}

// NewBaseError creates a new base error
func NewBaseError(httpCode int, errorCode, message, details string) *BaseError {
	return &BaseError{
		httpCode:  httpCode,
		errorCode: errorCode,
		message:   message,
		details:   details,
	}
}

// Error implements the error interface
func (e *BaseError) Error() string {
	return e.message
}

// WrapMessage wraps the error with additional context message
func (e *BaseError) WrapMessage(message string) error {
	return errors.Wrap(e, message)
}

// HTTPCode returns the HTTP status code
func (e *BaseError) HTTPCode() int {
	return e.httpCode
}

// ErrorCode returns the business error code
func (e *BaseError) ErrorCode() string {
	return e.errorCode
}

// Message returns the user-friendly error message
func (e *BaseError) Message() string {
	return e.message
}

// Details returns detailed error information
func (e *BaseError) Details() string {
	return e.details
}

// Predefined error types
var (
	// ErrValidationFailed is returned when a required field is missing.
	ErrValidationFailed = NewBaseError(
		http.StatusBadRequest,
		"VALIDATION_FAILED",
		"Missing required field",
		"",
	)

	// ErrAccountConflict is returned when registration collides with an existing account.
	// The message does not say which field collided.
	ErrAccountConflict = NewBaseError(
		http.StatusConflict,
		"ACCOUNT_CONFLICT",
		"Account could not be created",
		"",
	)

	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_CREDENTIALS",
		"Invalid credentials",
		"",
	)

	// ErrInvalidToken covers malformed, unsigned, tampered and wrongly signed tokens.
	ErrInvalidToken = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_TOKEN",
		"Invalid token",
		"",
	)

	ErrPasswordHashFailed = NewBaseError(
		http.StatusInternalServerError,
		"PASSWORD_HASH_FAILED",
		"Password processing failed",
		"",
	)

	ErrTokenIssueFailed = NewBaseError(
		http.StatusInternalServerError,
		"TOKEN_ISSUE_FAILED",
		"Token could not be issued",
		"",
	)

	// General errors
	ErrInternalError = NewBaseError(
		http.StatusInternalServerError,
		"INTERNAL_ERROR",
		"Internal server error",
		"",
	)
)

// InfrastructureError represents a store or network failure, implementing the AppError interface.
// The cause is kept for logs and never rendered to callers.
type InfrastructureError struct {
	err     error
	details string
}

// NewInfrastructureError creates an infrastructure error around its cause.
func NewInfrastructureError(err error, details string) AppError {
	return &InfrastructureError{
		err:     err,
		details: details,
	}
}

// Error implements the error interface
func (e *InfrastructureError) Error() string {
	if e.err == nil {
		return "infrastructure failure: " + e.details
	}

	return errors.Wrap(e.err, "infrastructure failure").Error()
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *InfrastructureError) Unwrap() error {
	return e.err
}

// HTTPCode returns the HTTP status code
func (e *InfrastructureError) HTTPCode() int {
	return http.StatusInternalServerError
}

// ErrorCode returns the business error code
func (e *InfrastructureError) ErrorCode() string {
	return "INFRASTRUCTURE_ERROR"
}

// Message returns the user-friendly error message
func (e *InfrastructureError) Message() string {
	return "Service temporarily unavailable"
}

// Details returns detailed error information
func (e *InfrastructureError) Details() string {
	return e.details
}

// HTTPCodeOf returns the HTTP status of the first AppError in err's chain,
// or 500 when there is none.
func HTTPCodeOf(err error) int {
	var appErr AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPCode()
	}

	return http.StatusInternalServerError
}

// IsInfrastructure reports whether err carries an InfrastructureError.
func IsInfrastructure(err error) bool {
	var infraErr *InfrastructureError

	return errors.As(err, &infraErr)
}
