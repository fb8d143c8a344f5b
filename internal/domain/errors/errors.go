// Package errors defines the application error taxonomy and its mapping to
// HTTP status codes.
package errors

import (
	"net/http"

	"evault/internal/errors"
)

// StatusLoginTimeout is the non-standard 440 "login timeout" code. It is
// deliberately distinct from 401/403 so clients can tell "was logged in, now
// stale" apart from "never logged in".
const StatusLoginTimeout = 440

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

// WithDetails adds detailed error information
func (e *BaseError) WithDetails(details string) *BaseError {
	return &BaseError{
		httpCode:  e.httpCode,
		errorCode: e.errorCode,
		message:   e.message,
		details:   details,
	}
}

// Predefined error types
var (
	// Handshake errors
	ErrHandshakeExpired = NewBaseError(
		http.StatusUnauthorized,
		"HANDSHAKE_EXPIRED",
		"Login link expired.",
		"",
	)

	ErrInvalidState = NewBaseError(
		http.StatusUnauthorized,
		"INVALID_STATE",
		"Invalid authentication.",
		"",
	)

	ErrUpstreamAuth = NewBaseError(
		http.StatusUnauthorized,
		"UPSTREAM_AUTH_FAILED",
		"Failed to authenticate with GitHub.",
		"",
	)

	// Session errors
	ErrNotAuthenticated = NewBaseError(
		http.StatusForbidden,
		"NOT_AUTHENTICATED",
		"Access token not found.",
		"",
	)

	ErrSessionExpired = NewBaseError(
		StatusLoginTimeout,
		"SESSION_EXPIRED",
		"Session expired.",
		"",
	)

	ErrPollExhausted = NewBaseError(
		http.StatusForbidden,
		"POLL_EXHAUSTED",
		"Max attempt exceeded.",
		"",
	)

	// Vault errors
	ErrInvalidRepoName = NewBaseError(
		http.StatusBadRequest,
		"INVALID_REPO_NAME",
		"Invalid repository format.",
		"",
	)

	ErrNotOwner = NewBaseError(
		http.StatusForbidden,
		"NOT_OWNER",
		"Not repository owner.",
		"",
	)

	ErrVaultNotFound = NewBaseError(
		http.StatusNotFound,
		"VAULT_NOT_FOUND",
		"Repository not found.",
		"",
	)

	ErrVaultExists = NewBaseError(
		http.StatusBadRequest,
		"VAULT_EXISTS",
		"Repository exists.",
		"",
	)

	// Storage errors
	ErrDatabaseExecute = NewBaseError(
		http.StatusInternalServerError,
		"DATABASE_ERROR",
		"Database operation failed.",
		"",
	)

	ErrCacheUnavailable = NewBaseError(
		http.StatusInternalServerError,
		"CACHE_ERROR",
		"Session store unavailable.",
		"",
	)
)

// NewDatabaseExecuteError wraps a low-level database error with context while
// keeping the generic taxonomy entry for the HTTP boundary.
func NewDatabaseExecuteError(err error, message string) error {
	return errors.Wrap(ErrDatabaseExecute.WithDetails(err.Error()), message)
}
