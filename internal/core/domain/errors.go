package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
// Codes have the form SL-<AREA>-<NNNN> where the number mirrors an HTTP status.
type DomainError struct {
	Code    string // Error code (e.g., "SL-SESS-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches another DomainError with the same code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
// The sentinel itself is never modified.
func (e *DomainError) WithDetails(details string) *DomainError {
	c := *e
	c.Details = details
	return &c
}

// WithCause returns a copy of the error wrapping cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	c := *e
	c.Cause = cause
	return &c
}

// GetErrorCode returns the code of the first DomainError in err's chain,
// or "" when there is none. The code is sent in the X-Error-Code header.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Session errors.
var (
	// ErrSessionNotFound indicates no session is stored under the given ID.
	ErrSessionNotFound = NewDomainError("SL-SESS-4040", "session not found")

	// ErrSessionExpired indicates the session outlived its TTL.
	ErrSessionExpired = NewDomainError("SL-SESS-4041", "session expired")

	// ErrSessionBindingMismatch indicates the session was presented by a
	// different client than the one that created it.
	ErrSessionBindingMismatch = NewDomainError("SL-SESS-4030", "session client mismatch")

	// ErrSessionConflict indicates the session ID already exists.
	ErrSessionConflict = NewDomainError("SL-SESS-4090", "session id conflict")
)

// Authentication errors.
var (
	// ErrInvalidCredentials indicates a username/password mismatch.
	ErrInvalidCredentials = NewDomainError("SL-AUTH-4010", "invalid credentials")

	// ErrLoginThrottled indicates too many login attempts from one client.
	ErrLoginThrottled = NewDomainError("SL-AUTH-4290", "too many login attempts")

	// ErrUserNotFound indicates the username is not in the credential table.
	ErrUserNotFound = NewDomainError("SL-AUTH-4040", "user not found")

	// ErrCredentialFormat indicates a malformed stored password hash.
	ErrCredentialFormat = NewDomainError("SL-AUTH-4001", "malformed credential")
)

// System errors.
var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("SL-SYS-5000", "internal server error")

	// ErrStorageError indicates a storage layer error.
	ErrStorageError = NewDomainError("SL-SYS-5001", "storage error")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("SL-ARG-1002", "missing required argument")
)
