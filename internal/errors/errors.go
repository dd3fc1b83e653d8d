package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Transport errors (NET-001 to NET-099): no response reached the client
	ErrCodeTransport ErrorCode = "NET-001"
	ErrCodeTimeout   ErrorCode = "NET-002"

	// Server errors (API-001 to API-099): structured non-2xx responses
	ErrCodeServer       ErrorCode = "API-001"
	ErrCodeDecodeFailed ErrorCode = "API-002"
	ErrCodeNotFound     ErrorCode = "API-003"

	// Authorization errors (AUTH-001 to AUTH-099)
	ErrCodeUnauthorized ErrorCode = "AUTH-001"
	ErrCodeNotLoggedIn  ErrorCode = "AUTH-002"

	// Session errors (SESSION-001 to SESSION-099)
	ErrCodeSessionPersist ErrorCode = "SESSION-001"
	ErrCodeSessionSeal    ErrorCode = "SESSION-002"

	// Connect flow errors (CONNECT-001 to CONNECT-099)
	ErrCodeAuthorizationURLEmpty     ErrorCode = "CONNECT-001"
	ErrCodeAuthorizationURLMalformed ErrorCode = "CONNECT-002"
	ErrCodeAuthorizationURLUnsafe    ErrorCode = "CONNECT-003"
	ErrCodeConnectState              ErrorCode = "CONNECT-004"
	ErrCodeEmployeeListUnavailable   ErrorCode = "CONNECT-005"
	ErrCodeNavigationFailed          ErrorCode = "CONNECT-006"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigNotFound ErrorCode = "CONFIG-001"
	ErrCodeConfigInvalid  ErrorCode = "CONFIG-002"

	// Validation errors (VALIDATE-001 to VALIDATE-099)
	ErrCodeInvalidInput ErrorCode = "VALIDATE-001"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileReadFailed  ErrorCode = "IO-001"
	ErrCodeFileWriteFailed ErrorCode = "IO-002"
)

// CrewError represents an enhanced error with code, suggestions, and an
// optional HTTP status for server-originated failures
type CrewError struct {
	Code        ErrorCode
	Message     string
	Status      int
	Suggestions []string
	Cause       error
}

// Error implements the error interface
func (e *CrewError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Status != 0 {
		b.WriteString(fmt.Sprintf(" (status %d)", e.Status))
	}

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *CrewError) Unwrap() error {
	return e.Cause
}

// New creates a new CrewError
func New(code ErrorCode, message string) *CrewError {
	return &CrewError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new CrewError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *CrewError {
	return &CrewError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithStatus attaches the HTTP status the server responded with
func (e *CrewError) WithStatus(status int) *CrewError {
	e.Status = status
	return e
}

// WithSuggestion adds a suggestion to the error
func (e *CrewError) WithSuggestion(suggestion string) *CrewError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *CrewError) WithSuggestions(suggestions ...string) *CrewError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// HasCode reports whether err is a CrewError carrying the given code
func HasCode(err error, code ErrorCode) bool {
	var crewErr *CrewError
	if errors.As(err, &crewErr) {
		return crewErr.Code == code
	}
	return false
}

// IsTransport reports whether err is a transport failure: the request never
// produced a response
func IsTransport(err error) bool {
	return HasCode(err, ErrCodeTransport) || HasCode(err, ErrCodeTimeout)
}

// IsUnauthorized reports whether err signals invalid or expired credentials
func IsUnauthorized(err error) bool {
	return HasCode(err, ErrCodeUnauthorized)
}

// Common error constructors for frequently used errors

// NewTransportError creates an error for a request that never reached the server
func NewTransportError(cause error) *CrewError {
	return Wrap(ErrCodeTransport, "request failed before a response was received", cause).
		WithSuggestion("Check your network connection").
		WithSuggestion("Verify the API URL with 'crewctl config show'")
}

// NewServerError creates an error for a structured non-2xx server response
func NewServerError(status int, message string) *CrewError {
	if message == "" {
		message = fmt.Sprintf("server returned status %d", status)
	}
	return New(ErrCodeServer, message).WithStatus(status)
}

// NewUnauthorizedError creates an error for invalid or expired credentials
func NewUnauthorizedError(status int) *CrewError {
	return New(ErrCodeUnauthorized, "authorization failed: invalid or expired credentials").
		WithStatus(status).
		WithSuggestion("Run 'crewctl auth login' to re-authenticate")
}

// NewNotLoggedInError creates an error for protected operations without a session
func NewNotLoggedInError() *CrewError {
	return New(ErrCodeNotLoggedIn, "not logged in").
		WithSuggestion("Run 'crewctl auth login' first")
}

// NewEmptyAuthorizationURLError is raised when a connect grant carries no
// authorization address
func NewEmptyAuthorizationURLError() *CrewError {
	return New(ErrCodeAuthorizationURLEmpty, "empty authorization URL")
}

// NewMalformedAuthorizationURLError is raised when the authorization address
// does not parse as an absolute URL
func NewMalformedAuthorizationURLError(raw string, cause error) *CrewError {
	return Wrap(ErrCodeAuthorizationURLMalformed, "malformed authorization URL", cause).
		WithSuggestion(fmt.Sprintf("Server returned: %q", raw))
}

// NewUnsafeAuthorizationURLError is raised when the authorization address uses
// a scheme outside http and https
func NewUnsafeAuthorizationURLError(scheme string) *CrewError {
	return New(ErrCodeAuthorizationURLUnsafe, "unsafe authorization URL").
		WithSuggestion(fmt.Sprintf("Scheme %q is not allowed; only http and https are navigable", scheme))
}

// NewConfigInvalidError creates a configuration parse failure
func NewConfigInvalidError(path string, cause error) *CrewError {
	return Wrap(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration file: %s", path), cause).
		WithSuggestion("Check the YAML syntax").
		WithSuggestion("Delete the file to fall back to defaults")
}
