// Package apperr defines the application error taxonomy.
// Every failure that reaches the HTTP boundary is an *Error of one Kind,
// carrying the HTTP status and a stable machine-readable code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind discriminates the error variants.
type Kind int

const (
	KindServer Kind = iota
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindValidation
	KindConflict
	KindRateLimited
	KindUnavailable
)

// String returns the variant name.
func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindUnavailable:
		return "unavailable"
	default:
		return "server"
	}
}

// Code is a stable machine-readable error identifier.
type Code string

// Auth codes.
const (
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeUserNotFound       Code = "USER_NOT_FOUND"
	CodeUserAlreadyExists  Code = "USER_ALREADY_EXISTS"
	CodeInvalidToken       Code = "INVALID_TOKEN"
	CodeExpiredToken       Code = "EXPIRED_TOKEN"
	CodeUnauthenticated    Code = "UNAUTHENTICATED"
)

// Validation codes.
const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeMissingInput Code = "MISSING_INPUT"
)

// Resource codes.
const (
	CodeResourceNotFound      Code = "RESOURCE_NOT_FOUND"
	CodeResourceAlreadyExists Code = "RESOURCE_ALREADY_EXISTS"
	CodeResourceConflict      Code = "RESOURCE_CONFLICT"
	CodeResourceLimitReached  Code = "RESOURCE_LIMIT_REACHED"
	CodeResourceNotAllowed    Code = "RESOURCE_NOT_ALLOWED"
	CodeRateLimited           Code = "RATE_LIMITED"
)

// Server codes.
const (
	CodeServer         Code = "SERVER_ERROR"
	CodeNotImplemented Code = "NOT_IMPLEMENTED"
	CodeDatabase       Code = "DATABASE_ERROR"
	CodeUnavailable    Code = "SERVICE_UNAVAILABLE"
)

// codeFamilies groups codes by domain.
var codeFamilies = map[Code]string{
	CodeInvalidCredentials:    "AUTH",
	CodeUserNotFound:          "AUTH",
	CodeUserAlreadyExists:     "AUTH",
	CodeInvalidToken:          "AUTH",
	CodeExpiredToken:          "AUTH",
	CodeUnauthenticated:       "AUTH",
	CodeValidation:            "VAL",
	CodeInvalidInput:          "VAL",
	CodeMissingInput:          "VAL",
	CodeResourceNotFound:      "RES",
	CodeResourceAlreadyExists: "RES",
	CodeResourceConflict:      "RES",
	CodeResourceLimitReached:  "RES",
	CodeResourceNotAllowed:    "RES",
	CodeRateLimited:           "RES",
	CodeServer:                "SRV",
	CodeNotImplemented:        "SRV",
	CodeDatabase:              "SRV",
	CodeUnavailable:           "SRV",
}

// Family returns the domain group of the code (AUTH, VAL, RES or SRV).
// Unknown codes belong to SRV.
func (c Code) Family() string {
	if f, ok := codeFamilies[c]; ok {
		return f
	}
	return "SRV"
}

// Error is the single error type crossing the HTTP boundary.
type Error struct {
	Kind    Kind
	Message string
	Code    Code
	Status  int
	// Details maps a dotted field path to a message.
	Details map[string]string
	// Err is the underlying cause. It is logged, never serialized.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Message, e.Code, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithCause returns a copy of e wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// Authentication builds a 401 error. An empty message defaults to "Invalid credentials".
func Authentication(message string, code Code) *Error {
	if message == "" {
		message = "Invalid credentials"
	}
	if code == "" {
		code = CodeInvalidCredentials
	}
	return &Error{Kind: KindAuthentication, Message: message, Code: code, Status: http.StatusUnauthorized}
}

// Authorization builds a 403 error.
func Authorization(message string) *Error {
	if message == "" {
		message = "Insufficient permissions"
	}
	return &Error{Kind: KindAuthorization, Message: message, Code: CodeResourceNotAllowed, Status: http.StatusForbidden}
}

// MethodNotAllowed builds a 405 error for a known path hit with the wrong method.
func MethodNotAllowed(message string) *Error {
	if message == "" {
		message = "Method not allowed"
	}
	return &Error{Kind: KindAuthorization, Message: message, Code: CodeResourceNotAllowed, Status: http.StatusMethodNotAllowed}
}

// NotFound builds a 404 error.
func NotFound(message string) *Error {
	if message == "" {
		message = "Resource not found"
	}
	return &Error{Kind: KindNotFound, Message: message, Code: CodeResourceNotFound, Status: http.StatusNotFound}
}

// Validation builds a 400 error with per-field details.
func Validation(message string, details map[string]string) *Error {
	if message == "" {
		message = "Validation failed"
	}
	return &Error{Kind: KindValidation, Message: message, Code: CodeValidation, Status: http.StatusBadRequest, Details: details}
}

// Conflict builds a 400 error for an already existing resource.
func Conflict(message string) *Error {
	if message == "" {
		message = "Resource already exists"
	}
	return &Error{Kind: KindConflict, Message: message, Code: CodeResourceAlreadyExists, Status: http.StatusBadRequest}
}

// Server builds a 500 error wrapping cause.
func Server(message string, cause error) *Error {
	if message == "" {
		message = "An error occurred"
	}
	return &Error{Kind: KindServer, Message: message, Code: CodeServer, Status: http.StatusInternalServerError, Err: cause}
}

// Database builds a 500 error for a failed storage operation.
func Database(message string, cause error) *Error {
	e := Server(message, cause)
	e.Code = CodeDatabase
	return e
}

// RateLimited builds a 429 error.
func RateLimited(message string) *Error {
	return &Error{Kind: KindRateLimited, Message: message, Code: CodeRateLimited, Status: http.StatusTooManyRequests}
}

// Unavailable builds a 503 error. details name the failing dependencies.
func Unavailable(message string, details map[string]string) *Error {
	if message == "" {
		message = "Service unavailable"
	}
	return &Error{Kind: KindUnavailable, Message: message, Code: CodeUnavailable, Status: http.StatusServiceUnavailable, Details: details}
}

// As reports whether err carries an *Error and returns it.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := As(err)
	return ok && e.Kind == kind
}
