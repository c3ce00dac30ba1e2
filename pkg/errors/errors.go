package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the closed set of failure categories surfaced to page handlers.
type Kind string

const (
	KindAuthentication Kind = "AUTHENTICATION"
	KindValidation     Kind = "VALIDATION"
	KindAuthorization  Kind = "AUTHORIZATION"
	KindNetwork        Kind = "NETWORK"
	KindNotFound       Kind = "NOT_FOUND"
	KindInternal       Kind = "INTERNAL"
)

// Error represents a typed gateway error with HTTP awareness.
type Error struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Status  int               `json:"status"`
	Kind    Kind              `json:"kind"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same code so clones compare equal to their template.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, kind Kind, status int, message string) *Error {
	return &Error{Code: code, Kind: kind, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, template *Error, message string) *Error {
	clone := Clone(template, message)
	clone.Err = err
	return clone
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", KindAuthentication, http.StatusUnauthorized, "invalid email or password")
	ErrValidation         = New("VALIDATION_ERROR", KindValidation, http.StatusBadRequest, "validation failed")
	ErrUnauthorized       = New("UNAUTHORIZED", KindAuthorization, http.StatusUnauthorized, "unauthorized")
	ErrForbidden          = New("FORBIDDEN", KindAuthorization, http.StatusForbidden, "forbidden")
	ErrNetwork            = New("NETWORK_ERROR", KindNetwork, http.StatusBadGateway, "backend unavailable")
	ErrNotFound           = New("NOT_FOUND", KindNotFound, http.StatusNotFound, "resource not found")
	ErrInternal           = New("INTERNAL_ERROR", KindInternal, http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", KindInternal, http.StatusInternalServerError, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal, "")
}

// KindOf reports the category of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return FromError(err).Kind
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	if err.Fields != nil {
		clone.Fields = make(map[string]string, len(err.Fields))
		for k, v := range err.Fields {
			clone.Fields[k] = v
		}
	}
	return &clone
}

// WithFields returns a copy of err carrying per-field validation messages.
func WithFields(err *Error, fields map[string]string) *Error {
	clone := Clone(err, "")
	if clone == nil {
		return nil
	}
	clone.Fields = fields
	return clone
}
