// Package apperr defines the error kinds surfaced by the service and their
// mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindNotFound
	KindConflict
	KindUpstream
	KindExtraction
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	case KindExtraction:
		return "extraction"
	default:
		return "internal"
	}
}

// Error is the base error type carried through the service layers.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation reports a missing or malformed input field.
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// Authorization reports a missing or invalid credential.
func Authorization(msg string, cause error) error {
	return &Error{Kind: KindAuthorization, Message: msg, Cause: cause}
}

// NotFound reports an absent record, or one owned by somebody else.
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Conflict reports a uniqueness violation.
func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// Upstream reports a failure of a third-party provider.
func Upstream(msg string, cause error) error {
	return &Error{Kind: KindUpstream, Message: msg, Cause: cause}
}

// Extraction reports a failed text extraction from an uploaded document.
func Extraction(msg string, cause error) error {
	return &Error{Kind: KindExtraction, Message: msg, Cause: cause}
}

// Internal wraps an unexpected failure.
func Internal(msg string, cause error) error {
	return &Error{Kind: KindInternal, Message: msg, Cause: cause}
}

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Status maps err onto an HTTP status code.
func Status(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthorization:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Public returns the message that is safe to show to a client. Provider and
// extraction details stay in the logs.
func Public(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal server error"
	}
	switch e.Kind {
	case KindUpstream:
		return "upstream service failed"
	case KindExtraction:
		return "extraction failed"
	case KindInternal:
		return "internal server error"
	default:
		return e.Message
	}
}
