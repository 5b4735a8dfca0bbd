package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a domain failure. Each kind maps to one error category
// in HTTP responses.
type Kind string

const (
	KindNotFound      Kind = "not found"
	KindValidation    Kind = "validation error"
	KindAccessDenied  Kind = "access denied"
	KindConflict      Kind = "conflict"
	KindMissingHeader Kind = "missing header"
)

var (
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrValidation    = &Error{Kind: KindValidation}
	ErrAccessDenied  = &Error{Kind: KindAccessDenied}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrMissingHeader = &Error{Kind: KindMissingHeader}
)

type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// for every not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// HTTPStatus returns the status code the error should be rendered with.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindAccessDenied:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// AccessDenied carries its own status: 403 for ownership violations,
// 400 for comment eligibility.
func AccessDenied(status int, format string, args ...any) error {
	return &Error{Kind: KindAccessDenied, Status: status, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func MissingHeader(header string) error {
	return &Error{Kind: KindMissingHeader, Message: fmt.Sprintf("required header %s is missing", header)}
}

// AsError extracts the domain error from err, if any.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
