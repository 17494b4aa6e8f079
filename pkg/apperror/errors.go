package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an application failure. Every use case reports failures
// through exactly one of these kinds; handlers map them to HTTP statuses.
type Kind string

const (
	KindNotFound        Kind = "NOT_FOUND"
	KindForbidden       Kind = "FORBIDDEN"
	KindConflict        Kind = "CONFLICT"
	KindUnauthorized    Kind = "UNAUTHORIZED"
	KindTooManyRequests Kind = "TOO_MANY_REQUESTS"
	KindInvalidInput    Kind = "INVALID_INPUT"
	KindInternal        Kind = "INTERNAL"
)

type Error struct {
	Kind    Kind   `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *Error) Error() string {
	return e.Message
}

func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message, Status: http.StatusNotFound}
}

func NewForbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message, Status: http.StatusForbidden}
}

func NewConflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message, Status: http.StatusConflict}
}

func NewUnauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message, Status: http.StatusUnauthorized}
}

func NewTooManyRequests(message string) *Error {
	return &Error{Kind: KindTooManyRequests, Message: message, Status: http.StatusTooManyRequests}
}

func NewInvalidInput(message string) *Error {
	return &Error{Kind: KindInvalidInput, Message: message, Status: http.StatusBadRequest}
}

// NewInternal carries a generic caller-visible message. The underlying store
// error is logged at the point of failure, never surfaced.
func NewInternal() *Error {
	return &Error{Kind: KindInternal, Message: "an unexpected error occurred", Status: http.StatusInternalServerError}
}

// From maps any error to an *Error, defaulting to a generic internal failure.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal()
}

func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
