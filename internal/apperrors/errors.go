// Package apperrors defines the error kinds the services return to callers.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind categorizes an application error.
type Kind string

const (
	NotFound           Kind = "not_found"
	InvalidInput       Kind = "invalid_input"
	Conflict           Kind = "conflict"
	PreconditionFailed Kind = "precondition_failed"
	Unauthorized       Kind = "unauthorized"
	Forbidden          Kind = "forbidden"
	Internal           Kind = "internal"
)

// Error carries a machine-checkable kind and a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NewNotFound(format string, args ...interface{}) *Error {
	return newError(NotFound, format, args...)
}

func NewInvalidInput(format string, args ...interface{}) *Error {
	return newError(InvalidInput, format, args...)
}

func NewConflict(format string, args ...interface{}) *Error {
	return newError(Conflict, format, args...)
}

func NewPreconditionFailed(format string, args ...interface{}) *Error {
	return newError(PreconditionFailed, format, args...)
}

func NewUnauthorized(format string, args ...interface{}) *Error {
	return newError(Unauthorized, format, args...)
}

func NewForbidden(format string, args ...interface{}) *Error {
	return newError(Forbidden, format, args...)
}

// Wrap reports an unexpected failure. The cause is kept for logs but the
// message is what callers see.
func Wrap(cause error, message string) *Error {
	return &Error{Kind: Internal, Message: message, Cause: cause}
}

// KindOf returns the kind of the first *Error in err's chain, or Internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Internal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf returns the caller-facing message for err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal server error"
}
