// Package errs defines the closed vocabulary of error kinds the coati
// driver surfaces to its callers.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a coati error.
type Kind string

// Error kinds, as enumerated in the alignment driver's error handling design.
const (
	InvalidInput      Kind = "invalid_input"
	OutOfRange        Kind = "out_of_range"
	LengthConstraint  Kind = "length_constraint"
	Unmodeled         Kind = "unmodeled"
	ResourceExhausted Kind = "resource_exhausted"
	Io                Kind = "io"
)

// Error is a typed error carrying one of the Kind values above.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an *Error of the given kind with a message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates an *Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap wraps an existing error under the given kind.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the Kind of err, if any, and whether one was found.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
