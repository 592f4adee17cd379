package stepedit

import (
	"errors"
	"fmt"
)

// Kind classifies handler failures so callers can tell bad input from a
// missing target without parsing messages.
type Kind string

const (
	// KindValidation covers unknown verbs, missing arguments and malformed
	// numbers. The user can fix the input and retry.
	KindValidation Kind = "validation"
	// KindNotFound covers steps, matchrules and keys that do not exist.
	KindNotFound Kind = "not_found"
)

// ErrAbort is returned when the user confirms leaving the editor. It is not
// a failure; the host decides whether to exit or discard the session.
var ErrAbort = errors.New("stepedit: leave requested")

// ErrInput marks a failed read of the answer to a handler's question. The
// session ends on it just as it does when the command line cannot be read.
var ErrInput = errors.New("stepedit: read answer")

func inputError(err error) error {
	return fmt.Errorf("%w: %w", ErrInput, err)
}

// Error is a categorized, user-facing failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a KindValidation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Err: fmt.Errorf(format, args...)}
}

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the category of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var editErr *Error
	if errors.As(err, &editErr) {
		return editErr.Kind
	}
	return ""
}
