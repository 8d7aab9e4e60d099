// Package errors defines the sentinel errors surfaced by the search core and
// a wrapper type that attaches a human-readable message to a sentinel while
// keeping it matchable with errors.Is.
package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidID       = errors.New("invalid document id")
	ErrDuplicateID     = errors.New("document id already exists")
	ErrInvalidWord     = errors.New("word contains control characters")
	ErrEmptyMinusTerm  = errors.New("empty minus term")
	ErrDoubleMinus     = errors.New("more than one leading minus")
	ErrOutOfRange      = errors.New("position out of range")
	ErrUnknownDocument = errors.New("unknown document")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidPageSize = errors.New("page size must be positive")
)

type Error struct {
	Err     error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *Error {
	return &Error{
		Err:     sentinel,
		Message: message,
	}
}

func Newf(sentinel error, format string, args ...any) *Error {
	return &Error{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsValidation reports whether err was caused by malformed caller input
// rather than by an infrastructure failure.
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidID),
		errors.Is(err, ErrDuplicateID),
		errors.Is(err, ErrInvalidWord),
		errors.Is(err, ErrEmptyMinusTerm),
		errors.Is(err, ErrDoubleMinus),
		errors.Is(err, ErrOutOfRange),
		errors.Is(err, ErrUnknownDocument),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidPageSize):
		return true
	default:
		return false
	}
}
