// Package cwerr defines the error taxonomy used across the morse engine.
//
// Every public operation that can fail returns one of these kinds,
// wrapped with context via fmt.Errorf("...: %w", ...) so callers can
// still use errors.Is / errors.As against the sentinel.
package cwerr

import (
	"errors"
	"fmt"
)

// Kind is one of the error classes from the error-handling design.
type Kind int

const (
	// Invalid marks an out-of-range argument, conflicting tone-slope
	// arguments, or an unknown symbol in a representation string.
	Invalid Kind = iota
	// NotFound marks a character with no Morse mapping.
	NotFound
	// Again marks a queue at or above its high-water mark; the caller
	// must back off or wait.
	Again
	// Busy marks a sink or key held by the opposing keying subsystem.
	Busy
	// Unavailable marks an audio backend that refused to open.
	Unavailable
	// Internal marks a condition the library cannot recover from:
	// failed sample-rate probe, thread/goroutine start failure, or a
	// keyer state inconsistency forced back to idle.
	Internal
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "INVALID"
	case NotFound:
		return "NOT_FOUND"
	case Again:
		return "AGAIN"
	case Busy:
		return "BUSY"
	case Unavailable:
		return "UNAVAILABLE"
	case Internal:
		return "INTERNAL"
	default:
		return "UNKNOWN"
	}
}

// Error is a Kind carrying a message, satisfying the error interface.
// errors.Is compares by Kind, so wrapped Errors still match
// errors.Is(err, cwerr.ErrAgain) after fmt.Errorf("%w") wrapping.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Msg) }

// Is implements the errors.Is comparison contract by Kind, so any
// *Error of the same Kind, such as the sentinels below, matches as a
// target: errors.Is(err, cwerr.ErrAgain).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds an *Error of the given kind.
func New(k Kind, format string, args ...any) *Error {
	return &Error{Kind: k, Msg: fmt.Sprintf(format, args...)}
}

// KindOf extracts the Kind from err if it (or something it wraps) is
// an *Error, and reports whether one was found.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// IsBusy reports whether err is (or wraps) a Busy error.
func IsBusy(err error) bool {
	k, ok := KindOf(err)
	return ok && k == Busy
}

// Sentinels for errors.Is comparisons that don't need a message.
var (
	ErrInvalid     = &Error{Kind: Invalid, Msg: "invalid argument"}
	ErrNotFound    = &Error{Kind: NotFound, Msg: "character not found"}
	ErrAgain       = &Error{Kind: Again, Msg: "queue at high-water mark"}
	ErrBusy        = &Error{Kind: Busy, Msg: "resource busy"}
	ErrUnavailable = &Error{Kind: Unavailable, Msg: "backend unavailable"}
	ErrInternal    = &Error{Kind: Internal, Msg: "internal error"}
)
