// Package scerr defines the error kinds shared by the core packages.
package scerr

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is returned when a position or range falls outside the
// current document.
var ErrOutOfRange = errors.New("out of range")

// ErrUnknownLineCount is returned when an operation needs a total line
// count but the tree has leaves with unscanned line-feed counts.
var ErrUnknownLineCount = errors.New("unknown line count")

// ErrEventRejected is returned when applying an event would violate an
// invariant; the log is left untouched.
var ErrEventRejected = errors.New("event rejected")

// OutOfRange wraps ErrOutOfRange with context.
func OutOfRange(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrOutOfRange, fmt.Sprintf(format, args...))
}

// UnknownLineCount wraps ErrUnknownLineCount with context.
func UnknownLineCount(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnknownLineCount, fmt.Sprintf(format, args...))
}

// EventRejected wraps ErrEventRejected with context.
func EventRejected(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrEventRejected, fmt.Sprintf(format, args...))
}
