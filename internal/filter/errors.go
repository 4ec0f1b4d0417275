package filter

import (
	"errors"
	"fmt"
)

// ErrInvalidFilter is the sentinel for every malformed filter expression.
var ErrInvalidFilter = errors.New("invalid filter")

// Error describes why a filter expression was rejected.
// It unwraps to ErrInvalidFilter.
type Error struct {
	// Path is the offending field path, if any.
	Path string

	// Op is the offending operator, if any.
	Op string

	// Reason is a human-readable description.
	Reason string
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Op != "":
		return fmt.Sprintf("invalid filter: %s.%s: %s", e.Path, e.Op, e.Reason)
	case e.Path != "":
		return fmt.Sprintf("invalid filter: %s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("invalid filter: %s", e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidFilter.
func (e *Error) Unwrap() error {
	return ErrInvalidFilter
}
