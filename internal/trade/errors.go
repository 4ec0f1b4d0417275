package trade

import (
	"errors"
	"fmt"

	"github.com/roach88/tcstore/internal/audit"
	"github.com/roach88/tcstore/internal/filter"
	"github.com/roach88/tcstore/internal/store"
)

// Code categorizes service errors for callers that map them to transport
// status codes or exit codes.
type Code string

const (
	// CodeAlreadyExists indicates saveNew on an id that is present.
	CodeAlreadyExists Code = "ALREADY_EXISTS"

	// CodeNotFound indicates an operation on an absent id.
	CodeNotFound Code = "NOT_FOUND"

	// CodeInvalidContext indicates a missing or blank context field.
	CodeInvalidContext Code = "INVALID_CONTEXT"

	// CodeInvalidFilter indicates a malformed filter or query.
	CodeInvalidFilter Code = "INVALID_FILTER"

	// CodeInternal covers anything not in the taxonomy above.
	CodeInternal Code = "INTERNAL"
)

// Error is returned by every failing Service operation.
// It unwraps to the underlying sentinel (store.ErrNotFound,
// audit.ErrInvalidContext, ...) so errors.Is keeps working.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Op is the service operation, e.g. "save_new".
	Op string

	// ID is the record id involved, if any.
	ID string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// newError classifies err by the sentinel it wraps.
func newError(op, id string, err error) *Error {
	code := CodeInternal
	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		code = CodeAlreadyExists
	case errors.Is(err, store.ErrNotFound):
		code = CodeNotFound
	case errors.Is(err, audit.ErrInvalidContext):
		code = CodeInvalidContext
	case errors.Is(err, filter.ErrInvalidFilter):
		code = CodeInvalidFilter
	}
	return &Error{Code: code, Op: op, ID: id, Err: err}
}

// CodeOf extracts the Code from err. Returns "" when err is nil or not a
// service error.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err is a NOT_FOUND service error.
func IsNotFound(err error) bool {
	return CodeOf(err) == CodeNotFound
}

// IsAlreadyExists reports whether err is an ALREADY_EXISTS service error.
func IsAlreadyExists(err error) bool {
	return CodeOf(err) == CodeAlreadyExists
}
