package audit

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidContext is returned when a mutating call carries a context with
// a missing or blank field.
var ErrInvalidContext = errors.New("invalid context")

// Context identifies who performed a mutation and why.
// Every mutating store operation requires all four fields.
type Context struct {
	User   string `json:"user" yaml:"user" validate:"required"`
	Agent  string `json:"agent" yaml:"agent" validate:"required"`
	Action string `json:"action" yaml:"action" validate:"required"`
	Intent string `json:"intent" yaml:"intent" validate:"required"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report json names ("user") instead of Go field names ("User").
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize returns a copy with surrounding whitespace trimmed from every
// field.
func (c Context) Normalize() Context {
	return Context{
		User:   strings.TrimSpace(c.User),
		Agent:  strings.TrimSpace(c.Agent),
		Action: strings.TrimSpace(c.Action),
		Intent: strings.TrimSpace(c.Intent),
	}
}

// Validate checks that every field is non-blank after trimming.
// The returned error wraps ErrInvalidContext and names the offending fields.
func (c Context) Validate() error {
	err := validate.Struct(c.Normalize())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return fmt.Errorf("%w: missing %s", ErrInvalidContext, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", ErrInvalidContext, err)
}

// String renders the context for log lines.
func (c Context) String() string {
	return fmt.Sprintf("user=%s agent=%s action=%s intent=%s", c.User, c.Agent, c.Action, c.Intent)
}
