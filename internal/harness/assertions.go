package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/tcstore/internal/value"
)

// AssertionError is returned when a step does not meet its expectation.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Step     int    // Step index
	Op       string // Step operation
	Field    string // Expect field that failed, e.g. "count"
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "step %d (%s): %s mismatch\n", e.Step, e.Op, e.Field)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// checkExpect compares a step's outcome with its expectation. A step
// without an expectation must simply succeed. When an error is expected
// only the code is checked.
func checkExpect(step Step, out stepOutcome) []error {
	fail := func(field, expected, actual string) error {
		return &AssertionError{Step: out.Step, Op: out.Op, Field: field, Expected: expected, Actual: actual}
	}

	exp := step.Expect
	if exp == nil {
		exp = &Expect{}
	}

	if exp.Error != "" {
		if out.Outcome != exp.Error {
			return []error{fail("error", exp.Error, out.Outcome)}
		}
		return nil
	}
	if out.err != nil {
		return []error{fail("error", "success", out.err.Error())}
	}

	var errs []error
	if exp.Data != nil {
		want, err := value.FromGo(exp.Data)
		switch {
		case err != nil:
			errs = append(errs, fail("data", "valid expected data", err.Error()))
		case out.data == nil:
			errs = append(errs, fail("data", render(want), "no record data for "+out.Op))
		case !value.Equal(want, out.data):
			errs = append(errs, fail("data", render(want), render(out.data)))
		}
	}
	if exp.Count != nil {
		switch {
		case out.count == nil:
			errs = append(errs, fail("count", fmt.Sprint(*exp.Count), "no count for "+out.Op))
		case *out.count != *exp.Count:
			errs = append(errs, fail("count", fmt.Sprint(*exp.Count), fmt.Sprint(*out.count)))
		}
	}
	if exp.IDs != nil {
		switch {
		case out.ids == nil:
			errs = append(errs, fail("ids", fmt.Sprint(exp.IDs), "no ids for "+out.Op))
		case !slices.Equal(out.ids, exp.IDs):
			errs = append(errs, fail("ids", fmt.Sprint(exp.IDs), fmt.Sprint(out.ids)))
		}
	}
	if exp.Missing != nil {
		switch {
		case out.missing == nil:
			errs = append(errs, fail("missing", fmt.Sprint(exp.Missing), "no missing list for "+out.Op))
		case !slices.Equal(out.missing, exp.Missing):
			errs = append(errs, fail("missing", fmt.Sprint(exp.Missing), fmt.Sprint(out.missing)))
		}
	}
	if exp.Deleted != nil {
		switch {
		case out.deleted == nil:
			errs = append(errs, fail("deleted", fmt.Sprint(*exp.Deleted), "no deleted flag for "+out.Op))
		case *out.deleted != *exp.Deleted:
			errs = append(errs, fail("deleted", fmt.Sprint(*exp.Deleted), fmt.Sprint(*out.deleted)))
		}
	}
	if exp.DeletedCount != nil {
		switch {
		case out.deletedCount == nil:
			errs = append(errs, fail("deleted_count", fmt.Sprint(*exp.DeletedCount), "no deleted count for "+out.Op))
		case *out.deletedCount != *exp.DeletedCount:
			errs = append(errs, fail("deleted_count", fmt.Sprint(*exp.DeletedCount), fmt.Sprint(*out.deletedCount)))
		}
	}
	return errs
}

func render(v value.Value) string {
	b, err := value.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return string(b)
}
