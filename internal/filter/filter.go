package filter

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/roach88/tcstore/internal/value"
)

// Op is a comparison operator inside a condition.
type Op string

const (
	OpEq    Op = "eq"
	OpNe    Op = "ne"
	OpGt    Op = "gt"
	OpGte   Op = "gte"
	OpLt    Op = "lt"
	OpLte   Op = "lte"
	OpRegex Op = "regex"
	OpIn    Op = "in"
	OpNin   Op = "nin"
)

func (op Op) valid() bool {
	switch op {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpRegex, OpIn, OpNin:
		return true
	}
	return false
}

func (op Op) ordering() bool {
	return op == OpGt || op == OpGte || op == OpLt || op == OpLte
}

// Condition is one (path, operator, operand) triple.
type Condition struct {
	Path    string
	Op      Op
	Operand value.Value

	segments []string
	re       *regexp.Regexp
	set      value.Array
}

// Expression is a parsed filter. All conditions must hold for a document to
// match. The zero value and nil both match everything.
type Expression struct {
	conds []Condition
}

// Parse validates a filter in wire shape
//
//	{"<dotted.path>": {"<op>": <operand>, ...}, ...}
//
// and compiles it. Every structural problem is reported here, before any
// document is examined.
func Parse(raw value.Object) (*Expression, error) {
	expr := &Expression{}

	for _, path := range raw.SortedKeys() {
		segments, err := splitPath(path)
		if err != nil {
			return nil, err
		}

		ops, ok := raw[path].(value.Object)
		if !ok {
			return nil, &Error{Path: path, Reason: fmt.Sprintf("condition must be an object of operators, got %s", value.Kind(raw[path]))}
		}
		if len(ops) == 0 {
			return nil, &Error{Path: path, Reason: "condition has no operators"}
		}

		for _, name := range ops.SortedKeys() {
			cond, err := compile(path, segments, Op(name), ops[name])
			if err != nil {
				return nil, err
			}
			expr.conds = append(expr.conds, cond)
		}
	}

	return expr, nil
}

// ParseJSON decodes and parses a filter from JSON text.
func ParseJSON(data []byte) (*Expression, error) {
	raw, err := value.UnmarshalObject(data)
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("decode: %v", err)}
	}
	return Parse(raw)
}

// MustParseJSON is ParseJSON for literals known to be valid. Panics otherwise.
func MustParseJSON(data string) *Expression {
	expr, err := ParseJSON([]byte(data))
	if err != nil {
		panic(err)
	}
	return expr
}

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, &Error{Path: path, Reason: "empty path"}
	}
	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if seg == "" {
			return nil, &Error{Path: path, Reason: "empty path segment"}
		}
	}
	return segments, nil
}

func compile(path string, segments []string, op Op, operand value.Value) (Condition, error) {
	cond := Condition{Path: path, Op: op, Operand: operand, segments: segments}

	if !op.valid() {
		return Condition{}, &Error{Path: path, Op: string(op), Reason: "unknown operator"}
	}
	if err := value.CheckBounds(operand); err != nil {
		return Condition{}, &Error{Path: path, Op: string(op), Reason: err.Error()}
	}

	switch {
	case op.ordering():
		switch operand.(type) {
		case value.Number, value.String:
		default:
			return Condition{}, &Error{Path: path, Op: string(op), Reason: fmt.Sprintf("operand must be a number or string, got %s", value.Kind(operand))}
		}

	case op == OpRegex:
		pattern, ok := operand.(value.String)
		if !ok {
			return Condition{}, &Error{Path: path, Op: string(op), Reason: fmt.Sprintf("operand must be a string, got %s", value.Kind(operand))}
		}
		re, err := regexp.Compile("^(?:" + string(pattern) + ")$")
		if err != nil {
			return Condition{}, &Error{Path: path, Op: string(op), Reason: err.Error()}
		}
		cond.re = re

	case op == OpIn || op == OpNin:
		set, ok := operand.(value.Array)
		if !ok {
			return Condition{}, &Error{Path: path, Op: string(op), Reason: fmt.Sprintf("operand must be an array, got %s", value.Kind(operand))}
		}
		cond.set = set
	}

	return cond, nil
}

// Empty reports whether the expression has no conditions.
func (e *Expression) Empty() bool {
	return e == nil || len(e.conds) == 0
}

// Conditions returns the compiled conditions ordered by path then operator.
func (e *Expression) Conditions() []Condition {
	if e == nil {
		return nil
	}
	return slices.Clone(e.conds)
}

// Matches reports whether doc satisfies every condition.
// A path that does not resolve fails the whole expression.
func (e *Expression) Matches(doc value.Value) bool {
	if e == nil {
		return true
	}
	for i := range e.conds {
		if !e.conds[i].Matches(doc) {
			return false
		}
	}
	return true
}

// Matches evaluates a single condition against doc.
func (c *Condition) Matches(doc value.Value) bool {
	got, ok := resolve(doc, c.segments)
	if !ok {
		return false
	}

	switch c.Op {
	case OpEq:
		return value.Equal(got, c.Operand)
	case OpNe:
		return !value.Equal(got, c.Operand)
	case OpGt:
		n, ok := compare(got, c.Operand)
		return ok && n > 0
	case OpGte:
		n, ok := compare(got, c.Operand)
		return ok && n >= 0
	case OpLt:
		n, ok := compare(got, c.Operand)
		return ok && n < 0
	case OpLte:
		n, ok := compare(got, c.Operand)
		return ok && n <= 0
	case OpRegex:
		s, ok := regexText(got)
		return ok && c.re.MatchString(s)
	case OpIn:
		return contains(c.set, got)
	case OpNin:
		return !contains(c.set, got)
	default:
		return false
	}
}

// compare orders a against b when both are numbers or both are strings.
// Any other pairing is a type mismatch and reports ok=false.
func compare(a, b value.Value) (int, bool) {
	switch av := a.(type) {
	case value.Number:
		bv, ok := b.(value.Number)
		if !ok {
			return 0, false
		}
		return av.Cmp(bv), true
	case value.String:
		bv, ok := b.(value.String)
		if !ok {
			return 0, false
		}
		return cmp.Compare(av, bv), true
	default:
		return 0, false
	}
}

func regexText(v value.Value) (string, bool) {
	switch val := v.(type) {
	case value.String:
		return string(val), true
	case value.Number:
		return val.String(), true
	case value.Bool:
		if val {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}

func contains(set value.Array, v value.Value) bool {
	for _, candidate := range set {
		if value.Equal(candidate, v) {
			return true
		}
	}
	return false
}
