// Package filter evaluates declarative filter expressions against JSON
// documents.
//
// An expression maps dotted field paths to operator sets:
//
//	{"data.leg1.notional": {"gte": 1000000, "lte": 5000000},
//	 "data.common.book":   {"in": ["RATES-1", "RATES-2"]}}
//
// All paths and all operators under a path combine with AND. An empty
// expression matches every document. A path that does not resolve in a
// document makes that document fail, including for ne and nin.
//
// Operators:
//
//	eq, ne        structural equality (numbers compare by value)
//	gt gte lt lte number vs number or string vs string; other pairings never match
//	regex         full match against a string, number or bool
//	in, nin       membership in an array operand
//
// Parse reports every malformed expression as an *Error wrapping
// ErrInvalidFilter. Evaluation never fails. Expressions are immutable after
// Parse and safe for concurrent use.
package filter
