package harness

import (
	"time"

	"github.com/roach88/tcstore/internal/audit"
	"github.com/roach88/tcstore/internal/value"
)

// TraceEvent records one executed step.
type TraceEvent struct {
	Step    int         `json:"step"`
	Op      string      `json:"op"`
	ID      string      `json:"id,omitempty"`
	Outcome string      `json:"outcome"` // "ok" or an error code
	Result  value.Value `json:"result,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true when every step met its expectations.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Log is the store's operation log after the last step.
	Log []audit.Entry `json:"log"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds an expectation failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event.
func (r *Result) AddTrace(ev TraceEvent) {
	r.Trace = append(r.Trace, ev)
}

// Snapshot converts the trace and log into one value for canonical
// serialization.
func (r *Result) Snapshot(name string) value.Object {
	trace := make(value.Array, len(r.Trace))
	for i, ev := range r.Trace {
		obj := value.Object{
			"step":    value.NewInt(int64(ev.Step)),
			"op":      value.String(ev.Op),
			"outcome": value.String(ev.Outcome),
		}
		if ev.ID != "" {
			obj["id"] = value.String(ev.ID)
		}
		if ev.Result != nil {
			obj["result"] = ev.Result
		}
		trace[i] = obj
	}

	log := make(value.Array, len(r.Log))
	for i, e := range r.Log {
		log[i] = EntryValue(e)
	}

	return value.Object{
		"scenario": value.String(name),
		"trace":    trace,
		"log":      log,
	}
}

// EntryValue converts a log entry to a value. Timestamps are RFC 3339 in
// UTC; Missing is present only when non-empty.
func EntryValue(e audit.Entry) value.Object {
	obj := value.Object{
		"seq":       value.NewInt(e.Seq),
		"timestamp": value.String(e.Timestamp.UTC().Format(time.RFC3339Nano)),
		"operation": value.String(string(e.Operation)),
		"ids":       stringArray(e.IDs),
		"context": value.Object{
			"user":   value.String(e.Context.User),
			"agent":  value.String(e.Context.Agent),
			"action": value.String(e.Context.Action),
			"intent": value.String(e.Context.Intent),
		},
	}
	if len(e.Missing) > 0 {
		obj["missing"] = stringArray(e.Missing)
	}
	return obj
}

func stringArray(ss []string) value.Array {
	arr := make(value.Array, len(ss))
	for i, s := range ss {
		arr[i] = value.String(s)
	}
	return arr
}
