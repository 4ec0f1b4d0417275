package harness

import (
	"fmt"
	"log/slog"

	"github.com/roach88/tcstore/internal/store"
	"github.com/roach88/tcstore/internal/testutil"
	"github.com/roach88/tcstore/internal/trade"
	"github.com/roach88/tcstore/internal/value"
)

// outcomeOK is the trace outcome of a step that returned no error.
const outcomeOK = "ok"

// Harness executes scenario steps against one store.
type Harness struct {
	svc    *trade.Service
	logger *slog.Logger
}

type options struct {
	journal store.Journal
	logger  *slog.Logger
	metrics *trade.Metrics
	workers int
}

// Option configures Run.
type Option func(*options)

// WithJournal mirrors the scenario's log entries to j.
func WithJournal(j store.Journal) Option {
	return func(o *options) { o.journal = j }
}

// WithLogger sets the logger handed to the store and service.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records service metrics for the run.
func WithMetrics(m *trade.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithFilterWorkers sets the filter scan parallelism.
func WithFilterWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// Run executes a scenario and returns the result.
//
// Each scenario runs on a fresh in-memory store with a StepClock, so runs
// are reproducible. Step failures that were not expected are reported in
// Result.Errors, not as the returned error; the returned error is reserved
// for steps the harness could not even build (bad payloads).
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := options{
		logger:  slog.New(slog.DiscardHandler), // Suppress logs in tests
		workers: 1,
	}
	for _, opt := range opts {
		opt(&o)
	}

	clock := testutil.NewStepClock(testutil.DefaultBase, 0)
	storeOpts := []store.Option{store.WithClock(clock.Now), store.WithLogger(o.logger)}
	if o.journal != nil {
		storeOpts = append(storeOpts, store.WithJournal(o.journal))
	}

	h := &Harness{
		svc: trade.NewService(store.New(storeOpts...),
			trade.WithLogger(o.logger),
			trade.WithFilterWorkers(o.workers),
			trade.WithMetrics(o.metrics),
		),
		logger: o.logger,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		ev, err := h.execute(scenario, i, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
		result.AddTrace(ev.TraceEvent)

		for _, failure := range checkExpect(step, ev) {
			result.AddError(failure.Error())
		}
	}

	result.Log = h.svc.OperationLog()
	return result, nil
}

// stepOutcome is a trace event plus the typed results expectations are
// checked against.
type stepOutcome struct {
	TraceEvent
	err          error
	data         value.Value
	ids          []string
	missing      []string
	count        *int
	deleted      *bool
	deletedCount *int
}

func (h *Harness) execute(s *Scenario, index int, step Step) (stepOutcome, error) {
	out := stepOutcome{TraceEvent: TraceEvent{Step: index, Op: step.Op, ID: step.ID}}
	octx := s.contextFor(step)

	switch step.Op {
	case OpSaveNew, OpSaveFullUpdate:
		data, err := value.FromGo(step.Data)
		if err != nil {
			return out, fmt.Errorf("data: %w", err)
		}
		var rec store.Record
		if step.Op == OpSaveNew {
			rec, out.err = h.svc.SaveNew(step.ID, data, octx)
		} else {
			rec, out.err = h.svc.SaveFullUpdate(step.ID, data, octx)
		}
		out.record(rec)

	case OpSavePartial:
		patch := value.Object{}
		if step.Patch != nil {
			v, err := value.FromGo(step.Patch)
			if err != nil {
				return out, fmt.Errorf("patch: %w", err)
			}
			patch = v.(value.Object)
		}
		rec, err := h.svc.SavePartial(step.ID, patch, octx)
		out.err = err
		out.record(rec)

	case OpLoadByID:
		rec, err := h.svc.LoadByID(step.ID)
		out.err = err
		out.record(rec)

	case OpLoadGroup:
		res := h.svc.LoadGroup(step.IDs)
		out.setRecords(res.Found)
		out.missing = res.Missing
		out.Result = value.Object{
			"found":   documents(res.Found),
			"missing": stringArray(res.Missing),
		}

	case OpDeleteByID:
		res, err := h.svc.DeleteByID(step.ID, octx)
		out.err = err
		if err == nil {
			out.deleted = &res.Deleted
			out.Result = value.Object{"deleted": value.Bool(res.Deleted)}
		}

	case OpDeleteGroup:
		res, err := h.svc.DeleteGroup(step.IDs, octx)
		out.err = err
		if err == nil {
			out.deletedCount = &res.DeletedCount
			out.missing = res.Missing
			out.Result = value.Object{
				"deletedCount": value.NewInt(int64(res.DeletedCount)),
				"missing":      stringArray(res.Missing),
			}
		}

	case OpPurge:
		n, err := h.svc.Purge(octx)
		out.err = err
		if err == nil {
			out.count = &n
			out.Result = value.Object{"removed": value.NewInt(int64(n))}
		}

	case OpLoadByFilter, OpListByFilter, OpCountByFilter:
		q, err := buildQuery(step)
		if err != nil {
			return out, err
		}
		h.query(step.Op, q, &out)

	default:
		return out, fmt.Errorf("unknown op %q", step.Op)
	}

	out.Outcome = outcomeOf(out.err)
	h.logger.Debug("scenario step", "scenario", s.Name, "step", index, "op", step.Op, "outcome", out.Outcome)
	return out, nil
}

func (h *Harness) query(op string, q trade.Query, out *stepOutcome) {
	switch op {
	case OpLoadByFilter:
		recs, err := h.svc.LoadByFilter(q)
		out.err = err
		if err == nil {
			out.setRecords(recs)
			out.Result = documents(recs)
		}
	case OpListByFilter:
		items, err := h.svc.ListByFilter(q)
		out.err = err
		if err == nil {
			ids := make([]string, len(items))
			arr := make(value.Array, len(items))
			for i, item := range items {
				ids[i] = item.ID
				arr[i] = value.Object{"id": value.String(item.ID), "summary": item.Summary}
			}
			n := len(items)
			out.ids, out.count = ids, &n
			out.Result = arr
		}
	case OpCountByFilter:
		n, err := h.svc.CountByFilter(q)
		out.err = err
		if err == nil {
			out.count = &n
			out.Result = value.Object{"count": value.NewInt(int64(n))}
		}
	}
}

// buildQuery converts the step's filter to wire shape. The service parses
// it, so a malformed filter is an INVALID_FILTER outcome like any other
// service error.
func buildQuery(step Step) (trade.Query, error) {
	q := trade.Query{IDs: step.IDs, Limit: step.Limit, Offset: step.Offset}
	if step.Filter == nil {
		return q, nil
	}
	raw, err := value.FromGo(step.Filter)
	if err != nil {
		return q, fmt.Errorf("filter: %w", err)
	}
	q.Where = raw.(value.Object)
	return q, nil
}

func (o *stepOutcome) record(rec store.Record) {
	if o.err != nil {
		return
	}
	o.data = rec.Data
	o.Result = rec.Document()
}

func (o *stepOutcome) setRecords(recs []store.Record) {
	ids := make([]string, len(recs))
	for i, rec := range recs {
		ids[i] = rec.ID
	}
	n := len(recs)
	o.ids, o.count = ids, &n
}

func documents(recs []store.Record) value.Array {
	arr := make(value.Array, len(recs))
	for i, rec := range recs {
		arr[i] = rec.Document()
	}
	return arr
}

// outcomeOf maps an error to its trace outcome: "ok", the service error
// code, else INTERNAL.
func outcomeOf(err error) string {
	if err == nil {
		return outcomeOK
	}
	if code := trade.CodeOf(err); code != "" {
		return string(code)
	}
	return string(trade.CodeInternal)
}
