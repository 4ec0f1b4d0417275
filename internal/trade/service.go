package trade

import (
	"log/slog"

	"github.com/roach88/tcstore/internal/audit"
	"github.com/roach88/tcstore/internal/merge"
	"github.com/roach88/tcstore/internal/store"
	"github.com/roach88/tcstore/internal/value"
)

// Operation names used in errors, metrics and log lines.
const (
	opSaveNew       = "save_new"
	opSaveUpdate    = "save_full_update"
	opSavePartial   = "save_partial"
	opLoadByID      = "load_by_id"
	opLoadGroup     = "load_group"
	opDeleteByID    = "delete_by_id"
	opDeleteGroup   = "delete_group"
	opPurge         = "purge"
	opLoadByFilter  = "load_by_filter"
	opListByFilter  = "list_by_filter"
	opCountByFilter = "count_by_filter"
)

// DefaultListFields are the paths summarized by ListByFilter.
var DefaultListFields = []string{
	"data.general.tradeId",
	"data.general.label",
	"data.common.book",
	"data.common.counterparty",
	"data.common.tradeDate",
}

// Service composes the record store, filter engine and merge engine into
// the trade operation set. It is the only layer that checks operation
// context, and it does so before any record is looked up.
type Service struct {
	store      *store.Store
	logger     *slog.Logger
	metrics    *Metrics
	workers    int
	listFields []string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithFilterWorkers sets how many goroutines evaluate a filter over a
// snapshot. Values below 1 mean 1.
func WithFilterWorkers(n int) Option {
	return func(s *Service) { s.workers = max(n, 1) }
}

// WithListFields sets the paths ListByFilter copies into each summary.
func WithListFields(paths []string) Option {
	return func(s *Service) { s.listFields = append([]string(nil), paths...) }
}

// NewService creates a service over st.
func NewService(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store:      st,
		logger:     slog.New(slog.DiscardHandler),
		workers:    1,
		listFields: DefaultListFields,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying record store.
func (s *Service) Store() *store.Store {
	return s.store
}

// checkContext validates the operation context. Called first by every
// mutating operation so a rejected call never reaches the store.
func (s *Service) checkContext(op, id string, octx audit.Context) error {
	if err := octx.Validate(); err != nil {
		e := newError(op, id, err)
		s.metrics.observe(op, e)
		s.logger.Warn("rejected mutation", "op", op, "id", id, "error", err)
		return e
	}
	return nil
}

// finish records metrics and logs the outcome of a mutation that may have
// failed a store precondition.
func (s *Service) finish(op, id string, octx audit.Context, err error) error {
	if err != nil {
		e := newError(op, id, err)
		s.metrics.observe(op, e)
		s.logger.Debug("mutation failed", "op", op, "id", id, "code", e.Code, "error", err)
		return e
	}
	s.succeed(op, id, octx)
	return nil
}

// succeed records metrics and logs a committed mutation.
func (s *Service) succeed(op, id string, octx audit.Context) {
	s.metrics.observe(op, nil)
	s.metrics.setSizes(s.store.Stats())
	s.logger.Info("mutation", "op", op, "id", id, "user", octx.User, "action", octx.Action)
}

// SaveNew stores a new record. Fails with ALREADY_EXISTS if the id is
// present; the existing record is left unchanged.
func (s *Service) SaveNew(id string, data value.Value, octx audit.Context) (store.Record, error) {
	if err := s.checkContext(opSaveNew, id, octx); err != nil {
		return store.Record{}, err
	}
	rec, err := s.store.Save(id, data, audit.NewEntry(octx, audit.OpSaveNew, id))
	if err := s.finish(opSaveNew, id, octx, err); err != nil {
		return store.Record{}, err
	}
	return rec, nil
}

// SaveFullUpdate replaces the data of an existing record. No merging.
func (s *Service) SaveFullUpdate(id string, data value.Value, octx audit.Context) (store.Record, error) {
	if err := s.checkContext(opSaveUpdate, id, octx); err != nil {
		return store.Record{}, err
	}
	rec, err := s.store.Replace(id, data, audit.NewEntry(octx, audit.OpSaveUpdate, id))
	if err := s.finish(opSaveUpdate, id, octx, err); err != nil {
		return store.Record{}, err
	}
	return rec, nil
}

// SavePartial deep-merges patch into an existing record. The read, merge
// and write happen atomically in the store.
func (s *Service) SavePartial(id string, patch value.Object, octx audit.Context) (store.Record, error) {
	if err := s.checkContext(opSavePartial, id, octx); err != nil {
		return store.Record{}, err
	}
	if patch == nil {
		patch = value.Object{}
	}
	rec, err := s.store.Merge(id, patch, merge.Merge, audit.NewEntry(octx, audit.OpSavePartial, id))
	if err := s.finish(opSavePartial, id, octx, err); err != nil {
		return store.Record{}, err
	}
	return rec, nil
}

// LoadByID returns a copy of the record or NOT_FOUND.
func (s *Service) LoadByID(id string) (store.Record, error) {
	rec, ok := s.store.Get(id)
	if !ok {
		e := newError(opLoadByID, id, store.ErrNotFound)
		s.metrics.observe(opLoadByID, e)
		return store.Record{}, e
	}
	s.metrics.observe(opLoadByID, nil)
	return rec, nil
}

// GroupResult is the outcome of LoadGroup.
type GroupResult struct {
	Found   []store.Record `json:"found"`
	Missing []string       `json:"missing"`
}

// LoadGroup classifies every requested id as found or missing. Duplicate
// ids are classified per position. Never fails.
func (s *Service) LoadGroup(ids []string) GroupResult {
	found, missing := s.store.GetMany(ids)
	s.metrics.observe(opLoadGroup, nil)
	return GroupResult{Found: found, Missing: missing}
}

// DeleteResult is the outcome of DeleteByID.
type DeleteResult struct {
	Deleted bool `json:"deleted"`
}

// DeleteByID removes a record if present. Idempotent; the attempt is
// logged whether or not the record existed.
func (s *Service) DeleteByID(id string, octx audit.Context) (DeleteResult, error) {
	if err := s.checkContext(opDeleteByID, id, octx); err != nil {
		return DeleteResult{}, err
	}
	deleted := s.store.Delete(id, audit.NewEntry(octx, audit.OpDelete, id))
	s.succeed(opDeleteByID, id, octx)
	return DeleteResult{Deleted: deleted}, nil
}

// DeleteGroupResult is the outcome of DeleteGroup.
type DeleteGroupResult struct {
	DeletedCount int      `json:"deletedCount"`
	Missing      []string `json:"missing"`
}

// DeleteGroup deletes every listed id that exists and reports the rest as
// missing. The batch is logged as one entry.
func (s *Service) DeleteGroup(ids []string, octx audit.Context) (DeleteGroupResult, error) {
	if err := s.checkContext(opDeleteGroup, "", octx); err != nil {
		return DeleteGroupResult{}, err
	}
	deleted, missing := s.store.DeleteMany(ids, audit.NewEntry(octx, audit.OpDeleteGroup, ids...))
	s.succeed(opDeleteGroup, "", octx)
	return DeleteGroupResult{DeletedCount: deleted, Missing: missing}, nil
}

// Purge removes every record and returns how many were removed.
// The operation log is kept and gains one purge entry.
func (s *Service) Purge(octx audit.Context) (int, error) {
	if err := s.checkContext(opPurge, "", octx); err != nil {
		return 0, err
	}
	removed := s.store.Purge(audit.NewEntry(octx, audit.OpPurge))
	s.succeed(opPurge, "", octx)
	return len(removed), nil
}

// OperationLog returns a copy of the operation log in sequence order.
func (s *Service) OperationLog() []audit.Entry {
	return s.store.Log()
}
