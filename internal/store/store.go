package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/tidwall/btree"

	"github.com/roach88/tcstore/internal/audit"
	"github.com/roach88/tcstore/internal/value"
)

var (
	// ErrAlreadyExists is returned by Save when the id is taken.
	ErrAlreadyExists = errors.New("record already exists")

	// ErrNotFound is returned by Replace and Merge when the id is absent.
	ErrNotFound = errors.New("record not found")
)

const btreeDegree = 32

func newRecordMap() *btree.Map[string, value.Value] {
	return btree.NewMap[string, value.Value](btreeDegree)
}

// Journal receives a copy of every log entry after it is committed.
// Append is called while the store lock is held.
type Journal interface {
	Append(ctx context.Context, e audit.Entry) error
}

// MergeFunc computes new data from the current data and a patch.
// It must not mutate either argument.
type MergeFunc func(existing, patch value.Value) value.Value

// Store is the authoritative id -> record map plus the operation log.
//
// One mutex guards the map, the log and the sequence counter together.
// Every mutation and its log entry commit inside the same critical section,
// so log order is mutation order. Reads take the same lock while copying.
type Store struct {
	mu      sync.Mutex
	records *btree.Map[string, value.Value]
	log     []audit.Entry
	seq     int64

	now     func() time.Time
	journal Journal
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source for log entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithJournal mirrors every committed log entry to j.
func WithJournal(j Journal) Option {
	return func(s *Store) { s.journal = j }
}

// WithLogger sets the logger for mutation debug lines and journal failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		records: newRecordMap(),
		now:     time.Now,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// commit stamps the entry, appends it to the log and mirrors it to the
// journal. Caller must hold s.mu.
func (s *Store) commit(e audit.Entry) audit.Entry {
	s.seq++
	e.Seq = s.seq
	e.Timestamp = s.now()
	e = e.Clone()
	s.log = append(s.log, e)

	s.logger.Debug("mutation committed",
		"seq", e.Seq,
		"op", e.Operation,
		"ids", e.IDs,
		"user", e.Context.User,
	)

	if s.journal != nil {
		if err := s.journal.Append(context.Background(), e); err != nil {
			s.logger.Error("journal append failed", "seq", e.Seq, "op", e.Operation, "error", err)
		}
	}
	return e.Clone()
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.Len()
}

// Stats returns the record count and log length in one consistent read.
func (s *Store) Stats() (records, logEntries int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records.Len(), len(s.log)
}

// AppendLog stamps and appends an entry that does not accompany a record
// mutation. Returns the stamped entry.
func (s *Store) AppendLog(e audit.Entry) audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commit(e)
}

// Log returns a copy of the operation log in sequence order.
func (s *Store) Log() []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]audit.Entry, len(s.log))
	for i, e := range s.log {
		out[i] = e.Clone()
	}
	return out
}
