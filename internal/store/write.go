package store

import (
	"fmt"

	"github.com/roach88/tcstore/internal/audit"
	"github.com/roach88/tcstore/internal/value"
)

// Save inserts a new record. Fails with ErrAlreadyExists if the id is taken;
// an existing record is never overwritten. The entry is committed only when
// the insert happens.
func (s *Store) Save(id string, data value.Value, e audit.Entry) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records.Get(id); ok {
		return Record{}, fmt.Errorf("save %q: %w", id, ErrAlreadyExists)
	}

	stored := ownedCopy(data)
	s.records.Set(id, stored)
	s.commit(e)

	return Record{ID: id, Data: value.Clone(stored)}, nil
}

// Replace overwrites the data of an existing record. The id is preserved.
func (s *Store) Replace(id string, data value.Value, e audit.Entry) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records.Get(id); !ok {
		return Record{}, fmt.Errorf("replace %q: %w", id, ErrNotFound)
	}

	stored := ownedCopy(data)
	s.records.Set(id, stored)
	s.commit(e)

	return Record{ID: id, Data: value.Clone(stored)}, nil
}

// Merge reads the current data, computes fn(current, patch) and writes the
// result back inside one critical section. Concurrent merges on the same id
// serialize; neither update is lost.
func (s *Store) Merge(id string, patch value.Value, fn MergeFunc, e audit.Entry) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records.Get(id)
	if !ok {
		return Record{}, fmt.Errorf("merge %q: %w", id, ErrNotFound)
	}

	merged := ownedCopy(fn(current, patch))
	s.records.Set(id, merged)
	s.commit(e)

	return Record{ID: id, Data: value.Clone(merged)}, nil
}

// Delete removes a record and reports whether one was present.
// The entry is committed either way; an absent id is listed in Missing.
func (s *Store) Delete(id string, e audit.Entry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, deleted := s.records.Delete(id)
	if !deleted {
		e.Missing = []string{id}
	}
	s.commit(e)
	return deleted
}

// DeleteMany removes every listed id that exists and commits one entry for
// the batch. An id repeated in the input is deleted on its first occurrence
// and reported missing afterwards, so deleted+len(missing) == len(ids).
func (s *Store) DeleteMany(ids []string, e audit.Entry) (deleted int, missing []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	missing = []string{}
	for _, id := range ids {
		if _, ok := s.records.Delete(id); ok {
			deleted++
		} else {
			missing = append(missing, id)
		}
	}

	if len(missing) > 0 {
		e.Missing = missing
	}
	s.commit(e)
	return deleted, missing
}

// Clear removes all records without logging. The operation log is kept.
// Returns the number of records removed.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.records.Len()
	s.records = newRecordMap()
	return n
}

// Purge removes all records and commits one entry listing the removed ids.
// The operation log is kept.
func (s *Store) Purge(e audit.Entry) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := make([]string, 0, s.records.Len())
	s.records.Scan(func(id string, _ value.Value) bool {
		removed = append(removed, id)
		return true
	})
	s.records = newRecordMap()

	e.IDs = removed
	s.commit(e)
	return removed
}

// ownedCopy clones data so the caller keeps no reference into the store.
// A nil value is stored as JSON null.
func ownedCopy(data value.Value) value.Value {
	if data == nil {
		return value.Null{}
	}
	return value.Clone(data)
}
