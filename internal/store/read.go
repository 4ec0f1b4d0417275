package store

import (
	"github.com/roach88/tcstore/internal/value"
)

// Record is an id-keyed document. Records returned by the store are deep
// copies; mutating them does not affect stored state.
type Record struct {
	ID   string      `json:"id"`
	Data value.Value `json:"data"`
}

// Document returns the record in wire shape {"id": ..., "data": ...}.
// Filter paths resolve against this shape.
func (r Record) Document() value.Object {
	data := r.Data
	if data == nil {
		data = value.Null{}
	}
	return value.Object{
		"id":   value.String(r.ID),
		"data": data,
	}
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.records.Get(id)
	if !ok {
		return Record{}, false
	}
	return Record{ID: id, Data: value.Clone(data)}, true
}

// GetMany classifies each input position independently into found or
// missing. Both slices are non-nil. Found preserves input order.
func (s *Store) GetMany(ids []string) (found []Record, missing []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found = []Record{}
	missing = []string{}
	for _, id := range ids {
		if data, ok := s.records.Get(id); ok {
			found = append(found, Record{ID: id, Data: value.Clone(data)})
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing
}

// GetAll returns a point-in-time snapshot of every record, ordered by id.
func (s *Store) GetAll() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, s.records.Len())
	s.records.Scan(func(id string, data value.Value) bool {
		out = append(out, Record{ID: id, Data: value.Clone(data)})
		return true
	})
	return out
}
