package audit

import (
	"slices"
	"time"
)

// Operation names the kind of mutation an Entry records.
type Operation string

const (
	OpSaveNew     Operation = "save_new"
	OpSaveUpdate  Operation = "save_update"
	OpSavePartial Operation = "save_partial"
	OpDelete      Operation = "delete"
	OpDeleteGroup Operation = "delete_group"
	OpPurge       Operation = "purge"
)

// Valid reports whether op is one of the known operations.
func (op Operation) Valid() bool {
	switch op {
	case OpSaveNew, OpSaveUpdate, OpSavePartial, OpDelete, OpDeleteGroup, OpPurge:
		return true
	}
	return false
}

// Entry is one record in the append-only operation log.
//
// Seq and Timestamp are assigned by the store while it holds its lock, so
// entries appear in the same total order as the mutations they describe.
// Missing lists requested ids that were not present (delete operations).
type Entry struct {
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Context   Context   `json:"context"`
	Operation Operation `json:"operation"`
	IDs       []string  `json:"ids"`
	Missing   []string  `json:"missing,omitempty"`
}

// NewEntry creates an unstamped entry for the given operation.
func NewEntry(ctx Context, op Operation, ids ...string) Entry {
	return Entry{
		Context:   ctx.Normalize(),
		Operation: op,
		IDs:       ids,
	}
}

// Clone returns a copy that shares no slices with e.
func (e Entry) Clone() Entry {
	out := e
	out.IDs = slices.Clone(e.IDs)
	out.Missing = slices.Clone(e.Missing)
	return out
}
