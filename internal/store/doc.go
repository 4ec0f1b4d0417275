// Package store provides the in-memory record store and operation log.
//
// The store maps record ids to arbitrary JSON data (value.Value) and keeps
// an append-only log of audit entries. It knows nothing about filters or
// merge rules; callers pass a MergeFunc for partial updates.
//
// # Concurrency
//
// A single mutex guards the record map, the log and the sequence counter.
// Each mutation and its log entry commit in one critical section, so:
//   - concurrent merges on one id never lose an update
//   - log order is the total order of committed mutations
//   - readers never observe a half-written record
//
// No operation acquires the lock twice, and none blocks on anything but the
// lock (the optional journal is called inline).
//
// # Ownership
//
// Data passed in is deep-copied before it is stored, and every read returns
// deep copies. Callers cannot reach stored state except through Store
// methods.
//
// # Ordering
//
// Records live in a B-tree keyed by id, so GetAll returns them in id order.
// Log entries carry a 1-based, gapless seq assigned under the lock.
package store
