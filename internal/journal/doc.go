// Package journal mirrors the in-memory operation log into SQLite.
//
// The journal is an audit export, not record persistence: only log entries
// are written, never record data, and nothing is read back into a store.
// Each Open registers a run (UUIDv7); entries carry the seq assigned by the
// store so rows within a run replay in commit order.
//
// # Database Configuration
//
//   - WAL mode: a reader can inspect the file while a run is appending
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: entries must reference a registered run
//
// All queries order by seq (within a run) or run id, never by timestamp.
package journal
