package journal

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/tcstore/internal/audit"
)

// Append writes one operation log entry to the current run.
// Uses ON CONFLICT DO NOTHING so re-appending the same seq is a no-op.
func (j *Journal) Append(ctx context.Context, e audit.Entry) error {
	ctxJSON, err := marshalJSON(e.Context)
	if err != nil {
		return fmt.Errorf("append entry %d: context: %w", e.Seq, err)
	}
	idsJSON, err := marshalIDs(e.IDs)
	if err != nil {
		return fmt.Errorf("append entry %d: ids: %w", e.Seq, err)
	}
	missingJSON, err := marshalIDs(e.Missing)
	if err != nil {
		return fmt.Errorf("append entry %d: missing: %w", e.Seq, err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO entries
		(run_id, seq, timestamp, operation, context, ids, missing)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		j.runID,
		e.Seq,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		string(e.Operation),
		ctxJSON,
		idsJSON,
		missingJSON,
	)
	if err != nil {
		return fmt.Errorf("append entry %d: %w", e.Seq, err)
	}
	return nil
}

// Run describes one journal run.
type Run struct {
	ID        string `json:"id"`
	StartedAt string `json:"started_at"`
	Entries   int    `json:"entries"`
}

// Runs lists all runs ordered by id. UUIDv7 ids sort by start time.
func (j *Journal) Runs(ctx context.Context) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT r.id, r.started_at, COUNT(e.seq)
		FROM runs r
		LEFT JOIN entries e ON e.run_id = r.id
		GROUP BY r.id, r.started_at
		ORDER BY r.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Entries); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadRun returns the entries of one run ordered by seq.
// Returns an empty slice (not nil) when the run has no entries.
func (j *Journal) ReadRun(ctx context.Context, runID string) ([]audit.Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, timestamp, operation, context, ids, missing
		FROM entries
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []audit.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (audit.Entry, error) {
	var (
		e                                 audit.Entry
		ts, op, ctxJSON, ids, missingJSON string
	)
	if err := rows.Scan(&e.Seq, &ts, &op, &ctxJSON, &ids, &missingJSON); err != nil {
		return audit.Entry{}, fmt.Errorf("scan entry: %w", err)
	}

	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return audit.Entry{}, fmt.Errorf("entry %d: parse timestamp: %w", e.Seq, err)
	}
	e.Timestamp = t
	e.Operation = audit.Operation(op)

	if err := json.Unmarshal([]byte(ctxJSON), &e.Context); err != nil {
		return audit.Entry{}, fmt.Errorf("entry %d: unmarshal context: %w", e.Seq, err)
	}
	if err := json.Unmarshal([]byte(ids), &e.IDs); err != nil {
		return audit.Entry{}, fmt.Errorf("entry %d: unmarshal ids: %w", e.Seq, err)
	}
	if err := json.Unmarshal([]byte(missingJSON), &e.Missing); err != nil {
		return audit.Entry{}, fmt.Errorf("entry %d: unmarshal missing: %w", e.Seq, err)
	}
	if len(e.Missing) == 0 {
		e.Missing = nil
	}
	return e, nil
}

func marshalIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	return marshalJSON(ids)
}

// marshalJSON encodes with HTML escaping disabled so stored text matches
// what the CLI prints.
func marshalJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder adds a trailing newline
	return strings.TrimSpace(buf.String()), nil
}
