package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - runs + entries tables
const currentSchemaVersion = 1

// Journal mirrors the operation log into SQLite.
// Uses WAL mode so a reader (tcstore journal) can inspect a live file.
type Journal struct {
	db    *sql.DB
	runID string
	now   func() time.Time
}

// Option configures a Journal.
type Option func(*Journal)

// WithClock overrides the wall clock used for the run start time.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

// WithRunID sets the run id instead of generating a UUIDv7.
func WithRunID(id string) Option {
	return func(j *Journal) { j.runID = id }
}

// Open creates or opens a journal database and registers a new run.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string, opts ...Option) (*Journal, error) {
	j := &Journal{now: time.Now}
	for _, opt := range opts {
		opt(j)
	}
	if j.runID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, fmt.Errorf("generate run id: %w", err)
		}
		j.runID = id.String()
	}

	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	j.db = db
	if err := j.startRun(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return j, nil
}

// OpenReader opens an existing journal read-only. No run is registered
// and no pragma is changed; Append on the result fails.
func OpenReader(path string) (*Journal, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("journal %s: %w", path, err)
	}

	db, err := openDB("file:" + path + "?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		db.Close()
		return nil, fmt.Errorf("read user_version: %w", err)
	}
	if version != currentSchemaVersion {
		db.Close()
		return nil, fmt.Errorf("journal %s: schema version %d, expected %d", path, version, currentSchemaVersion)
	}

	return &Journal{db: db, now: time.Now}, nil
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}

// RunID returns the id of the run this journal appends to.
func (j *Journal) RunID() string {
	return j.runID
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) startRun(ctx context.Context) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, started_at)
		VALUES (?, ?)
		ON CONFLICT(id) DO NOTHING
	`, j.runID, j.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (j *Journal) verifyPragma(name, expected string) error {
	var got string
	if err := j.db.QueryRow(fmt.Sprintf("PRAGMA %s", name)).Scan(&got); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if got != expected {
		return fmt.Errorf("%s = %q, expected %q", name, got, expected)
	}
	return nil
}
