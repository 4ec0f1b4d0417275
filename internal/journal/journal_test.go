package journal

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tcstore/internal/audit"
)

func openTestJournal(t *testing.T, path string, opts ...Option) *Journal {
	t.Helper()
	j, err := Open(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func testEntry(seq int64, op audit.Operation, ids ...string) audit.Entry {
	return audit.Entry{
		Seq:       seq,
		Timestamp: time.Date(2026, 3, 2, 9, 0, 0, int(seq)*1000, time.UTC),
		Context:   audit.Context{User: "alice", Agent: "cli", Action: "test", Intent: "journal <check>"},
		Operation: op,
		IDs:       ids,
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	j := openTestJournal(t, path)

	_, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotEmpty(t, j.RunID())
}

func TestOpen_Pragmas(t *testing.T) {
	j := openTestJournal(t, filepath.Join(t.TempDir(), "audit.db"))

	assert.NoError(t, j.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, j.verifyPragma("synchronous", "1"))
	assert.NoError(t, j.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, j.verifyPragma("user_version", "1"))
}

func TestOpen_EachOpenIsANewRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")

	j1, err := Open(path)
	require.NoError(t, err)
	first := j1.RunID()
	require.NoError(t, j1.Close())

	j2 := openTestJournal(t, path)
	assert.NotEqual(t, first, j2.RunID())

	runs, err := j2.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)
	assert.Equal(t, j2.RunID(), runs[1].ID)
}

func TestAppend_ReadRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t, filepath.Join(t.TempDir(), "audit.db"), WithRunID("run-1"))

	e1 := testEntry(1, audit.OpSaveNew, "T1")
	e2 := testEntry(2, audit.OpDeleteGroup, "T1", "T2")
	e2.Missing = []string{"T2"}

	require.NoError(t, j.Append(ctx, e2))
	require.NoError(t, j.Append(ctx, e1))

	got, err := j.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, e1, got[0])
	assert.Equal(t, e2, got[1])
}

func TestAppend_DuplicateSeqIgnored(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t, filepath.Join(t.TempDir(), "audit.db"), WithRunID("run-1"))

	require.NoError(t, j.Append(ctx, testEntry(1, audit.OpSaveNew, "T1")))
	require.NoError(t, j.Append(ctx, testEntry(1, audit.OpDelete, "T9")))

	got, err := j.ReadRun(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, audit.OpSaveNew, got[0].Operation)
}

func TestReadRun_UnknownRunIsEmpty(t *testing.T) {
	j := openTestJournal(t, filepath.Join(t.TempDir(), "audit.db"))

	got, err := j.ReadRun(context.Background(), "nope")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestRuns_CountsEntries(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	j := openTestJournal(t, filepath.Join(t.TempDir(), "audit.db"),
		WithRunID("run-a"),
		WithClock(func() time.Time { return start }),
	)

	require.NoError(t, j.Append(ctx, testEntry(1, audit.OpSaveNew, "T1")))
	require.NoError(t, j.Append(ctx, testEntry(2, audit.OpPurge, "T1")))

	runs, err := j.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, Run{ID: "run-a", StartedAt: "2026-03-02T08:00:00Z", Entries: 2}, runs[0])
}

func TestAppend_ContextStoredWithoutHTMLEscaping(t *testing.T) {
	ctx := context.Background()
	j := openTestJournal(t, filepath.Join(t.TempDir(), "audit.db"), WithRunID("run-1"))
	require.NoError(t, j.Append(ctx, testEntry(1, audit.OpSaveNew, "T1")))

	var raw string
	require.NoError(t, j.db.QueryRow(`SELECT context FROM entries WHERE seq = 1`).Scan(&raw))
	assert.Equal(t, `{"user":"alice","agent":"cli","action":"test","intent":"journal <check>"}`, raw)
}

func TestOpenReader_DoesNotStartRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	w := openTestJournal(t, path, WithRunID("run-1"))
	require.NoError(t, w.Append(context.Background(), testEntry(1, audit.OpSaveNew, "T1")))

	r, err := OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	runs, err := r.Runs(context.Background())
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Equal(t, 1, runs[0].Entries)
	assert.Empty(t, r.RunID())
}

func TestOpenReader_ReadOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rollback.db")

	// A journal file still in rollback mode: schema applied, WAL never set.
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	require.NoError(t, applySchema(db))
	require.NoError(t, db.Close())

	r, err := OpenReader(path)
	require.NoError(t, err)
	defer r.Close()

	runs, err := r.Runs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = r.db.Exec(`INSERT INTO runs (id, started_at) VALUES ('x', 'y')`)
	require.Error(t, err, "reader connection must be read-only")
	require.NoError(t, r.verifyPragma("journal_mode", "delete"))

	header := make([]byte, 20)
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.ReadAt(header, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(1), header[18], "file format write version stays legacy (not WAL)")
}

func TestOpenReader_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.db")
	_, err := OpenReader(path)
	require.Error(t, err)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "reader must not create the file")
}

func TestOpenReader_NotAJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := OpenReader(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema version 0")
}
