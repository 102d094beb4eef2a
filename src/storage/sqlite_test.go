// backend/src/storage/sqlite_test.go
package storage

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/username/fiscasync/backend/src/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// One connection: every ":memory:" connection is its own database.
	db.SetMaxOpenConns(1)
	for _, stmt := range []string{
		`CREATE TABLE audit_sessions (
			id TEXT PRIMARY KEY, period TEXT NOT NULL, phase TEXT NOT NULL,
			status TEXT NOT NULL, started_at TEXT NOT NULL, payload TEXT NOT NULL)`,
		`CREATE TABLE balance_snapshots (
			id TEXT PRIMARY KEY, period TEXT NOT NULL, taken_at TEXT NOT NULL,
			hash TEXT NOT NULL, payload TEXT NOT NULL)`,
		`CREATE TABLE audit_archives (
			period TEXT PRIMARY KEY, archived_at TEXT NOT NULL,
			hash TEXT NOT NULL, payload TEXT NOT NULL)`,
		`CREATE TABLE correction_reports (
			id TEXT PRIMARY KEY, generated_at TEXT NOT NULL, payload TEXT NOT NULL)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteStore_SessionRoundTrip(t *testing.T) {
	store := NewSQLiteStore(openTestDB(t), 0)

	session := sessionAt("AUD-1", time.Now().UTC())
	require.NoError(t, store.SaveSession(session))

	got, err := store.GetSession("AUD-1")
	require.NoError(t, err)
	assert.Equal(t, "AUD-1", got.ID)
	assert.Equal(t, models.SessionDone, got.Status)

	_, err = store.GetSession("AUD-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_GetSessionIgnoresUnsavedMutations(t *testing.T) {
	store := NewSQLiteStore(openTestDB(t), 0)

	session := sessionAt("AUD-1", time.Now().UTC())
	session.Status = models.SessionRunning
	require.NoError(t, store.SaveSession(session))

	// The orchestrator keeps mutating its session between saves; readers
	// must only ever see the persisted state.
	session.Status = models.SessionDone
	session.Summary.Score = 77
	session.Results = append(session.Results, models.ControlResult{
		Ref: "T-001", Status: models.StatusOK, Severity: models.SeverityOK,
	})

	got, err := store.GetSession("AUD-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionRunning, got.Status)
	assert.Equal(t, 0, got.Summary.Score)
	assert.Empty(t, got.Results)
}

func TestSQLiteStore_GetSessionReturnsACopy(t *testing.T) {
	store := NewSQLiteStore(openTestDB(t), 0)
	require.NoError(t, store.SaveSession(sessionAt("AUD-1", time.Now().UTC())))

	got, err := store.GetSession("AUD-1")
	require.NoError(t, err)
	got.Status = models.SessionError
	got.Results = append(got.Results, models.ControlResult{Ref: "T-001"})

	again, err := store.GetSession("AUD-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionDone, again.Status)
	assert.Empty(t, again.Results)
}

func TestSQLiteStore_GetReportIgnoresUnsavedMutations(t *testing.T) {
	store := NewSQLiteStore(openTestDB(t), 0)

	report := &models.CorrectionReport{
		ID:          "CORR-1",
		GeneratedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SaveReport(report))

	report.Summary.ScoreAfter = 99
	report.Corrections = append(report.Corrections, models.CorrectionItem{Ref: "T-001"})

	got, err := store.GetReport("CORR-1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Summary.ScoreAfter)
	assert.Empty(t, got.Corrections)
}

func TestSQLiteStore_RetentionPrunesOldest(t *testing.T) {
	store := NewSQLiteStore(openTestDB(t), 2)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"AUD-0", "AUD-1", "AUD-2"} {
		require.NoError(t, store.SaveSession(sessionAt(id, base)))
		base = base.Add(time.Hour)
	}

	sessions, err := store.ListSessions(0)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "AUD-2", sessions[0].ID)
	assert.Equal(t, "AUD-1", sessions[1].ID)
}
