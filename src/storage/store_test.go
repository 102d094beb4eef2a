// backend/src/storage/store_test.go
package storage

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fiscasync/backend/src/models"
)

func sessionAt(id string, startedAt time.Time) *models.AuditSession {
	return &models.AuditSession{
		ID:        id,
		Period:    "2025",
		Phase:     models.PhaseIntake,
		Status:    models.SessionDone,
		StartedAt: startedAt,
	}
}

func TestMemoryStore_SessionRoundTrip(t *testing.T) {
	store := NewMemoryStore(0)
	session := sessionAt("AUD-1", time.Now().UTC())
	session.Summary.Score = 85

	require.NoError(t, store.SaveSession(session))
	got, err := store.GetSession("AUD-1")
	require.NoError(t, err)
	assert.Equal(t, "AUD-1", got.ID)
	assert.Equal(t, 85, got.Summary.Score)
}

func TestMemoryStore_GetSessionNotFound(t *testing.T) {
	store := NewMemoryStore(0)
	_, err := store.GetSession("AUD-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SaveSessionOverwrites(t *testing.T) {
	store := NewMemoryStore(0)
	session := sessionAt("AUD-1", time.Now().UTC())
	require.NoError(t, store.SaveSession(session))

	session.Status = models.SessionError
	require.NoError(t, store.SaveSession(session))

	got, err := store.GetSession("AUD-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionError, got.Status)

	sessions, err := store.ListSessions(0)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestMemoryStore_ListSessionsNewestFirstWithLimit(t *testing.T) {
	store := NewMemoryStore(0)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, store.SaveSession(sessionAt(fmt.Sprintf("AUD-%d", i), base.Add(time.Duration(i)*time.Hour))))
	}

	sessions, err := store.ListSessions(3)
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	assert.Equal(t, "AUD-4", sessions[0].ID)
	assert.Equal(t, "AUD-3", sessions[1].ID)
	assert.Equal(t, "AUD-2", sessions[2].ID)

	all, err := store.ListSessions(0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestMemoryStore_RetentionPrunesOldest(t *testing.T) {
	store := NewMemoryStore(2)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		require.NoError(t, store.SaveSession(sessionAt(fmt.Sprintf("AUD-%d", i), base.Add(time.Duration(i)*time.Hour))))
	}

	sessions, err := store.ListSessions(0)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "AUD-3", sessions[0].ID)
	assert.Equal(t, "AUD-2", sessions[1].ID)

	_, err = store.GetSession("AUD-0")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SnapshotRoundTrip(t *testing.T) {
	store := NewMemoryStore(0)
	snap := &models.BalanceSnapshot{
		ID:     "SNAP-1",
		Period: "2025",
		Lines:  []models.BalanceLine{{Account: "411000", DebitBalance: 100}},
		Hash:   "sha256:abc",
	}
	require.NoError(t, store.SaveSnapshot(snap))

	got, err := store.GetSnapshot("SNAP-1")
	require.NoError(t, err)
	assert.Equal(t, "sha256:abc", got.Hash)
	require.Len(t, got.Lines, 1)

	_, err = store.GetSnapshot("SNAP-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ArchiveReplacedPerPeriod(t *testing.T) {
	store := NewMemoryStore(0)
	require.NoError(t, store.SaveArchive(&models.ArchiveRecord{Period: "2024", Hash: "sha256:old"}))
	require.NoError(t, store.SaveArchive(&models.ArchiveRecord{Period: "2024", Hash: "sha256:new"}))

	got, err := store.GetArchive("2024")
	require.NoError(t, err)
	assert.Equal(t, "sha256:new", got.Hash)

	archives, err := store.ListArchives()
	require.NoError(t, err)
	assert.Len(t, archives, 1)
}

func TestMemoryStore_ListArchivesByPeriodAscending(t *testing.T) {
	store := NewMemoryStore(0)
	for _, period := range []string{"2025", "2023", "2024"} {
		require.NoError(t, store.SaveArchive(&models.ArchiveRecord{Period: period}))
	}

	archives, err := store.ListArchives()
	require.NoError(t, err)
	require.Len(t, archives, 3)
	assert.Equal(t, "2023", archives[0].Period)
	assert.Equal(t, "2024", archives[1].Period)
	assert.Equal(t, "2025", archives[2].Period)
}

func TestMemoryStore_ReportRoundTrip(t *testing.T) {
	store := NewMemoryStore(0)
	report := &models.CorrectionReport{
		ID:              "CORR-1",
		SessionBeforeID: "AUD-1",
		SessionAfterID:  "AUD-2",
	}
	require.NoError(t, store.SaveReport(report))

	got, err := store.GetReport("CORR-1")
	require.NoError(t, err)
	assert.Equal(t, "AUD-1", got.SessionBeforeID)

	_, err = store.GetReport("CORR-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_GetReturnsACopy(t *testing.T) {
	store := NewMemoryStore(0)
	require.NoError(t, store.SaveSession(sessionAt("AUD-1", time.Now().UTC())))

	got, err := store.GetSession("AUD-1")
	require.NoError(t, err)
	got.Status = models.SessionError

	again, err := store.GetSession("AUD-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionDone, again.Status)
}
