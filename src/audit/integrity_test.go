// backend/src/audit/integrity_test.go
package audit

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fiscasync/backend/src/models"
)

func sampleSnapshot() models.BalanceSnapshot {
	lines := []models.BalanceLine{
		{Account: "411000", Label: "Clients", DebitMovement: 1000, DebitBalance: 1000},
		{Account: "701000", Label: "Ventes", CreditMovement: 1000, CreditBalance: 1000},
	}
	return models.BalanceSnapshot{
		ID:          "SNAP-test",
		Period:      "2025",
		TakenAt:     time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		Lines:       lines,
		TotalDebit:  1000,
		TotalCredit: 1000,
	}
}

func sampleSession() models.AuditSession {
	return models.AuditSession{
		ID:        "AUD-test",
		SubjectID: "SNAP-test",
		Period:    "2025",
		Phase:     models.PhaseIntake,
		Status:    models.SessionDone,
		StartedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}
}

func TestDigest_Deterministic(t *testing.T) {
	snap := sampleSnapshot()
	first, err := Digest(snap)
	require.NoError(t, err)
	second, err := Digest(snap)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "sha256:"))
}

func TestDigest_SensitiveToContent(t *testing.T) {
	snap := sampleSnapshot()
	first, err := Digest(snap)
	require.NoError(t, err)

	snap.Lines[0].DebitBalance += 0.01
	second, err := Digest(snap)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestHashLines_Prefix(t *testing.T) {
	hash, err := HashLines(sampleSnapshot().Lines)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "sha256:"))
}

func TestSealThenVerify(t *testing.T) {
	rec, err := Seal(sampleSession(), sampleSnapshot())
	require.NoError(t, err)
	assert.Equal(t, "2025", rec.Period)
	assert.NotEmpty(t, rec.Hash)

	valid, err := VerifyRecord(rec)
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestVerifyRecord_DetectsTamperedSnapshot(t *testing.T) {
	rec, err := Seal(sampleSession(), sampleSnapshot())
	require.NoError(t, err)

	rec.Snapshot.Lines[0].DebitBalance = 999999

	valid, err := VerifyRecord(rec)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifyRecord_DetectsTamperedSession(t *testing.T) {
	session := sampleSession()
	session.Summary = ComputeSummary([]models.ControlResult{
		{Ref: "T-001", Status: models.StatusOK, Severity: models.SeverityOK},
	})
	rec, err := Seal(session, sampleSnapshot())
	require.NoError(t, err)

	rec.Session.Summary.Score = 100
	rec.Session.Results = append(rec.Session.Results, models.ControlResult{
		Ref: "T-002", Status: models.StatusOK, Severity: models.SeverityOK,
	})

	valid, err := VerifyRecord(rec)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestVerifyRecord_HashFieldItselfIsExcluded(t *testing.T) {
	rec, err := Seal(sampleSession(), sampleSnapshot())
	require.NoError(t, err)

	// The record hash covers session and snapshot only; editing it flips the
	// comparison without affecting the recomputed digest.
	rec.Hash = "sha256:deadbeef"
	valid, err := VerifyRecord(rec)
	require.NoError(t, err)
	assert.False(t, valid)
}
