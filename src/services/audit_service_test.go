// backend/src/services/audit_service_test.go
package services

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/username/fiscasync/backend/src/audit/controls"
	"github.com/username/fiscasync/backend/src/logger"
	"github.com/username/fiscasync/backend/src/models"
	"github.com/username/fiscasync/backend/src/storage"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func newTestService() (AuditService, *storage.MemoryStore) {
	store := storage.NewMemoryStore(0)
	return NewAuditService(store, controls.NewRegistry(), nil), store
}

func balancedLines() []models.BalanceLine {
	return []models.BalanceLine{
		{Account: "101000", Label: "Capital social", CreditMovement: 5000, CreditBalance: 5000},
		{Account: "411000", Label: "Clients", DebitMovement: 3000, DebitBalance: 3000},
		{Account: "521000", Label: "Banque", DebitMovement: 4000, DebitBalance: 4000},
		{Account: "601000", Label: "Achats", DebitMovement: 1000, DebitBalance: 1000},
		{Account: "701000", Label: "Ventes", CreditMovement: 3000, CreditBalance: 3000},
	}
}

// unbalancedLines overstates the client account by 500, so a re-import of the
// corrected balance moves that same account back.
func unbalancedLines() []models.BalanceLine {
	lines := balancedLines()
	lines[1].DebitMovement = 3500
	lines[1].DebitBalance = 3500
	return lines
}

func resultByRef(session *models.AuditSession, ref string) (models.ControlResult, bool) {
	for _, r := range session.Results {
		if r.Ref == ref {
			return r, true
		}
	}
	return models.ControlResult{}, false
}

func TestStartIntakeAudit_CompletesWithSummary(t *testing.T) {
	svc, _ := newTestService()

	session, err := svc.StartIntakeAudit(context.Background(), IntakeRequest{
		Period:  "2025",
		Balance: balancedLines(),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(session.ID, "AUD-"))
	assert.Equal(t, models.PhaseIntake, session.Phase)
	assert.Equal(t, models.SessionDone, session.Status)
	require.NotNil(t, session.FinishedAt)
	assert.Equal(t, 100, session.Progress.Percent)
	assert.NotEmpty(t, session.Results)
	assert.Equal(t, len(session.Results), session.Summary.TotalControls)
	assert.Greater(t, session.Summary.Score, 0)

	f001, ok := resultByRef(session, "F-001")
	require.True(t, ok)
	assert.Equal(t, models.StatusOK, f001.Status)
}

func TestStartIntakeAudit_EmptyBalance(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.StartIntakeAudit(context.Background(), IntakeRequest{Period: "2025"})
	assert.ErrorIs(t, err, ErrEmptyBalance)
}

func TestStartIntakeAudit_MissingPeriod(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.StartIntakeAudit(context.Background(), IntakeRequest{
		Period:  "   ",
		Balance: balancedLines(),
	})
	assert.ErrorIs(t, err, ErrMissingPeriod)
}

func TestStartIntakeAudit_SanitizesLabels(t *testing.T) {
	svc, store := newTestService()
	lines := balancedLines()
	lines[0].Label = "<script>alert(1)</script>Capital"
	lines[1].Account = "  411000  "

	session, err := svc.StartIntakeAudit(context.Background(), IntakeRequest{Period: "2025", Balance: lines})
	require.NoError(t, err)

	snap, err := store.GetSnapshot(session.SubjectID)
	require.NoError(t, err)
	assert.NotContains(t, snap.Lines[0].Label, "<script>")
	assert.Equal(t, "411000", snap.Lines[1].Account)
}

func TestStartIntakeAudit_CancelledRunStaysRunning(t *testing.T) {
	svc, store := newTestService()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session, err := svc.StartIntakeAudit(ctx, IntakeRequest{Period: "2025", Balance: balancedLines()})
	require.NoError(t, err)

	assert.Equal(t, models.SessionRunning, session.Status)
	assert.Nil(t, session.FinishedAt)
	// The summary is still computed over whatever results accumulated.
	assert.NotNil(t, session.Summary.BySeverity)

	persisted, err := store.GetSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionRunning, persisted.Status)
}

// archiveFailStore simulates a storage fault during evaluation-context
// assembly, which is the orchestration-error path.
type archiveFailStore struct {
	*storage.MemoryStore
}

func (s *archiveFailStore) ListArchives() ([]models.ArchiveRecord, error) {
	return nil, errors.New("archive table unavailable")
}

func TestStartIntakeAudit_OrchestrationFaultMarksError(t *testing.T) {
	store := &archiveFailStore{MemoryStore: storage.NewMemoryStore(0)}
	svc := NewAuditService(store, controls.NewRegistry(), nil)

	_, err := svc.StartIntakeAudit(context.Background(), IntakeRequest{Period: "2025", Balance: balancedLines()})
	require.Error(t, err)

	sessions, err := store.ListSessions(0)
	require.NoError(t, err)
	require.Len(t, sessions, 1)

	failed := sessions[0]
	assert.Equal(t, models.SessionError, failed.Status)
	require.NotNil(t, failed.FinishedAt)
	// The failed session carries its best-available summary, not a zero value.
	assert.NotNil(t, failed.Summary.BySeverity)
	assert.Equal(t, 0, failed.Summary.Score)
}

func TestGetSession_Unknown(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.GetSession("AUD-missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRunStatementAudit_NewSession(t *testing.T) {
	svc, _ := newTestService()

	session, err := svc.RunStatementAudit(context.Background(), StatementRequest{
		Period:  "2025",
		Balance: balancedLines(),
	})
	require.NoError(t, err)

	assert.Equal(t, models.PhaseStatement, session.Phase)
	assert.Equal(t, models.SessionDone, session.Status)

	_, hasStatement := resultByRef(session, "EF-001")
	assert.True(t, hasStatement)
	_, hasFiscal := resultByRef(session, "FI-001")
	assert.True(t, hasFiscal)
	_, hasIntake := resultByRef(session, "F-001")
	assert.False(t, hasIntake)
}

func TestRunStatementAudit_ExtendsExistingSession(t *testing.T) {
	svc, _ := newTestService()

	intake, err := svc.StartIntakeAudit(context.Background(), IntakeRequest{Period: "2025", Balance: balancedLines()})
	require.NoError(t, err)
	intakeCount := len(intake.Results)

	extended, err := svc.RunStatementAudit(context.Background(), StatementRequest{
		SessionID: intake.ID,
		Balance:   balancedLines(),
	})
	require.NoError(t, err)

	assert.Equal(t, intake.ID, extended.ID)
	assert.Equal(t, models.SessionDone, extended.Status)
	assert.Greater(t, len(extended.Results), intakeCount)

	_, hasIntake := resultByRef(extended, "F-001")
	assert.True(t, hasIntake)
	_, hasStatement := resultByRef(extended, "EF-001")
	assert.True(t, hasStatement)
	assert.Equal(t, len(extended.Results), extended.Summary.TotalControls)
}

func TestRunStatementAudit_UnknownSession(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.RunStatementAudit(context.Background(), StatementRequest{
		SessionID: "AUD-missing",
		Balance:   balancedLines(),
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestArchiveThenVerify(t *testing.T) {
	svc, _ := newTestService()

	session, err := svc.StartIntakeAudit(context.Background(), IntakeRequest{Period: "2025", Balance: balancedLines()})
	require.NoError(t, err)

	rec, err := svc.ArchiveSession(session.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025", rec.Period)
	assert.True(t, strings.HasPrefix(rec.Hash, "sha256:"))
	assert.False(t, rec.ArchivedAt.IsZero())

	verdict, err := svc.VerifyArchive("2025")
	require.NoError(t, err)
	assert.True(t, verdict.Valid)
	assert.Equal(t, rec.Hash, verdict.StoredHash)
}

func TestVerifyArchive_DetectsTampering(t *testing.T) {
	svc, store := newTestService()

	session, err := svc.StartIntakeAudit(context.Background(), IntakeRequest{Period: "2025", Balance: balancedLines()})
	require.NoError(t, err)
	_, err = svc.ArchiveSession(session.ID)
	require.NoError(t, err)

	tampered, err := store.GetArchive("2025")
	require.NoError(t, err)
	tampered.Session.Summary.Score = 100
	require.NoError(t, store.SaveArchive(tampered))

	verdict, err := svc.VerifyArchive("2025")
	require.NoError(t, err)
	assert.False(t, verdict.Valid)
}

func TestVerifyArchive_UnknownPeriod(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.VerifyArchive("1999")
	assert.ErrorIs(t, err, ErrArchiveNotFound)
}

func TestArchiveSession_RefusesUnfinishedSession(t *testing.T) {
	svc, store := newTestService()

	running := &models.AuditSession{
		ID:     "AUD-running",
		Period: "2025",
		Phase:  models.PhaseIntake,
		Status: models.SessionRunning,
	}
	require.NoError(t, store.SaveSession(running))

	_, err := svc.ArchiveSession("AUD-running")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RUNNING")
}

func TestReimportAndCompare_FixedImbalance(t *testing.T) {
	svc, _ := newTestService()

	before, err := svc.StartIntakeAudit(context.Background(), IntakeRequest{Period: "2025", Balance: unbalancedLines()})
	require.NoError(t, err)
	f001Before, ok := resultByRef(before, "F-001")
	require.True(t, ok)
	require.Equal(t, models.StatusAnomaly, f001Before.Status)

	after, report, err := svc.ReimportAndCompare(context.Background(), ReimportRequest{
		Balance:        balancedLines(),
		PriorSessionID: before.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PhaseComparison, after.Phase)
	assert.Equal(t, before.Period, after.Period)
	assert.True(t, strings.HasPrefix(report.ID, "CORR-"))
	assert.Equal(t, before.ID, report.SessionBeforeID)
	assert.Equal(t, after.ID, report.SessionAfterID)

	var fixed *models.CorrectionItem
	for i := range report.Corrections {
		if report.Corrections[i].Ref == "F-001" {
			fixed = &report.Corrections[i]
		}
	}
	require.NotNil(t, fixed)
	assert.Equal(t, models.EvolutionFixed, fixed.Evolution)

	assert.Greater(t, report.Summary.ScoreAfter, report.Summary.ScoreBefore)
	assert.NotEmpty(t, report.ChangedAccounts)

	stored, err := svc.GetReport(report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, stored.ID)
}

func TestReimportAndCompare_IdenticalBalance(t *testing.T) {
	svc, _ := newTestService()

	before, err := svc.StartIntakeAudit(context.Background(), IntakeRequest{Period: "2025", Balance: balancedLines()})
	require.NoError(t, err)

	_, report, err := svc.ReimportAndCompare(context.Background(), ReimportRequest{
		Balance:        balancedLines(),
		PriorSessionID: before.ID,
	})
	require.NoError(t, err)

	assert.Empty(t, report.Corrections)
	assert.Empty(t, report.ChangedAccounts)
	assert.Equal(t, report.Summary.ScoreBefore, report.Summary.ScoreAfter)
}

func TestReimportAndCompare_UnknownSession(t *testing.T) {
	svc, _ := newTestService()
	_, _, err := svc.ReimportAndCompare(context.Background(), ReimportRequest{
		Balance:        balancedLines(),
		PriorSessionID: "AUD-missing",
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestGetReport_Unknown(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.GetReport("CORR-missing")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestControlCatalogAndToggle(t *testing.T) {
	svc, _ := newTestService()

	catalog := svc.ControlCatalog()
	require.NotEmpty(t, catalog)

	assert.True(t, svc.SetControlActive("F-001", false))
	assert.False(t, svc.SetControlActive("Z-999", true))

	session, err := svc.StartIntakeAudit(context.Background(), IntakeRequest{Period: "2025", Balance: unbalancedLines()})
	require.NoError(t, err)
	_, ran := resultByRef(session, "F-001")
	assert.False(t, ran)
}
