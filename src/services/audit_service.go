// backend/src/services/audit_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/username/fiscasync/backend/src/audit"
	"github.com/username/fiscasync/backend/src/logger"
	"github.com/username/fiscasync/backend/src/models"
	"github.com/username/fiscasync/backend/src/referential"
	"github.com/username/fiscasync/backend/src/security/validation"
	"github.com/username/fiscasync/backend/src/storage"
)

type auditService struct {
	store    storage.Store
	registry *audit.Registry
	plan     *referential.Plan
}

// NewAuditService wires the orchestrator. The registry must already carry the
// control catalog; the plan may be nil, in which case chart-dependent controls
// report NOT_APPLICABLE.
func NewAuditService(store storage.Store, registry *audit.Registry, plan *referential.Plan) AuditService {
	return &auditService{store: store, registry: registry, plan: plan}
}

func newSessionID() string  { return "AUD-" + uuid.New().String() }
func newSnapshotID() string { return "SNAP-" + uuid.New().String() }
func newReportID() string   { return "CORR-" + uuid.New().String() }

// sanitizeLines trims account codes and strips any markup from imported
// labels before they enter snapshots and results.
func sanitizeLines(lines []models.BalanceLine) []models.BalanceLine {
	out := make([]models.BalanceLine, len(lines))
	for i, l := range lines {
		l.Account = strings.TrimSpace(l.Account)
		l.Label = validation.SanitizeText(validation.StripUnprintable(l.Label))
		out[i] = l
	}
	return out
}

// takeSnapshot hashes and persists an immutable copy of the input balance.
func (s *auditService) takeSnapshot(period string, lines []models.BalanceLine) (*models.BalanceSnapshot, error) {
	hash, err := audit.HashLines(lines)
	if err != nil {
		return nil, fmt.Errorf("hashing balance: %w", err)
	}
	totalDebit, totalCredit := models.BalanceTotals(lines)
	snapshot := &models.BalanceSnapshot{
		ID:          newSnapshotID(),
		Period:      period,
		TakenAt:     time.Now().UTC(),
		Lines:       lines,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Hash:        hash,
	}
	if err := s.store.SaveSnapshot(snapshot); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *auditService) totalControls(levels []int) int {
	n := 0
	for _, level := range levels {
		n += len(s.registry.ByLevel(level))
	}
	return n
}

// progressCallbacks keeps the session's Progress up to date and persists the
// session at level boundaries so pollers see partial results.
func (s *auditService) progressCallbacks(session *models.AuditSession, levels []int) *audit.ProgressCallbacks {
	total := s.totalControls(levels)
	session.Progress.TotalControls = total
	completed := 0
	return &audit.ProgressCallbacks{
		OnProgress: func(level, index, _ int, ref string) {
			session.Progress.CurrentLevel = level
			session.Progress.CurrentControl = completed + index
			session.Progress.CurrentRef = ref
			if total > 0 {
				session.Progress.Percent = (completed + index) * 100 / total
			}
		},
		OnLevelEnd: func(level int, _ []models.ControlResult) {
			completed += len(s.registry.ByLevel(level))
			if total > 0 {
				session.Progress.Percent = completed * 100 / total
			}
			if err := s.store.SaveSession(session); err != nil {
				logger.L.Warn("Persisting in-flight session failed", "sessionID", session.ID, "error", err)
			}
		},
	}
}

// finish closes a session and fires the completion callback. A cancelled run
// stays RUNNING with its partial results and no finish timestamp; it is never
// reported DONE.
func (s *auditService) finish(ctx context.Context, session *models.AuditSession, cb *audit.ProgressCallbacks) error {
	session.Summary = audit.ComputeSummary(session.Results)
	if ctx.Err() == nil {
		now := time.Now().UTC()
		session.Status = models.SessionDone
		session.FinishedAt = &now
		session.Progress.Percent = 100
		session.Progress.CurrentRef = ""
	}
	if err := s.store.SaveSession(session); err != nil {
		return err
	}
	cb.Complete(session.Summary)
	return nil
}

// markError records an orchestration fault on the session. The session keeps
// the summary of whatever results it accumulated, and the completion callback
// still fires. Persistence is best effort: the fault itself is what the
// caller sees.
func (s *auditService) markError(session *models.AuditSession, cb *audit.ProgressCallbacks) {
	session.Summary = audit.ComputeSummary(session.Results)
	now := time.Now().UTC()
	session.Status = models.SessionError
	session.FinishedAt = &now
	if err := s.store.SaveSession(session); err != nil {
		logger.L.Error("Marking session as failed did not persist", "sessionID", session.ID, "error", err)
	}
	cb.Complete(session.Summary)
}

func (s *auditService) evalContext(current, prior []models.BalanceLine, period string, kind models.Phase) (*audit.Context, error) {
	archives, err := s.store.ListArchives()
	if err != nil {
		return nil, fmt.Errorf("loading archives: %w", err)
	}
	return &audit.Context{
		Current:  current,
		Prior:    prior,
		Plan:     s.plan,
		Archives: archives,
		Period:   period,
		Kind:     kind,
	}, nil
}

func (s *auditService) StartIntakeAudit(ctx context.Context, req IntakeRequest) (*models.AuditSession, error) {
	if len(req.Balance) == 0 {
		return nil, ErrEmptyBalance
	}
	if strings.TrimSpace(req.Period) == "" {
		return nil, ErrMissingPeriod
	}
	return s.runIntake(ctx, req.Period, sanitizeLines(req.Balance), sanitizeLines(req.PriorBalance), models.PhaseIntake)
}

func (s *auditService) runIntake(ctx context.Context, period string, balance, prior []models.BalanceLine, phase models.Phase) (*models.AuditSession, error) {
	snapshot, err := s.takeSnapshot(period, balance)
	if err != nil {
		return nil, err
	}

	session := &models.AuditSession{
		ID:        newSessionID(),
		SubjectID: snapshot.ID,
		Period:    period,
		Phase:     phase,
		Status:    models.SessionRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := s.store.SaveSession(session); err != nil {
		return nil, err
	}
	cb := s.progressCallbacks(session, audit.IntakeLevels)

	ectx, err := s.evalContext(balance, prior, period, phase)
	if err != nil {
		s.markError(session, cb)
		return nil, err
	}

	logger.L.Info("Intake audit started", "sessionID", session.ID, "period", period,
		"lines", len(balance), "priorLines", len(prior))

	session.Results = audit.RunPhase(ctx, s.registry, audit.IntakeLevels, ectx, cb)
	if err := s.finish(ctx, session, cb); err != nil {
		s.markError(session, cb)
		return nil, err
	}

	logger.L.Info("Intake audit finished", "sessionID", session.ID, "status", session.Status,
		"score", session.Summary.Score, "blocking", session.Summary.BlockingCount)
	return session, nil
}

func (s *auditService) RunStatementAudit(ctx context.Context, req StatementRequest) (*models.AuditSession, error) {
	if len(req.Balance) == 0 {
		return nil, ErrEmptyBalance
	}
	balance := sanitizeLines(req.Balance)

	// Extending an intake session appends the statement results to it.
	if req.SessionID != "" {
		session, err := s.store.GetSession(req.SessionID)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		if err != nil {
			return nil, err
		}
		cb := s.progressCallbacks(session, audit.StatementLevels)
		ectx, err := s.evalContext(balance, nil, session.Period, models.PhaseStatement)
		if err != nil {
			s.markError(session, cb)
			return nil, err
		}
		logger.L.Info("Statement audit extending session", "sessionID", session.ID)
		session.Status = models.SessionRunning
		session.FinishedAt = nil
		session.Results = append(session.Results,
			audit.RunPhase(ctx, s.registry, audit.StatementLevels, ectx, cb)...)
		if err := s.finish(ctx, session, cb); err != nil {
			s.markError(session, cb)
			return nil, err
		}
		return session, nil
	}

	if strings.TrimSpace(req.Period) == "" {
		return nil, ErrMissingPeriod
	}
	snapshot, err := s.takeSnapshot(req.Period, balance)
	if err != nil {
		return nil, err
	}
	session := &models.AuditSession{
		ID:        newSessionID(),
		SubjectID: snapshot.ID,
		Period:    req.Period,
		Phase:     models.PhaseStatement,
		Status:    models.SessionRunning,
		StartedAt: time.Now().UTC(),
	}
	if err := s.store.SaveSession(session); err != nil {
		return nil, err
	}
	cb := s.progressCallbacks(session, audit.StatementLevels)
	ectx, err := s.evalContext(balance, nil, req.Period, models.PhaseStatement)
	if err != nil {
		s.markError(session, cb)
		return nil, err
	}
	logger.L.Info("Statement audit started", "sessionID", session.ID, "period", req.Period)
	session.Results = audit.RunPhase(ctx, s.registry, audit.StatementLevels, ectx, cb)
	if err := s.finish(ctx, session, cb); err != nil {
		s.markError(session, cb)
		return nil, err
	}
	return session, nil
}

func (s *auditService) ReimportAndCompare(ctx context.Context, req ReimportRequest) (*models.AuditSession, *models.CorrectionReport, error) {
	if len(req.Balance) == 0 {
		return nil, nil, ErrEmptyBalance
	}
	before, err := s.store.GetSession(req.PriorSessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	balance := sanitizeLines(req.Balance)
	after, err := s.runIntake(ctx, before.Period, balance, nil, models.PhaseComparison)
	if err != nil {
		return nil, nil, err
	}

	report := audit.Diff(before, after)
	report.ID = newReportID()

	// Line-by-line movements need the original snapshot; a missing one
	// degrades the report to control evolutions only.
	if beforeSnap, err := s.store.GetSnapshot(before.SubjectID); err == nil {
		report.ChangedAccounts = audit.DiffBalances(beforeSnap.Lines, balance)
	} else {
		logger.L.Warn("Snapshot of the compared session unavailable", "sessionID", before.ID, "error", err)
	}

	if err := s.store.SaveReport(report); err != nil {
		return nil, nil, err
	}
	logger.L.Info("Correction report generated", "reportID", report.ID,
		"before", before.ID, "after", after.ID,
		"scoreBefore", report.Summary.ScoreBefore, "scoreAfter", report.Summary.ScoreAfter)
	return after, report, nil
}

func (s *auditService) GetSession(id string) (*models.AuditSession, error) {
	session, err := s.store.GetSession(id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	return session, err
}

func (s *auditService) ListSessions(limit int) ([]models.AuditSession, error) {
	return s.store.ListSessions(limit)
}

func (s *auditService) ArchiveSession(id string) (*models.ArchiveRecord, error) {
	session, err := s.GetSession(id)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionDone {
		return nil, fmt.Errorf("session %s is %s; only finished sessions can be archived", id, session.Status)
	}
	snapshot, err := s.store.GetSnapshot(session.SubjectID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("snapshot %s of session %s is gone", session.SubjectID, id)
	}
	if err != nil {
		return nil, err
	}
	rec, err := audit.Seal(*session, *snapshot)
	if err != nil {
		return nil, fmt.Errorf("sealing session %s: %w", id, err)
	}
	rec.ArchivedAt = time.Now().UTC()
	if err := s.store.SaveArchive(rec); err != nil {
		return nil, err
	}
	logger.L.Info("Session archived", "sessionID", id, "period", rec.Period, "hash", rec.Hash)
	return rec, nil
}

func (s *auditService) ListArchives() ([]models.ArchiveRecord, error) {
	return s.store.ListArchives()
}

func (s *auditService) VerifyArchive(period string) (*VerifyResult, error) {
	rec, err := s.store.GetArchive(period)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrArchiveNotFound
	}
	if err != nil {
		return nil, err
	}
	valid, err := audit.VerifyRecord(rec)
	if err != nil {
		return nil, fmt.Errorf("verifying archive %s: %w", period, err)
	}
	if !valid {
		logger.L.Warn("Archive integrity check failed", "period", period, "storedHash", rec.Hash)
	}
	return &VerifyResult{Period: period, Valid: valid, StoredHash: rec.Hash}, nil
}

func (s *auditService) GetReport(id string) (*models.CorrectionReport, error) {
	report, err := s.store.GetReport(id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrReportNotFound
	}
	return report, err
}

func (s *auditService) ControlCatalog() []models.ControlDefinition {
	return s.registry.Definitions()
}

func (s *auditService) SetControlActive(ref string, active bool) bool {
	ok := s.registry.SetActive(ref, active)
	if ok {
		logger.L.Info("Control toggled", "ref", ref, "active", active)
	}
	return ok
}
