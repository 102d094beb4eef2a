// backend/src/storage/sqlite.go
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/username/fiscasync/backend/src/logger"
	"github.com/username/fiscasync/backend/src/models"
)

const (
	sessionCacheExpiration = 15 * time.Minute
	cacheCleanupInterval   = 30 * time.Minute
)

// SQLiteStore persists the audit domain as JSON payload rows in SQLite.
// Sessions and reports are fronted by an in-process cache since the UI polls
// them while a run is in flight.
type SQLiteStore struct {
	db        *sql.DB
	cache     *cache.Cache
	retention int // most-recent sessions kept; 0 disables pruning
}

// NewSQLiteStore wraps an open database handle. retention bounds the session
// history; every session write prunes the oldest rows beyond it.
func NewSQLiteStore(db *sql.DB, retention int) *SQLiteStore {
	return &SQLiteStore{
		db:        db,
		cache:     cache.New(sessionCacheExpiration, cacheCleanupInterval),
		retention: retention,
	}
}

func sessionKey(id string) string { return "session:" + id }
func reportKey(id string) string  { return "report:" + id }

// cloneSession copies the fields the orchestrator mutates while a run is in
// flight. Cached entries must only ever reflect persisted state; handing out
// the caller's pointer would expose unsaved mutations to pollers.
func cloneSession(session *models.AuditSession) *models.AuditSession {
	out := *session
	out.Results = append([]models.ControlResult(nil), session.Results...)
	if session.FinishedAt != nil {
		finished := *session.FinishedAt
		out.FinishedAt = &finished
	}
	return &out
}

func cloneReport(report *models.CorrectionReport) *models.CorrectionReport {
	out := *report
	out.Corrections = append([]models.CorrectionItem(nil), report.Corrections...)
	out.ChangedAccounts = append([]models.AccountDelta(nil), report.ChangedAccounts...)
	return &out
}

func (s *SQLiteStore) SaveSession(session *models.AuditSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshaling session %s: %w", session.ID, err)
	}
	_, err = s.db.Exec(`INSERT INTO audit_sessions (id, period, phase, status, started_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET period=excluded.period, phase=excluded.phase,
			status=excluded.status, started_at=excluded.started_at, payload=excluded.payload`,
		session.ID, session.Period, string(session.Phase), string(session.Status),
		session.StartedAt.UTC().Format(time.RFC3339Nano), string(payload))
	if err != nil {
		return fmt.Errorf("saving session %s: %w", session.ID, err)
	}
	s.cache.Set(sessionKey(session.ID), cloneSession(session), sessionCacheExpiration)
	s.pruneSessions()
	return nil
}

// pruneSessions enforces the retention bound. Pruning failure is logged, not
// returned: losing an old session is preferable to failing the current write.
func (s *SQLiteStore) pruneSessions() {
	if s.retention <= 0 {
		return
	}
	_, err := s.db.Exec(`DELETE FROM audit_sessions WHERE id NOT IN (
		SELECT id FROM audit_sessions ORDER BY started_at DESC LIMIT ?)`, s.retention)
	if err != nil {
		logger.L.Warn("Session retention pruning failed", "error", err)
	}
}

func (s *SQLiteStore) GetSession(id string) (*models.AuditSession, error) {
	if v, found := s.cache.Get(sessionKey(id)); found {
		if session, ok := v.(*models.AuditSession); ok {
			return cloneSession(session), nil
		}
	}
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM audit_sessions WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session %s: %w", id, err)
	}
	var session models.AuditSession
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return nil, fmt.Errorf("decoding session %s: %w", id, err)
	}
	s.cache.Set(sessionKey(id), cloneSession(&session), sessionCacheExpiration)
	return &session, nil
}

func (s *SQLiteStore) ListSessions(limit int) ([]models.AuditSession, error) {
	query := `SELECT payload FROM audit_sessions ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var out []models.AuditSession
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var session models.AuditSession
		if err := json.Unmarshal([]byte(payload), &session); err != nil {
			return nil, fmt.Errorf("decoding session row: %w", err)
		}
		out = append(out, session)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveSnapshot(snapshot *models.BalanceSnapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshaling snapshot %s: %w", snapshot.ID, err)
	}
	_, err = s.db.Exec(`INSERT INTO balance_snapshots (id, period, taken_at, hash, payload)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET period=excluded.period, taken_at=excluded.taken_at,
			hash=excluded.hash, payload=excluded.payload`,
		snapshot.ID, snapshot.Period, snapshot.TakenAt.UTC().Format(time.RFC3339Nano),
		snapshot.Hash, string(payload))
	if err != nil {
		return fmt.Errorf("saving snapshot %s: %w", snapshot.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetSnapshot(id string) (*models.BalanceSnapshot, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM balance_snapshots WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot %s: %w", id, err)
	}
	var snapshot models.BalanceSnapshot
	if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", id, err)
	}
	return &snapshot, nil
}

func (s *SQLiteStore) SaveArchive(rec *models.ArchiveRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling archive %s: %w", rec.Period, err)
	}
	_, err = s.db.Exec(`INSERT INTO audit_archives (period, archived_at, hash, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(period) DO UPDATE SET archived_at=excluded.archived_at,
			hash=excluded.hash, payload=excluded.payload`,
		rec.Period, rec.ArchivedAt.UTC().Format(time.RFC3339Nano), rec.Hash, string(payload))
	if err != nil {
		return fmt.Errorf("saving archive %s: %w", rec.Period, err)
	}
	return nil
}

func (s *SQLiteStore) GetArchive(period string) (*models.ArchiveRecord, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM audit_archives WHERE period = ?`, period).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading archive %s: %w", period, err)
	}
	var rec models.ArchiveRecord
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("decoding archive %s: %w", period, err)
	}
	return &rec, nil
}

func (s *SQLiteStore) ListArchives() ([]models.ArchiveRecord, error) {
	rows, err := s.db.Query(`SELECT payload FROM audit_archives ORDER BY period ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing archives: %w", err)
	}
	defer rows.Close()

	var out []models.ArchiveRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var rec models.ArchiveRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("decoding archive row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SaveReport(report *models.CorrectionReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report %s: %w", report.ID, err)
	}
	_, err = s.db.Exec(`INSERT INTO correction_reports (id, generated_at, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET generated_at=excluded.generated_at, payload=excluded.payload`,
		report.ID, report.GeneratedAt.UTC().Format(time.RFC3339Nano), string(payload))
	if err != nil {
		return fmt.Errorf("saving report %s: %w", report.ID, err)
	}
	s.cache.Set(reportKey(report.ID), cloneReport(report), sessionCacheExpiration)
	return nil
}

func (s *SQLiteStore) GetReport(id string) (*models.CorrectionReport, error) {
	if v, found := s.cache.Get(reportKey(id)); found {
		if report, ok := v.(*models.CorrectionReport); ok {
			return cloneReport(report), nil
		}
	}
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM correction_reports WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading report %s: %w", id, err)
	}
	var report models.CorrectionReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("decoding report %s: %w", id, err)
	}
	s.cache.Set(reportKey(id), cloneReport(&report), sessionCacheExpiration)
	return &report, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
