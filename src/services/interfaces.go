// backend/src/services/interfaces.go
package services

import (
	"context"
	"errors"

	"github.com/username/fiscasync/backend/src/models"
)

// IntakeRequest starts a full intake audit on a freshly imported balance.
type IntakeRequest struct {
	Period       string               `json:"period"`
	Balance      []models.BalanceLine `json:"balance"`
	PriorBalance []models.BalanceLine `json:"priorBalance,omitempty"`
}

// StatementRequest runs the statement-phase controls. When SessionID names an
// existing intake session its results are extended in place; otherwise a new
// statement session is created.
type StatementRequest struct {
	Period    string               `json:"period"`
	Balance   []models.BalanceLine `json:"balance"`
	SessionID string               `json:"sessionId,omitempty"`
}

// ReimportRequest re-audits a corrected balance and compares the outcome with
// an earlier session over the same subject.
type ReimportRequest struct {
	Balance        []models.BalanceLine `json:"balance"`
	PriorSessionID string               `json:"priorSessionId"`
}

// VerifyResult is the outcome of an archive integrity check.
type VerifyResult struct {
	Period     string `json:"period"`
	Valid      bool   `json:"valid"`
	StoredHash string `json:"stored_hash"`
}

// Common service errors, translated to HTTP statuses by the handlers.
var (
	ErrSessionNotFound = errors.New("audit session not found")
	ErrArchiveNotFound = errors.New("archive not found")
	ErrReportNotFound  = errors.New("correction report not found")
	ErrEmptyBalance    = errors.New("balance contains no lines")
	ErrMissingPeriod   = errors.New("period is required")
)

// AuditService is the orchestrator behind the HTTP API: it owns session
// lifecycle, snapshotting, phase driving, archiving and comparison.
type AuditService interface {
	StartIntakeAudit(ctx context.Context, req IntakeRequest) (*models.AuditSession, error)
	RunStatementAudit(ctx context.Context, req StatementRequest) (*models.AuditSession, error)
	ReimportAndCompare(ctx context.Context, req ReimportRequest) (*models.AuditSession, *models.CorrectionReport, error)

	GetSession(id string) (*models.AuditSession, error)
	ListSessions(limit int) ([]models.AuditSession, error)

	ArchiveSession(id string) (*models.ArchiveRecord, error)
	ListArchives() ([]models.ArchiveRecord, error)
	VerifyArchive(period string) (*VerifyResult, error)

	GetReport(id string) (*models.CorrectionReport, error)

	ControlCatalog() []models.ControlDefinition
	SetControlActive(ref string, active bool) bool
}
