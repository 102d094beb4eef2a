// backend/src/storage/store.go
//
// Persistence contract for audit sessions, snapshots, archives and correction
// reports. The service layer only depends on this interface; the SQLite
// implementation backs the server and the in-memory one backs tests.
package storage

import (
	"errors"

	"github.com/username/fiscasync/backend/src/models"
)

// ErrNotFound is returned when no row exists for the requested key.
var ErrNotFound = errors.New("storage: not found")

// Store persists the audit domain. Writes are last-writer-wins per key;
// archives are keyed by period, everything else by id.
type Store interface {
	SaveSession(session *models.AuditSession) error
	GetSession(id string) (*models.AuditSession, error)
	// ListSessions returns sessions ordered by start time descending,
	// at most limit entries (0 means no limit).
	ListSessions(limit int) ([]models.AuditSession, error)

	SaveSnapshot(snapshot *models.BalanceSnapshot) error
	GetSnapshot(id string) (*models.BalanceSnapshot, error)

	// SaveArchive stores the record for its period, replacing any
	// previous archive of the same period.
	SaveArchive(rec *models.ArchiveRecord) error
	GetArchive(period string) (*models.ArchiveRecord, error)
	// ListArchives returns all archives ordered by period ascending.
	ListArchives() ([]models.ArchiveRecord, error)

	SaveReport(report *models.CorrectionReport) error
	GetReport(id string) (*models.CorrectionReport, error)

	Close() error
}
