// backend/src/models/archive.go
package models

import "time"

// BalanceSnapshot is an immutable, hashed copy of the balance lines a session
// was evaluated against, so later verification and comparison do not depend on
// the caller re-supplying identical data.
type BalanceSnapshot struct {
	ID          string        `json:"id"`
	Period      string        `json:"period"`
	TakenAt     time.Time     `json:"taken_at"`
	Lines       []BalanceLine `json:"lines"`
	TotalDebit  float64       `json:"total_debit"`
	TotalCredit float64       `json:"total_credit"`
	Hash        string        `json:"hash"` // sha256 of the canonical line serialization
}

// ArchiveRecord seals a finished session together with its input snapshot.
// Hash is computed over the canonical serialization of (session, snapshot);
// recomputing it over the stored payload must reproduce the stored value, and
// any mismatch signals tampering or corruption. At most one archive exists per
// period; archiving the same period again replaces the previous record.
type ArchiveRecord struct {
	Period     string          `json:"period"`
	ArchivedAt time.Time       `json:"archived_at"`
	Session    AuditSession    `json:"session"`
	Snapshot   BalanceSnapshot `json:"snapshot"`
	Hash       string          `json:"hash"`
}
