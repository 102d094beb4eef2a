// backend/src/audit/integrity.go
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"
	"github.com/username/fiscasync/backend/src/models"
)

// Digest returns the sha256 digest of the RFC 8785 canonical JSON form of v.
// Canonicalization fixes field order so verification is reproducible across
// implementations.
func Digest(v any) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("serializing payload: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalizing payload: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}

// HashLines digests the balance lines of a snapshot.
func HashLines(lines []models.BalanceLine) (string, error) {
	return Digest(lines)
}

type archivePayload struct {
	Session  models.AuditSession    `json:"session"`
	Snapshot models.BalanceSnapshot `json:"snapshot"`
}

// Seal builds an archive record for a session and its input snapshot, hashed
// over the canonical serialization of the pair.
func Seal(session models.AuditSession, snapshot models.BalanceSnapshot) (*models.ArchiveRecord, error) {
	hash, err := Digest(archivePayload{Session: session, Snapshot: snapshot})
	if err != nil {
		return nil, err
	}
	return &models.ArchiveRecord{
		Period:   session.Period,
		Session:  session,
		Snapshot: snapshot,
		Hash:     hash,
	}, nil
}

// VerifyRecord recomputes the digest over the stored payload, excluding the
// hash field itself, and compares it to the stored hash. A mismatch is an
// expected, reportable outcome (tampering or corruption), never an error;
// the error return is reserved for payloads that cannot be serialized.
func VerifyRecord(rec *models.ArchiveRecord) (bool, error) {
	hash, err := Digest(archivePayload{Session: rec.Session, Snapshot: rec.Snapshot})
	if err != nil {
		return false, err
	}
	return hash == rec.Hash, nil
}
