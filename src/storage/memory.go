// backend/src/storage/memory.go
package storage

import (
	"sort"
	"sync"

	"github.com/username/fiscasync/backend/src/models"
)

// MemoryStore is the in-process Store used by tests. Same semantics as the
// SQLite store: last-writer-wins, archives replaced per period, bounded
// session retention.
type MemoryStore struct {
	mu        sync.RWMutex
	sessions  map[string]models.AuditSession
	snapshots map[string]models.BalanceSnapshot
	archives  map[string]models.ArchiveRecord
	reports   map[string]models.CorrectionReport
	retention int
}

// NewMemoryStore returns an empty store keeping at most retention sessions
// (0 disables pruning).
func NewMemoryStore(retention int) *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]models.AuditSession),
		snapshots: make(map[string]models.BalanceSnapshot),
		archives:  make(map[string]models.ArchiveRecord),
		reports:   make(map[string]models.CorrectionReport),
		retention: retention,
	}
}

func (s *MemoryStore) SaveSession(session *models.AuditSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	if s.retention > 0 && len(s.sessions) > s.retention {
		ordered := s.sessionsByStartDesc()
		for _, old := range ordered[s.retention:] {
			delete(s.sessions, old.ID)
		}
	}
	return nil
}

func (s *MemoryStore) sessionsByStartDesc() []models.AuditSession {
	out := make([]models.AuditSession, 0, len(s.sessions))
	for _, v := range s.sessions {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

func (s *MemoryStore) GetSession(id string) (*models.AuditSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &session, nil
}

func (s *MemoryStore) ListSessions(limit int) ([]models.AuditSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.sessionsByStartDesc()
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) SaveSnapshot(snapshot *models.BalanceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snapshot.ID] = *snapshot
	return nil
}

func (s *MemoryStore) GetSnapshot(id string) (*models.BalanceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot, ok := s.snapshots[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &snapshot, nil
}

func (s *MemoryStore) SaveArchive(rec *models.ArchiveRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.archives[rec.Period] = *rec
	return nil
}

func (s *MemoryStore) GetArchive(period string) (*models.ArchiveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.archives[period]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *MemoryStore) ListArchives() ([]models.ArchiveRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.ArchiveRecord, 0, len(s.archives))
	for _, rec := range s.archives {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

func (s *MemoryStore) SaveReport(report *models.CorrectionReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = *report
	return nil
}

func (s *MemoryStore) GetReport(id string) (*models.CorrectionReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &report, nil
}

func (s *MemoryStore) Close() error { return nil }
