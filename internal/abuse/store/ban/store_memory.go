package ban

import (
	"context"
	"sort"
	"sync"
	"time"

	"aegis/internal/abuse/models"
)

// InMemoryBanStore keeps one ban record per identity in process memory.
// Re-imposition overwrites the identity's record in place, so at most one
// active record per identity can ever exist.
type InMemoryBanStore struct {
	mu      sync.RWMutex
	records map[string]*models.BanRecord // keyed by identity ID
}

func New() *InMemoryBanStore {
	return &InMemoryBanStore{
		records: make(map[string]*models.BanRecord),
	}
}

// GetActive returns a snapshot of the identity's active ban, or nil when
// the identity has no active record.
func (s *InMemoryBanStore) GetActive(_ context.Context, identityID string) (*models.BanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[identityID]
	if !exists || !record.Active {
		return nil, nil
	}
	snapshot := *record
	return &snapshot, nil
}

// Upsert replaces the identity's ban record. Prior state for the identity,
// active or not, is overwritten; last write wins.
func (s *InMemoryBanStore) Upsert(_ context.Context, record *models.BanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := *record
	s.records[record.IdentityID] = &snapshot
	return nil
}

// Deactivate clears the active bit on the identity's record. It reports
// whether any record was actually deactivated, and is safe to call
// concurrently with lookups racing the same expiry.
func (s *InMemoryBanStore) Deactivate(_ context.Context, identityID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[identityID]
	if !exists || !record.Active {
		return false, nil
	}
	record.Active = false
	return true, nil
}

// ListActive returns all active records, most recently imposed first.
func (s *InMemoryBanStore) ListActive(_ context.Context) ([]*models.BanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.BanRecord
	for _, record := range s.records {
		if record.Active {
			snapshot := *record
			result = append(result, &snapshot)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ImposedAt.After(result[j].ImposedAt)
	})
	return result, nil
}

// ListExpired returns active records whose expiry has passed by now.
// Permanent bans are never returned.
func (s *InMemoryBanStore) ListExpired(_ context.Context, now time.Time) ([]*models.BanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*models.BanRecord
	for _, record := range s.records {
		if record.Active && record.ExpiresAt != nil && !record.ExpiresAt.After(now) {
			snapshot := *record
			result = append(result, &snapshot)
		}
	}
	return result, nil
}
