package stats

import (
	"context"
	"sync"
	"time"

	"aegis/internal/abuse/models"
)

// InMemoryStatsStore keeps per-identity attack counters in process memory.
// Increments happen under the store lock, so concurrent requests from the
// same identity never lose updates.
type InMemoryStatsStore struct {
	mu      sync.RWMutex
	records map[string]*models.AttackStats // keyed by identity ID
}

func New() *InMemoryStatsStore {
	return &InMemoryStatsStore{
		records: make(map[string]*models.AttackStats),
	}
}

// Increment bumps the counter matching kind, creating the row lazily with
// the default window. It returns a snapshot of the refreshed counters.
func (s *InMemoryStatsStore) Increment(_ context.Context, identityID string, kind models.ActionKind) (*models.AttackStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[identityID]
	if !exists {
		created, err := models.NewAttackStats(identityID)
		if err != nil {
			return nil, err
		}
		record = created
		s.records[identityID] = record
	}

	switch kind {
	case models.ActionSession:
		record.SessionEvents++
	case models.ActionConversation:
		record.ConversationEvents++
	}
	record.UpdatedAt = time.Now()

	snapshot := *record
	return &snapshot, nil
}

// Get returns a snapshot of the identity's counters, or nil if the
// identity was never tracked.
func (s *InMemoryStatsStore) Get(_ context.Context, identityID string) (*models.AttackStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.records[identityID]
	if !exists {
		return nil, nil
	}
	snapshot := *record
	return &snapshot, nil
}

// Flag marks the identity as having crossed the thresholds. Idempotent;
// flagging an untracked identity is a no-op.
func (s *InMemoryStatsStore) Flag(_ context.Context, identityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, exists := s.records[identityID]; exists {
		record.Flagged = true
	}
	return nil
}

// SetWindow updates the identity's window length, creating the row if
// needed so the tunable survives the next counter reset.
func (s *InMemoryStatsStore) SetWindow(_ context.Context, identityID string, minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.records[identityID]
	if !exists {
		created, err := models.NewAttackStats(identityID)
		if err != nil {
			return err
		}
		record = created
		s.records[identityID] = record
	}
	record.WindowMinutes = minutes
	return nil
}

// ResetAll zeroes every identity's counters and clears the flagged bit
// without deleting rows. Returns the number of rows touched.
func (s *InMemoryStatsStore) ResetAll(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.records {
		record.SessionEvents = 0
		record.ConversationEvents = 0
		record.Flagged = false
	}
	return len(s.records), nil
}
