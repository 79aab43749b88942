// Package session persists login sessions.
package session

import (
	"context"
	"sync"

	"aegis/internal/identity/models"
)

// InMemorySessionStore keeps sessions in process memory. Invalidation is
// logical so a revoked session ID keeps failing validation rather than
// looking unknown.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session // keyed by session ID
}

func New() *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[string]*models.Session),
	}
}

func (s *InMemorySessionStore) Create(ctx context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *session
	s.sessions[stored.ID] = &stored
	return nil
}

func (s *InMemorySessionStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	snapshot := *session
	return &snapshot, nil
}

// Invalidate deactivates a single session. Unknown IDs are a no-op.
func (s *InMemorySessionStore) Invalidate(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[sessionID]; ok {
		session.Active = false
	}
	return nil
}

// InvalidateAll deactivates every session the identity holds. Returns how
// many sessions were live.
func (s *InMemorySessionStore) InvalidateAll(ctx context.Context, identityID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	invalidated := 0
	for _, session := range s.sessions {
		if session.IdentityID == identityID && session.Active {
			session.Active = false
			invalidated++
		}
	}
	return invalidated, nil
}
