// Package identity persists accounts.
package identity

import (
	"context"
	"sync"

	"aegis/internal/identity/models"
	dErrors "aegis/pkg/domain-errors"
)

// InMemoryIdentityStore keeps accounts in process memory, indexed by ID
// and by username.
type InMemoryIdentityStore struct {
	mu         sync.RWMutex
	byID       map[string]*models.Identity
	byUsername map[string]*models.Identity
}

func New() *InMemoryIdentityStore {
	return &InMemoryIdentityStore{
		byID:       make(map[string]*models.Identity),
		byUsername: make(map[string]*models.Identity),
	}
}

func (s *InMemoryIdentityStore) Create(ctx context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[identity.Username]; exists {
		return dErrors.New(dErrors.CodeConflict, "username is already taken")
	}

	stored := *identity
	s.byID[stored.ID] = &stored
	s.byUsername[stored.Username] = &stored
	return nil
}

func (s *InMemoryIdentityStore) GetByUsername(ctx context.Context, username string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.byUsername[username]
	if !ok {
		return nil, nil
	}
	snapshot := *identity
	return &snapshot, nil
}

func (s *InMemoryIdentityStore) GetByID(ctx context.Context, identityID string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	identity, ok := s.byID[identityID]
	if !ok {
		return nil, nil
	}
	snapshot := *identity
	return &snapshot, nil
}

func (s *InMemoryIdentityStore) Exists(ctx context.Context, identityID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byID[identityID]
	return ok, nil
}
