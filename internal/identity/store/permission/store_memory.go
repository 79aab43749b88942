// Package permission persists the per-identity access permission
// projection. The ban registry is the sole writer: imposing a ban clears
// the permission, lifting one restores it.
package permission

import (
	"context"
	"sync"
)

// Permission values. A banned identity's row holds no permission at all
// rather than a denied one, so readers treat nil as "no access".
const Granted = 1

// InMemoryPermissionStore keeps permission rows in process memory.
type InMemoryPermissionStore struct {
	mu    sync.RWMutex
	perms map[string]*int // keyed by identity ID, nil value means blocked
}

func New() *InMemoryPermissionStore {
	return &InMemoryPermissionStore{
		perms: make(map[string]*int),
	}
}

// Block clears the identity's permission. Idempotent.
func (s *InMemoryPermissionStore) Block(ctx context.Context, identityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.perms[identityID] = nil
	return nil
}

// Restore grants the identity's permission back. Idempotent.
func (s *InMemoryPermissionStore) Restore(ctx context.Context, identityID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	granted := Granted
	s.perms[identityID] = &granted
	return nil
}

// Get returns the identity's permission value, or nil when blocked or
// never written.
func (s *InMemoryPermissionStore) Get(ctx context.Context, identityID string) (*int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.perms[identityID]
	if !ok || value == nil {
		return nil, nil
	}
	snapshot := *value
	return &snapshot, nil
}
