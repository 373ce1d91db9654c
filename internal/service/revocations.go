package service

import (
	"context"
	"sync"
	"time"
)

// MemoryRevocations is an in-process RevocationStore.
type MemoryRevocations struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // token id -> expiry
}

func NewMemoryRevocations() *MemoryRevocations {
	return &MemoryRevocations{revoked: make(map[string]time.Time)}
}

func (m *MemoryRevocations) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = expiresAt
	return nil
}

func (m *MemoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.revoked[tokenID]
	return ok, nil
}

// Prune forgets tokens that expired before now.
func (m *MemoryRevocations) Prune(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	pruned := 0
	for id, exp := range m.revoked {
		if !exp.After(now) {
			delete(m.revoked, id)
			pruned++
		}
	}
	return pruned
}
