// Package authtest provides an in-memory session store for handler tests.
package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/auth"
)

type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]auth.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]auth.Session)}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*auth.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	return &s, nil
}

func (m *MemoryStore) Save(ctx context.Context, s *auth.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = *s
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

// Sessions wires a session manager to a fresh MemoryStore.
func Sessions() (*auth.Sessions, *MemoryStore) {
	store := NewMemoryStore()
	return auth.NewSessions(store, auth.SessionConfig{Secret: "test-secret", CookieName: "connect.sid", MaxAge: time.Hour}), store
}

var _ auth.Store = (*MemoryStore)(nil)
