// Package supporttest provides an in-memory support.Repository for tests.
package supporttest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/support"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
)

// Memory joins user names from Users when set.
type Memory struct {
	Users users.Repository

	mu       sync.Mutex
	requests []support.Request
	nextID   int64
	failures []error
}

func NewMemory(userRepo users.Repository) *Memory {
	return &Memory{Users: userRepo, nextID: 1}
}

// FailNext makes the next len(errs) calls return these errors in order.
func (m *Memory) FailNext(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, errs...)
}

func (m *Memory) begin() error {
	if len(m.failures) > 0 {
		err := m.failures[0]
		m.failures = m.failures[1:]
		return err
	}
	return nil
}

// All returns the stored requests in insertion order.
func (m *Memory) All() []support.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]support.Request(nil), m.requests...)
}

// Orphan clears the user id on every request of a deleted user.
func (m *Memory) Orphan(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.requests {
		if m.requests[i].UserID != nil && *m.requests[i].UserID == userID {
			m.requests[i].UserID = nil
		}
	}
}

func (m *Memory) Create(ctx context.Context, req *support.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	now := time.Now().UTC()
	req.ID = m.nextID
	m.nextID++
	req.CreatedAt, req.UpdatedAt = now, now
	m.requests = append(m.requests, *req)
	return nil
}

func (m *Memory) GetByID(ctx context.Context, id int64) (*support.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	for _, r := range m.requests {
		if r.ID == id {
			out := m.join(ctx, r)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("support request %d: %w", id, errs.ErrNotFound)
}

func (m *Memory) List(ctx context.Context) ([]support.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	out := make([]support.Request, 0, len(m.requests))
	for _, r := range m.requests {
		out = append(out, m.join(ctx, r))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *Memory) MarkSupported(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	for i := range m.requests {
		if m.requests[i].ID == id {
			m.requests[i].Supported = true
			m.requests[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return fmt.Errorf("support request %d: %w", id, errs.ErrNotFound)
}

func (m *Memory) join(ctx context.Context, r support.Request) support.Request {
	if m.Users == nil || r.UserID == nil {
		return r
	}
	if u, err := m.Users.GetByID(ctx, *r.UserID); err == nil {
		r.UserName, r.UserMobile = &u.Name, &u.Mobile
	}
	return r
}

var _ support.Repository = (*Memory)(nil)
