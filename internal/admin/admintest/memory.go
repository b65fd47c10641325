// Package admintest provides an in-memory admin.Repository for tests.
package admintest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/admin"
	"github.com/imadgeboyega/matchmaking-backend/internal/block/blocktest"
	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
	"github.com/imadgeboyega/matchmaking-backend/internal/users/userstest"
)

// Memory reads aggregates from Users and drops removed users' reports from Reports,
// the way the database foreign keys do.
type Memory struct {
	Users   *userstest.Memory
	Reports *blocktest.Reports

	mu       sync.Mutex
	admins   []admin.Admin
	removals []admin.Removal
	nextID   int64
	now      func() time.Time
	failures []error
}

func NewMemory(userRepo *userstest.Memory, reports *blocktest.Reports) *Memory {
	return &Memory{Users: userRepo, Reports: reports, nextID: 1, now: time.Now}
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

// Removals returns the recorded removals in insertion order.
func (m *Memory) Removals() []admin.Removal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]admin.Removal(nil), m.removals...)
}

func (m *Memory) GetByEmail(ctx context.Context, email string) (*admin.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	for _, a := range m.admins {
		if a.Email == strings.ToLower(email) {
			out := a
			return &out, nil
		}
	}
	return nil, fmt.Errorf("admin %s: %w", email, errs.ErrNotFound)
}

func (m *Memory) Create(ctx context.Context, a *admin.Admin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	a.ID = m.nextID
	m.nextID++
	a.Email = strings.ToLower(a.Email)
	a.CreatedAt = m.now()
	m.admins = append(m.admins, *a)
	return nil
}

func (m *Memory) everyone(ctx context.Context) ([]users.User, error) {
	return m.Users.Search(ctx, users.SearchFilter{})
}

func (m *Memory) GenderCounts(ctx context.Context) (int64, map[string]int64, error) {
	m.mu.Lock()
	err := m.begin()
	m.mu.Unlock()
	if err != nil {
		return 0, nil, err
	}

	all, err := m.everyone(ctx)
	if err != nil {
		return 0, nil, err
	}
	counts := make(map[string]int64)
	for _, u := range all {
		if u.Gender != nil && *u.Gender != "" {
			counts[*u.Gender]++
		}
	}
	return int64(len(all)), counts, nil
}

func (m *Memory) BlockCounts(ctx context.Context) ([]admin.BlockCount, error) {
	m.mu.Lock()
	err := m.begin()
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	all, err := m.everyone(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]users.User, len(all))
	counts := make(map[int64]int64)
	for _, u := range all {
		byID[u.ID] = u
		for _, b := range u.BlockedUsers {
			counts[b]++
		}
	}

	out := []admin.BlockCount{}
	for id, n := range counts {
		u, ok := byID[id]
		if !ok {
			continue
		}
		out = append(out, admin.BlockCount{
			BlockedUser: admin.UserCard{ID: u.ID, Name: u.Name, DpImage: u.DpImage},
			Count:       n,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].BlockedUser.ID < out[j].BlockedUser.ID
	})
	return out, nil
}

func (m *Memory) RemoveUser(ctx context.Context, rm *admin.Removal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	if err := m.Users.Delete(ctx, rm.UserID); err != nil {
		return err
	}
	if m.Reports != nil {
		m.Reports.Forget(rm.UserID)
	}

	rm.ID = m.nextID
	m.nextID++
	rm.DeletedAt = m.now()
	m.removals = append(m.removals, *rm)
	return nil
}

func (m *Memory) History(ctx context.Context) ([]admin.Removal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	out := make([]admin.Removal, 0, len(m.removals))
	for i := len(m.removals) - 1; i >= 0; i-- {
		rm := m.removals[i]
		if rm.DeletedBy != nil {
			for _, a := range m.admins {
				if a.ID == *rm.DeletedBy {
					email := a.Email
					rm.DeletedByEmail = &email
				}
			}
		}
		out = append(out, rm)
	}
	return out, nil
}

var _ admin.Repository = (*Memory)(nil)
