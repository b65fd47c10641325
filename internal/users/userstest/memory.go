// Package userstest provides an in-memory users.Repository for tests.
package userstest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/users"
	"github.com/lib/pq"
)

// Memory is a goroutine-safe users.Repository backed by a map.
type Memory struct {
	mu     sync.Mutex
	users  map[int64]*users.User
	nextID int64

	// failures queued by FailNext, consumed one per call
	failures []error
	Calls    int
}

func NewMemory() *Memory {
	return &Memory{users: make(map[int64]*users.User), nextID: 1}
}

// Add stores a user with the given id and name and returns it.
func (m *Memory) Add(id int64, name string) *users.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &users.User{
		ID:                 id,
		Name:               name,
		Email:              strings.ToLower(name) + "@example.com",
		Mobile:             "+2348000000000",
		EmailNotifications: true,
		SMSNotifications:   true,
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
	}
	m.users[id] = u
	if id >= m.nextID {
		m.nextID = id + 1
	}
	return clone(u)
}

// Put replaces a stored user wholesale.
func (m *Memory) Put(u *users.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = clone(u)
}

// Get returns a copy of the stored user or nil.
func (m *Memory) Get(id int64) *users.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return clone(u)
	}
	return nil
}

// FailNext makes the next len(errs) repository calls return these errors in order.
func (m *Memory) FailNext(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, errs...)
}

func (m *Memory) begin() error {
	m.Calls++
	if len(m.failures) > 0 {
		err := m.failures[0]
		m.failures = m.failures[1:]
		return err
	}
	return nil
}

func clone(u *users.User) *users.User {
	c := *u
	c.SentInterests = append(pq.Int64Array{}, u.SentInterests...)
	c.ReceivedInterests = append(pq.Int64Array{}, u.ReceivedInterests...)
	c.AcceptedInterests = append(pq.Int64Array{}, u.AcceptedInterests...)
	c.BlockedUsers = append(pq.Int64Array{}, u.BlockedUsers...)
	return &c
}

func notFound(id int64) error {
	return fmt.Errorf("user %d: %w", id, errs.ErrNotFound)
}

func (m *Memory) Create(ctx context.Context, u *users.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return errs.Conflict("User with this email already exists.")
		}
	}
	u.ID = m.nextID
	m.nextID++
	u.EmailNotifications = true
	u.SMSNotifications = true
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = clone(u)
	return nil
}

func (m *Memory) GetByID(ctx context.Context, id int64) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, notFound(id)
	}
	return clone(u), nil
}

func (m *Memory) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	for _, u := range m.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", email, errs.ErrNotFound)
}

func (m *Memory) GetSummaries(ctx context.Context, ids []int64) ([]users.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	out := []users.Summary{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out = append(out, users.Summary{ID: u.ID, Name: u.Name, DpImage: u.DpImage, Gender: u.Gender, DateOfBirth: u.DateOfBirth})
		}
	}
	return out, nil
}

// Search honours ExcludeID, Name (case-insensitive substring), Country, Genders,
// Orientations and the height, weight and birth date ranges.
func (m *Memory) Search(ctx context.Context, f users.SearchFilter) ([]users.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	var out []users.User
	for _, u := range m.users {
		if u.ID == f.ExcludeID {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(f.Name)) {
			continue
		}
		if len(f.Genders) > 0 && (u.Gender == nil || !containsString(f.Genders, *u.Gender)) {
			continue
		}
		if len(f.Orientations) > 0 && (u.Orientation == nil || !containsString(f.Orientations, *u.Orientation)) {
			continue
		}
		if f.Country != "" && (u.Country == nil || *u.Country != f.Country) {
			continue
		}
		if !inRange(u.Height, f.HeightMin, f.HeightMax) || !inRange(u.Weight, f.WeightMin, f.WeightMax) {
			continue
		}
		if f.BornAfter != nil && (u.DateOfBirth == nil || u.DateOfBirth.Before(*f.BornAfter)) {
			continue
		}
		if f.BornBefore != nil && (u.DateOfBirth == nil || u.DateOfBirth.After(*f.BornBefore)) {
			continue
		}
		out = append(out, *clone(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func inRange(v, min, max *int) bool {
	if min == nil && max == nil {
		return true
	}
	if v == nil {
		return false
	}
	return (min == nil || *v >= *min) && (max == nil || *v <= *max)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (m *Memory) ModifyPair(ctx context.Context, aID, bID int64, fn func(a, b *users.User) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	if aID == bID {
		return fmt.Errorf("modify pair with %d twice: %w", aID, errs.ErrInvalidOperation)
	}
	a, ok := m.users[aID]
	if !ok {
		return notFound(aID)
	}
	b, ok := m.users[bID]
	if !ok {
		return notFound(bID)
	}
	ac, bc := clone(a), clone(b)
	if err := fn(ac, bc); err != nil {
		return err
	}
	m.users[aID], m.users[bID] = ac, bc
	return nil
}

func (m *Memory) ModifyUser(ctx context.Context, id int64, fn func(u *users.User) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	u, ok := m.users[id]
	if !ok {
		return notFound(id)
	}
	c := clone(u)
	if err := fn(c); err != nil {
		return err
	}
	m.users[id] = c
	return nil
}

func (m *Memory) UpdateProfile(ctx context.Context, id int64, p users.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	u, ok := m.users[id]
	if !ok {
		return notFound(id)
	}
	image := u.ProfileImage
	u.Profile = p
	if p.ProfileImage == nil {
		u.ProfileImage = image
	}
	return nil
}

func (m *Memory) UpdatePassword(ctx context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	u, ok := m.users[id]
	if !ok {
		return notFound(id)
	}
	u.PasswordHash = hash
	return nil
}

func (m *Memory) UpdateNotificationSettings(ctx context.Context, id int64, email, sms bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	u, ok := m.users[id]
	if !ok {
		return notFound(id)
	}
	u.EmailNotifications, u.SMSNotifications = email, sms
	return nil
}

func (m *Memory) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	if _, ok := m.users[id]; !ok {
		return notFound(id)
	}
	delete(m.users, id)
	for _, u := range m.users {
		u.SentInterests = users.Remove(u.SentInterests, id)
		u.ReceivedInterests = users.Remove(u.ReceivedInterests, id)
		u.AcceptedInterests = users.Remove(u.AcceptedInterests, id)
		u.BlockedUsers = users.Remove(u.BlockedUsers, id)
	}
	return nil
}

var _ users.Repository = (*Memory)(nil)
