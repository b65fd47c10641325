// Package messagingtest provides an in-memory messaging.Repository for tests.
package messagingtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/common/errs"
	"github.com/imadgeboyega/matchmaking-backend/internal/messaging"
)

// Memory is a goroutine-safe messaging.Repository backed by a map.
type Memory struct {
	mu     sync.Mutex
	msgs   map[int64]*messaging.Message
	nextID int64

	failures []error
	Calls    int
}

func NewMemory() *Memory {
	return &Memory{msgs: make(map[int64]*messaging.Message), nextID: 1}
}

// Put stores a message as given, assigning an id when it has none, and returns the id.
func (m *Memory) Put(msg messaging.Message) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.ID == 0 {
		msg.ID = m.nextID
	}
	if msg.ID >= m.nextID {
		m.nextID = msg.ID + 1
	}
	m.msgs[msg.ID] = clone(&msg)
	return msg.ID
}

// Get returns a copy of the stored message or nil.
func (m *Memory) Get(id int64) *messaging.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg, ok := m.msgs[id]; ok {
		return clone(msg)
	}
	return nil
}

// Len is the number of stored messages.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.msgs)
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

func clone(msg *messaging.Message) *messaging.Message {
	c := *msg
	if msg.Call != nil {
		call := *msg.Call
		if msg.Call.Duration != nil {
			d := *msg.Call.Duration
			call.Duration = &d
		}
		c.Call = &call
	}
	return &c
}

func notFound(id int64) error {
	return fmt.Errorf("message %d: %w", id, errs.ErrNotFound)
}

func (m *Memory) Create(ctx context.Context, msg *messaging.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	msg.ID = m.nextID
	m.nextID++
	m.msgs[msg.ID] = clone(msg)
	return nil
}

func (m *Memory) GetByID(ctx context.Context, id int64) (*messaging.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	msg, ok := m.msgs[id]
	if !ok {
		return nil, notFound(id)
	}
	return clone(msg), nil
}

func (m *Memory) Conversation(ctx context.Context, a, b int64) ([]messaging.Message, error) {
	return m.Since(ctx, a, b, time.Time{})
}

func (m *Memory) Since(ctx context.Context, a, b int64, after time.Time) ([]messaging.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}

	out := []messaging.Message{}
	for _, msg := range m.msgs {
		between := (msg.SenderID == a && msg.ReceiverID == b) || (msg.SenderID == b && msg.ReceiverID == a)
		if between && msg.Timestamp.After(after) {
			out = append(out, *clone(msg))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) updateCall(id int64, fn func(c *messaging.Call)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	msg, ok := m.msgs[id]
	if !ok || msg.Call == nil {
		return notFound(id)
	}
	fn(msg.Call)
	return nil
}

func (m *Memory) SetAnswer(ctx context.Context, id int64, answer json.RawMessage) error {
	return m.updateCall(id, func(c *messaging.Call) { c.SDP.Answer = answer })
}

func (m *Memory) SetRejected(ctx context.Context, id int64) error {
	return m.updateCall(id, func(c *messaging.Call) { c.Rejected = true })
}

func (m *Memory) SetLastCandidate(ctx context.Context, id int64, candidate json.RawMessage) error {
	return m.updateCall(id, func(c *messaging.Call) { c.LastCandidate = candidate })
}

func (m *Memory) SetDuration(ctx context.Context, id int64, seconds int64) error {
	return m.updateCall(id, func(c *messaging.Call) { c.Duration = &seconds })
}

func (m *Memory) CountUnviewed(ctx context.Context, receiverID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return 0, err
	}
	n := 0
	for _, msg := range m.msgs {
		if msg.ReceiverID == receiverID && !msg.Viewed {
			n++
		}
	}
	return n, nil
}

func (m *Memory) MarkViewed(ctx context.Context, receiverID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	for _, msg := range m.msgs {
		if msg.ReceiverID == receiverID {
			msg.Viewed = true
		}
	}
	return nil
}

var _ messaging.Repository = (*Memory)(nil)
