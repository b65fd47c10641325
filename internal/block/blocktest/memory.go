// Package blocktest provides an in-memory block.ReportRepository for tests.
package blocktest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/imadgeboyega/matchmaking-backend/internal/block"
)

type Reports struct {
	mu      sync.Mutex
	reports []block.Report
	nextID  int64
	now     func() time.Time

	failures []error
}

func NewReports() *Reports {
	return &Reports{nextID: 1, now: time.Now}
}

// FailNext makes the next len(errs) calls return these errors in order.
func (m *Reports) FailNext(errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, errs...)
}

func (m *Reports) begin() error {
	if len(m.failures) > 0 {
		err := m.failures[0]
		m.failures = m.failures[1:]
		return err
	}
	return nil
}

// All returns every stored report in insertion order.
func (m *Reports) All() []block.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]block.Report(nil), m.reports...)
}

// Forget drops every report involving the user, as the foreign keys do.
func (m *Reports) Forget(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.reports[:0]
	for _, r := range m.reports {
		if r.ReportedUserID != userID && r.ReporterID != userID {
			kept = append(kept, r)
		}
	}
	m.reports = kept
}

func (m *Reports) Create(ctx context.Context, report *block.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return err
	}
	report.ID = m.nextID
	m.nextID++
	if report.CreatedAt.IsZero() {
		report.CreatedAt = m.now()
	}
	m.reports = append(m.reports, *report)
	return nil
}

func (m *Reports) List(ctx context.Context) ([]block.Report, error) {
	return m.filter(func(block.Report) bool { return true })
}

func (m *Reports) ListAgainst(ctx context.Context, reportedUserID int64) ([]block.Report, error) {
	return m.filter(func(r block.Report) bool { return r.ReportedUserID == reportedUserID })
}

func (m *Reports) filter(keep func(block.Report) bool) ([]block.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.begin(); err != nil {
		return nil, err
	}
	out := []block.Report{}
	for _, r := range m.reports {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

var _ block.ReportRepository = (*Reports)(nil)
