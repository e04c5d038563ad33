// Package memory provides a fully in-memory store backend. Safe for
// concurrent access. Intended for unit testing and development.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/fieldops-hq/fieldops"
	"github.com/fieldops-hq/fieldops/assignment"
	"github.com/fieldops-hq/fieldops/id"
	"github.com/fieldops-hq/fieldops/job"
	"github.com/fieldops-hq/fieldops/store"
	"github.com/fieldops-hq/fieldops/technician"
)

// Ensure Store implements store.Store at compile time.
var _ store.Store = (*Store)(nil)

// Store keeps every collection in a mutex-guarded map.
type Store struct {
	mu sync.RWMutex

	jobs        map[string]*job.Job
	technicians map[string]*technician.Technician
	assignments map[string]*assignment.Assignment
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		jobs:        make(map[string]*job.Job),
		technicians: make(map[string]*technician.Technician),
		assignments: make(map[string]*assignment.Assignment),
	}
}

// ──────────────────────────────────────────────────
// Lifecycle — Migrate / Ping / Close
// ──────────────────────────────────────────────────

// Migrate is a no-op for the memory store.
func (m *Store) Migrate(_ context.Context) error { return nil }

// Ping always succeeds for the memory store.
func (m *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (m *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Job store
// ──────────────────────────────────────────────────

// CreateJob persists a new job.
func (m *Store) CreateJob(_ context.Context, j *job.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := j.ID.String()
	if _, exists := m.jobs[key]; exists {
		return fieldops.ErrJobAlreadyExists
	}
	cp := *j
	m.jobs[key] = &cp
	return nil
}

// GetJob retrieves a job by ID.
func (m *Store) GetJob(_ context.Context, jobID id.JobID) (*job.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.jobs[jobID.String()]
	if !ok {
		return nil, fieldops.ErrJobNotFound
	}
	cp := *j
	return &cp, nil
}

// UpdateJob persists changes to an existing job.
func (m *Store) UpdateJob(_ context.Context, j *job.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := j.ID.String()
	if _, ok := m.jobs[key]; !ok {
		return fieldops.ErrJobNotFound
	}
	cp := *j
	m.jobs[key] = &cp
	return nil
}

// DeleteJob removes a job by ID.
func (m *Store) DeleteJob(_ context.Context, jobID id.JobID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := jobID.String()
	if _, ok := m.jobs[key]; !ok {
		return fieldops.ErrJobNotFound
	}
	delete(m.jobs, key)
	return nil
}

// ListJobs returns jobs matching f ordered by creation time descending,
// continuing past afterID's position when that record still exists.
func (m *Store) ListJobs(_ context.Context, f job.Filter, limit int, afterID id.JobID) ([]*job.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]*job.Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		if f.Matches(j) {
			matched = append(matched, j)
		}
	}

	sort.Slice(matched, func(i, k int) bool {
		if !matched[i].CreatedAt.Equal(matched[k].CreatedAt) {
			return matched[i].CreatedAt.After(matched[k].CreatedAt)
		}
		// TypeIDs are K-sortable, so the ID orders records created in the
		// same instant.
		return matched[i].ID.String() > matched[k].ID.String()
	})

	if !afterID.IsNil() {
		// The cursor resolves against the full job set, not the filtered
		// stream: a cursor record that no longer matches the filter still
		// anchors the position. Only a deleted record restarts the scan
		// from the top.
		if cur, ok := m.jobs[afterID.String()]; ok {
			start := 0
			for start < len(matched) && !rankedAfter(matched[start], cur) {
				start++
			}
			matched = matched[start:]
		}
	}

	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]*job.Job, len(matched))
	for i, j := range matched {
		cp := *j
		out[i] = &cp
	}
	return out, nil
}

// rankedAfter reports whether j sorts strictly after cur in the
// newest-first listing order.
func rankedAfter(j, cur *job.Job) bool {
	if !j.CreatedAt.Equal(cur.CreatedAt) {
		return j.CreatedAt.Before(cur.CreatedAt)
	}
	return j.ID.String() < cur.ID.String()
}

// ──────────────────────────────────────────────────
// Technician store
// ──────────────────────────────────────────────────

// PutTechnician creates or replaces a technician record.
func (m *Store) PutTechnician(_ context.Context, t *technician.Technician) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *t
	m.technicians[t.ID.String()] = &cp
	return nil
}

// GetTechnician retrieves a technician by ID.
func (m *Store) GetTechnician(_ context.Context, techID id.TechnicianID) (*technician.Technician, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.technicians[techID.String()]
	if !ok {
		return nil, fieldops.ErrTechnicianNotFound
	}
	cp := *t
	return &cp, nil
}

// ListTechnicians returns all technicians ordered by name.
func (m *Store) ListTechnicians(_ context.Context) ([]*technician.Technician, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*technician.Technician, 0, len(m.technicians))
	for _, t := range m.technicians {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out, nil
}

// ──────────────────────────────────────────────────
// Assignment store
// ──────────────────────────────────────────────────

// AssignJob atomically claims a pending job for a technician and appends
// the assignment record. The single mutex hold makes the check-then-write
// all-or-nothing: of two concurrent calls exactly one finds the job
// pending.
func (m *Store) AssignJob(_ context.Context, a *assignment.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[a.JobID.String()]
	if !ok {
		return fieldops.ErrJobNotFound
	}
	if j.Status != job.StatusPending {
		return fieldops.ErrInvalidState
	}

	cp := *j
	cp.Status = job.StatusAssigned
	cp.AssignedTechnicianID = a.TechnicianID
	cp.AssignedBy = a.AssignedBy
	at := a.AssignedAt
	cp.AssignedAt = &at
	cp.UpdatedAt = a.AssignedAt
	m.jobs[cp.ID.String()] = &cp

	rec := *a
	m.assignments[a.ID.String()] = &rec
	return nil
}

// GetAssignment retrieves an assignment record by ID.
func (m *Store) GetAssignment(_ context.Context, assignmentID id.AssignmentID) (*assignment.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.assignments[assignmentID.String()]
	if !ok {
		return nil, fieldops.ErrAssignmentNotFound
	}
	cp := *a
	return &cp, nil
}

// ListAssignmentsByJob returns a job's assignment records ordered by
// assignment time ascending.
func (m *Store) ListAssignmentsByJob(_ context.Context, jobID id.JobID) ([]*assignment.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*assignment.Assignment, 0, 4)
	for _, a := range m.assignments {
		if a.JobID.String() == jobID.String() {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].AssignedAt.Before(out[k].AssignedAt) })
	return out, nil
}
