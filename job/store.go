package job

import (
	"context"
	"time"

	"github.com/fieldops-hq/fieldops/id"
)

// Filter restricts job listings to predicates the store evaluates natively.
// Zero values mean "no restriction"; the time bounds are inclusive.
type Filter struct {
	Statuses     []Status
	Priorities   []Priority
	Types        []Type
	TechnicianID id.TechnicianID
	ScheduledFrom time.Time
	ScheduledTo   time.Time
}

// Matches reports whether j satisfies every set predicate of f.
// Backends without native predicate pushdown use it directly.
func (f Filter) Matches(j *Job) bool {
	if len(f.Statuses) > 0 && !containsStatus(f.Statuses, j.Status) {
		return false
	}
	if len(f.Priorities) > 0 && !containsPriority(f.Priorities, j.Priority) {
		return false
	}
	if len(f.Types) > 0 && !containsType(f.Types, j.Type) {
		return false
	}
	if !f.TechnicianID.IsNil() && j.AssignedTechnicianID.String() != f.TechnicianID.String() {
		return false
	}
	if !f.ScheduledFrom.IsZero() && j.ScheduledDate.Before(f.ScheduledFrom) {
		return false
	}
	if !f.ScheduledTo.IsZero() && j.ScheduledDate.After(f.ScheduledTo) {
		return false
	}
	return true
}

func containsStatus(set []Status, s Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

func containsPriority(set []Priority, p Priority) bool {
	for _, v := range set {
		if v == p {
			return true
		}
	}
	return false
}

func containsType(set []Type, t Type) bool {
	for _, v := range set {
		if v == t {
			return true
		}
	}
	return false
}

// Store defines the persistence contract for jobs.
type Store interface {
	// CreateJob persists a new job.
	CreateJob(ctx context.Context, j *Job) error

	// GetJob retrieves a job by ID.
	GetJob(ctx context.Context, jobID id.JobID) (*Job, error)

	// UpdateJob persists changes to an existing job.
	UpdateJob(ctx context.Context, j *Job) error

	// DeleteJob removes a job by ID.
	DeleteJob(ctx context.Context, jobID id.JobID) error

	// ListJobs returns jobs matching f, ordered by creation time descending.
	// limit zero means no limit. A non-nil afterID positions the scan just
	// past the referenced job's creation-time rank, even when that job no
	// longer matches f; only when the record no longer exists does the scan
	// silently restart from the top, so callers paginating under concurrent
	// deletion can observe a repeated page.
	ListJobs(ctx context.Context, f Filter, limit int, afterID id.JobID) ([]*Job, error)
}
