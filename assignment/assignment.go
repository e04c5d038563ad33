// Package assignment pairs pending jobs with eligible technicians.
//
// An Assignment is an immutable record created once per successful
// assignment; re-assigning a job appends a new record and never mutates an
// old one. The Service runs the eligibility checks and delegates the final
// check-then-write to the store, which must execute it atomically: of two
// concurrent assignments of the same pending job exactly one wins and the
// loser observes fieldops.ErrInvalidState.
package assignment

import (
	"context"
	"time"

	"github.com/fieldops-hq/fieldops/id"
)

// Assignment is an immutable record pairing a job to a technician at a
// point in time.
type Assignment struct {
	ID           id.AssignmentID `json:"id"`
	JobID        id.JobID        `json:"job_id"`
	TechnicianID id.TechnicianID `json:"technician_id"`
	AssignedBy   string          `json:"assigned_by"`
	AssignedAt   time.Time       `json:"assigned_at"`
	Note         string          `json:"note,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Store defines the persistence contract for assignment records.
type Store interface {
	// AssignJob atomically verifies the job is still pending, applies the
	// assignment fields (technician, assigned-by, assigned-at), moves the
	// job to assigned, and appends a. The whole write is all-or-nothing: a
	// job update without the record, or vice versa, must never be
	// observable. A job that is missing yields fieldops.ErrJobNotFound; a
	// job no longer pending yields fieldops.ErrInvalidState.
	AssignJob(ctx context.Context, a *Assignment) error

	// GetAssignment retrieves an assignment record by ID.
	GetAssignment(ctx context.Context, assignmentID id.AssignmentID) (*Assignment, error)

	// ListAssignmentsByJob returns a job's assignment records ordered by
	// assignment time ascending.
	ListAssignmentsByJob(ctx context.Context, jobID id.JobID) ([]*Assignment, error)
}
