package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldops-hq/fieldops"
	"github.com/fieldops-hq/fieldops/id"
	"github.com/fieldops-hq/fieldops/job"
	"github.com/fieldops-hq/fieldops/sanitize"
	"github.com/fieldops-hq/fieldops/technician"
	"github.com/fieldops-hq/fieldops/validate"
)

// Request carries the inputs for assigning a pending job.
type Request struct {
	JobID        id.JobID
	TechnicianID id.TechnicianID
	AssignedBy   string
	Note         string
}

// Service orchestrates the assignment workflow over the job, technician,
// and assignment stores.
type Service struct {
	jobs        job.Store
	technicians technician.Store
	assignments Store
	validator   *validate.Validator
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates an assignment service.
func NewService(jobs job.Store, technicians technician.Store, assignments Store, opts ...Option) *Service {
	s := &Service{
		jobs:        jobs,
		technicians: technicians,
		assignments: assignments,
		validator:   validate.New(),
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Assign assigns a pending job to an eligible technician. Preconditions are
// checked in order and the first failure wins: structural validation, job
// exists, job is pending, technician exists, technician is active,
// technician holds the technician role. The final write is atomic; a racer
// that loses the pending check observes fieldops.ErrInvalidState.
//
// Only pending jobs pass through here. An on-hold job first returns to
// assigned via the generic transition-checked update path; this service
// never re-assigns.
func (s *Service) Assign(ctx context.Context, req Request) (*Assignment, error) {
	if err := s.validator.JobAssignment(req.JobID.String(), req.TechnicianID.String(), req.AssignedBy); err != nil {
		return nil, err
	}

	j, err := s.jobs.GetJob(ctx, req.JobID)
	if err != nil {
		return nil, err
	}
	if j.Status != job.StatusPending {
		return nil, fmt.Errorf("%w: job %s is %s, only pending jobs can be assigned",
			fieldops.ErrInvalidState, j.ID, j.Status)
	}

	tech, err := s.technicians.GetTechnician(ctx, req.TechnicianID)
	if err != nil {
		return nil, err
	}
	if !tech.Active {
		return nil, fmt.Errorf("%w: technician %s is inactive", fieldops.ErrTechnicianUnavailable, tech.ID)
	}
	if tech.Role != technician.RoleTechnician {
		return nil, fmt.Errorf("%w: %s has role %q", fieldops.ErrTechnicianUnavailable, tech.ID, tech.Role)
	}

	now := s.now()
	a := &Assignment{
		ID:           id.NewAssignmentID(),
		JobID:        req.JobID,
		TechnicianID: req.TechnicianID,
		AssignedBy:   req.AssignedBy,
		AssignedAt:   now,
		Note:         sanitize.Text(req.Note),
		CreatedAt:    now,
	}

	if err := s.assignments.AssignJob(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("job assigned",
		"job_id", a.JobID.String(),
		"technician_id", a.TechnicianID.String(),
		"assigned_by", a.AssignedBy,
	)

	return a, nil
}
