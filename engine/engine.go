package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fieldops-hq/fieldops"
	"github.com/fieldops-hq/fieldops/assignment"
	"github.com/fieldops-hq/fieldops/id"
	"github.com/fieldops-hq/fieldops/job"
	"github.com/fieldops-hq/fieldops/observability"
	"github.com/fieldops-hq/fieldops/query"
	"github.com/fieldops-hq/fieldops/recommend"
	"github.com/fieldops-hq/fieldops/sanitize"
	"github.com/fieldops-hq/fieldops/stats"
	"github.com/fieldops-hq/fieldops/store"
	"github.com/fieldops-hq/fieldops/technician"
	"github.com/fieldops-hq/fieldops/validate"
)

// Engine is the public operation surface. Safe for concurrent use.
type Engine struct {
	store     store.Store
	validator *validate.Validator
	assigner  *assignment.Service
	queries   *query.Engine
	obs       *observability.Instruments
	logger    *slog.Logger
	now       func() time.Time

	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets the logger for the engine and its subsystems.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			return errors.New("engine: nil logger")
		}
		e.logger = logger
		return nil
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) error {
		if now == nil {
			return errors.New("engine: nil clock")
		}
		e.now = now
		return nil
	}
}

// WithTracerProvider sets the tracer provider for operation spans.
// Defaults to the OTel global, which is a noop unless installed.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(e *Engine) error {
		e.tracerProvider = tp
		return nil
	}
}

// WithMeterProvider sets the meter provider for operation metrics.
// Defaults to the OTel global, which is a noop unless installed.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(e *Engine) error {
		e.meterProvider = mp
		return nil
	}
}

// New creates an Engine over the given store.
func New(st store.Store, opts ...Option) (*Engine, error) {
	if st == nil {
		return nil, fieldops.ErrNoStore
	}

	e := &Engine{
		store:  st,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	e.validator = validate.New(validate.WithClock(e.now))
	e.obs = observability.New(e.tracerProvider, e.meterProvider)
	e.assigner = assignment.NewService(st, st, st,
		assignment.WithLogger(e.logger),
		assignment.WithClock(e.now),
	)
	e.queries = query.New(st, query.WithLogger(e.logger))

	return e, nil
}

// Migrate prepares the backend (indexes and the like).
func (e *Engine) Migrate(ctx context.Context) error {
	return e.store.Migrate(ctx)
}

// Ping checks backend connectivity.
func (e *Engine) Ping(ctx context.Context) error {
	return e.store.Ping(ctx)
}

// Close releases the backend's resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// ── Job lifecycle ──────────────────────────────────

// CreateJob validates, sanitizes, and persists a new job. The job always
// enters the system as pending regardless of the status on the payload;
// a missing ID is generated.
func (e *Engine) CreateJob(ctx context.Context, j *job.Job) (_ *job.Job, err error) {
	ctx, finish := e.obs.Start(ctx, "CreateJob")
	defer func() { finish(err) }()

	if err = e.validator.JobCreation(j); err != nil {
		return nil, err
	}

	sanitize.Job(j)

	if j.ID.IsNil() {
		j.ID = id.NewJobID()
	}
	now := e.now()
	j.Status = job.StatusPending
	j.CreatedAt = now
	j.UpdatedAt = now

	if err = e.store.CreateJob(ctx, j); err != nil {
		return nil, err
	}

	e.logger.Info("job created", "job_id", j.ID.String(), "type", string(j.Type), "priority", string(j.Priority))
	return j, nil
}

// Job retrieves a job by ID.
func (e *Engine) Job(ctx context.Context, jobID id.JobID) (_ *job.Job, err error) {
	ctx, finish := e.obs.Start(ctx, "Job")
	defer func() { finish(err) }()

	return e.store.GetJob(ctx, jobID)
}

// UpdateJob is the generic update path. The payload replaces the stored
// record after validation and sanitization; a status change on the payload
// must be a legal transition and is stamped like ChangeStatus. Completed
// jobs are immutable. This path also carries the on-hold return to
// assigned, which the assignment service deliberately does not.
func (e *Engine) UpdateJob(ctx context.Context, j *job.Job) (_ *job.Job, err error) {
	ctx, finish := e.obs.Start(ctx, "UpdateJob")
	defer func() { finish(err) }()

	if err = e.validator.JobCreation(j); err != nil {
		return nil, err
	}

	current, err := e.store.GetJob(ctx, j.ID)
	if err != nil {
		return nil, err
	}
	if current.Status == job.StatusCompleted {
		return nil, fmt.Errorf("%w: job %s is completed and cannot be updated", fieldops.ErrInvalidState, j.ID)
	}

	sanitize.Job(j)
	j.CreatedAt = current.CreatedAt

	if j.Status != current.Status {
		next := j.Status
		j.Status = current.Status
		if err = job.Transition(j, next, e.now()); err != nil {
			return nil, err
		}
	} else {
		j.UpdatedAt = e.now()
	}

	if err = e.store.UpdateJob(ctx, j); err != nil {
		return nil, err
	}

	e.logger.Info("job updated", "job_id", j.ID.String(), "status", string(j.Status))
	return j, nil
}

// DeleteJob removes a job by ID.
func (e *Engine) DeleteJob(ctx context.Context, jobID id.JobID) (err error) {
	ctx, finish := e.obs.Start(ctx, "DeleteJob")
	defer func() { finish(err) }()

	if err = e.store.DeleteJob(ctx, jobID); err != nil {
		return err
	}
	e.logger.Info("job deleted", "job_id", jobID.String())
	return nil
}

// ── Status transitions ─────────────────────────────

// ChangeStatus moves a job to the next status, applying the transition
// table and timestamp stamping rules.
func (e *Engine) ChangeStatus(ctx context.Context, jobID id.JobID, next job.Status) (_ *job.Job, err error) {
	ctx, finish := e.obs.Start(ctx, "ChangeStatus")
	defer func() { finish(err) }()

	return e.changeStatus(ctx, jobID, next)
}

func (e *Engine) changeStatus(ctx context.Context, jobID id.JobID, next job.Status) (*job.Job, error) {
	j, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := job.Transition(j, next, e.now()); err != nil {
		return nil, err
	}
	if err := e.store.UpdateJob(ctx, j); err != nil {
		return nil, err
	}

	e.logger.Info("job status changed", "job_id", j.ID.String(), "status", string(j.Status))
	return j, nil
}

// Start moves an assigned job to in_progress.
func (e *Engine) Start(ctx context.Context, jobID id.JobID) (_ *job.Job, err error) {
	ctx, finish := e.obs.Start(ctx, "Start")
	defer func() { finish(err) }()

	return e.changeStatus(ctx, jobID, job.StatusInProgress)
}

// Hold puts an in-progress job on hold.
func (e *Engine) Hold(ctx context.Context, jobID id.JobID) (_ *job.Job, err error) {
	ctx, finish := e.obs.Start(ctx, "Hold")
	defer func() { finish(err) }()

	return e.changeStatus(ctx, jobID, job.StatusOnHold)
}

// Resume takes an on-hold job back to in_progress.
func (e *Engine) Resume(ctx context.Context, jobID id.JobID) (_ *job.Job, err error) {
	ctx, finish := e.obs.Start(ctx, "Resume")
	defer func() { finish(err) }()

	return e.changeStatus(ctx, jobID, job.StatusInProgress)
}

// Complete validates the completion payload, transitions the job to
// completed, and records the completion artifacts on the job.
func (e *Engine) Complete(ctx context.Context, jobID id.JobID, c *job.Completion) (_ *job.Job, err error) {
	ctx, finish := e.obs.Start(ctx, "Complete")
	defer func() { finish(err) }()

	if c == nil {
		c = &job.Completion{}
	}
	if err = e.validator.JobCompletion(c); err != nil {
		return nil, err
	}

	j, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err = job.Transition(j, job.StatusCompleted, e.now()); err != nil {
		return nil, err
	}

	j.Completion = c
	j.ActualDuration = c.ActualDuration
	sanitize.Job(j)

	if err = e.store.UpdateJob(ctx, j); err != nil {
		return nil, err
	}

	e.logger.Info("job completed", "job_id", j.ID.String())
	return j, nil
}

// BulkUpdateStatus applies the same transition to every listed job. A
// failure on one job does not stop the rest; the returned map holds the
// failure for each job that could not be updated, keyed by job ID. Jobs
// absent from the map were updated.
func (e *Engine) BulkUpdateStatus(ctx context.Context, jobIDs []id.JobID, next job.Status) (_ map[string]error, err error) {
	ctx, finish := e.obs.Start(ctx, "BulkUpdateStatus")
	defer func() { finish(err) }()

	failures := make(map[string]error)
	for _, jobID := range jobIDs {
		if _, cErr := e.changeStatus(ctx, jobID, next); cErr != nil {
			failures[jobID.String()] = cErr
		}
	}

	if len(failures) > 0 {
		e.logger.Warn("bulk status update completed with failures",
			"total", len(jobIDs), "failed", len(failures), "status", string(next))
	}
	return failures, nil
}

// ── Assignment ─────────────────────────────────────

// Assign assigns a pending job to an eligible technician. See
// assignment.Service.Assign for the precondition order and atomicity
// guarantees.
func (e *Engine) Assign(ctx context.Context, req assignment.Request) (_ *assignment.Assignment, err error) {
	ctx, finish := e.obs.Start(ctx, "Assign")
	defer func() { finish(err) }()

	return e.assigner.Assign(ctx, req)
}

// Assignments returns a job's assignment records, oldest first.
func (e *Engine) Assignments(ctx context.Context, jobID id.JobID) (_ []*assignment.Assignment, err error) {
	ctx, finish := e.obs.Start(ctx, "Assignments")
	defer func() { finish(err) }()

	return e.store.ListAssignmentsByJob(ctx, jobID)
}

// ── Listing and search ─────────────────────────────

// List returns one page of jobs matching the filter, newest first.
func (e *Engine) List(ctx context.Context, f query.Filter, pageSize int, cursor id.JobID) (_ *query.Page, err error) {
	ctx, finish := e.obs.Start(ctx, "List")
	defer func() { finish(err) }()

	return e.queries.List(ctx, f, pageSize, cursor)
}

// Search is a free-text listing over the whole job set.
func (e *Engine) Search(ctx context.Context, text string, pageSize int, cursor id.JobID) (_ *query.Page, err error) {
	ctx, finish := e.obs.Start(ctx, "Search")
	defer func() { finish(err) }()

	return e.queries.Search(ctx, text, pageSize, cursor)
}

// TechnicianJobs returns all jobs assigned to a technician, optionally
// restricted to the given statuses.
func (e *Engine) TechnicianJobs(ctx context.Context, techID id.TechnicianID, statuses ...job.Status) (_ []*job.Job, err error) {
	ctx, finish := e.obs.Start(ctx, "TechnicianJobs")
	defer func() { finish(err) }()

	return e.store.ListJobs(ctx, job.Filter{TechnicianID: techID, Statuses: statuses}, 0, id.Nil)
}

// ── Technicians ────────────────────────────────────

// SaveTechnician creates or replaces a technician record.
func (e *Engine) SaveTechnician(ctx context.Context, t *technician.Technician) (_ *technician.Technician, err error) {
	ctx, finish := e.obs.Start(ctx, "SaveTechnician")
	defer func() { finish(err) }()

	if t.ID.IsNil() {
		t.ID = id.NewTechnicianID()
	}
	t.Name = sanitize.Text(t.Name)

	now := e.now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	if err = e.store.PutTechnician(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Technician retrieves a technician by ID.
func (e *Engine) Technician(ctx context.Context, techID id.TechnicianID) (_ *technician.Technician, err error) {
	ctx, finish := e.obs.Start(ctx, "Technician")
	defer func() { finish(err) }()

	return e.store.GetTechnician(ctx, techID)
}

// Technicians returns all technicians ordered by name.
func (e *Engine) Technicians(ctx context.Context) (_ []*technician.Technician, err error) {
	ctx, finish := e.obs.Start(ctx, "Technicians")
	defer func() { finish(err) }()

	return e.store.ListTechnicians(ctx)
}

// ── Recommendations and statistics ─────────────────

// Recommend ranks pending jobs for a technician by skill match, priority,
// and distance, returning at most max of them. A non-positive max means
// no cap.
func (e *Engine) Recommend(ctx context.Context, techID id.TechnicianID, max int) (_ []*job.Job, err error) {
	ctx, finish := e.obs.Start(ctx, "Recommend")
	defer func() { finish(err) }()

	tech, err := e.store.GetTechnician(ctx, techID)
	if err != nil {
		return nil, err
	}

	candidates, err := e.store.ListJobs(ctx, job.Filter{Statuses: []job.Status{job.StatusPending}}, 0, id.Nil)
	if err != nil {
		return nil, err
	}

	return recommend.Recommend(tech, candidates, max), nil
}

// Stats computes per-status counts over the jobs matching the filter.
func (e *Engine) Stats(ctx context.Context, f job.Filter) (_ stats.JobStats, err error) {
	ctx, finish := e.obs.Start(ctx, "Stats")
	defer func() { finish(err) }()

	jobs, err := e.store.ListJobs(ctx, f, 0, id.Nil)
	if err != nil {
		return stats.JobStats{}, err
	}
	return stats.Compute(jobs), nil
}

// Workload summarizes a technician's current load. The technician must
// exist.
func (e *Engine) Workload(ctx context.Context, techID id.TechnicianID) (_ stats.TechnicianWorkload, err error) {
	ctx, finish := e.obs.Start(ctx, "Workload")
	defer func() { finish(err) }()

	if _, err = e.store.GetTechnician(ctx, techID); err != nil {
		return stats.TechnicianWorkload{}, err
	}

	jobs, err := e.store.ListJobs(ctx, job.Filter{TechnicianID: techID}, 0, id.Nil)
	if err != nil {
		return stats.TechnicianWorkload{}, err
	}
	return stats.ComputeWorkload(techID, jobs, e.now()), nil
}
