package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fieldops-hq/fieldops"
	"github.com/fieldops-hq/fieldops/assignment"
	"github.com/fieldops-hq/fieldops/id"
	"github.com/fieldops-hq/fieldops/job"
	"github.com/fieldops-hq/fieldops/technician"
)

var storeBase = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newJob(offset int, mutate func(*job.Job)) *job.Job {
	j := &job.Job{
		ID:        id.NewJobID(),
		Title:     "Inspect rooftop unit",
		Status:    job.StatusPending,
		Priority:  job.PriorityMedium,
		Type:      job.TypeInspection,
		CreatedBy: "dispatcher-1",
	}
	j.CreatedAt = storeBase.Add(time.Duration(offset) * time.Second)
	j.UpdatedAt = j.CreatedAt
	if mutate != nil {
		mutate(j)
	}
	return j
}

func TestJobCRUD(t *testing.T) {
	st := New()
	ctx := context.Background()
	j := newJob(0, nil)

	if err := st.CreateJob(ctx, j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if err := st.CreateJob(ctx, j); !errors.Is(err, fieldops.ErrJobAlreadyExists) {
		t.Errorf("duplicate create err = %v, want ErrJobAlreadyExists", err)
	}

	got, err := st.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Title != j.Title {
		t.Errorf("Title = %q", got.Title)
	}

	// The store hands out copies: mutating a result must not leak back.
	got.Title = "mutated"
	again, err := st.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if again.Title == "mutated" {
		t.Error("store leaked internal state through a returned job")
	}

	j.Title = "Inspect rooftop unit and filters"
	if err := st.UpdateJob(ctx, j); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}
	got, err = st.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Title != j.Title {
		t.Errorf("Title after update = %q", got.Title)
	}

	if err := st.DeleteJob(ctx, j.ID); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if _, err := st.GetJob(ctx, j.ID); !errors.Is(err, fieldops.ErrJobNotFound) {
		t.Errorf("get after delete err = %v, want ErrJobNotFound", err)
	}
	if err := st.UpdateJob(ctx, j); !errors.Is(err, fieldops.ErrJobNotFound) {
		t.Errorf("update missing err = %v, want ErrJobNotFound", err)
	}
	if err := st.DeleteJob(ctx, j.ID); !errors.Is(err, fieldops.ErrJobNotFound) {
		t.Errorf("delete missing err = %v, want ErrJobNotFound", err)
	}
}

func TestListJobsOrderAndLimit(t *testing.T) {
	st := New()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		j := newJob(i, nil)
		if err := st.CreateJob(ctx, j); err != nil {
			t.Fatalf("CreateJob: %v", err)
		}
		ids = append(ids, j.ID.String())
	}

	got, err := st.ListJobs(ctx, job.Filter{}, 0, id.Nil)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	// Creation time descending.
	for i, want := range []string{ids[3], ids[2], ids[1], ids[0]} {
		if got[i].ID.String() != want {
			t.Errorf("got[%d] = %s, want %s", i, got[i].ID, want)
		}
	}

	got, err = st.ListJobs(ctx, job.Filter{}, 2, id.Nil)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("limited len = %d, want 2", len(got))
	}
}

func TestListJobsCursor(t *testing.T) {
	st := New()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 4; i++ {
		j := newJob(i, nil)
		if err := st.CreateJob(ctx, j); err != nil {
			t.Fatalf("CreateJob: %v", err)
		}
		ids = append(ids, j.ID.String())
	}

	first, err := st.ListJobs(ctx, job.Filter{}, 2, id.Nil)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	rest, err := st.ListJobs(ctx, job.Filter{}, 0, first[len(first)-1].ID)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(rest) != 2 || rest[0].ID.String() != ids[1] || rest[1].ID.String() != ids[0] {
		t.Errorf("continuation = %d records", len(rest))
	}

	// An unresolvable cursor restarts the scan from the top.
	all, err := st.ListJobs(ctx, job.Filter{}, 0, id.NewJobID())
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("restart len = %d, want 4", len(all))
	}
}

func TestListJobsCursorLeavesFilter(t *testing.T) {
	st := New()
	ctx := context.Background()
	pending := job.Filter{Statuses: []job.Status{job.StatusPending}}

	jobs := make([]*job.Job, 3)
	for i := range jobs {
		jobs[i] = newJob(i, nil)
		if err := st.CreateJob(ctx, jobs[i]); err != nil {
			t.Fatalf("CreateJob: %v", err)
		}
	}

	first, err := st.ListJobs(ctx, pending, 2, id.Nil)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("page 1 len = %d, want 2", len(first))
	}
	cursor := first[len(first)-1]

	// The cursor job changes status between pages. It no longer matches the
	// filter but still exists, so the scan must continue past its rank
	// instead of restarting and re-serving page 1.
	cursor.Status = job.StatusAssigned
	if err := st.UpdateJob(ctx, cursor); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}

	second, err := st.ListJobs(ctx, pending, 2, cursor.ID)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(second) != 1 {
		t.Fatalf("page 2 len = %d, want 1", len(second))
	}
	if second[0].ID.String() != jobs[0].ID.String() {
		t.Errorf("page 2 = %s, want the oldest job %s", second[0].ID, jobs[0].ID)
	}
	for _, seen := range first {
		if second[0].ID.String() == seen.ID.String() {
			t.Errorf("page 2 repeats %s from page 1", seen.ID)
		}
	}
}

func TestListJobsSameInstantTiebreak(t *testing.T) {
	st := New()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := st.CreateJob(ctx, newJob(0, nil)); err != nil {
			t.Fatalf("CreateJob: %v", err)
		}
	}

	got, err := st.ListJobs(ctx, job.Filter{}, 0, id.Nil)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].ID.String() < got[i].ID.String() {
			t.Fatalf("tiebreak not descending: %s before %s", got[i-1].ID, got[i].ID)
		}
	}
}

func TestListJobsFilter(t *testing.T) {
	st := New()
	ctx := context.Background()
	techID := id.NewTechnicianID()

	if err := st.CreateJob(ctx, newJob(0, func(j *job.Job) {
		j.Status = job.StatusAssigned
		j.AssignedTechnicianID = techID
	})); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if err := st.CreateJob(ctx, newJob(1, func(j *job.Job) {
		j.Priority = job.PriorityUrgent
		j.Type = job.TypeEmergency
	})); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if err := st.CreateJob(ctx, newJob(2, func(j *job.Job) {
		j.ScheduledDate = storeBase.AddDate(0, 0, 7)
	})); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	cases := []struct {
		name string
		f    job.Filter
		want int
	}{
		{"all", job.Filter{}, 3},
		{"by status", job.Filter{Statuses: []job.Status{job.StatusAssigned}}, 1},
		{"by priority", job.Filter{Priorities: []job.Priority{job.PriorityUrgent}}, 1},
		{"by type", job.Filter{Types: []job.Type{job.TypeEmergency}}, 1},
		{"by technician", job.Filter{TechnicianID: techID}, 1},
		{"by schedule window", job.Filter{ScheduledFrom: storeBase.AddDate(0, 0, 1)}, 1},
		{"no match", job.Filter{Statuses: []job.Status{job.StatusCompleted}}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := st.ListJobs(ctx, tc.f, 0, id.Nil)
			if err != nil {
				t.Fatalf("ListJobs: %v", err)
			}
			if len(got) != tc.want {
				t.Errorf("len = %d, want %d", len(got), tc.want)
			}
		})
	}
}

func TestAssignJob(t *testing.T) {
	st := New()
	ctx := context.Background()

	j := newJob(0, nil)
	if err := st.CreateJob(ctx, j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	a := &assignment.Assignment{
		ID:           id.NewAssignmentID(),
		JobID:        j.ID,
		TechnicianID: id.NewTechnicianID(),
		AssignedBy:   "dispatcher-1",
		AssignedAt:   storeBase.Add(time.Minute),
		CreatedAt:    storeBase.Add(time.Minute),
	}
	if err := st.AssignJob(ctx, a); err != nil {
		t.Fatalf("AssignJob: %v", err)
	}

	got, err := st.GetJob(ctx, j.ID)
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != job.StatusAssigned {
		t.Errorf("Status = %q, want assigned", got.Status)
	}
	if got.AssignedTechnicianID.String() != a.TechnicianID.String() {
		t.Errorf("AssignedTechnicianID = %s", got.AssignedTechnicianID)
	}
	if got.AssignedAt == nil || !got.AssignedAt.Equal(a.AssignedAt) {
		t.Errorf("AssignedAt = %v", got.AssignedAt)
	}

	rec, err := st.GetAssignment(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetAssignment: %v", err)
	}
	if rec.JobID.String() != j.ID.String() {
		t.Errorf("record JobID = %s", rec.JobID)
	}

	// Second claim must observe the job no longer pending.
	b := *a
	b.ID = id.NewAssignmentID()
	if err := st.AssignJob(ctx, &b); !errors.Is(err, fieldops.ErrInvalidState) {
		t.Errorf("second assign err = %v, want ErrInvalidState", err)
	}

	missing := *a
	missing.ID = id.NewAssignmentID()
	missing.JobID = id.NewJobID()
	if err := st.AssignJob(ctx, &missing); !errors.Is(err, fieldops.ErrJobNotFound) {
		t.Errorf("missing job err = %v, want ErrJobNotFound", err)
	}
}

func TestListAssignmentsByJob(t *testing.T) {
	st := New()
	ctx := context.Background()
	jobID := id.NewJobID()

	// Records are inserted out of order straight into the map; listing must
	// come back ordered by assignment time.
	times := []time.Duration{2 * time.Minute, time.Minute, 3 * time.Minute}
	for _, d := range times {
		a := &assignment.Assignment{
			ID:           id.NewAssignmentID(),
			JobID:        jobID,
			TechnicianID: id.NewTechnicianID(),
			AssignedBy:   "d",
			AssignedAt:   storeBase.Add(d),
		}
		st.assignments[a.ID.String()] = a
	}

	got, err := st.ListAssignmentsByJob(ctx, jobID)
	if err != nil {
		t.Fatalf("ListAssignmentsByJob: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].AssignedAt.Before(got[i-1].AssignedAt) {
			t.Fatalf("not ordered by AssignedAt")
		}
	}

	if _, err := st.GetAssignment(ctx, id.NewAssignmentID()); !errors.Is(err, fieldops.ErrAssignmentNotFound) {
		t.Errorf("err = %v, want ErrAssignmentNotFound", err)
	}
}

func TestTechnicians(t *testing.T) {
	st := New()
	ctx := context.Background()

	for _, name := range []string{"Morgan", "Avery", "Zoe"} {
		tech := &technician.Technician{
			ID:     id.NewTechnicianID(),
			Name:   name,
			Role:   technician.RoleTechnician,
			Active: true,
		}
		if err := st.PutTechnician(ctx, tech); err != nil {
			t.Fatalf("PutTechnician: %v", err)
		}
	}

	got, err := st.ListTechnicians(ctx)
	if err != nil {
		t.Fatalf("ListTechnicians: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"Avery", "Morgan", "Zoe"} {
		if got[i].Name != want {
			t.Errorf("got[%d] = %q, want %q", i, got[i].Name, want)
		}
	}

	if _, err := st.GetTechnician(ctx, id.NewTechnicianID()); !errors.Is(err, fieldops.ErrTechnicianNotFound) {
		t.Errorf("err = %v, want ErrTechnicianNotFound", err)
	}
}
