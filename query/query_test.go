package query

import (
	"context"
	"testing"
	"time"

	"github.com/fieldops-hq/fieldops/geo"
	"github.com/fieldops-hq/fieldops/id"
	"github.com/fieldops-hq/fieldops/job"
	"github.com/fieldops-hq/fieldops/store/memory"
)

var listBase = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// seedJob persists a minimal job created at listBase plus offset seconds.
func seedJob(t *testing.T, st *memory.Store, offset int, mutate func(*job.Job)) *job.Job {
	t.Helper()

	j := &job.Job{
		ID:          id.NewJobID(),
		Title:       "Inspect rooftop unit",
		Description: "Quarterly inspection",
		Type:        job.TypeInspection,
		Priority:    job.PriorityMedium,
		Status:      job.StatusPending,
		Customer:    job.Customer{Name: "Acme Property Group"},
		Location: job.Location{
			Address:   "500 Commerce Way",
			City:      "Springfield",
			Latitude:  39.7817,
			Longitude: -89.6501,
		},
		CreatedBy: "dispatcher-1",
	}
	j.CreatedAt = listBase.Add(time.Duration(offset) * time.Second)
	j.UpdatedAt = j.CreatedAt
	if mutate != nil {
		mutate(j)
	}
	if err := st.CreateJob(context.Background(), j); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	return j
}

func TestListDefaultPageSize(t *testing.T) {
	st := memory.New()
	for i := 0; i < DefaultPageSize+1; i++ {
		seedJob(t, st, i, nil)
	}

	page, err := New(st).List(context.Background(), Filter{}, 0, id.Nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Jobs) != DefaultPageSize {
		t.Errorf("len = %d, want %d", len(page.Jobs), DefaultPageSize)
	}
	if !page.HasMore {
		t.Error("HasMore = false, want true")
	}
}

func TestListOrderAndCursor(t *testing.T) {
	st := memory.New()
	var ids []string
	for i := 0; i < 5; i++ {
		ids = append(ids, seedJob(t, st, i, nil).ID.String())
	}

	eng := New(st)
	ctx := context.Background()

	page, err := eng.List(ctx, Filter{}, 2, id.Nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Jobs) != 2 || !page.HasMore {
		t.Fatalf("page 1: len %d HasMore %v", len(page.Jobs), page.HasMore)
	}
	// Newest first.
	if page.Jobs[0].ID.String() != ids[4] || page.Jobs[1].ID.String() != ids[3] {
		t.Errorf("page 1 order = [%s %s]", page.Jobs[0].ID, page.Jobs[1].ID)
	}

	page, err = eng.List(ctx, Filter{}, 2, page.NextCursor)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Jobs[0].ID.String() != ids[2] || page.Jobs[1].ID.String() != ids[1] {
		t.Errorf("page 2 order = [%s %s]", page.Jobs[0].ID, page.Jobs[1].ID)
	}

	page, err = eng.List(ctx, Filter{}, 2, page.NextCursor)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Jobs) != 1 || page.HasMore {
		t.Errorf("page 3: len %d HasMore %v, want 1 false", len(page.Jobs), page.HasMore)
	}
}

func TestListDeletedCursorRestarts(t *testing.T) {
	st := memory.New()
	for i := 0; i < 3; i++ {
		seedJob(t, st, i, nil)
	}
	eng := New(st)
	ctx := context.Background()

	page, err := eng.List(ctx, Filter{}, 2, id.Nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if err := st.DeleteJob(ctx, page.NextCursor); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}

	page, err = eng.List(ctx, Filter{}, 2, page.NextCursor)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// The cursor record is gone, so the scan restarts from the top of the
	// remaining two records.
	if len(page.Jobs) != 2 {
		t.Errorf("len = %d, want 2 (restarted scan)", len(page.Jobs))
	}
}

func TestListTextFilter(t *testing.T) {
	st := memory.New()
	seedJob(t, st, 0, func(j *job.Job) { j.Title = "Fix furnace igniter" })
	seedJob(t, st, 1, func(j *job.Job) { j.Description = "customer reports furnace noise" })
	seedJob(t, st, 2, func(j *job.Job) { j.Customer.Name = "Furnace World LLC" })
	seedJob(t, st, 3, func(j *job.Job) { j.Location.City = "Furnaceville" })
	seedJob(t, st, 4, nil)

	page, err := New(st).List(context.Background(), Filter{Text: "furnace"}, 10, id.Nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Jobs) != 4 {
		t.Errorf("len = %d, want 4 (title, description, customer, city)", len(page.Jobs))
	}
}

func TestListHasMoreIsUnfiltered(t *testing.T) {
	st := memory.New()
	seedJob(t, st, 0, func(j *job.Job) { j.Title = "Replace valve" })
	match := seedJob(t, st, 1, func(j *job.Job) { j.Title = "Fix furnace" })
	seedJob(t, st, 2, func(j *job.Job) { j.Title = "Install thermostat" })

	page, err := New(st).List(context.Background(), Filter{Text: "furnace"}, 2, id.Nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// Two unfiltered candidates examined, one matched, one more candidate
	// remains past the page.
	if len(page.Jobs) != 1 || page.Jobs[0].ID.String() != match.ID.String() {
		t.Fatalf("matches = %d", len(page.Jobs))
	}
	if !page.HasMore {
		t.Error("HasMore = false, want true: more unfiltered candidates remain")
	}
}

func TestListRadiusFilter(t *testing.T) {
	st := memory.New()
	near := seedJob(t, st, 0, nil) // Springfield coordinates
	seedJob(t, st, 1, func(j *job.Job) {
		j.Location.Latitude = 41.8781 // Chicago, ~250 km away
		j.Location.Longitude = -87.6298
	})

	f := Filter{Radius: &RadiusFilter{
		Center:   geo.Point{Latitude: 39.7817, Longitude: -89.6501},
		RadiusKm: 25,
	}}
	page, err := New(st).List(context.Background(), f, 10, id.Nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Jobs) != 1 || page.Jobs[0].ID.String() != near.ID.String() {
		t.Errorf("radius filter kept %d jobs", len(page.Jobs))
	}
}

func TestListPushdownFilter(t *testing.T) {
	st := memory.New()
	seedJob(t, st, 0, func(j *job.Job) { j.Status = job.StatusCancelled })
	pending := seedJob(t, st, 1, nil)

	f := Filter{Filter: job.Filter{Statuses: []job.Status{job.StatusPending}}}
	page, err := New(st).List(context.Background(), f, 10, id.Nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Jobs) != 1 || page.Jobs[0].ID.String() != pending.ID.String() {
		t.Errorf("pushdown filter kept %d jobs", len(page.Jobs))
	}
}

func TestSearch(t *testing.T) {
	st := memory.New()
	seedJob(t, st, 0, func(j *job.Job) { j.Title = "Fix furnace" })
	seedJob(t, st, 1, nil)

	page, err := New(st).Search(context.Background(), "FURNACE", 10, id.Nil)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(page.Jobs) != 1 {
		t.Errorf("len = %d, want 1", len(page.Jobs))
	}
}

func TestListEmptyStore(t *testing.T) {
	page, err := New(memory.New()).List(context.Background(), Filter{}, 10, id.Nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Jobs) != 0 || page.HasMore || !page.NextCursor.IsNil() {
		t.Errorf("empty store page = %+v", page)
	}
}
