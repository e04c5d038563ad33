package recommend

import (
	"testing"

	"github.com/fieldops-hq/fieldops/geo"
	"github.com/fieldops-hq/fieldops/id"
	"github.com/fieldops-hq/fieldops/job"
	"github.com/fieldops-hq/fieldops/technician"
)

// springfield is the reference point for distance cases.
var springfield = geo.Point{Latitude: 39.7817, Longitude: -89.6501}

func candidateJob(mutate func(*job.Job)) *job.Job {
	j := &job.Job{
		ID:       id.NewJobID(),
		Status:   job.StatusPending,
		Priority: job.PriorityUrgent,
		Location: job.Location{
			Latitude:  springfield.Latitude,
			Longitude: springfield.Longitude,
		},
		Requirements: job.Requirements{Skills: []string{"hvac", "electrical"}},
	}
	if mutate != nil {
		mutate(j)
	}
	return j
}

func scorer(skills []string, at *geo.Point) *technician.Technician {
	t := &technician.Technician{
		ID:     id.NewTechnicianID(),
		Role:   technician.RoleTechnician,
		Active: true,
		Skills: skills,
	}
	if at != nil {
		t.LastKnownLocation = &technician.LocationSample{Point: *at}
	}
	return t
}

func TestScoreMaximum(t *testing.T) {
	// Full skill match, urgent priority, on site: 50 + 30 + 20 = 100.
	tech := scorer([]string{"hvac", "electrical"}, &springfield)

	b := Score(tech, candidateJob(nil))
	if b.Skill != 50 || b.Priority != 30 || b.Distance != 20 {
		t.Errorf("breakdown = %+v, want 50/30/20", b)
	}
	if b.Total() != 100 {
		t.Errorf("Total = %v, want 100", b.Total())
	}
}

func TestScoreSkill(t *testing.T) {
	cases := []struct {
		name     string
		have     []string
		required []string
		want     float64
	}{
		{"full match", []string{"hvac", "electrical"}, []string{"hvac", "electrical"}, 50},
		{"half match", []string{"hvac"}, []string{"hvac", "electrical"}, 25},
		{"no match", []string{"plumbing"}, []string{"hvac", "electrical"}, 0},
		{"extra skills do not help", []string{"hvac", "electrical", "plumbing"}, []string{"hvac"}, 50},
		{"no requirements is a full match", []string{"plumbing"}, nil, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			j := candidateJob(func(j *job.Job) { j.Requirements.Skills = tc.required })
			b := Score(scorer(tc.have, nil), j)
			if b.Skill != tc.want {
				t.Errorf("Skill = %v, want %v", b.Skill, tc.want)
			}
		})
	}
}

func TestScorePriority(t *testing.T) {
	cases := []struct {
		priority job.Priority
		want     float64
	}{
		{job.PriorityUrgent, 30},
		{job.PriorityHigh, 20},
		{job.PriorityMedium, 10},
		{job.PriorityLow, 5},
	}
	for _, tc := range cases {
		j := candidateJob(func(j *job.Job) { j.Priority = tc.priority })
		b := Score(scorer(nil, nil), j)
		if b.Priority != tc.want {
			t.Errorf("%s: Priority = %v, want %v", tc.priority, b.Priority, tc.want)
		}
	}
}

func TestScoreDistanceBands(t *testing.T) {
	// Offsets chosen along a meridian: 1 degree of latitude is ~111 km.
	cases := []struct {
		name      string
		latOffset float64
		want      float64
	}{
		{"on site", 0, 20},
		{"within 5km", 0.03, 20},
		{"within 10km", 0.07, 15},
		{"within 20km", 0.15, 10},
		{"within 50km", 0.40, 5},
		{"beyond 50km", 1.0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			at := geo.Point{Latitude: springfield.Latitude + tc.latOffset, Longitude: springfield.Longitude}
			b := Score(scorer(nil, &at), candidateJob(nil))
			if b.Distance != tc.want {
				t.Errorf("Distance = %v, want %v", b.Distance, tc.want)
			}
		})
	}
}

func TestScoreNoKnownLocation(t *testing.T) {
	b := Score(scorer(nil, nil), candidateJob(nil))
	if b.Distance != 0 {
		t.Errorf("Distance = %v, want 0 without a known location", b.Distance)
	}
}

func TestRecommendFiltersNonPending(t *testing.T) {
	tech := scorer([]string{"hvac"}, nil)
	candidates := []*job.Job{
		candidateJob(func(j *job.Job) { j.Status = job.StatusAssigned }),
		candidateJob(nil),
		candidateJob(func(j *job.Job) { j.Status = job.StatusCompleted }),
	}

	got := Recommend(tech, candidates, 0)
	if len(got) != 1 || got[0].ID.String() != candidates[1].ID.String() {
		t.Errorf("got %d jobs, want only the pending one", len(got))
	}
}

func TestRecommendOrdersByScore(t *testing.T) {
	tech := scorer([]string{"hvac"}, nil)
	low := candidateJob(func(j *job.Job) {
		j.Priority = job.PriorityLow
		j.Requirements.Skills = []string{"plumbing"}
	})
	high := candidateJob(func(j *job.Job) {
		j.Requirements.Skills = []string{"hvac"}
	})
	mid := candidateJob(func(j *job.Job) {
		j.Priority = job.PriorityMedium
		j.Requirements.Skills = []string{"hvac"}
	})

	got := Recommend(tech, []*job.Job{low, high, mid}, 0)
	want := []*job.Job{high, mid, low}
	for i := range want {
		if got[i].ID.String() != want[i].ID.String() {
			t.Fatalf("got[%d] = %s, want %s", i, got[i].ID, want[i].ID)
		}
	}
}

func TestRecommendTiesKeepInputOrder(t *testing.T) {
	tech := scorer(nil, nil)
	first := candidateJob(nil)
	second := candidateJob(nil)

	got := Recommend(tech, []*job.Job{first, second}, 0)
	if got[0].ID.String() != first.ID.String() || got[1].ID.String() != second.ID.String() {
		t.Error("equal scores reordered")
	}
}

func TestRecommendMax(t *testing.T) {
	tech := scorer(nil, nil)
	candidates := []*job.Job{candidateJob(nil), candidateJob(nil), candidateJob(nil)}

	if got := Recommend(tech, candidates, 2); len(got) != 2 {
		t.Errorf("len = %d, want 2", len(got))
	}
	if got := Recommend(tech, candidates, 0); len(got) != 3 {
		t.Errorf("len = %d with no cap, want 3", len(got))
	}
	if got := Recommend(tech, candidates, 10); len(got) != 3 {
		t.Errorf("len = %d with large cap, want 3", len(got))
	}
}
