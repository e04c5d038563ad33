// Package recommend ranks a technician's candidate job pool by skill
// match, priority, and distance. Scores are additive and each component is
// bounded, so the maximum possible score is 100.
package recommend

import (
	"sort"

	"github.com/fieldops-hq/fieldops/geo"
	"github.com/fieldops-hq/fieldops/job"
	"github.com/fieldops-hq/fieldops/technician"
)

// skillWeight is the score of a complete skill match.
const skillWeight = 50.0

var priorityScores = map[job.Priority]float64{
	job.PriorityUrgent: 30,
	job.PriorityHigh:   20,
	job.PriorityMedium: 10,
	job.PriorityLow:    5,
}

// distanceBands maps a distance ceiling in kilometers to its score,
// evaluated nearest band first.
var distanceBands = []struct {
	maxKm float64
	score float64
}{
	{5, 20},
	{10, 15},
	{20, 10},
	{50, 5},
}

// Breakdown itemizes the score components for one candidate job.
type Breakdown struct {
	Skill    float64
	Priority float64
	Distance float64
}

// Total is the additive score of all components.
func (b Breakdown) Total() float64 {
	return b.Skill + b.Priority + b.Distance
}

// Score computes the component breakdown for one candidate job.
//
// Skill is proportional to the fraction of required skills the technician
// holds; a job requiring no skills counts as a full match. Distance is
// scored only when the technician has a last known location.
func Score(t *technician.Technician, j *job.Job) Breakdown {
	b := Breakdown{
		Skill:    skillScore(t.Skills, j.Requirements.Skills),
		Priority: priorityScores[j.Priority],
	}

	if t.LastKnownLocation != nil {
		d := geo.DistanceKm(t.LastKnownLocation.Point, geo.Point{
			Latitude:  j.Location.Latitude,
			Longitude: j.Location.Longitude,
		})
		b.Distance = distanceScore(d)
	}

	return b
}

// Recommend ranks pending candidates for t by descending score and returns
// at most max of them. Ties keep their input order; with stores listing by
// creation time the output is reproducible across runs. A non-positive max
// means no cap.
func Recommend(t *technician.Technician, candidates []*job.Job, max int) []*job.Job {
	pending := make([]*job.Job, 0, len(candidates))
	for _, j := range candidates {
		if j.Status == job.StatusPending {
			pending = append(pending, j)
		}
	}

	scores := make(map[string]float64, len(pending))
	for _, j := range pending {
		scores[j.ID.String()] = Score(t, j).Total()
	}

	sort.SliceStable(pending, func(i, k int) bool {
		return scores[pending[i].ID.String()] > scores[pending[k].ID.String()]
	})

	if max > 0 && len(pending) > max {
		pending = pending[:max]
	}
	return pending
}

func skillScore(have, required []string) float64 {
	if len(required) == 0 {
		// No requirements counts as a full match; also avoids dividing by
		// zero.
		return skillWeight
	}

	haveSet := make(map[string]struct{}, len(have))
	for _, s := range have {
		haveSet[s] = struct{}{}
	}

	matched := 0
	for _, s := range required {
		if _, ok := haveSet[s]; ok {
			matched++
		}
	}

	return skillWeight * float64(matched) / float64(len(required))
}

func distanceScore(km float64) float64 {
	for _, band := range distanceBands {
		if km <= band.maxKm {
			return band.score
		}
	}
	return 0
}
