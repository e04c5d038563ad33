// Package stats computes per-status job counts and per-technician workload
// summaries. Everything here is recomputed on demand from a job set and
// never persisted.
package stats

import (
	"time"

	"github.com/fieldops-hq/fieldops/id"
	"github.com/fieldops-hq/fieldops/job"
)

// JobStats holds per-status counts for a job set. Jobs carrying a status
// outside the enumeration are counted only toward Total, by design; there
// is no catch-all bucket.
type JobStats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Assigned   int `json:"assigned"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	OnHold     int `json:"on_hold"`
	Cancelled  int `json:"cancelled"`
}

// Compute counts status occurrences in a single pass.
func Compute(jobs []*job.Job) JobStats {
	var s JobStats
	s.Total = len(jobs)

	for _, j := range jobs {
		switch j.Status {
		case job.StatusPending:
			s.Pending++
		case job.StatusAssigned:
			s.Assigned++
		case job.StatusInProgress:
			s.InProgress++
		case job.StatusCompleted:
			s.Completed++
		case job.StatusOnHold:
			s.OnHold++
		case job.StatusCancelled:
			s.Cancelled++
		}
	}

	return s
}

// TechnicianWorkload summarizes one technician's current load.
type TechnicianWorkload struct {
	TechnicianID   id.TechnicianID `json:"technician_id"`
	ActiveJobs     int             `json:"active_jobs"`
	ScheduledJobs  int             `json:"scheduled_jobs"`
	CompletedToday int             `json:"completed_today"`
	// AverageJobDuration is the mean recorded actual duration in minutes,
	// zero when no completed job carries one.
	AverageJobDuration float64 `json:"average_job_duration"`
}

// ComputeWorkload summarizes the jobs owned by techID. Day boundaries for
// CompletedToday are taken in now's location.
func ComputeWorkload(techID id.TechnicianID, jobs []*job.Job, now time.Time) TechnicianWorkload {
	w := TechnicianWorkload{TechnicianID: techID}

	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfTomorrow := startOfToday.AddDate(0, 0, 1)

	var durationSum, durationCount int
	for _, j := range jobs {
		if j.AssignedTechnicianID.String() != techID.String() {
			continue
		}

		switch j.Status {
		case job.StatusInProgress:
			w.ActiveJobs++
		case job.StatusAssigned:
			w.ScheduledJobs++
		}

		if j.CompletedAt != nil && !j.CompletedAt.Before(startOfToday) && j.CompletedAt.Before(startOfTomorrow) {
			w.CompletedToday++
		}
		if j.ActualDuration != nil {
			durationSum += *j.ActualDuration
			durationCount++
		}
	}

	if durationCount > 0 {
		w.AverageJobDuration = float64(durationSum) / float64(durationCount)
	}

	return w
}
