package job

import (
	"fmt"
	"time"

	"github.com/fieldops-hq/fieldops"
)

// Status represents the lifecycle state of a job.
type Status string

const (
	// StatusPending means the job is waiting to be assigned.
	StatusPending Status = "pending"
	// StatusAssigned means a technician has been assigned but work has not started.
	StatusAssigned Status = "assigned"
	// StatusInProgress means the technician is on site working.
	StatusInProgress Status = "in_progress"
	// StatusCompleted means the work is done. Terminal.
	StatusCompleted Status = "completed"
	// StatusOnHold means work is paused pending a blocker.
	StatusOnHold Status = "on_hold"
	// StatusCancelled means the job was called off. Terminal.
	StatusCancelled Status = "cancelled"
)

// transitions is the full set of legal moves. Terminal states have no
// entries, and the table carries no self-loops: requesting the current
// status again is always rejected.
var transitions = map[Status][]Status{
	StatusPending:    {StatusAssigned, StatusCancelled},
	StatusAssigned:   {StatusInProgress, StatusCancelled, StatusOnHold},
	StatusInProgress: {StatusCompleted, StatusOnHold, StatusCancelled},
	StatusOnHold:     {StatusAssigned, StatusInProgress, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

// Valid reports whether s is a member of the status enumeration.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether s accepts no further transitions.
func (s Status) Terminal() bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// CanTransition reports whether moving from s to next is legal.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStates returns the legal next states for s. Empty for terminal or
// unknown states.
func (s Status) NextStates() []Status {
	next := transitions[s]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// Transition moves j to next, enforcing the transition table and applying
// the timestamp side effects: entering in_progress stamps StartedAt and
// entering completed stamps CompletedAt, each only if not already set.
// Illegal moves, including self-transitions and any exit from a terminal
// state, fail with fieldops.ErrInvalidTransition and leave j untouched.
func Transition(j *Job, next Status, now time.Time) error {
	if !j.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", fieldops.ErrInvalidTransition, j.Status, next)
	}

	j.Status = next
	switch next {
	case StatusInProgress:
		if j.StartedAt == nil {
			t := now
			j.StartedAt = &t
		}
	case StatusCompleted:
		if j.CompletedAt == nil {
			t := now
			j.CompletedAt = &t
		}
	}
	j.UpdatedAt = now

	return nil
}
