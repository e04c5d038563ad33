package job

import (
	"time"

	"github.com/fieldops-hq/fieldops"
	"github.com/fieldops-hq/fieldops/id"
)

// Type classifies the kind of field work a job involves.
type Type string

const (
	TypeInstallation Type = "installation"
	TypeRepair       Type = "repair"
	TypeMaintenance  Type = "maintenance"
	TypeInspection   Type = "inspection"
	TypeUpgrade      Type = "upgrade"
	TypeEmergency    Type = "emergency"
)

// Valid reports whether t is a member of the type enumeration.
func (t Type) Valid() bool {
	switch t {
	case TypeInstallation, TypeRepair, TypeMaintenance, TypeInspection, TypeUpgrade, TypeEmergency:
		return true
	}
	return false
}

// Priority ranks how urgently a job needs attention.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a member of the priority enumeration.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Location is a street address with coordinates and optional field notes.
type Location struct {
	Address            string  `json:"address" validate:"required"`
	City               string  `json:"city" validate:"required"`
	State              string  `json:"state" validate:"required"`
	Zip                string  `json:"zip" validate:"required,uszip"`
	Latitude           float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude          float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Landmark           string  `json:"landmark,omitempty"`
	AccessInstructions string  `json:"access_instructions,omitempty"`
}

// Customer identifies who the work is for. The embedded address is optional;
// the job's own Location is where the work happens.
type Customer struct {
	Name           string    `json:"name" validate:"required"`
	Phone          string    `json:"phone" validate:"required,phone"`
	Email          string    `json:"email,omitempty" validate:"omitempty,email"`
	AlternatePhone string    `json:"alternate_phone,omitempty" validate:"omitempty,phone"`
	Address        *Location `json:"address,omitempty"`
}

// Equipment is one line item of equipment a job requires.
type Equipment struct {
	Name         string `json:"name" validate:"required"`
	Model        string `json:"model" validate:"required"`
	Quantity     int    `json:"quantity" validate:"gt=0"`
	SerialNumber string `json:"serial_number,omitempty"`
}

// Requirements lists what a technician needs to carry out a job.
// Tools must be present (non-nil) but may be empty.
type Requirements struct {
	Skills    []string    `json:"skills" validate:"min=1"`
	Equipment []Equipment `json:"equipment" validate:"dive"`
	Tools     []string    `json:"tools" validate:"required"`
}

// TimeSlot is a same-day wall-clock window in 24-hour HH:MM form.
// End must be strictly after Start; slots spanning midnight are not
// supported.
type TimeSlot struct {
	Start string `json:"start" validate:"required,clock24"`
	End   string `json:"end" validate:"required,clock24"`
}

// Note is one entry in a job's public or internal note sequence.
type Note struct {
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Completion carries the artifacts recorded when a job is completed.
// ActualDuration is in minutes and must be positive when present.
type Completion struct {
	CompletionNotes   string   `json:"completion_notes,omitempty" validate:"max=1000"`
	WorkSummary       string   `json:"work_summary,omitempty" validate:"max=2000"`
	ActualDuration    *int     `json:"actual_duration,omitempty" validate:"omitempty,gt=0"`
	CustomerSignature string   `json:"customer_signature,omitempty"`
	Photos            []string `json:"photos,omitempty" validate:"max=10"`
}

// Job represents a unit of field work across its whole lifecycle.
//
// Invariants: Status is always a member of the status enumeration; every job
// has exactly one CreatedBy/CreatedAt; AssignedTechnicianID is set iff the
// status has ever reached assigned or later; ActualDuration is recorded only
// once CompletedAt is set.
type Job struct {
	fieldops.Entity

	ID          id.JobID `json:"id"`
	Title       string   `json:"title" validate:"required,max=100"`
	Description string   `json:"description" validate:"required,max=1000"`
	Type        Type     `json:"type" validate:"required,oneof=installation repair maintenance inspection upgrade emergency"`
	Priority    Priority `json:"priority" validate:"required,oneof=low medium high urgent"`
	Status      Status   `json:"status"`

	Customer Customer `json:"customer"`
	Location Location `json:"location"`

	AssignedTechnicianID id.TechnicianID `json:"assigned_technician_id,omitempty"`
	AssignedBy           string          `json:"assigned_by,omitempty"`
	AssignedAt           *time.Time      `json:"assigned_at,omitempty"`

	ScheduledDate     time.Time `json:"scheduled_date" validate:"required"`
	ScheduledTimeSlot TimeSlot  `json:"scheduled_time_slot"`
	// EstimatedDuration is in minutes, within (0, 1440].
	EstimatedDuration int `json:"estimated_duration" validate:"gt=0,lte=1440"`

	Requirements Requirements `json:"requirements"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	// ActualDuration is in minutes, recorded at completion.
	ActualDuration *int        `json:"actual_duration,omitempty"`
	Completion     *Completion `json:"completion,omitempty"`

	PublicNotes   []Note `json:"public_notes,omitempty"`
	InternalNotes []Note `json:"internal_notes,omitempty"`

	CreatedBy string `json:"created_by" validate:"required"`
}
