// Package technician defines the technician model and its persistence
// contract. Technicians are managed outside the engine; the engine reads
// them for assignment eligibility and recommendation scoring.
package technician

import (
	"context"
	"time"

	"github.com/fieldops-hq/fieldops"
	"github.com/fieldops-hq/fieldops/geo"
	"github.com/fieldops-hq/fieldops/id"
)

// Role is the access role of a workforce actor.
type Role string

const (
	RoleTechnician Role = "technician"
	RoleDispatcher Role = "dispatcher"
	RoleAdmin      Role = "admin"
)

// LocationSample is a technician's last reported position. Raw geolocation
// sampling happens outside the engine; only the latest sample is read here.
type LocationSample struct {
	Point      geo.Point `json:"point"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Technician is an actor eligible to be assigned jobs, distinguished by
// role and active flag.
type Technician struct {
	fieldops.Entity

	ID     id.TechnicianID `json:"id"`
	Name   string          `json:"name"`
	Email  string          `json:"email,omitempty"`
	Phone  string          `json:"phone,omitempty"`
	Role   Role            `json:"role"`
	Active bool            `json:"active"`
	Skills []string        `json:"skills,omitempty"`

	// LastKnownLocation is nil when the technician has never reported a
	// position; distance scoring is skipped in that case.
	LastKnownLocation *LocationSample `json:"last_known_location,omitempty"`
}

// Store defines the persistence contract for technicians.
type Store interface {
	// PutTechnician creates or replaces a technician record.
	PutTechnician(ctx context.Context, t *Technician) error

	// GetTechnician retrieves a technician by ID.
	GetTechnician(ctx context.Context, techID id.TechnicianID) (*Technician, error)

	// ListTechnicians returns all technicians ordered by name.
	ListTechnicians(ctx context.Context) ([]*Technician, error)
}
