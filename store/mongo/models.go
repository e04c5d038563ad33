package mongo

import (
	"fmt"
	"time"

	"github.com/fieldops-hq/fieldops"
	"github.com/fieldops-hq/fieldops/assignment"
	"github.com/fieldops-hq/fieldops/geo"
	"github.com/fieldops-hq/fieldops/id"
	"github.com/fieldops-hq/fieldops/job"
	"github.com/fieldops-hq/fieldops/technician"
)

// ── Job model ─────────────────────────────────────────────────────

type locationModel struct {
	Address            string  `bson:"address"`
	City               string  `bson:"city"`
	State              string  `bson:"state"`
	Zip                string  `bson:"zip"`
	Latitude           float64 `bson:"latitude"`
	Longitude          float64 `bson:"longitude"`
	Landmark           string  `bson:"landmark,omitempty"`
	AccessInstructions string  `bson:"access_instructions,omitempty"`
}

type customerModel struct {
	Name           string         `bson:"name"`
	Phone          string         `bson:"phone"`
	Email          string         `bson:"email,omitempty"`
	AlternatePhone string         `bson:"alternate_phone,omitempty"`
	Address        *locationModel `bson:"address,omitempty"`
}

type equipmentModel struct {
	Name         string `bson:"name"`
	Model        string `bson:"model"`
	Quantity     int    `bson:"quantity"`
	SerialNumber string `bson:"serial_number,omitempty"`
}

type requirementsModel struct {
	Skills    []string         `bson:"skills"`
	Equipment []equipmentModel `bson:"equipment,omitempty"`
	Tools     []string         `bson:"tools"`
}

type timeSlotModel struct {
	Start string `bson:"start"`
	End   string `bson:"end"`
}

type noteModel struct {
	Author    string    `bson:"author"`
	Text      string    `bson:"text"`
	CreatedAt time.Time `bson:"created_at"`
}

type completionModel struct {
	CompletionNotes   string   `bson:"completion_notes,omitempty"`
	WorkSummary       string   `bson:"work_summary,omitempty"`
	ActualDuration    *int     `bson:"actual_duration,omitempty"`
	CustomerSignature string   `bson:"customer_signature,omitempty"`
	Photos            []string `bson:"photos,omitempty"`
}

type jobModel struct {
	ID          string `bson:"_id"`
	Title       string `bson:"title"`
	Description string `bson:"description"`
	Type        string `bson:"type"`
	Priority    string `bson:"priority"`
	Status      string `bson:"status"`

	Customer customerModel `bson:"customer"`
	Location locationModel `bson:"location"`

	AssignedTechnicianID string     `bson:"assigned_technician_id,omitempty"`
	AssignedBy           string     `bson:"assigned_by,omitempty"`
	AssignedAt           *time.Time `bson:"assigned_at,omitempty"`

	ScheduledDate     time.Time     `bson:"scheduled_date"`
	ScheduledTimeSlot timeSlotModel `bson:"scheduled_time_slot"`
	EstimatedDuration int           `bson:"estimated_duration"`

	Requirements requirementsModel `bson:"requirements"`

	StartedAt      *time.Time       `bson:"started_at,omitempty"`
	CompletedAt    *time.Time       `bson:"completed_at,omitempty"`
	ActualDuration *int             `bson:"actual_duration,omitempty"`
	Completion     *completionModel `bson:"completion,omitempty"`

	PublicNotes   []noteModel `bson:"public_notes,omitempty"`
	InternalNotes []noteModel `bson:"internal_notes,omitempty"`

	CreatedBy string    `bson:"created_by"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toLocationModel(l job.Location) locationModel {
	return locationModel(l)
}

func fromLocationModel(m locationModel) job.Location {
	return job.Location(m)
}

func toJobModel(j *job.Job) *jobModel {
	m := &jobModel{
		ID:          j.ID.String(),
		Title:       j.Title,
		Description: j.Description,
		Type:        string(j.Type),
		Priority:    string(j.Priority),
		Status:      string(j.Status),
		Customer: customerModel{
			Name:           j.Customer.Name,
			Phone:          j.Customer.Phone,
			Email:          j.Customer.Email,
			AlternatePhone: j.Customer.AlternatePhone,
		},
		Location:             toLocationModel(j.Location),
		AssignedTechnicianID: j.AssignedTechnicianID.String(),
		AssignedBy:           j.AssignedBy,
		AssignedAt:           j.AssignedAt,
		ScheduledDate:        j.ScheduledDate,
		ScheduledTimeSlot:    timeSlotModel(j.ScheduledTimeSlot),
		EstimatedDuration:    j.EstimatedDuration,
		Requirements: requirementsModel{
			Skills: j.Requirements.Skills,
			Tools:  j.Requirements.Tools,
		},
		StartedAt:      j.StartedAt,
		CompletedAt:    j.CompletedAt,
		ActualDuration: j.ActualDuration,
		CreatedBy:      j.CreatedBy,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}

	if j.Customer.Address != nil {
		addr := toLocationModel(*j.Customer.Address)
		m.Customer.Address = &addr
	}
	for _, eq := range j.Requirements.Equipment {
		m.Requirements.Equipment = append(m.Requirements.Equipment, equipmentModel(eq))
	}
	if j.Completion != nil {
		m.Completion = &completionModel{
			CompletionNotes:   j.Completion.CompletionNotes,
			WorkSummary:       j.Completion.WorkSummary,
			ActualDuration:    j.Completion.ActualDuration,
			CustomerSignature: j.Completion.CustomerSignature,
			Photos:            j.Completion.Photos,
		}
	}
	for _, n := range j.PublicNotes {
		m.PublicNotes = append(m.PublicNotes, noteModel(n))
	}
	for _, n := range j.InternalNotes {
		m.InternalNotes = append(m.InternalNotes, noteModel(n))
	}

	return m
}

// fromJobModel converts a stored document back into the domain model. It
// fails closed: an unparsable id or an enum value outside the domain
// surfaces fieldops.ErrMalformedRecord instead of leaking raw data.
func fromJobModel(m *jobModel) (*job.Job, error) {
	parsedID, err := id.ParseJobID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: job %q: %v", fieldops.ErrMalformedRecord, m.ID, err)
	}
	if !job.Status(m.Status).Valid() {
		return nil, fmt.Errorf("%w: job %q: unknown status %q", fieldops.ErrMalformedRecord, m.ID, m.Status)
	}
	if !job.Type(m.Type).Valid() {
		return nil, fmt.Errorf("%w: job %q: unknown type %q", fieldops.ErrMalformedRecord, m.ID, m.Type)
	}
	if !job.Priority(m.Priority).Valid() {
		return nil, fmt.Errorf("%w: job %q: unknown priority %q", fieldops.ErrMalformedRecord, m.ID, m.Priority)
	}

	j := &job.Job{
		Entity: fieldops.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:          parsedID,
		Title:       m.Title,
		Description: m.Description,
		Type:        job.Type(m.Type),
		Priority:    job.Priority(m.Priority),
		Status:      job.Status(m.Status),
		Customer: job.Customer{
			Name:           m.Customer.Name,
			Phone:          m.Customer.Phone,
			Email:          m.Customer.Email,
			AlternatePhone: m.Customer.AlternatePhone,
		},
		Location:          fromLocationModel(m.Location),
		AssignedBy:        m.AssignedBy,
		AssignedAt:        m.AssignedAt,
		ScheduledDate:     m.ScheduledDate,
		ScheduledTimeSlot: job.TimeSlot(m.ScheduledTimeSlot),
		EstimatedDuration: m.EstimatedDuration,
		Requirements: job.Requirements{
			Skills: m.Requirements.Skills,
			Tools:  m.Requirements.Tools,
		},
		StartedAt:      m.StartedAt,
		CompletedAt:    m.CompletedAt,
		ActualDuration: m.ActualDuration,
		CreatedBy:      m.CreatedBy,
	}

	if m.AssignedTechnicianID != "" {
		techID, tErr := id.ParseTechnicianID(m.AssignedTechnicianID)
		if tErr != nil {
			return nil, fmt.Errorf("%w: job %q: %v", fieldops.ErrMalformedRecord, m.ID, tErr)
		}
		j.AssignedTechnicianID = techID
	}
	if m.Customer.Address != nil {
		addr := fromLocationModel(*m.Customer.Address)
		j.Customer.Address = &addr
	}
	for _, eq := range m.Requirements.Equipment {
		j.Requirements.Equipment = append(j.Requirements.Equipment, job.Equipment(eq))
	}
	if m.Completion != nil {
		j.Completion = &job.Completion{
			CompletionNotes:   m.Completion.CompletionNotes,
			WorkSummary:       m.Completion.WorkSummary,
			ActualDuration:    m.Completion.ActualDuration,
			CustomerSignature: m.Completion.CustomerSignature,
			Photos:            m.Completion.Photos,
		}
	}
	for _, n := range m.PublicNotes {
		j.PublicNotes = append(j.PublicNotes, job.Note(n))
	}
	for _, n := range m.InternalNotes {
		j.InternalNotes = append(j.InternalNotes, job.Note(n))
	}

	return j, nil
}

// ── Technician model ──────────────────────────────────────────────

type locationSampleModel struct {
	Latitude   float64   `bson:"latitude"`
	Longitude  float64   `bson:"longitude"`
	RecordedAt time.Time `bson:"recorded_at"`
}

type technicianModel struct {
	ID     string   `bson:"_id"`
	Name   string   `bson:"name"`
	Email  string   `bson:"email,omitempty"`
	Phone  string   `bson:"phone,omitempty"`
	Role   string   `bson:"role"`
	Active bool     `bson:"active"`
	Skills []string `bson:"skills,omitempty"`

	LastKnownLocation *locationSampleModel `bson:"last_known_location,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

func toTechnicianModel(t *technician.Technician) *technicianModel {
	m := &technicianModel{
		ID:        t.ID.String(),
		Name:      t.Name,
		Email:     t.Email,
		Phone:     t.Phone,
		Role:      string(t.Role),
		Active:    t.Active,
		Skills:    t.Skills,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.LastKnownLocation != nil {
		m.LastKnownLocation = &locationSampleModel{
			Latitude:   t.LastKnownLocation.Point.Latitude,
			Longitude:  t.LastKnownLocation.Point.Longitude,
			RecordedAt: t.LastKnownLocation.RecordedAt,
		}
	}
	return m
}

func fromTechnicianModel(m *technicianModel) (*technician.Technician, error) {
	parsedID, err := id.ParseTechnicianID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: technician %q: %v", fieldops.ErrMalformedRecord, m.ID, err)
	}

	t := &technician.Technician{
		Entity: fieldops.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:     parsedID,
		Name:   m.Name,
		Email:  m.Email,
		Phone:  m.Phone,
		Role:   technician.Role(m.Role),
		Active: m.Active,
		Skills: m.Skills,
	}
	if m.LastKnownLocation != nil {
		t.LastKnownLocation = &technician.LocationSample{
			Point: geo.Point{
				Latitude:  m.LastKnownLocation.Latitude,
				Longitude: m.LastKnownLocation.Longitude,
			},
			RecordedAt: m.LastKnownLocation.RecordedAt,
		}
	}
	return t, nil
}

// ── Assignment model ──────────────────────────────────────────────

type assignmentModel struct {
	ID           string    `bson:"_id"`
	JobID        string    `bson:"job_id"`
	TechnicianID string    `bson:"technician_id"`
	AssignedBy   string    `bson:"assigned_by"`
	AssignedAt   time.Time `bson:"assigned_at"`
	Note         string    `bson:"note,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

func toAssignmentModel(a *assignment.Assignment) *assignmentModel {
	return &assignmentModel{
		ID:           a.ID.String(),
		JobID:        a.JobID.String(),
		TechnicianID: a.TechnicianID.String(),
		AssignedBy:   a.AssignedBy,
		AssignedAt:   a.AssignedAt,
		Note:         a.Note,
		CreatedAt:    a.CreatedAt,
	}
}

func fromAssignmentModel(m *assignmentModel) (*assignment.Assignment, error) {
	assignmentID, err := id.ParseAssignmentID(m.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: assignment %q: %v", fieldops.ErrMalformedRecord, m.ID, err)
	}
	jobID, err := id.ParseJobID(m.JobID)
	if err != nil {
		return nil, fmt.Errorf("%w: assignment %q: %v", fieldops.ErrMalformedRecord, m.ID, err)
	}
	techID, err := id.ParseTechnicianID(m.TechnicianID)
	if err != nil {
		return nil, fmt.Errorf("%w: assignment %q: %v", fieldops.ErrMalformedRecord, m.ID, err)
	}

	return &assignment.Assignment{
		ID:           assignmentID,
		JobID:        jobID,
		TechnicianID: techID,
		AssignedBy:   m.AssignedBy,
		AssignedAt:   m.AssignedAt,
		Note:         m.Note,
		CreatedAt:    m.CreatedAt,
	}, nil
}
