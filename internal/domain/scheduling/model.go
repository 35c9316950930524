package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/gastroclinic/clinic/internal/domain/identity"
	"github.com/gastroclinic/clinic/internal/platform/db"
	"github.com/gastroclinic/clinic/internal/platform/schema"
)

const (
	TypeConsultation = "consultation"
	TypeEndoscopy    = "endoscopy"
)

const (
	StatusScheduled  = "scheduled"
	StatusConfirmed  = "confirmed"
	StatusCheckedIn  = "checked_in"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no_show"
)

var Types = []string{TypeConsultation, TypeEndoscopy}

var Statuses = []string{
	StatusScheduled, StatusConfirmed, StatusCheckedIn, StatusInProgress,
	StatusCompleted, StatusCancelled, StatusNoShow,
}

// DefaultDuration is the appointment length in minutes when none is given.
const DefaultDuration = 30

type Appointment struct {
	ID              uuid.UUID  `json:"id"`
	PatientID       uuid.UUID  `json:"patientId"`
	DoctorID        uuid.UUID  `json:"doctorId"`
	AppointmentDate time.Time  `json:"appointmentDate"`
	Duration        int        `json:"duration"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	Reason          string     `json:"reason"`
	Notes           *string    `json:"notes"`
	CheckedInAt     *time.Time `json:"checkedInAt"`
	CompletedAt     *time.Time `json:"completedAt"`
	CreatedBy       *uuid.UUID `json:"createdBy"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	Patient *identity.Patient `json:"patient,omitempty"`
	Doctor  *identity.User    `json:"doctor,omitempty"`
}

var appointmentFields = []string{
	"id", "patient_id", "doctor_id", "appointment_date", "duration", "type", "status", "reason",
	"notes", "checked_in_at", "completed_at", "created_by", "created_at", "updated_at",
}

func (a *Appointment) scanTargets() []any {
	return []any{
		&a.ID, &a.PatientID, &a.DoctorID, &a.AppointmentDate, &a.Duration, &a.Type, &a.Status, &a.Reason,
		&a.Notes, &a.CheckedInAt, &a.CompletedAt, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	}
}

// AppointmentInput is the insertable shape of an Appointment.
type AppointmentInput struct {
	PatientID       *uuid.UUID        `json:"patientId" db:"patient_id" validate:"required"`
	DoctorID        *uuid.UUID        `json:"doctorId" db:"doctor_id" validate:"required"`
	AppointmentDate *schema.Timestamp `json:"appointmentDate" db:"appointment_date" validate:"required"`
	Duration        *int              `json:"duration" db:"duration" validate:"omitnil,notnull,min=1,max=1440"`
	Type            *string           `json:"type" db:"type" validate:"omitnil,notnull,oneof=consultation endoscopy"`
	Status          *string           `json:"status" db:"status" validate:"omitnil,notnull,oneof=scheduled confirmed checked_in in_progress completed cancelled no_show"`
	Reason          *string           `json:"reason" db:"reason" validate:"required,min=1"`
	Notes           *string           `json:"notes" db:"notes"`
	CheckedInAt     *schema.Timestamp `json:"checkedInAt" db:"checked_in_at"`
	CompletedAt     *schema.Timestamp `json:"completedAt" db:"completed_at"`
	CreatedBy       *uuid.UUID        `json:"createdBy" db:"created_by"`

	// stamped lists columns filled by the service rather than the caller.
	stamped []string
}

// Summary is the compact appointment embedded in procedure, billing and
// evolution reads.
type Summary struct {
	ID              uuid.UUID `json:"id"`
	AppointmentDate time.Time `json:"appointmentDate"`
	Duration        int       `json:"duration"`
	Type            string    `json:"type"`
	Status          string    `json:"status"`
	Reason          string    `json:"reason"`
}

var summaryFields = []string{"id", "appointment_date", "duration", "type", "status", "reason"}

// SummaryColumns lists the Summary columns qualified with alias.
func SummaryColumns(alias string) string { return db.Qualify(alias, summaryFields...) }

// SummaryScan receives Summary columns from a join that may be outer, in
// which case every column is NULL.
type SummaryScan struct {
	id       *uuid.UUID
	date     *time.Time
	duration *int
	typ      *string
	status   *string
	reason   *string
}

// ScanTargets returns destinations matching SummaryColumns.
func (s *SummaryScan) ScanTargets() []any {
	return []any{&s.id, &s.date, &s.duration, &s.typ, &s.status, &s.reason}
}

// Summary returns nil when the join found no appointment.
func (s *SummaryScan) Summary() *Summary {
	if s.id == nil {
		return nil
	}
	out := &Summary{ID: *s.id}
	if s.date != nil {
		out.AppointmentDate = *s.date
	}
	if s.duration != nil {
		out.Duration = *s.duration
	}
	if s.typ != nil {
		out.Type = *s.typ
	}
	if s.status != nil {
		out.Status = *s.status
	}
	if s.reason != nil {
		out.Reason = *s.reason
	}
	return out
}

// Filter narrows an appointment listing. Zero values mean "no filter".
type Filter struct {
	From      *time.Time
	To        *time.Time
	PatientID *uuid.UUID
	Limit     int
	Offset    int
}
