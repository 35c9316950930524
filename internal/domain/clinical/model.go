package clinical

import (
	"time"

	"github.com/google/uuid"

	"github.com/gastroclinic/clinic/internal/domain/identity"
	"github.com/gastroclinic/clinic/internal/domain/scheduling"
	"github.com/gastroclinic/clinic/internal/platform/db"
	"github.com/gastroclinic/clinic/internal/platform/schema"
)

// =========== Procedure ===========

const (
	ProcedureScheduled  = "scheduled"
	ProcedureInProgress = "in_progress"
	ProcedureCompleted  = "completed"
	ProcedureCancelled  = "cancelled"
)

var ProcedureStatuses = []string{ProcedureScheduled, ProcedureInProgress, ProcedureCompleted, ProcedureCancelled}

// ProcedureTypes are the procedures offered when scheduling. The stored
// procedure type is free text.
var ProcedureTypes = []string{
	"Upper Endoscopy (EGD)",
	"Colonoscopy",
	"Flexible Sigmoidoscopy",
	"ERCP",
	"Endoscopic Ultrasound (EUS)",
	"Capsule Endoscopy",
	"PEG Placement",
	"Polypectomy",
	"Esophageal Dilation",
	"Liver Biopsy",
}

type Medication struct {
	Name         string `json:"name" validate:"required,min=1"`
	Dosage       string `json:"dosage"`
	Instructions string `json:"instructions"`
}

type Procedure struct {
	ID                   uuid.UUID    `json:"id"`
	AppointmentID        uuid.UUID    `json:"appointmentId"`
	PatientID            uuid.UUID    `json:"patientId"`
	DoctorID             uuid.UUID    `json:"doctorId"`
	ProcedureType        string       `json:"procedureType"`
	Status               string       `json:"status"`
	ScheduledDate        time.Time    `json:"scheduledDate"`
	StartTime            *time.Time   `json:"startTime"`
	EndTime              *time.Time   `json:"endTime"`
	Findings             *string      `json:"findings"`
	Recommendations      *string      `json:"recommendations"`
	Complications        *string      `json:"complications"`
	Medications          []Medication `json:"medications"`
	FollowUpRequired     bool         `json:"followUpRequired"`
	FollowUpInstructions *string      `json:"followUpInstructions"`
	PathologyOrdered     bool         `json:"pathologyOrdered"`
	PathologyResults     *string      `json:"pathologyResults"`
	CreatedAt            time.Time    `json:"createdAt"`
	UpdatedAt            time.Time    `json:"updatedAt"`

	Patient     *identity.Patient   `json:"patient,omitempty"`
	Doctor      *identity.User      `json:"doctor,omitempty"`
	Appointment *scheduling.Summary `json:"appointment,omitempty"`
}

var procedureFields = []string{
	"id", "appointment_id", "patient_id", "doctor_id", "procedure_type", "status", "scheduled_date",
	"start_time", "end_time", "findings", "recommendations", "complications", "medications",
	"follow_up_required", "follow_up_instructions", "pathology_ordered", "pathology_results",
	"created_at", "updated_at",
}

func (p *Procedure) scanTargets() []any {
	return []any{
		&p.ID, &p.AppointmentID, &p.PatientID, &p.DoctorID, &p.ProcedureType, &p.Status, &p.ScheduledDate,
		&p.StartTime, &p.EndTime, &p.Findings, &p.Recommendations, &p.Complications, &p.Medications,
		&p.FollowUpRequired, &p.FollowUpInstructions, &p.PathologyOrdered, &p.PathologyResults,
		&p.CreatedAt, &p.UpdatedAt,
	}
}

type ProcedureInput struct {
	AppointmentID        *uuid.UUID        `json:"appointmentId" db:"appointment_id" validate:"required"`
	PatientID            *uuid.UUID        `json:"patientId" db:"patient_id" validate:"required"`
	DoctorID             *uuid.UUID        `json:"doctorId" db:"doctor_id" validate:"required"`
	ProcedureType        *string           `json:"procedureType" db:"procedure_type" validate:"required,min=1,max=100"`
	Status               *string           `json:"status" db:"status" validate:"omitnil,notnull,oneof=scheduled in_progress completed cancelled"`
	ScheduledDate        *schema.Timestamp `json:"scheduledDate" db:"scheduled_date" validate:"required"`
	StartTime            *schema.Timestamp `json:"startTime" db:"start_time"`
	EndTime              *schema.Timestamp `json:"endTime" db:"end_time"`
	Findings             *string           `json:"findings" db:"findings"`
	Recommendations      *string           `json:"recommendations" db:"recommendations"`
	Complications        *string           `json:"complications" db:"complications"`
	Medications          *[]Medication     `json:"medications" db:"medications" validate:"omitnil,notnull,dive"`
	FollowUpRequired     *bool             `json:"followUpRequired" db:"follow_up_required" validate:"omitnil,notnull"`
	FollowUpInstructions *string           `json:"followUpInstructions" db:"follow_up_instructions"`
	PathologyOrdered     *bool             `json:"pathologyOrdered" db:"pathology_ordered" validate:"omitnil,notnull"`
	PathologyResults     *string           `json:"pathologyResults" db:"pathology_results"`
}

// medications are set at creation only.
var procedureImmutableOnUpdate = []string{"medications"}

// =========== Patient Evolution ===========

type Prescription struct {
	Medication string `json:"medication" validate:"required,min=1"`
	Dosage     string `json:"dosage"`
	Frequency  string `json:"frequency"`
	Duration   string `json:"duration"`
}

// Evolution is a dated clinical progress note.
type Evolution struct {
	ID                      uuid.UUID      `json:"id"`
	PatientID               uuid.UUID      `json:"patientId"`
	AppointmentID           *uuid.UUID     `json:"appointmentId"`
	DoctorID                uuid.UUID      `json:"doctorId"`
	EvolutionDate           time.Time      `json:"evolutionDate"`
	ChiefComplaint          *string        `json:"chiefComplaint"`
	HistoryOfPresentIllness *string        `json:"historyOfPresentIllness"`
	PhysicalExamination     *string        `json:"physicalExamination"`
	Assessment              *string        `json:"assessment"`
	Plan                    *string        `json:"plan"`
	Prescriptions           []Prescription `json:"prescriptions"`
	NextAppointment         *string        `json:"nextAppointment"`
	Observations            *string        `json:"observations"`
	CreatedAt               time.Time      `json:"createdAt"`
	UpdatedAt               time.Time      `json:"updatedAt"`

	Patient *identity.Patient `json:"patient,omitempty"`
	Doctor  *identity.User    `json:"doctor,omitempty"`
}

// EvolutionDetail is an enriched evolution. Appointment is always rendered,
// as null when the note is not tied to a visit.
type EvolutionDetail struct {
	*Evolution
	Appointment *scheduling.Summary `json:"appointment"`
}

var evolutionFields = []string{
	"id", "patient_id", "appointment_id", "doctor_id", "evolution_date", "chief_complaint",
	"history_of_present_illness", "physical_examination", "assessment", "plan", "prescriptions",
	"next_appointment", "observations", "created_at", "updated_at",
}

func (e *Evolution) scanTargets() []any {
	return []any{
		&e.ID, &e.PatientID, &e.AppointmentID, &e.DoctorID, &e.EvolutionDate, &e.ChiefComplaint,
		&e.HistoryOfPresentIllness, &e.PhysicalExamination, &e.Assessment, &e.Plan, &e.Prescriptions,
		&e.NextAppointment, &e.Observations, &e.CreatedAt, &e.UpdatedAt,
	}
}

type EvolutionInput struct {
	PatientID               *uuid.UUID        `json:"patientId" db:"patient_id" validate:"required"`
	AppointmentID           *uuid.UUID        `json:"appointmentId" db:"appointment_id"`
	DoctorID                *uuid.UUID        `json:"doctorId" db:"doctor_id" validate:"required"`
	EvolutionDate           *schema.Timestamp `json:"evolutionDate" db:"evolution_date" validate:"omitnil,notnull"`
	ChiefComplaint          *string           `json:"chiefComplaint" db:"chief_complaint"`
	HistoryOfPresentIllness *string           `json:"historyOfPresentIllness" db:"history_of_present_illness"`
	PhysicalExamination     *string           `json:"physicalExamination" db:"physical_examination"`
	Assessment              *string           `json:"assessment" db:"assessment"`
	Plan                    *string           `json:"plan" db:"plan"`
	Prescriptions           *[]Prescription   `json:"prescriptions" db:"prescriptions" validate:"omitnil,notnull,dive"`
	NextAppointment         *string           `json:"nextAppointment" db:"next_appointment"`
	Observations            *string           `json:"observations" db:"observations"`
}

func procedureColumns(alias string) string { return db.Qualify(alias, procedureFields...) }

func evolutionColumns(alias string) string { return db.Qualify(alias, evolutionFields...) }
