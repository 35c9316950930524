package billing

import (
	"time"

	"github.com/google/uuid"

	"github.com/gastroclinic/clinic/internal/domain/identity"
	"github.com/gastroclinic/clinic/internal/domain/scheduling"
	"github.com/gastroclinic/clinic/internal/platform/db"
	"github.com/gastroclinic/clinic/internal/platform/schema"
)

const (
	StatusPending   = "pending"
	StatusPaid      = "paid"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
)

var Statuses = []string{StatusPending, StatusPaid, StatusOverdue, StatusCancelled}

// Billing is one billable event. PatientResponsibility is supplied by the
// caller and never derived from Amount and InsuranceCovered.
type Billing struct {
	ID                    uuid.UUID  `json:"id"`
	PatientID             uuid.UUID  `json:"patientId"`
	AppointmentID         *uuid.UUID `json:"appointmentId"`
	ProcedureID           *uuid.UUID `json:"procedureId"`
	Description           string     `json:"description"`
	Amount                float64    `json:"amount"`
	InsuranceCovered      float64    `json:"insuranceCovered"`
	PatientResponsibility float64    `json:"patientResponsibility"`
	Status                string     `json:"status"`
	BillingDate           time.Time  `json:"billingDate"`
	DueDate               time.Time  `json:"dueDate"`
	PaidDate              *time.Time `json:"paidDate"`
	PaymentMethod         *string    `json:"paymentMethod"`
	Notes                 *string    `json:"notes"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`

	Patient     *identity.Patient   `json:"patient,omitempty"`
	Appointment *scheduling.Summary `json:"appointment,omitempty"`
}

var billingFields = []string{
	"id", "patient_id", "appointment_id", "procedure_id", "description", "amount", "insurance_covered",
	"patient_responsibility", "status", "billing_date", "due_date", "paid_date", "payment_method",
	"notes", "created_at", "updated_at",
}

func (b *Billing) scanTargets() []any {
	return []any{
		&b.ID, &b.PatientID, &b.AppointmentID, &b.ProcedureID, &b.Description, &b.Amount, &b.InsuranceCovered,
		&b.PatientResponsibility, &b.Status, &b.BillingDate, &b.DueDate, &b.PaidDate, &b.PaymentMethod,
		&b.Notes, &b.CreatedAt, &b.UpdatedAt,
	}
}

type BillingInput struct {
	PatientID             *uuid.UUID        `json:"patientId" db:"patient_id" validate:"required"`
	AppointmentID         *uuid.UUID        `json:"appointmentId" db:"appointment_id"`
	ProcedureID           *uuid.UUID        `json:"procedureId" db:"procedure_id"`
	Description           *string           `json:"description" db:"description" validate:"required,min=1"`
	Amount                *schema.Decimal   `json:"amount" db:"amount" validate:"required,gte=0,lt=100000000"`
	InsuranceCovered      *schema.Decimal   `json:"insuranceCovered" db:"insurance_covered" validate:"omitnil,notnull,gte=0,lt=100000000"`
	PatientResponsibility *schema.Decimal   `json:"patientResponsibility" db:"patient_responsibility" validate:"required,gte=0,lt=100000000"`
	Status                *string           `json:"status" db:"status" validate:"omitnil,notnull,oneof=pending paid overdue cancelled"`
	BillingDate           *schema.Timestamp `json:"billingDate" db:"billing_date" validate:"omitnil,notnull"`
	DueDate               *schema.Timestamp `json:"dueDate" db:"due_date" validate:"required"`
	PaidDate              *schema.Timestamp `json:"paidDate" db:"paid_date"`
	PaymentMethod         *string           `json:"paymentMethod" db:"payment_method" validate:"omitempty,max=50"`
	Notes                 *string           `json:"notes" db:"notes"`

	// stamped lists columns filled by the service rather than the caller.
	stamped []string
}

// Filter narrows a billing listing.
type Filter struct {
	PatientID *uuid.UUID
	Limit     int
	Offset    int
}

func billingColumns(alias string) string { return db.Qualify(alias, billingFields...) }
