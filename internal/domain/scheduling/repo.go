package scheduling

import (
	"context"

	"github.com/google/uuid"

	"github.com/gastroclinic/clinic/internal/platform/schema"
)

type AppointmentRepository interface {
	Create(ctx context.Context, in *AppointmentInput) (*Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	// List returns appointments joined with their patient and doctor.
	List(ctx context.Context, f Filter) ([]*Appointment, error)
	Update(ctx context.Context, id uuid.UUID, in *AppointmentInput, fields schema.Fields) (*Appointment, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
