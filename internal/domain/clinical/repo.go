package clinical

import (
	"context"

	"github.com/google/uuid"

	"github.com/gastroclinic/clinic/internal/platform/schema"
)

type ProcedureRepository interface {
	Create(ctx context.Context, in *ProcedureInput) (*Procedure, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Procedure, error)
	// List returns procedures joined with patient, doctor and appointment.
	List(ctx context.Context, limit, offset int) ([]*Procedure, error)
	Update(ctx context.Context, id uuid.UUID, in *ProcedureInput, fields schema.Fields) (*Procedure, error)
}

type EvolutionRepository interface {
	Create(ctx context.Context, in *EvolutionInput) (*Evolution, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Evolution, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*EvolutionDetail, error)
	Update(ctx context.Context, id uuid.UUID, in *EvolutionInput, fields schema.Fields) (*Evolution, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}
