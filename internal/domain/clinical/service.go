package clinical

import (
	"context"

	"github.com/google/uuid"

	"github.com/gastroclinic/clinic/internal/platform/schema"
)

type Service struct {
	procedures ProcedureRepository
	evolutions EvolutionRepository
}

func NewService(procedures ProcedureRepository, evolutions EvolutionRepository) *Service {
	return &Service{procedures: procedures, evolutions: evolutions}
}

// =========== Procedure ===========

func (s *Service) CreateProcedure(ctx context.Context, in *ProcedureInput) (*Procedure, error) {
	if err := schema.Validate(in); err != nil {
		return nil, err
	}
	return s.procedures.Create(ctx, in)
}

func (s *Service) GetProcedure(ctx context.Context, id uuid.UUID) (*Procedure, error) {
	return s.procedures.GetByID(ctx, id)
}

func (s *Service) ListProcedures(ctx context.Context, limit, offset int) ([]*Procedure, error) {
	return s.procedures.List(ctx, limit, offset)
}

// UpdateProcedure applies a partial update. Medications sent here are
// validated but not stored.
func (s *Service) UpdateProcedure(ctx context.Context, id uuid.UUID, in *ProcedureInput, fields schema.Fields) (*Procedure, error) {
	if err := schema.ValidatePartial(in, fields); err != nil {
		return nil, err
	}
	return s.procedures.Update(ctx, id, in, fields)
}

// =========== Patient Evolution ===========

func (s *Service) CreateEvolution(ctx context.Context, in *EvolutionInput) (*Evolution, error) {
	if err := schema.Validate(in); err != nil {
		return nil, err
	}
	return s.evolutions.Create(ctx, in)
}

func (s *Service) GetEvolution(ctx context.Context, id uuid.UUID) (*Evolution, error) {
	return s.evolutions.GetByID(ctx, id)
}

func (s *Service) ListPatientEvolutions(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*EvolutionDetail, error) {
	return s.evolutions.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) UpdateEvolution(ctx context.Context, id uuid.UUID, in *EvolutionInput, fields schema.Fields) (*Evolution, error) {
	if err := schema.ValidatePartial(in, fields); err != nil {
		return nil, err
	}
	return s.evolutions.Update(ctx, id, in, fields)
}

func (s *Service) DeleteEvolution(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.evolutions.Delete(ctx, id)
}
