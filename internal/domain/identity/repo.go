package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/gastroclinic/clinic/internal/platform/schema"
)

type UserRepository interface {
	Create(ctx context.Context, in *UserInput) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// GetByUsername also loads the password hash.
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, role string) ([]*User, error)
	Count(ctx context.Context) (int, error)
}

type PatientRepository interface {
	Create(ctx context.Context, in *PatientInput) (*Patient, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, error)
	Update(ctx context.Context, id uuid.UUID, in *PatientInput, fields schema.Fields) (*Patient, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	Search(ctx context.Context, query string) ([]*Patient, error)
}
