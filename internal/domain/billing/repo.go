package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/gastroclinic/clinic/internal/platform/schema"
)

type BillingRepository interface {
	Create(ctx context.Context, in *BillingInput) (*Billing, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Billing, error)
	// List returns records joined with the patient and, when linked, the
	// appointment.
	List(ctx context.Context, f Filter) ([]*Billing, error)
	Update(ctx context.Context, id uuid.UUID, in *BillingInput, fields schema.Fields) (*Billing, error)
}
