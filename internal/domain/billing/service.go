package billing

import (
	"context"

	"github.com/google/uuid"

	"github.com/gastroclinic/clinic/internal/platform/calendar"
	"github.com/gastroclinic/clinic/internal/platform/schema"
)

type Service struct {
	records BillingRepository
	cal     *calendar.Calendar
}

func NewService(records BillingRepository, cal *calendar.Calendar) *Service {
	return &Service{records: records, cal: cal}
}

// CreateBilling stores a billing record; billingDate defaults to now.
func (s *Service) CreateBilling(ctx context.Context, in *BillingInput) (*Billing, error) {
	if err := schema.Validate(in); err != nil {
		return nil, err
	}
	if in.BillingDate == nil {
		in.BillingDate = schema.NewTimestamp(s.cal.Now())
	}
	s.stampPaid(in, nil)
	return s.records.Create(ctx, in)
}

func (s *Service) GetBilling(ctx context.Context, id uuid.UUID) (*Billing, error) {
	return s.records.GetByID(ctx, id)
}

func (s *Service) ListBilling(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*Billing, error) {
	return s.records.List(ctx, Filter{PatientID: patientID, Limit: limit, Offset: offset})
}

func (s *Service) UpdateBilling(ctx context.Context, id uuid.UUID, in *BillingInput, fields schema.Fields) (*Billing, error) {
	if err := schema.ValidatePartial(in, fields); err != nil {
		return nil, err
	}
	s.stampPaid(in, fields)
	return s.records.Update(ctx, id, in, fields)
}

// stampPaid sets paidDate to now when a record is marked paid without one,
// so that it counts towards the month's revenue. On update the stamp only
// fills a NULL paid_date; re-sending status "paid" keeps the original date.
func (s *Service) stampPaid(in *BillingInput, fields schema.Fields) {
	if in.Status == nil || *in.Status != StatusPaid {
		return
	}
	if in.PaidDate != nil || fields.Has("paidDate") {
		return
	}
	in.PaidDate = schema.NewTimestamp(s.cal.Now())
	in.stamped = append(in.stamped, "paid_date")
	if fields != nil {
		fields["paidDate"] = true
	}
}
