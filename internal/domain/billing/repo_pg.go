package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gastroclinic/clinic/internal/domain/identity"
	"github.com/gastroclinic/clinic/internal/domain/scheduling"
	"github.com/gastroclinic/clinic/internal/platform/db"
	"github.com/gastroclinic/clinic/internal/platform/schema"
)

type billingRepoPG struct {
	q db.Querier
}

func NewBillingRepo(q db.Querier) BillingRepository {
	return &billingRepoPG{q: q}
}

var billingCols = billingColumns("")

const billingJoins = `billing b
	JOIN patients p ON p.id = b.patient_id
	LEFT JOIN appointments a ON a.id = b.appointment_id`

var enrichedBillingCols = billingColumns("b") + ", " + identity.PatientColumns("p") + ", " +
	scheduling.SummaryColumns("a")

func scanBilling(row pgx.Row) (*Billing, error) {
	var b Billing
	if err := row.Scan(b.scanTargets()...); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanEnrichedBilling(row pgx.Row) (*Billing, error) {
	var (
		b    Billing
		pat  identity.Patient
		appt scheduling.SummaryScan
	)
	targets := append(b.scanTargets(), pat.ScanTargets()...)
	targets = append(targets, appt.ScanTargets()...)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	b.Patient, b.Appointment = &pat, appt.Summary()
	return &b, nil
}

func (r *billingRepoPG) Create(ctx context.Context, in *BillingInput) (*Billing, error) {
	sql, args := db.InsertSQL("billing", uuid.New(), schema.Columns(in, nil), billingCols)
	b, err := scanBilling(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("billing create: %w", db.Classify(err))
	}
	return b, nil
}

func (r *billingRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Billing, error) {
	b, err := scanBilling(r.q.QueryRow(ctx, `SELECT `+billingCols+` FROM billing WHERE id = $1`, id))
	if err != nil {
		return nil, db.Classify(err)
	}
	return b, nil
}

func (r *billingRepoPG) List(ctx context.Context, f Filter) ([]*Billing, error) {
	q := db.NewSelect(billingJoins, enrichedBillingCols)
	if f.PatientID != nil {
		q.Eq("b.patient_id", *f.PatientID)
	}
	q.OrderBy("b.billing_date DESC, b.created_at DESC")

	sql, args := q.PageSQL(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list billing: %w", db.Classify(err))
	}
	return db.CollectRows(rows, scanEnrichedBilling)
}

func (r *billingRepoPG) Update(ctx context.Context, id uuid.UUID, in *BillingInput, fields schema.Fields) (*Billing, error) {
	cols := schema.Columns(in, fields)
	schema.KeepExisting(cols, in.stamped...)
	sql, args := db.UpdateSQL("billing", id, cols, "", billingCols)
	b, err := scanBilling(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, db.Classify(err)
	}
	return b, nil
}
