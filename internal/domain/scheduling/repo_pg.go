package scheduling

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gastroclinic/clinic/internal/domain/identity"
	"github.com/gastroclinic/clinic/internal/platform/db"
	"github.com/gastroclinic/clinic/internal/platform/schema"
)

type appointmentRepoPG struct {
	q db.Querier
}

func NewAppointmentRepo(q db.Querier) AppointmentRepository {
	return &appointmentRepoPG{q: q}
}

var appointmentCols = db.Qualify("", appointmentFields...)

const appointmentJoins = `appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN users u ON u.id = a.doctor_id`

var enrichedAppointmentCols = db.Qualify("a", appointmentFields...) + ", " +
	identity.PatientColumns("p") + ", " + identity.UserColumns("u")

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	if err := row.Scan(a.scanTargets()...); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanEnrichedAppointment(row pgx.Row) (*Appointment, error) {
	var (
		a   Appointment
		pat identity.Patient
		doc identity.User
	)
	targets := append(a.scanTargets(), pat.ScanTargets()...)
	targets = append(targets, doc.ScanTargets()...)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	a.Patient = &pat
	a.Doctor = &doc
	return &a, nil
}

func (r *appointmentRepoPG) Create(ctx context.Context, in *AppointmentInput) (*Appointment, error) {
	sql, args := db.InsertSQL("appointments", uuid.New(), schema.Columns(in, nil), appointmentCols)
	a, err := scanAppointment(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("appointment create: %w", db.Classify(err))
	}
	return a, nil
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := scanAppointment(r.q.QueryRow(ctx, `SELECT `+appointmentCols+` FROM appointments WHERE id = $1`, id))
	if err != nil {
		return nil, db.Classify(err)
	}
	return a, nil
}

func (r *appointmentRepoPG) List(ctx context.Context, f Filter) ([]*Appointment, error) {
	q := db.NewSelect(appointmentJoins, enrichedAppointmentCols)
	if f.PatientID != nil {
		q.Eq("a.patient_id", *f.PatientID)
	}
	if f.From != nil {
		q.Where(fmt.Sprintf("a.appointment_date >= $%d", q.Idx()), *f.From)
	}
	if f.To != nil {
		q.Where(fmt.Sprintf("a.appointment_date < $%d", q.Idx()), *f.To)
	}
	if f.From != nil || f.To != nil {
		q.OrderBy("a.appointment_date ASC")
	} else {
		q.OrderBy("a.appointment_date DESC")
	}

	sql, args := q.PageSQL(f.Limit, f.Offset)
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", db.Classify(err))
	}
	return db.CollectRows(rows, scanEnrichedAppointment)
}

func (r *appointmentRepoPG) Update(ctx context.Context, id uuid.UUID, in *AppointmentInput, fields schema.Fields) (*Appointment, error) {
	cols := schema.Columns(in, fields)
	schema.KeepExisting(cols, in.stamped...)
	sql, args := db.UpdateSQL("appointments", id, cols, "", appointmentCols)
	a, err := scanAppointment(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, db.Classify(err)
	}
	return a, nil
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return false, db.Classify(err)
	}
	return tag.RowsAffected() > 0, nil
}
