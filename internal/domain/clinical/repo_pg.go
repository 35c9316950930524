package clinical

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

// =========== Procedure Repository ===========

type procedureRepoPG struct {
	q db.Querier
}

func NewProcedureRepo(q db.Querier) ProcedureRepository {
	return &procedureRepoPG{q: q}
}

var procedureCols = procedureColumns("")

const procedureJoins = `procedures pr
	JOIN patients p ON p.id = pr.patient_id
	JOIN users u ON u.id = pr.doctor_id
	JOIN appointments a ON a.id = pr.appointment_id`

var enrichedProcedureCols = procedureColumns("pr") + ", " + identity.PatientColumns("p") + ", " +
	identity.UserColumns("u") + ", " + scheduling.SummaryColumns("a")

func scanProcedure(row pgx.Row) (*Procedure, error) {
	var p Procedure
	if err := row.Scan(p.scanTargets()...); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanEnrichedProcedure(row pgx.Row) (*Procedure, error) {
	var (
		p    Procedure
		pat  identity.Patient
		doc  identity.User
		appt scheduling.SummaryScan
	)
	targets := append(p.scanTargets(), pat.ScanTargets()...)
	targets = append(targets, doc.ScanTargets()...)
	targets = append(targets, appt.ScanTargets()...)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	p.Patient, p.Doctor, p.Appointment = &pat, &doc, appt.Summary()
	return &p, nil
}

func (r *procedureRepoPG) Create(ctx context.Context, in *ProcedureInput) (*Procedure, error) {
	sql, args := db.InsertSQL("procedures", uuid.New(), schema.Columns(in, nil), procedureCols)
	p, err := scanProcedure(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("procedure create: %w", db.Classify(err))
	}
	return p, nil
}

func (r *procedureRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Procedure, error) {
	p, err := scanProcedure(r.q.QueryRow(ctx, `SELECT `+procedureCols+` FROM procedures WHERE id = $1`, id))
	if err != nil {
		return nil, db.Classify(err)
	}
	return p, nil
}

func (r *procedureRepoPG) List(ctx context.Context, limit, offset int) ([]*Procedure, error) {
	sql, args := db.NewSelect(procedureJoins, enrichedProcedureCols).
		OrderBy("pr.created_at DESC").
		PageSQL(limit, offset)
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list procedures: %w", db.Classify(err))
	}
	return db.CollectRows(rows, scanEnrichedProcedure)
}

func (r *procedureRepoPG) Update(ctx context.Context, id uuid.UUID, in *ProcedureInput, fields schema.Fields) (*Procedure, error) {
	cols := schema.Columns(in, fields, procedureImmutableOnUpdate...)
	sql, args := db.UpdateSQL("procedures", id, cols, "", procedureCols)
	p, err := scanProcedure(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, db.Classify(err)
	}
	return p, nil
}

// =========== Evolution Repository ===========

type evolutionRepoPG struct {
	q db.Querier
}

func NewEvolutionRepo(q db.Querier) EvolutionRepository {
	return &evolutionRepoPG{q: q}
}

var evolutionCols = evolutionColumns("")

const evolutionJoins = `patient_evolutions ev
	JOIN patients p ON p.id = ev.patient_id
	JOIN users u ON u.id = ev.doctor_id
	LEFT JOIN appointments a ON a.id = ev.appointment_id`

var enrichedEvolutionCols = evolutionColumns("ev") + ", " + identity.PatientColumns("p") + ", " +
	identity.UserColumns("u") + ", " + scheduling.SummaryColumns("a")

func scanEvolution(row pgx.Row) (*Evolution, error) {
	var e Evolution
	if err := row.Scan(e.scanTargets()...); err != nil {
		return nil, err
	}
	return &e, nil
}

func scanEvolutionDetail(row pgx.Row) (*EvolutionDetail, error) {
	var (
		e    Evolution
		pat  identity.Patient
		doc  identity.User
		appt scheduling.SummaryScan
	)
	targets := append(e.scanTargets(), pat.ScanTargets()...)
	targets = append(targets, doc.ScanTargets()...)
	targets = append(targets, appt.ScanTargets()...)
	if err := row.Scan(targets...); err != nil {
		return nil, err
	}
	e.Patient, e.Doctor = &pat, &doc
	return &EvolutionDetail{Evolution: &e, Appointment: appt.Summary()}, nil
}

func (r *evolutionRepoPG) Create(ctx context.Context, in *EvolutionInput) (*Evolution, error) {
	sql, args := db.InsertSQL("patient_evolutions", uuid.New(), schema.Columns(in, nil), evolutionCols)
	e, err := scanEvolution(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("evolution create: %w", db.Classify(err))
	}
	return e, nil
}

func (r *evolutionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Evolution, error) {
	e, err := scanEvolution(r.q.QueryRow(ctx, `SELECT `+evolutionCols+` FROM patient_evolutions WHERE id = $1`, id))
	if err != nil {
		return nil, db.Classify(err)
	}
	return e, nil
}

func (r *evolutionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*EvolutionDetail, error) {
	sql, args := db.NewSelect(evolutionJoins, enrichedEvolutionCols).
		Eq("ev.patient_id", patientID).
		OrderBy("ev.evolution_date DESC, ev.created_at DESC").
		PageSQL(limit, offset)
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list evolutions: %w", db.Classify(err))
	}
	return db.CollectRows(rows, scanEvolutionDetail)
}

func (r *evolutionRepoPG) Update(ctx context.Context, id uuid.UUID, in *EvolutionInput, fields schema.Fields) (*Evolution, error) {
	sql, args := db.UpdateSQL("patient_evolutions", id, schema.Columns(in, fields), "", evolutionCols)
	e, err := scanEvolution(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, db.Classify(err)
	}
	return e, nil
}

func (r *evolutionRepoPG) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.q.Exec(ctx, `DELETE FROM patient_evolutions WHERE id = $1`, id)
	if err != nil {
		return false, db.Classify(err)
	}
	return tag.RowsAffected() > 0, nil
}
