package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gastroclinic/clinic/internal/platform/db"
	"github.com/gastroclinic/clinic/internal/platform/schema"
)

// -- User Repository --

type userRepoPG struct {
	q db.Querier
}

func NewUserRepo(q db.Querier) UserRepository {
	return &userRepoPG{q: q}
}

var userCols = UserColumns("")

func scanUser(row pgx.Row) (*User, error) {
	var u User
	if err := row.Scan(u.ScanTargets()...); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepoPG) Create(ctx context.Context, in *UserInput) (*User, error) {
	sql, args := db.InsertSQL("users", uuid.New(), schema.Columns(in, nil), userCols)
	u, err := scanUser(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("user create: %w", db.Classify(err))
	}
	return u, nil
}

func (r *userRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, db.Classify(err)
	}
	return u, nil
}

func (r *userRepoPG) GetByUsername(ctx context.Context, username string) (*User, error) {
	var u User
	targets := append(u.ScanTargets(), &u.Password)
	err := r.q.QueryRow(ctx, `SELECT `+userCols+`, password FROM users WHERE username = $1`, username).Scan(targets...)
	if err != nil {
		return nil, db.Classify(err)
	}
	return &u, nil
}

func (r *userRepoPG) List(ctx context.Context, role string) ([]*User, error) {
	q := db.NewSelect("users", userCols).Eq("is_active", true).OrderBy("full_name")
	if role != "" {
		q.Eq("role", role)
	}
	sql, args := q.SQL()
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", db.Classify(err))
	}
	return db.CollectRows(rows, scanUser)
}

func (r *userRepoPG) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, db.Classify(err)
	}
	return n, nil
}

// -- Patient Repository --

type patientRepoPG struct {
	q db.Querier
}

func NewPatientRepo(q db.Querier) PatientRepository {
	return &patientRepoPG{q: q}
}

var patientCols = PatientColumns("")

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(p.ScanTargets()...); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoPG) Create(ctx context.Context, in *PatientInput) (*Patient, error) {
	sql, args := db.InsertSQL("patients", uuid.New(), schema.Columns(in, nil), patientCols)
	p, err := scanPatient(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("patient create: %w", db.Classify(err))
	}
	return p, nil
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.q.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = $1`, id))
	if err != nil {
		return nil, db.Classify(err)
	}
	return p, nil
}

func (r *patientRepoPG) List(ctx context.Context, limit, offset int) ([]*Patient, error) {
	sql, args := db.NewSelect("patients", patientCols).
		Eq("is_active", true).
		OrderBy("created_at DESC").
		PageSQL(limit, offset)
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", db.Classify(err))
	}
	return db.CollectRows(rows, scanPatient)
}

func (r *patientRepoPG) Update(ctx context.Context, id uuid.UUID, in *PatientInput, fields schema.Fields) (*Patient, error) {
	cols := schema.Columns(in, fields, patientImmutableOnUpdate...)
	sql, args := db.UpdateSQL("patients", id, cols, "", patientCols)
	p, err := scanPatient(r.q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, db.Classify(err)
	}
	return p, nil
}

// Delete deactivates the patient. It reports false when the patient does not
// exist or is already inactive.
func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.q.Exec(ctx,
		`UPDATE patients SET is_active = false, updated_at = NOW() WHERE id = $1 AND is_active = true`, id)
	if err != nil {
		return false, db.Classify(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *patientRepoPG) Search(ctx context.Context, query string) ([]*Patient, error) {
	q := db.NewSelect("patients", patientCols).Eq("is_active", true)
	idx := q.Idx()
	q.Where(fmt.Sprintf("(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)",
		idx, idx, idx, idx), db.LikePattern(query))
	q.OrderBy("last_name, first_name")

	sql, args := q.SQL()
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("search patients: %w", db.Classify(err))
	}
	return db.CollectRows(rows, scanPatient)
}
