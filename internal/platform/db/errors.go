package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned by repositories when a by-id lookup or update
// matches no row.
var ErrNotFound = errors.New("record not found")

// Constraint violation kinds.
const (
	KindUnique     = "unique"
	KindForeignKey = "foreign_key"
	KindNotNull    = "not_null"
	KindCheck      = "check"
)

// ConstraintError wraps an integrity violation reported by Postgres.
type ConstraintError struct {
	Kind       string
	Constraint string
	Table      string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s constraint %q violated on %s", e.Kind, e.Constraint, e.Table)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// Classify maps driver errors onto ErrNotFound and *ConstraintError. Other
// errors are returned unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	var kind string
	switch pgErr.Code {
	case "23505":
		kind = KindUnique
	case "23503":
		kind = KindForeignKey
	case "23502":
		kind = KindNotNull
	case "23514":
		kind = KindCheck
	default:
		return err
	}
	return &ConstraintError{Kind: kind, Constraint: pgErr.ConstraintName, Table: pgErr.TableName, Err: err}
}

// IsNotFound reports whether err means "no such row".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows)
}

// IsConstraint reports whether err is a constraint violation of the given
// kind. An empty kind matches any violation.
func IsConstraint(err error, kind string) bool {
	var ce *ConstraintError
	if !errors.As(err, &ce) {
		return false
	}
	return kind == "" || ce.Kind == kind
}
