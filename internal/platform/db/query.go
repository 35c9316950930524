package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gastroclinic/clinic/internal/platform/schema"
)

// Querier is satisfied by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// SelectQuery builds a parameterized SELECT with optional filters.
type SelectQuery struct {
	from    string
	cols    string
	where   string
	args    []interface{}
	idx     int
	orderBy string
}

// NewSelect creates a query over from (a table or join expression).
func NewSelect(from, cols string) *SelectQuery {
	return &SelectQuery{from: from, cols: cols, idx: 1}
}

// Idx returns the next available parameter index.
func (q *SelectQuery) Idx() int { return q.idx }

// Where appends a clause (without leading "AND"). Placeholders in the clause
// must start at Idx().
func (q *SelectQuery) Where(clause string, args ...interface{}) *SelectQuery {
	q.where += " AND " + clause
	q.args = append(q.args, args...)
	q.idx += len(args)
	return q
}

// Eq appends "column = $n".
func (q *SelectQuery) Eq(column string, value interface{}) *SelectQuery {
	return q.Where(fmt.Sprintf("%s = $%d", column, q.idx), value)
}

// OrderBy sets the ORDER BY clause (without the keyword).
func (q *SelectQuery) OrderBy(orderBy string) *SelectQuery {
	q.orderBy = orderBy
	return q
}

// SQL returns the statement and its arguments.
func (q *SelectQuery) SQL() (string, []interface{}) {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1%s", q.cols, q.from, q.where)
	if q.orderBy != "" {
		sql += " ORDER BY " + q.orderBy
	}
	return sql, q.args
}

// PageSQL returns the statement with LIMIT/OFFSET appended. A limit of zero
// or less returns every row.
func (q *SelectQuery) PageSQL(limit, offset int) (string, []interface{}) {
	sql, args := q.SQL()
	if limit <= 0 {
		return sql, args
	}
	sql += fmt.Sprintf(" LIMIT $%d OFFSET $%d", q.idx, q.idx+1)
	out := make([]interface{}, len(args)+2)
	copy(out, args)
	out[len(args)] = limit
	out[len(args)+1] = offset
	return sql, out
}

// InsertSQL builds "INSERT INTO table (id, cols...) VALUES (...) RETURNING returning".
func InsertSQL(table string, id uuid.UUID, cols []schema.Column, returning string) (string, []interface{}) {
	names := make([]string, 0, len(cols)+1)
	marks := make([]string, 0, len(cols)+1)
	args := make([]interface{}, 0, len(cols)+1)

	names = append(names, "id")
	marks = append(marks, "$1")
	args = append(args, id)
	for _, c := range cols {
		args = append(args, c.Value)
		names = append(names, c.Name)
		marks = append(marks, fmt.Sprintf("$%d", len(args)))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		table, strings.Join(names, ", "), strings.Join(marks, ", "), returning), args
}

// UpdateSQL builds an UPDATE of the given columns that always stamps
// updated_at. extraWhere, when not empty, is ANDed to the id match.
func UpdateSQL(table string, id uuid.UUID, cols []schema.Column, extraWhere, returning string) (string, []interface{}) {
	sets := make([]string, 0, len(cols)+1)
	args := make([]interface{}, 0, len(cols)+1)
	for _, c := range cols {
		args = append(args, c.Value)
		if c.KeepExisting {
			sets = append(sets, fmt.Sprintf("%s = COALESCE(%s, $%d)", c.Name, c.Name, len(args)))
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", c.Name, len(args)))
	}
	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)

	where := fmt.Sprintf("id = $%d", len(args))
	if extraWhere != "" {
		where += " AND " + extraWhere
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s RETURNING %s",
		table, strings.Join(sets, ", "), where, returning), args
}

// CollectRows scans every row with scan and classifies any error.
func CollectRows[T any](rows pgx.Rows, scan func(pgx.Row) (*T, error)) ([]*T, error) {
	defer rows.Close()
	items := []*T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, Classify(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, Classify(err)
	}
	return items, nil
}

// Qualify prefixes each column with alias, e.g. Qualify("p", "id", "phone")
// gives "p.id, p.phone". An empty alias leaves the names bare.
func Qualify(alias string, cols ...string) string {
	if alias == "" {
		return strings.Join(cols, ", ")
	}
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = alias + "." + c
	}
	return strings.Join(out, ", ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern turns user input into a substring pattern for LIKE/ILIKE with
// wildcards in the input matched literally.
func LikePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
