// Package sqldb contains sqlx implementations of the persistence ports.
// Every adapter is built on sqlx.ExtContext so the same code runs against
// the pool or inside a transaction.
package sqldb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/core/query"
	"github.com/example/cts/internal/ports/secondary"
)

// Runner implements secondary.StatementRunner.
type Runner struct {
	db sqlx.ExtContext
}

// NewRunner creates a runner over a pool or transaction.
func NewRunner(db sqlx.ExtContext) *Runner {
	return &Runner{db: db}
}

// One returns the first row of s, or nil when there is none.
func (r *Runner) One(ctx context.Context, s query.Select) (query.Row, error) {
	if !s.Ready() {
		return nil, query.ErrNotFinalized
	}
	slog.DebugContext(ctx, "query one", "sql", s.SQL())

	rows, err := r.db.QueryxContext(ctx, s.SQL())
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		return nil, nil
	}
	return scanRow(rows)
}

// All returns every row of s.
func (r *Runner) All(ctx context.Context, s query.Select) ([]query.Row, error) {
	if !s.Ready() {
		return nil, query.ErrNotFinalized
	}
	slog.DebugContext(ctx, "query all", "sql", s.SQL())

	rows, err := r.db.QueryxContext(ctx, s.SQL())
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	result := []query.Row{}
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return result, nil
}

// Exec runs m and returns the number of affected rows.
func (r *Runner) Exec(ctx context.Context, m query.Mutation) (int64, error) {
	if !m.Ready() {
		return 0, query.ErrNotFinalized
	}
	slog.DebugContext(ctx, "exec", "sql", m.SQL())

	result, err := r.db.ExecContext(ctx, m.SQL())
	if err != nil {
		return 0, classify(err, "failed to execute statement")
	}
	n, err := result.RowsAffected()
	if err != nil {
		// DDL on some drivers reports no count
		return 0, nil
	}
	return n, nil
}

// scanRow reads the current row into a document. Text that a driver hands
// back as bytes is converted so the document encodes as JSON strings.
func scanRow(rows *sqlx.Rows) (query.Row, error) {
	m := make(map[string]any)
	if err := rows.MapScan(m); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}
	for k, v := range m {
		if b, ok := v.([]byte); ok {
			m[k] = string(b)
		}
	}
	return query.Row(m), nil
}

// classify wraps err, turning unique and foreign-key violations into conflicts.
func classify(err error, msg string) error {
	if isUniqueViolation(err) || isForeignKeyViolation(err) {
		return &errs.Error{Kind: errs.ErrConflict, Msg: fmt.Sprintf("%s: %v", msg, err)}
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}

var _ secondary.StatementRunner = (*Runner)(nil)
