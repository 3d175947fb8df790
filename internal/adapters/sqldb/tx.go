package sqldb

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/cts/internal/ports/secondary"
)

// Transactor implements secondary.Transactor on a pool.
type Transactor struct {
	db *sqlx.DB
}

// NewTransactor creates a transactor over the pool.
func NewTransactor(db *sqlx.DB) *Transactor {
	return &Transactor{db: db}
}

// InTx runs fn in a transaction, committing on nil and rolling back on an
// error or panic.
func (t *Transactor) InTx(ctx context.Context, fn func(ctx context.Context, tx secondary.Tx) error) (err error) {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, &txScope{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type txScope struct {
	tx *sqlx.Tx
}

func (s *txScope) Statements() secondary.StatementRunner {
	return NewRunner(s.tx)
}

func (s *txScope) Projects() secondary.ProjectRepository {
	return NewProjectRepository(s.tx)
}

var _ secondary.Transactor = (*Transactor)(nil)
