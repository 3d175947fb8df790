package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/ports/secondary"
)

// UserRepository implements secondary.UserRepository.
type UserRepository struct {
	db sqlx.ExtContext
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db sqlx.ExtContext) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, u *secondary.UserRecord) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		"INSERT INTO sys_user (id, username, password_hash, nickname, created_at) VALUES (?, ?, ?, ?, ?)"),
		u.ID, u.Username, u.PasswordHash, u.Nickname, u.CreatedAt,
	)
	if err != nil {
		return classify(err, "failed to create user")
	}
	return nil
}

// GetByUsername retrieves a non-deleted user by username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*secondary.UserRecord, error) {
	record := &secondary.UserRecord{}
	err := sqlx.GetContext(ctx, r.db, record, r.db.Rebind(
		"SELECT id, username, password_hash, nickname, created_at, updated_at, deleted_at FROM sys_user WHERE username = ? AND deleted_at IS NULL"),
		username,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("user", username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return record, nil
}

var _ secondary.UserRepository = (*UserRepository)(nil)
