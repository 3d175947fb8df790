// Package secondary defines the driven ports: persistence of the static
// entity tables, execution of dynamic-table statements, and transactions.
package secondary

import (
	"context"
	"time"

	"github.com/example/cts/internal/core/query"
)

// FormTemplateRecord represents a form template as stored in persistence.
type FormTemplateRecord struct {
	ID          string     `db:"id"`
	Name        string     `db:"name"`
	Title       string     `db:"title"`
	Content     string     `db:"content"`
	Version     string     `db:"version"`
	Description *string    `db:"description"`
	Remark      *string    `db:"remark"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

// FormTemplateFilters contains filter options for searching templates.
// Name, Description and Remark match by substring; Title and Version exactly.
type FormTemplateFilters struct {
	Name        string
	Title       string
	Version     string
	Description string
	Remark      string
	PageNo      int
	PageSize    int
}

// FormTemplateRepository defines the secondary port for form template persistence.
type FormTemplateRepository interface {
	// Create persists a new template.
	Create(ctx context.Context, t *FormTemplateRecord) error

	// GetByID retrieves a non-deleted template by its ID.
	GetByID(ctx context.Context, id string) (*FormTemplateRecord, error)

	// GetAnyByID retrieves a template by its ID, soft-deleted or not.
	GetAnyByID(ctx context.Context, id string) (*FormTemplateRecord, error)

	// Update overwrites the mutable columns and stamps updated_at.
	Update(ctx context.Context, t *FormTemplateRecord) error

	// SoftDelete stamps deleted_at.
	SoftDelete(ctx context.Context, id string, at time.Time) error

	// Delete removes a template from persistence.
	Delete(ctx context.Context, id string) error

	// Search returns one page of non-deleted templates and the total match count.
	Search(ctx context.Context, f FormTemplateFilters) ([]*FormTemplateRecord, int64, error)
}

// ProjectRecord represents a project as stored in persistence.
type ProjectRecord struct {
	ID             string     `db:"id"`
	Name           string     `db:"name"`
	Code           string     `db:"code"`
	FormTemplateID string     `db:"form_template_id"`
	DataTableName  string     `db:"data_table_name"`
	Total          int        `db:"total"`
	Type           int        `db:"type"`
	Status         int        `db:"status"`
	Description    *string    `db:"description"`
	Remark         *string    `db:"remark"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      *time.Time `db:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}

// ProjectFilters contains filter options for searching projects.
// Name, Description and Remark match by substring; Code, Type and Status
// exactly. Nil pointers do not filter.
type ProjectFilters struct {
	Name        string
	Code        string
	Type        *int
	Status      *int
	Description string
	Remark      string
	PageNo      int
	PageSize    int
}

// ProjectRepository defines the secondary port for project persistence.
type ProjectRepository interface {
	// Create persists a new project.
	Create(ctx context.Context, p *ProjectRecord) error

	// GetByID retrieves a non-deleted project by its ID.
	GetByID(ctx context.Context, id string) (*ProjectRecord, error)

	// GetAnyByID retrieves a project by its ID, soft-deleted or not.
	GetAnyByID(ctx context.Context, id string) (*ProjectRecord, error)

	// Update overwrites the mutable columns and stamps updated_at.
	Update(ctx context.Context, p *ProjectRecord) error

	// SoftDelete stamps deleted_at.
	SoftDelete(ctx context.Context, id string, at time.Time) error

	// Delete removes a project from persistence.
	Delete(ctx context.Context, id string) error

	// Search returns one page of non-deleted projects and the total match count.
	Search(ctx context.Context, f ProjectFilters) ([]*ProjectRecord, int64, error)

	// CountByTemplate counts non-deleted projects built from a template.
	CountByTemplate(ctx context.Context, templateID string) (int64, error)
}

// UserRecord represents a login account as stored in persistence.
type UserRecord struct {
	ID           string     `db:"id"`
	Username     string     `db:"username"`
	PasswordHash string     `db:"password_hash"`
	Nickname     *string    `db:"nickname"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    *time.Time `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

// UserRepository defines the secondary port for user persistence.
type UserRepository interface {
	// Create persists a new user.
	Create(ctx context.Context, u *UserRecord) error

	// GetByUsername retrieves a non-deleted user by username.
	GetByUsername(ctx context.Context, username string) (*UserRecord, error)
}

// StatementRunner executes finalized statements against dynamic tables.
type StatementRunner interface {
	// One returns the first row of s, or nil when there is none.
	One(ctx context.Context, s query.Select) (query.Row, error)

	// All returns every row of s.
	All(ctx context.Context, s query.Select) ([]query.Row, error)

	// Exec runs m and returns the number of affected rows.
	Exec(ctx context.Context, m query.Mutation) (int64, error)
}

// Tx is the unit of work handed to a Transactor callback. Everything done
// through it commits or rolls back together.
type Tx interface {
	Statements() StatementRunner
	Projects() ProjectRepository
}

// Transactor runs fn inside one database transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}
