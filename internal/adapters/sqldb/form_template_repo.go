package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/ports/secondary"
)

const formTemplateColumns = "id, name, title, content, version, description, remark, created_at, updated_at, deleted_at"

// FormTemplateRepository implements secondary.FormTemplateRepository.
type FormTemplateRepository struct {
	db sqlx.ExtContext
}

// NewFormTemplateRepository creates a new form template repository.
func NewFormTemplateRepository(db sqlx.ExtContext) *FormTemplateRepository {
	return &FormTemplateRepository{db: db}
}

// Create persists a new template.
func (r *FormTemplateRepository) Create(ctx context.Context, t *secondary.FormTemplateRecord) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		"INSERT INTO form_template (id, name, title, content, version, description, remark, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"),
		t.ID, t.Name, t.Title, t.Content, t.Version, t.Description, t.Remark, t.CreatedAt,
	)
	if err != nil {
		return classify(err, "failed to create form template")
	}
	return nil
}

// GetByID retrieves a non-deleted template by its ID.
func (r *FormTemplateRepository) GetByID(ctx context.Context, id string) (*secondary.FormTemplateRecord, error) {
	return r.get(ctx, "SELECT "+formTemplateColumns+" FROM form_template WHERE id = ? AND deleted_at IS NULL", id)
}

// GetAnyByID retrieves a template by its ID, soft-deleted or not.
func (r *FormTemplateRepository) GetAnyByID(ctx context.Context, id string) (*secondary.FormTemplateRecord, error) {
	return r.get(ctx, "SELECT "+formTemplateColumns+" FROM form_template WHERE id = ?", id)
}

func (r *FormTemplateRepository) get(ctx context.Context, q, id string) (*secondary.FormTemplateRecord, error) {
	record := &secondary.FormTemplateRecord{}
	err := sqlx.GetContext(ctx, r.db, record, r.db.Rebind(q), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("form template", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get form template: %w", err)
	}
	return record, nil
}

// Update overwrites the mutable columns and stamps updated_at.
func (r *FormTemplateRepository) Update(ctx context.Context, t *secondary.FormTemplateRecord) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(
		"UPDATE form_template SET name = ?, title = ?, content = ?, version = ?, description = ?, remark = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL"),
		t.Name, t.Title, t.Content, t.Version, t.Description, t.Remark, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return classify(err, "failed to update form template")
	}
	return expectRow(result, "form template", t.ID)
}

// SoftDelete stamps deleted_at.
func (r *FormTemplateRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(
		"UPDATE form_template SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL"), at, id)
	if err != nil {
		return fmt.Errorf("failed to delete form template: %w", err)
	}
	return expectRow(result, "form template", id)
}

// Delete removes a template from persistence.
func (r *FormTemplateRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM form_template WHERE id = ?"), id)
	if err != nil {
		return classify(err, "failed to delete form template")
	}
	return expectRow(result, "form template", id)
}

// Search returns one page of non-deleted templates and the total match count.
func (r *FormTemplateRepository) Search(ctx context.Context, f secondary.FormTemplateFilters) ([]*secondary.FormTemplateRecord, int64, error) {
	w := newWhere("deleted_at IS NULL")
	w.like("name", f.Name)
	w.like("description", f.Description)
	w.like("remark", f.Remark)
	w.eq("title", f.Title)
	w.eq("version", f.Version)

	var total int64
	if err := sqlx.GetContext(ctx, r.db, &total, r.db.Rebind("SELECT COUNT(*) FROM form_template"+w.sql()), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count form templates: %w", err)
	}

	records := []*secondary.FormTemplateRecord{}
	q := "SELECT " + formTemplateColumns + " FROM form_template" + w.sql() +
		" ORDER BY created_at DESC, name ASC" + limit(f.PageNo, f.PageSize)
	if err := sqlx.SelectContext(ctx, r.db, &records, r.db.Rebind(q), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to search form templates: %w", err)
	}
	return records, total, nil
}

var _ secondary.FormTemplateRepository = (*FormTemplateRepository)(nil)
