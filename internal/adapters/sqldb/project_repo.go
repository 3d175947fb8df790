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

const projectColumns = "id, name, code, form_template_id, data_table_name, total, type, status, description, remark, created_at, updated_at, deleted_at"

// ProjectRepository implements secondary.ProjectRepository.
type ProjectRepository struct {
	db sqlx.ExtContext
}

// NewProjectRepository creates a new project repository.
func NewProjectRepository(db sqlx.ExtContext) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create persists a new project.
func (r *ProjectRepository) Create(ctx context.Context, p *secondary.ProjectRecord) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(
		"INSERT INTO project (id, name, code, form_template_id, data_table_name, total, type, status, description, remark, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		p.ID, p.Name, p.Code, p.FormTemplateID, p.DataTableName, p.Total, p.Type, p.Status, p.Description, p.Remark, p.CreatedAt,
	)
	if err != nil {
		return classify(err, "failed to create project")
	}
	return nil
}

// GetByID retrieves a non-deleted project by its ID.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*secondary.ProjectRecord, error) {
	return r.get(ctx, "SELECT "+projectColumns+" FROM project WHERE id = ? AND deleted_at IS NULL", id)
}

// GetAnyByID retrieves a project by its ID, soft-deleted or not.
func (r *ProjectRepository) GetAnyByID(ctx context.Context, id string) (*secondary.ProjectRecord, error) {
	return r.get(ctx, "SELECT "+projectColumns+" FROM project WHERE id = ?", id)
}

func (r *ProjectRepository) get(ctx context.Context, q, id string) (*secondary.ProjectRecord, error) {
	record := &secondary.ProjectRecord{}
	err := sqlx.GetContext(ctx, r.db, record, r.db.Rebind(q), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("project", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return record, nil
}

// Update overwrites the mutable columns and stamps updated_at.
func (r *ProjectRepository) Update(ctx context.Context, p *secondary.ProjectRecord) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(
		"UPDATE project SET name = ?, code = ?, type = ?, status = ?, description = ?, remark = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL"),
		p.Name, p.Code, p.Type, p.Status, p.Description, p.Remark, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return classify(err, "failed to update project")
	}
	return expectRow(result, "project", p.ID)
}

// SoftDelete stamps deleted_at.
func (r *ProjectRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(
		"UPDATE project SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL"), at, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return expectRow(result, "project", id)
}

// Delete removes a project from persistence.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind("DELETE FROM project WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return expectRow(result, "project", id)
}

// Search returns one page of non-deleted projects and the total match count.
func (r *ProjectRepository) Search(ctx context.Context, f secondary.ProjectFilters) ([]*secondary.ProjectRecord, int64, error) {
	w := newWhere("deleted_at IS NULL")
	w.like("name", f.Name)
	w.like("description", f.Description)
	w.like("remark", f.Remark)
	w.eq("code", f.Code)
	w.eq("type", f.Type)
	w.eq("status", f.Status)

	var total int64
	if err := sqlx.GetContext(ctx, r.db, &total, r.db.Rebind("SELECT COUNT(*) FROM project"+w.sql()), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	records := []*secondary.ProjectRecord{}
	q := "SELECT " + projectColumns + " FROM project" + w.sql() +
		" ORDER BY created_at DESC, code ASC" + limit(f.PageNo, f.PageSize)
	if err := sqlx.SelectContext(ctx, r.db, &records, r.db.Rebind(q), w.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to search projects: %w", err)
	}
	return records, total, nil
}

// CountByTemplate counts non-deleted projects built from a template.
func (r *ProjectRepository) CountByTemplate(ctx context.Context, templateID string) (int64, error) {
	var n int64
	err := sqlx.GetContext(ctx, r.db, &n, r.db.Rebind(
		"SELECT COUNT(*) FROM project WHERE form_template_id = ? AND deleted_at IS NULL"), templateID)
	if err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return n, nil
}

var _ secondary.ProjectRepository = (*ProjectRepository)(nil)
