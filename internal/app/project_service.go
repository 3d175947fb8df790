package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/core/form"
	coreproject "github.com/example/cts/internal/core/project"
	"github.com/example/cts/internal/core/query"
	"github.com/example/cts/internal/core/schema"
	"github.com/example/cts/internal/ports/primary"
	"github.com/example/cts/internal/ports/secondary"
)

// ProjectServiceImpl implements the ProjectService interface.
type ProjectServiceImpl struct {
	templateRepo secondary.FormTemplateRepository
	projectRepo  secondary.ProjectRepository
	transactor   secondary.Transactor

	now        func() time.Time
	newID      func() string
	newTableID func() string
	assembler  form.RowAssembler
}

// NewProjectService creates a new ProjectService with injected dependencies.
func NewProjectService(
	templateRepo secondary.FormTemplateRepository,
	projectRepo secondary.ProjectRepository,
	transactor secondary.Transactor,
) *ProjectServiceImpl {
	return &ProjectServiceImpl{
		templateRepo: templateRepo,
		projectRepo:  projectRepo,
		transactor:   transactor,
		now:          time.Now,
		newID:        uuid.NewString,
		newTableID:   schema.NewTableID,
		assembler:    form.DefaultAssembler,
	}
}

// CreateProject provisions a project from a form template and a dataset.
func (s *ProjectServiceImpl) CreateProject(ctx context.Context, req primary.CreateProjectRequest) (*primary.CreateProjectResponse, error) {
	// 1. Validate metadata and dataset before touching the database
	meta, err := coreproject.ParseMetadata(req.Fields)
	if err != nil {
		return nil, err
	}
	dataset := req.Dataset
	guardCtx := coreproject.DatasetContext{
		Headers:   dataset.Headers,
		Rows:      dataset.Rows,
		Nominated: meta.Nominated(),
	}
	if result := coreproject.CanLoadDataset(guardCtx); !result.Allowed {
		return nil, result.Error()
	}

	// 2. Load and parse the template
	tmplRecord, err := s.templateRepo.GetByID(ctx, meta.FormTemplateID)
	if err != nil {
		return nil, err
	}
	tmpl, err := form.ParseTemplate(tmplRecord.Content)
	if err != nil {
		return nil, fmt.Errorf("form template %s: %w", tmplRecord.ID, err)
	}

	// 3-4. Work out both column lists
	dataColumns := tmpl.DataColumns()
	final := form.ReconcileHeaders(dataset.Headers)
	nominated := make([]string, 0, 3)
	for _, name := range meta.Nominated() {
		nominated = append(nominated, form.RenamedHeader(dataset.Headers, final, name))
	}

	// 5. One table id names both tables
	tableID := s.newTableID()
	dataTable := schema.TableName(schema.KindData, tableID)
	taskTable := schema.TableName(schema.KindTask, tableID)

	record := &secondary.ProjectRecord{
		ID:             s.newID(),
		Name:           meta.Name,
		Code:           meta.Code,
		FormTemplateID: meta.FormTemplateID,
		DataTableName:  tableID,
		Total:          len(dataset.Rows),
		Type:           meta.Type,
		Status:         meta.Status,
		Description:    meta.Description,
		Remark:         meta.Remark,
		CreatedAt:      s.now(),
	}

	slog.InfoContext(ctx, "provisioning project",
		"code", meta.Code, "template", meta.FormTemplateID, "table_id", tableID, "rows", len(dataset.Rows))

	// 6-9. Tables, rows and the project row commit together
	err = s.transactor.InTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		runner := tx.Statements()

		if _, err := runner.Exec(ctx, query.Statement(schema.BuildCreateTable(dataTable, dataColumns, true))); err != nil {
			return fmt.Errorf("failed to create %s: %w", dataTable, err)
		}
		if _, err := runner.Exec(ctx, query.Statement(schema.BuildCreateTable(taskTable, form.UserColumns(final), true))); err != nil {
			return fmt.Errorf("failed to create %s: %w", taskTable, err)
		}
		slog.DebugContext(ctx, "tables created", "data", dataTable, "task", taskTable)

		common, err := form.LocateCommonIndices(final, nominated)
		if err != nil {
			return err
		}
		for i, raw := range dataset.Rows {
			insert, err := schema.BuildInsert(taskTable, final, s.assembler.Assemble(raw, common))
			if err != nil {
				return fmt.Errorf("line %d: %w", i+2, err)
			}
			if _, err := runner.Exec(ctx, query.Statement(insert)); err != nil {
				return fmt.Errorf("failed to load line %d: %w", i+2, err)
			}
		}

		return tx.Projects().Create(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "project provisioned", "project_id", record.ID, "table_id", tableID)

	return &primary.CreateProjectResponse{
		ProjectID: record.ID,
		TableID:   tableID,
		Rows:      record.Total,
		Project:   s.recordToProject(record),
	}, nil
}

// GetProject retrieves a non-deleted project by ID.
func (s *ProjectServiceImpl) GetProject(ctx context.Context, projectID string) (*primary.Project, error) {
	record, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return s.recordToProject(record), nil
}

// UpdateProject applies the non-nil fields of req.
func (s *ProjectServiceImpl) UpdateProject(ctx context.Context, projectID string, req primary.UpdateProjectRequest) (*primary.Project, error) {
	record, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, errs.Required(coreproject.FieldName)
		}
		record.Name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		if strings.TrimSpace(*req.Code) == "" {
			return nil, errs.Required(coreproject.FieldCode)
		}
		record.Code = strings.TrimSpace(*req.Code)
	}
	if req.Type != nil {
		record.Type = *req.Type
	}
	if req.Status != nil {
		record.Status = *req.Status
	}
	if req.Description != nil {
		record.Description = req.Description
	}
	if req.Remark != nil {
		record.Remark = req.Remark
	}
	now := s.now()
	record.UpdatedAt = &now

	if err := s.projectRepo.Update(ctx, record); err != nil {
		return nil, err
	}
	return s.recordToProject(record), nil
}

// DeleteProject soft-deletes a project. With force the project row and both
// of its tables are removed in one transaction.
func (s *ProjectServiceImpl) DeleteProject(ctx context.Context, projectID string, force bool) error {
	if !force {
		return s.projectRepo.SoftDelete(ctx, projectID, s.now())
	}

	record, err := s.projectRepo.GetAnyByID(ctx, projectID)
	if err != nil {
		return err
	}

	err = s.transactor.InTx(ctx, func(ctx context.Context, tx secondary.Tx) error {
		for _, kind := range []schema.TableKind{schema.KindData, schema.KindTask} {
			table := schema.TableName(kind, record.DataTableName)
			if _, err := tx.Statements().Exec(ctx, query.Statement(schema.BuildDropTable(table))); err != nil {
				return fmt.Errorf("failed to drop %s: %w", table, err)
			}
		}
		return tx.Projects().Delete(ctx, record.ID)
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "project purged", "project_id", record.ID, "table_id", record.DataTableName)
	return nil
}

// SearchProjects returns one page of matching projects.
func (s *ProjectServiceImpl) SearchProjects(ctx context.Context, req primary.SearchProjectsRequest) (*primary.Page[*primary.Project], error) {
	pageNo, pageSize := coreproject.NormalizePage(req.Page.PageNo, req.Page.PageSize)

	records, total, err := s.projectRepo.Search(ctx, secondary.ProjectFilters{
		Name:        req.Name,
		Code:        req.Code,
		Type:        req.Type,
		Status:      req.Status,
		Description: req.Description,
		Remark:      req.Remark,
		PageNo:      pageNo,
		PageSize:    pageSize,
	})
	if err != nil {
		return nil, err
	}

	projects := make([]*primary.Project, len(records))
	for i, r := range records {
		projects[i] = s.recordToProject(r)
	}
	return primary.NewPage(projects, total, pageNo, pageSize), nil
}

// Helper methods

func (s *ProjectServiceImpl) recordToProject(r *secondary.ProjectRecord) *primary.Project {
	return &primary.Project{
		ID:             r.ID,
		Name:           r.Name,
		Code:           r.Code,
		FormTemplateID: r.FormTemplateID,
		DataTableName:  r.DataTableName,
		Total:          r.Total,
		Type:           r.Type,
		Status:         r.Status,
		Description:    r.Description,
		Remark:         r.Remark,
		CreatedAt:      formatTime(r.CreatedAt),
		UpdatedAt:      formatTimePtr(r.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

// Ensure ProjectServiceImpl implements the interface
var _ primary.ProjectService = (*ProjectServiceImpl)(nil)
