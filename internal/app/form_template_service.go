package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/cts/internal/core/errs"
	"github.com/example/cts/internal/core/form"
	coreproject "github.com/example/cts/internal/core/project"
	"github.com/example/cts/internal/ports/primary"
	"github.com/example/cts/internal/ports/secondary"
)

// FormTemplateServiceImpl implements the FormTemplateService interface.
type FormTemplateServiceImpl struct {
	templateRepo secondary.FormTemplateRepository
	projectRepo  secondary.ProjectRepository

	now   func() time.Time
	newID func() string
}

// NewFormTemplateService creates a new FormTemplateService with injected dependencies.
func NewFormTemplateService(
	templateRepo secondary.FormTemplateRepository,
	projectRepo secondary.ProjectRepository,
) *FormTemplateServiceImpl {
	return &FormTemplateServiceImpl{
		templateRepo: templateRepo,
		projectRepo:  projectRepo,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// CreateTemplate stores a new template after checking its content parses.
func (s *FormTemplateServiceImpl) CreateTemplate(ctx context.Context, req primary.CreateTemplateRequest) (*primary.CreateTemplateResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, errs.Required("name")
	}
	tmpl, err := parseTemplate(req.Content)
	if err != nil {
		return nil, err
	}

	record := &secondary.FormTemplateRecord{
		ID:          s.newID(),
		Name:        name,
		Title:       firstNonEmpty(req.Title, tmpl.Form.Title),
		Content:     req.Content,
		Version:     firstNonEmpty(req.Version, tmpl.Form.Version),
		Description: req.Description,
		Remark:      req.Remark,
		CreatedAt:   s.now(),
	}
	if err := s.templateRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	return &primary.CreateTemplateResponse{
		TemplateID: record.ID,
		Template:   s.recordToTemplate(record),
	}, nil
}

// GetTemplate retrieves a non-deleted template by ID.
func (s *FormTemplateServiceImpl) GetTemplate(ctx context.Context, templateID string) (*primary.FormTemplate, error) {
	record, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return s.recordToTemplate(record), nil
}

// UpdateTemplate applies the non-nil fields of req. New content is parsed
// and validated before anything is written, and is refused once a project
// has been built from the template.
func (s *FormTemplateServiceImpl) UpdateTemplate(ctx context.Context, templateID string, req primary.UpdateTemplateRequest) (*primary.FormTemplate, error) {
	record, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, errs.Required("name")
		}
		record.Name = strings.TrimSpace(*req.Name)
	}
	if req.Content != nil {
		if _, err := parseTemplate(*req.Content); err != nil {
			return nil, err
		}
		// Data tables were laid out from this content; it is frozen once used.
		n, err := s.projectRepo.CountByTemplate(ctx, templateID)
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, errs.Conflict("form template %s is used by %d project(s)", templateID, n)
		}
		record.Content = *req.Content
	}
	if req.Title != nil {
		record.Title = *req.Title
	}
	if req.Version != nil {
		record.Version = *req.Version
	}
	if req.Description != nil {
		record.Description = req.Description
	}
	if req.Remark != nil {
		record.Remark = req.Remark
	}
	now := s.now()
	record.UpdatedAt = &now

	if err := s.templateRepo.Update(ctx, record); err != nil {
		return nil, err
	}
	return s.recordToTemplate(record), nil
}

// DeleteTemplate soft-deletes a template, or removes it when force is set.
// A template that live projects were built from cannot be removed.
func (s *FormTemplateServiceImpl) DeleteTemplate(ctx context.Context, templateID string, force bool) error {
	if !force {
		return s.templateRepo.SoftDelete(ctx, templateID, s.now())
	}

	n, err := s.projectRepo.CountByTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	if n > 0 {
		return errs.Conflict("form template %s is used by %d project(s)", templateID, n)
	}
	return s.templateRepo.Delete(ctx, templateID)
}

// SearchTemplates returns one page of matching templates.
func (s *FormTemplateServiceImpl) SearchTemplates(ctx context.Context, req primary.SearchTemplatesRequest) (*primary.Page[*primary.FormTemplate], error) {
	pageNo, pageSize := coreproject.NormalizePage(req.Page.PageNo, req.Page.PageSize)

	records, total, err := s.templateRepo.Search(ctx, secondary.FormTemplateFilters{
		Name:        req.Name,
		Title:       req.Title,
		Version:     req.Version,
		Description: req.Description,
		Remark:      req.Remark,
		PageNo:      pageNo,
		PageSize:    pageSize,
	})
	if err != nil {
		return nil, err
	}

	templates := make([]*primary.FormTemplate, len(records))
	for i, r := range records {
		templates[i] = s.recordToTemplate(r)
	}
	return primary.NewPage(templates, total, pageNo, pageSize), nil
}

// Helper methods

func parseTemplate(content string) (*form.Template, error) {
	tmpl, err := form.ParseTemplate(content)
	if err != nil {
		return nil, err
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (s *FormTemplateServiceImpl) recordToTemplate(r *secondary.FormTemplateRecord) *primary.FormTemplate {
	t := &primary.FormTemplate{
		ID:          r.ID,
		Name:        r.Name,
		Title:       r.Title,
		Version:     r.Version,
		Content:     r.Content,
		Description: r.Description,
		Remark:      r.Remark,
		CreatedAt:   formatTime(r.CreatedAt),
		UpdatedAt:   formatTimePtr(r.UpdatedAt),
	}
	// stored content was validated on write; older rows may not parse
	if tmpl, err := form.ParseTemplate(r.Content); err == nil {
		t.Columns = tmpl.Columns()
	}
	return t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Ensure FormTemplateServiceImpl implements the interface
var _ primary.FormTemplateService = (*FormTemplateServiceImpl)(nil)
