package primary

import "context"

// FormTemplateService defines the primary port for form template operations.
type FormTemplateService interface {
	// CreateTemplate stores a new template after checking its content parses.
	CreateTemplate(ctx context.Context, req CreateTemplateRequest) (*CreateTemplateResponse, error)

	// GetTemplate retrieves a non-deleted template by ID.
	GetTemplate(ctx context.Context, templateID string) (*FormTemplate, error)

	// UpdateTemplate applies the non-nil fields of req.
	UpdateTemplate(ctx context.Context, templateID string, req UpdateTemplateRequest) (*FormTemplate, error)

	// DeleteTemplate soft-deletes a template, or removes it when force is set.
	DeleteTemplate(ctx context.Context, templateID string, force bool) error

	// SearchTemplates returns one page of matching templates.
	SearchTemplates(ctx context.Context, req SearchTemplatesRequest) (*Page[*FormTemplate], error)
}

// CreateTemplateRequest contains parameters for creating a template.
// Title and Version default to the values inside Content when empty.
type CreateTemplateRequest struct {
	Name        string  `json:"name"`
	Title       string  `json:"title"`
	Version     string  `json:"version"`
	Content     string  `json:"content"`
	Description *string `json:"description,omitempty"`
	Remark      *string `json:"remark,omitempty"`
}

// CreateTemplateResponse contains the result of creating a template.
type CreateTemplateResponse struct {
	TemplateID string        `json:"templateId"`
	Template   *FormTemplate `json:"template"`
}

// UpdateTemplateRequest contains the fields to change; nil leaves a field as is.
type UpdateTemplateRequest struct {
	Name        *string `json:"name,omitempty"`
	Title       *string `json:"title,omitempty"`
	Version     *string `json:"version,omitempty"`
	Content     *string `json:"content,omitempty"`
	Description *string `json:"description,omitempty"`
	Remark      *string `json:"remark,omitempty"`
}

// SearchTemplatesRequest contains search filters.
type SearchTemplatesRequest struct {
	Name        string      `json:"name,omitempty"`
	Title       string      `json:"title,omitempty"`
	Version     string      `json:"version,omitempty"`
	Description string      `json:"description,omitempty"`
	Remark      string      `json:"remark,omitempty"`
	Page        PageRequest `json:"page"`
}

// FormTemplate represents a form template at the port boundary.
type FormTemplate struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Version     string   `json:"version"`
	Content     string   `json:"content"`
	Columns     []string `json:"columns"`
	Description *string  `json:"description,omitempty"`
	Remark      *string  `json:"remark,omitempty"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}
