package primary

import "context"

// ProjectService defines the primary port for project operations.
type ProjectService interface {
	// CreateProject provisions the project's data and task tables, seeds the
	// task table from the dataset, and records the project, all in one
	// transaction.
	CreateProject(ctx context.Context, req CreateProjectRequest) (*CreateProjectResponse, error)

	// GetProject retrieves a non-deleted project by ID.
	GetProject(ctx context.Context, projectID string) (*Project, error)

	// UpdateProject applies the non-nil fields of req.
	UpdateProject(ctx context.Context, projectID string, req UpdateProjectRequest) (*Project, error)

	// DeleteProject soft-deletes a project, or removes it when force is set.
	DeleteProject(ctx context.Context, projectID string, force bool) error

	// SearchProjects returns one page of matching projects.
	SearchProjects(ctx context.Context, req SearchProjectsRequest) (*Page[*Project], error)
}

// Dataset is a parsed CSV: one header row and the data rows beneath it.
type Dataset struct {
	Headers []string
	Rows    [][]string
}

// CreateProjectRequest contains parameters for provisioning a project.
// Fields carries the raw metadata (name, code, type, formTemplateId,
// taskCode, taskLon, taskLat, and optionally status, description, remark).
type CreateProjectRequest struct {
	Fields  map[string]string
	Dataset Dataset
}

// CreateProjectResponse contains the result of provisioning a project.
type CreateProjectResponse struct {
	ProjectID string   `json:"projectId"`
	TableID   string   `json:"tableId"`
	Rows      int      `json:"rows"`
	Project   *Project `json:"project"`
}

// UpdateProjectRequest contains the fields to change; nil leaves a field as is.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Code        *string `json:"code,omitempty"`
	Type        *int    `json:"type,omitempty"`
	Status      *int    `json:"status,omitempty"`
	Description *string `json:"description,omitempty"`
	Remark      *string `json:"remark,omitempty"`
}

// SearchProjectsRequest contains search filters. Name, Description and
// Remark match by substring; Code, Type and Status exactly.
type SearchProjectsRequest struct {
	Name        string      `json:"name,omitempty"`
	Code        string      `json:"code,omitempty"`
	Type        *int        `json:"type,omitempty"`
	Status      *int        `json:"status,omitempty"`
	Description string      `json:"description,omitempty"`
	Remark      string      `json:"remark,omitempty"`
	Page        PageRequest `json:"page"`
}

// Project represents a project at the port boundary.
type Project struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Code           string  `json:"code"`
	FormTemplateID string  `json:"formTemplateId"`
	DataTableName  string  `json:"dataTableName"`
	Total          int     `json:"total"`
	Type           int     `json:"type"`
	Status         int     `json:"status"`
	Description    *string `json:"description,omitempty"`
	Remark         *string `json:"remark,omitempty"`
	CreatedAt      string  `json:"createdAt"`
	UpdatedAt      string  `json:"updatedAt,omitempty"`
}
