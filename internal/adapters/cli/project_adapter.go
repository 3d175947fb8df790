package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/example/cts/internal/ports/primary"
)

// ProjectAdapter translates CLI operations to ProjectService calls.
type ProjectAdapter struct {
	service primary.ProjectService
	out     io.Writer
}

// NewProjectAdapter creates a new ProjectAdapter with the given service.
func NewProjectAdapter(service primary.ProjectService, out io.Writer) *ProjectAdapter {
	return &ProjectAdapter{
		service: service,
		out:     out,
	}
}

// Create provisions a project and prints its tables.
func (a *ProjectAdapter) Create(ctx context.Context, fields map[string]string, dataset primary.Dataset) (*primary.CreateProjectResponse, error) {
	resp, err := a.service.CreateProject(ctx, primary.CreateProjectRequest{Fields: fields, Dataset: dataset})
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "✓ Created project %s: %s\n", resp.ProjectID, resp.Project.Name)
	fmt.Fprintf(a.out, "  Data table: data_%s\n", resp.TableID)
	fmt.Fprintf(a.out, "  Task table: task_%s (%d tasks)\n", resp.TableID, resp.Rows)
	return resp, nil
}

// List prints one page of projects.
func (a *ProjectAdapter) List(ctx context.Context, req primary.SearchProjectsRequest) (*primary.Page[*primary.Project], error) {
	page, err := a.service.SearchProjects(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	if len(page.Data) == 0 {
		fmt.Fprintln(a.out, "No projects found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Create your first project:")
		fmt.Fprintln(a.out, "  cts project create --template TEMPLATE-ID --name Survey --code S-01 --file tasks.csv")
		return page, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tNAME\tTABLE\tTASKS\tSTATUS")
	fmt.Fprintln(w, "--\t----\t----\t-----\t-----\t------")
	for _, p := range page.Data {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n", p.ID, p.Code, p.Name, p.DataTableName, p.Total, p.Status)
	}
	w.Flush()
	printPageFooter(a.out, page.PageNo, page.Pages, page.Total)

	return page, nil
}

// Show displays a single project.
func (a *ProjectAdapter) Show(ctx context.Context, projectID string) (*primary.Project, error) {
	p, err := a.service.GetProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	fmt.Fprintf(a.out, "\nProject: %s\n", p.ID)
	fmt.Fprintf(a.out, "Name:     %s\n", p.Name)
	fmt.Fprintf(a.out, "Code:     %s\n", p.Code)
	fmt.Fprintf(a.out, "Template: %s\n", p.FormTemplateID)
	fmt.Fprintf(a.out, "Tables:   %s, %s\n",
		color.New(color.FgCyan).Sprint("data_"+p.DataTableName),
		color.New(color.FgCyan).Sprint("task_"+p.DataTableName))
	fmt.Fprintf(a.out, "Tasks:    %d\n", p.Total)
	fmt.Fprintf(a.out, "Type:     %d\n", p.Type)
	fmt.Fprintf(a.out, "Status:   %d\n", p.Status)
	if p.Description != nil {
		fmt.Fprintf(a.out, "Description: %s\n", *p.Description)
	}
	if p.Remark != nil {
		fmt.Fprintf(a.out, "Remark:   %s\n", *p.Remark)
	}
	fmt.Fprintf(a.out, "Created:  %s\n", p.CreatedAt)
	if p.UpdatedAt != "" {
		fmt.Fprintf(a.out, "Updated:  %s\n", p.UpdatedAt)
	}
	fmt.Fprintln(a.out)

	return p, nil
}

// Delete soft-deletes a project, or drops it with its tables when force is set.
func (a *ProjectAdapter) Delete(ctx context.Context, projectID string, force bool) error {
	if err := a.service.DeleteProject(ctx, projectID, force); err != nil {
		return err
	}
	if force {
		fmt.Fprintf(a.out, "✓ Removed project %s and dropped its tables\n", projectID)
	} else {
		fmt.Fprintf(a.out, "✓ Deleted project %s\n", projectID)
	}
	return nil
}
