package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/example/cts/internal/ports/primary"
)

// TemplateAdapter translates CLI operations to FormTemplateService calls.
type TemplateAdapter struct {
	service primary.FormTemplateService
	out     io.Writer
}

// NewTemplateAdapter creates a new TemplateAdapter with the given service.
func NewTemplateAdapter(service primary.FormTemplateService, out io.Writer) *TemplateAdapter {
	return &TemplateAdapter{
		service: service,
		out:     out,
	}
}

// Add stores a template and prints its ID and columns.
func (a *TemplateAdapter) Add(ctx context.Context, req primary.CreateTemplateRequest) (*primary.FormTemplate, error) {
	resp, err := a.service.CreateTemplate(ctx, req)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(a.out, "✓ Created form template %s: %s\n", resp.TemplateID, resp.Template.Name)
	if len(resp.Template.Columns) > 0 {
		fmt.Fprintf(a.out, "  Columns: %s\n", strings.Join(resp.Template.Columns, ", "))
	}
	return resp.Template, nil
}

// List prints one page of templates.
func (a *TemplateAdapter) List(ctx context.Context, req primary.SearchTemplatesRequest) (*primary.Page[*primary.FormTemplate], error) {
	page, err := a.service.SearchTemplates(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to list form templates: %w", err)
	}

	if len(page.Data) == 0 {
		fmt.Fprintln(a.out, "No form templates found.")
		fmt.Fprintln(a.out)
		fmt.Fprintln(a.out, "Add your first template:")
		fmt.Fprintln(a.out, "  cts template add survey --file survey.json")
		return page, nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTITLE\tVERSION\tCREATED")
	fmt.Fprintln(w, "--\t----\t-----\t-------\t-------")
	for _, t := range page.Data {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Name, t.Title, t.Version, t.CreatedAt)
	}
	w.Flush()
	printPageFooter(a.out, page.PageNo, page.Pages, page.Total)

	return page, nil
}

// Show displays a single template.
func (a *TemplateAdapter) Show(ctx context.Context, templateID string) (*primary.FormTemplate, error) {
	t, err := a.service.GetTemplate(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get form template: %w", err)
	}

	fmt.Fprintf(a.out, "\nForm template: %s\n", t.ID)
	fmt.Fprintf(a.out, "Name:    %s\n", t.Name)
	fmt.Fprintf(a.out, "Title:   %s\n", t.Title)
	fmt.Fprintf(a.out, "Version: %s\n", t.Version)
	fmt.Fprintf(a.out, "Columns: %s\n", strings.Join(t.Columns, ", "))
	if t.Description != nil {
		fmt.Fprintf(a.out, "Description: %s\n", *t.Description)
	}
	if t.Remark != nil {
		fmt.Fprintf(a.out, "Remark:  %s\n", *t.Remark)
	}
	fmt.Fprintf(a.out, "Created: %s\n", t.CreatedAt)
	if t.UpdatedAt != "" {
		fmt.Fprintf(a.out, "Updated: %s\n", t.UpdatedAt)
	}
	fmt.Fprintln(a.out)

	return t, nil
}

// Delete soft-deletes a template, or removes it when force is set.
func (a *TemplateAdapter) Delete(ctx context.Context, templateID string, force bool) error {
	if err := a.service.DeleteTemplate(ctx, templateID, force); err != nil {
		return err
	}
	if force {
		fmt.Fprintf(a.out, "✓ Removed form template %s\n", templateID)
	} else {
		fmt.Fprintf(a.out, "✓ Deleted form template %s\n", templateID)
	}
	return nil
}

func printPageFooter(out io.Writer, pageNo int, pages, total int64) {
	fmt.Fprintf(out, "\nPage %d of %d (%d total)\n", pageNo, pages, total)
}
