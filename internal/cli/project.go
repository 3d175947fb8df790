package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/cts/internal/adapters/csvfile"
	"github.com/example/cts/internal/ports/primary"
	"github.com/example/cts/internal/wire"
)

// ProjectCmd returns the project command
func ProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
		Long:  "Provision projects from a form template and a CSV of tasks",
	}

	cmd.AddCommand(projectCreateCmd())
	cmd.AddCommand(projectListCmd())
	cmd.AddCommand(projectShowCmd())
	cmd.AddCommand(projectDeleteCmd())

	return cmd
}

// projectFieldFlags maps create flags to project metadata fields.
var projectFieldFlags = map[string]string{
	"name":        "name",
	"code":        "code",
	"type":        "type",
	"status":      "status",
	"template":    "formTemplateId",
	"task-code":   "taskCode",
	"task-lon":    "taskLon",
	"task-lat":    "taskLat",
	"description": "description",
	"remark":      "remark",
}

func projectCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Provision a project from a CSV of tasks",
		Long: `Create a project's data and task tables and load one task per CSV row.

The task columns name the CSV headers holding each task's code and
coordinates.

Examples:
  cts project create --template T-1 --name Pipes --code P-01 --type 1 \
      --task-code no --task-lon lng --task-lat lat --file tasks.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			dataset, err := csvfile.ReadFile(file)
			if err != nil {
				return err
			}
			fields := stringFlags(cmd, projectFieldFlags)

			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				_, err := a.ProjectAdapter(os.Stdout).Create(ctx, fields, dataset)
				return err
			})
		},
	}

	cmd.Flags().StringP("file", "f", "", "CSV file of tasks")
	cmd.Flags().String("template", "", "Form template ID")
	cmd.Flags().String("name", "", "Project name")
	cmd.Flags().String("code", "", "Project code")
	cmd.Flags().String("type", "", "Project type")
	cmd.Flags().String("status", "", "Project status")
	cmd.Flags().String("task-code", "", "CSV header holding the task code")
	cmd.Flags().String("task-lon", "", "CSV header holding the longitude")
	cmd.Flags().String("task-lat", "", "CSV header holding the latitude")
	cmd.Flags().String("description", "", "Description")
	cmd.Flags().String("remark", "", "Remark")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func projectListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			code, _ := cmd.Flags().GetString("code")
			page, _ := cmd.Flags().GetInt("page")
			size, _ := cmd.Flags().GetInt("size")

			req := primary.SearchProjectsRequest{
				Name:   name,
				Code:   code,
				Type:   optionalInt(cmd, "type"),
				Status: optionalInt(cmd, "status"),
				Page:   primary.PageRequest{PageNo: page, PageSize: size},
			}
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				_, err := a.ProjectAdapter(os.Stdout).List(ctx, req)
				return err
			})
		},
	}

	cmd.Flags().String("name", "", "Filter by name substring")
	cmd.Flags().String("code", "", "Filter by code")
	cmd.Flags().Int("type", 0, "Filter by type")
	cmd.Flags().Int("status", 0, "Filter by status")
	addPageFlags(cmd)

	return cmd
}

func projectShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [project-id]",
		Short: "Show project details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				_, err := a.ProjectAdapter(os.Stdout).Show(ctx, args[0])
				return err
			})
		},
	}
}

func projectDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [project-id]",
		Short: "Delete a project",
		Long:  "Soft-delete a project. With --force the row is removed and its data and task tables are dropped.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				return a.ProjectAdapter(os.Stdout).Delete(ctx, args[0], force)
			})
		},
	}

	cmd.Flags().Bool("force", false, "Remove the project and drop its tables")
	return cmd
}
