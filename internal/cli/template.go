package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/cts/internal/ports/primary"
	"github.com/example/cts/internal/wire"
)

// TemplateCmd returns the template command
func TemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage form templates",
		Long:  "Add, list, show and delete the form templates projects are built from",
	}

	cmd.AddCommand(templateAddCmd())
	cmd.AddCommand(templateListCmd())
	cmd.AddCommand(templateShowCmd())
	cmd.AddCommand(templateDeleteCmd())

	return cmd
}

func templateAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a form template from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			content, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read template: %w", err)
			}
			title, _ := cmd.Flags().GetString("title")
			version, _ := cmd.Flags().GetString("version")

			req := primary.CreateTemplateRequest{
				Name:        args[0],
				Title:       title,
				Version:     version,
				Content:     string(content),
				Description: optionalString(cmd, "description"),
				Remark:      optionalString(cmd, "remark"),
			}
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				_, err := a.TemplateAdapter(os.Stdout).Add(ctx, req)
				return err
			})
		},
	}

	cmd.Flags().StringP("file", "f", "", "Template JSON file")
	cmd.Flags().String("title", "", "Title (defaults to the form's title)")
	cmd.Flags().String("version", "", "Version (defaults to the form's version)")
	cmd.Flags().String("description", "", "Description")
	cmd.Flags().String("remark", "", "Remark")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func templateListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List form templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			page, _ := cmd.Flags().GetInt("page")
			size, _ := cmd.Flags().GetInt("size")

			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				_, err := a.TemplateAdapter(os.Stdout).List(ctx, primary.SearchTemplatesRequest{
					Name: name,
					Page: primary.PageRequest{PageNo: page, PageSize: size},
				})
				return err
			})
		},
	}

	cmd.Flags().String("name", "", "Filter by name substring")
	addPageFlags(cmd)

	return cmd
}

func templateShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [template-id]",
		Short: "Show form template details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				_, err := a.TemplateAdapter(os.Stdout).Show(ctx, args[0])
				return err
			})
		},
	}
}

func templateDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [template-id]",
		Short: "Delete a form template",
		Long: `Soft-delete a form template. With --force the row is removed, which
fails while any project still uses the template.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				return a.TemplateAdapter(os.Stdout).Delete(ctx, args[0], force)
			})
		},
	}

	cmd.Flags().Bool("force", false, "Remove the row instead of marking it deleted")
	return cmd
}
