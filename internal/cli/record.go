package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/cts/internal/core/schema"
	"github.com/example/cts/internal/ports/primary"
	"github.com/example/cts/internal/wire"
)

// RecordCmd returns the record command
func RecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Inspect rows of a project's data and task tables",
		Long: `Inspect rows of a project's dynamic tables.

KIND is "data" or "task"; TABLE-ID is the project's data table name.

Examples:
  cts record list task 0f3c... --where "status = 0"
  cts record show data 0f3c... 7d2e...`,
	}

	cmd.AddCommand(recordListCmd())
	cmd.AddCommand(recordShowCmd())
	cmd.AddCommand(recordDeleteCmd())
	cmd.AddCommand(recordSchemaCmd())

	return cmd
}

func recordListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [kind] [table-id]",
		Short: "List rows",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, _ := cmd.Flags().GetStringSlice("field")
			wheres, _ := cmd.Flags().GetStringArray("where")
			orders, _ := cmd.Flags().GetStringArray("order")
			page, _ := cmd.Flags().GetInt("page")
			size, _ := cmd.Flags().GetInt("size")

			req := primary.SearchRecordsRequest{
				Fields: fields,
				Wheres: wheres,
				Orders: orders,
				Page:   primary.PageRequest{PageNo: page, PageSize: size},
			}
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				_, err := a.RecordAdapter(os.Stdout).List(ctx, schema.TableKind(args[0]), args[1], req)
				return err
			})
		},
	}

	cmd.Flags().StringSlice("field", nil, "Columns to show (default all)")
	cmd.Flags().StringArray("where", nil, "SQL condition, repeatable")
	cmd.Flags().StringArray("order", nil, "SQL ordering term, repeatable")
	addPageFlags(cmd)

	return cmd
}

func recordShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [kind] [table-id] [id]",
		Short: "Show one row",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				_, err := a.RecordAdapter(os.Stdout).Show(ctx, schema.TableKind(args[0]), args[1], args[2])
				return err
			})
		},
	}
}

func recordDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [kind] [table-id] [id]",
		Short: "Delete one row",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				return a.RecordAdapter(os.Stdout).Delete(ctx, schema.TableKind(args[0]), args[1], args[2], force)
			})
		},
	}

	cmd.Flags().Bool("force", false, "Remove the row instead of marking it deleted")
	return cmd
}

func recordSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [kind] [table-id]",
		Short: "Show a table's columns (Postgres only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				_, err := a.RecordAdapter(os.Stdout).Schema(ctx, schema.TableKind(args[0]), args[1])
				return err
			})
		},
	}
}
