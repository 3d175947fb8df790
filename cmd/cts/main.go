package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/cts/internal/cli"
	"github.com/example/cts/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "cts",
		Short:   "CTS - collection task service",
		Version: version.String(),
		Long: `CTS provisions field-collection projects from form templates and CSV
task lists, and serves their data over a JSON API.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("dir", ".", "Directory holding cts.yaml and .env")
	rootCmd.PersistentFlags().Bool("debug", false, "Log SQL statements")

	// Setup
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.UserCmd())
	rootCmd.AddCommand(cli.VersionCmd())

	// Entities
	rootCmd.AddCommand(cli.TemplateCmd())
	rootCmd.AddCommand(cli.ProjectCmd())
	rootCmd.AddCommand(cli.RecordCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
