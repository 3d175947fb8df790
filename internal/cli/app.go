// Package cli implements the cts command tree.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/cts/internal/config"
	"github.com/example/cts/internal/logging"
	"github.com/example/cts/internal/wire"
)

// loadConfig reads the configuration from the --dir flag and installs the
// logger it describes.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dir, err := cmd.Root().PersistentFlags().GetString("dir")
	if err != nil || dir == "" {
		dir = "."
	}
	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, err
	}
	if debug, _ := cmd.Root().PersistentFlags().GetBool("debug"); debug {
		cfg.Log.Debug = true
	}
	logging.Setup(os.Stderr, cfg.Log)
	return cfg, nil
}

// withApp opens the application for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *wire.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := wire.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer a.Close()
	return fn(ctx, a)
}

// stringFlags collects the non-empty string flags named in keys, keyed by
// the field name each maps to.
func stringFlags(cmd *cobra.Command, keys map[string]string) map[string]string {
	fields := make(map[string]string, len(keys))
	for flag, field := range keys {
		if v, _ := cmd.Flags().GetString(flag); v != "" {
			fields[field] = v
		}
	}
	return fields
}

// optionalString returns a pointer to the flag's value when it was set.
func optionalString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

// optionalInt returns a pointer to the flag's value when it was set.
func optionalInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("size", 20, "Rows per page")
}
