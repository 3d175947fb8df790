package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/cts/internal/config"
	"github.com/example/cts/internal/db"
	"github.com/example/cts/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file, migrate the database and create the admin",
		Long: `Initialize a CTS deployment in the config directory.

Writes cts.yaml with defaults when none exists, applies the database
migrations, and creates the admin account named in the config.

Examples:
  cts init --admin-password s3cret
  CTS_DB_DRIVER=postgres CTS_DB_URL=postgres://... cts init`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Root().PersistentFlags().GetString("dir")
			if dir == "" {
				dir = "."
			}

			path := filepath.Join(dir, config.DefaultFile)
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				if err := config.SaveConfig(dir, config.Default()); err != nil {
					return err
				}
				fmt.Printf("✓ Wrote %s\n", path)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := wire.New(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer a.Close()

			version, err := db.CurrentVersion(ctx, a.DB)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Database at schema version %d\n", version)

			admin := cfg.Admin
			if password, _ := cmd.Flags().GetString("admin-password"); password != "" {
				admin.Password = password
			}
			if admin.Password == "" {
				fmt.Println("⚠ No admin password configured; skipping admin account")
				fmt.Println("  Set admin.password in cts.yaml or pass --admin-password")
				return nil
			}

			created, err := a.SeedAdmin(ctx, admin)
			if err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}
			if created {
				fmt.Printf("✓ Created admin account %q\n", admin.Username)
			} else {
				fmt.Printf("✓ Admin account %q already exists\n", admin.Username)
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  cts template add survey --file survey.json")
			fmt.Println("  cts serve")
			return nil
		},
	}

	cmd.Flags().String("admin-password", "", "Password for the admin account (overrides the config)")
	return cmd
}

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				version, err := db.CurrentVersion(ctx, a.DB)
				if err != nil {
					return err
				}
				fmt.Printf("✓ Database at schema version %d\n", version)
				return nil
			})
		},
	}
}
