package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/cts/internal/ports/primary"
	"github.com/example/cts/internal/version"
	"github.com/example/cts/internal/wire"
)

// UserCmd returns the user command
func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage login accounts",
	}
	cmd.AddCommand(userCreateCmd())
	return cmd
}

func userCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [username]",
		Short: "Create a login account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, _ := cmd.Flags().GetString("password")
			nickname, _ := cmd.Flags().GetString("nickname")

			return withApp(cmd, func(ctx context.Context, a *wire.App) error {
				u, err := a.Auth.CreateUser(ctx, primary.CreateUserRequest{
					Username: args[0],
					Password: password,
					Nickname: nickname,
				})
				if err != nil {
					return err
				}
				fmt.Printf("✓ Created user %s: %s\n", u.ID, u.Username)
				return nil
			})
		},
	}

	cmd.Flags().String("password", "", "Password")
	cmd.Flags().String("nickname", "", "Display name")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// VersionCmd returns the version command
func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version.String())
		},
	}
}
