package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sirpyerre/useradmin/internal/core/ports"
	"github.com/sirpyerre/useradmin/pkg/logger"
)

func newCreateAdminCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create-admin <username> <password>",
		Short: "Create the admin account",
		Long: `Create the single admin account. The command refuses when an admin
already exists and changes nothing in that case.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			in, err := ports.NewBootstrapInput(args[0], args[1])
			if err != nil {
				return err
			}

			cfg, err := app.LoadConfig(ctx)
			if err != nil {
				return err
			}
			logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.PrettyLogs(), Service: "useradmin", Output: cmd.ErrOrStderr()})

			users, closeFn, err := app.OpenUsers(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			admin, err := users.Bootstrap(ctx, in)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Admin user created successfully! (id=%s)\n", admin.ID)
			return nil
		},
	}
}
