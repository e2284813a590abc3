// Package cli wires configuration, storage and services into the useradmin
// commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sirpyerre/useradmin/internal/core/domain"
	"github.com/sirpyerre/useradmin/internal/infrastructure/config"
)

// App carries the hooks commands use to reach configuration and the user
// service. Tests replace them.
type App struct {
	LoadConfig func(ctx context.Context) (*config.Config, error)
	OpenUsers  UsersOpener
}

// NewApp returns an App wired to the environment, MongoDB and Redis.
func NewApp() *App {
	return &App{
		LoadConfig: config.Load,
		OpenUsers:  openUsers,
	}
}

// NewRootCommand builds the command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "useradmin",
		Short: "User administration service with a single protected admin",
		Long: `useradmin manages regular user accounts over HTTP.

Exactly one admin account exists. It is created once with create-admin and
cannot be edited or deleted through the API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCommand(app))
	root.AddCommand(newCreateAdminCommand(app))
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, app *App, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		reportError(stderr, err)
		return 1
	}
	return 0
}

func reportError(w io.Writer, err error) {
	if errors.Is(err, domain.ErrAdminExists) {
		fmt.Fprintln(w, "An admin user already exists.")
		return
	}
	fmt.Fprintln(w, "Error:", err)
}
