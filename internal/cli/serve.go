package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/sirpyerre/useradmin/internal/api"
	"github.com/sirpyerre/useradmin/internal/api/handler"
	"github.com/sirpyerre/useradmin/internal/core/service"
	mongodb "github.com/sirpyerre/useradmin/internal/infrastructure/db/mongo"
	redisdb "github.com/sirpyerre/useradmin/internal/infrastructure/db/redis"
	"github.com/sirpyerre/useradmin/internal/infrastructure/security"
	"github.com/sirpyerre/useradmin/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := app.LoadConfig(ctx)
			if err != nil {
				return err
			}
			if err := cfg.RequireSecrets(); err != nil {
				return err
			}

			log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.PrettyLogs(), Service: "useradmin"})

			b, err := connect(ctx, cfg, true)
			if err != nil {
				return err
			}
			defer b.close()

			checks := map[string]handler.DependencyCheck{
				"mongodb": func(ctx context.Context) error { return mongodb.Ping(ctx, b.mongo, 0) },
			}
			if b.redis != nil {
				checks["redis"] = func(ctx context.Context) error { return redisdb.Ping(ctx, b.redis, time.Second) }
			}

			e := api.NewRouter(api.Deps{
				Users:     b.userService(cfg, logger.Component("users")),
				Auth:      service.NewAuthService(b.users, security.NewBcryptHasher(cfg.Auth.BcryptCost), cfg.Auth.JWTSecret, cfg.Auth.JWTTTL),
				JWTSecret: cfg.Auth.JWTSecret,
				Checks:    checks,
				Logger:    logger.Component("http"),
			})

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
				if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		},
	}
}
