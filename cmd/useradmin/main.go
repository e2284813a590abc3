// @title                       User Administration API
// @version                     1.0
// @description                 Administration of regular user accounts guarded by a single admin.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirpyerre/useradmin/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.NewApp(), os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
