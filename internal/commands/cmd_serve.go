package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/toastq/internal/printer"
	"github.com/hay-kot/toastq/internal/server"
)

type ServeCmd struct {
	flags *Flags
	app   *App

	addr string
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags, app *App) *ServeCmd {
	return &ServeCmd{flags: flags, app: app}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Serve the toast queue over HTTP",
		UsageText: "toastq serve [options]",
		Description: `Starts an HTTP server exposing the notification center.

Routes:
  GET    /api/toasts               list toasts, newest first
  POST   /api/toasts               create a toast
  PATCH  /api/toasts/{id}          update a toast
  POST   /api/toasts/{id}/dismiss  dismiss a toast
  POST   /api/toasts/dismiss       dismiss all toasts
  DELETE /api/toasts/{id}          remove a toast
  DELETE /api/toasts               remove all toasts
  GET    /api/toasts/stream        websocket snapshot stream
  GET    /api/history              persisted history
  GET    /metrics                  prometheus metrics`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Aliases:     []string{"a"},
				Usage:       "listen address (defaults to server.addr from config)",
				Sources:     cli.EnvVars("TOASTQ_ADDR"),
				Destination: &cmd.addr,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)
	cfg := cmd.app.Config

	addr := cmd.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	var opts []server.Option
	if cmd.app.History != nil {
		opts = append(opts, server.WithHistory(cmd.app.History))
	}
	if cfg.Server.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, server.WithMetrics(reg))
	}

	srv := server.New(cmd.app.Center, opts...)
	defer srv.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	p.Infof("Listening on %s", addr)
	if err := srv.Run(ctx, addr); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	return nil
}
