package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"strings"
	"time"

	"github.com/google/subcommands"

	"ledger/internal/backend"
	"ledger/internal/cli"
	"ledger/internal/config"
	apphttp "ledger/internal/http"
	"ledger/internal/ledger"
	"ledger/internal/log"
	"ledger/internal/services"
)

type serveCmd struct {
	port     string
	currency string
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the ledger web UI" }
func (*serveCmd) Usage() string {
	return `ledger serve [-port <port>] [-currency <code>]

  Serves the single-page ledger. Every accepted transaction is mirrored to
  the backend selected by MIRROR_BACKEND.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.port, "port", "", "Port to listen on. Overrides PORT.")
	f.StringVar(&c.currency, "currency", "", "Initial display currency. Overrides DEFAULT_CURRENCY.")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logger := cli.SetupLogger(config.Load())
	cfg := cli.LoadAndValidateConfig(logger, func(cfg *config.Config) error {
		if c.port != "" {
			cfg.Port = c.port
		}
		if c.currency != "" {
			cfg.DefaultCurrency = strings.ToUpper(c.currency)
		}
		return cfg.Validate()
	})

	ctx, stop := cli.SignalContext(ctx)
	defer stop()

	res, err := backend.NewMirror(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize mirror", log.FieldError, err, log.FieldMirror, cfg.MirrorBackend)
		return subcommands.ExitFailure
	}
	if res.Cleanup != nil {
		defer func() {
			if err := res.Cleanup(); err != nil {
				logger.Warn("Mirror cleanup failed", log.FieldError, err)
			}
		}()
	}

	syncer := services.NewSyncService(res.Mirror, cfg.MirrorTimeout, logger)
	session, err := ledger.NewSession(cfg.DefaultCurrency, syncer, logger)
	if err != nil {
		logger.Error("Failed to start ledger session", log.FieldError, err)
		return subcommands.ExitFailure
	}

	srv := apphttp.NewServer(":"+cfg.Port, session, syncer, apphttp.Options{Logger: logger})

	logger.Info("Starting ledger server",
		"port", cfg.Port,
		log.FieldMirror, cfg.MirrorBackend,
		log.FieldCurrency, session.Currency())

	err = cli.Run(ctx, logger, 30*time.Second,
		func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
		func(shutdownCtx context.Context) error {
			return errors.Join(srv.Shutdown(shutdownCtx), syncer.Close(shutdownCtx))
		},
	)
	if err != nil {
		logger.Error("Server error", log.FieldError, err)
		return subcommands.ExitFailure
	}
	logger.Info("Server stopped gracefully")
	return subcommands.ExitSuccess
}
