package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"ledger/internal/amqp"
	"ledger/internal/api"
	"ledger/internal/auth"
	"ledger/internal/cache"
	"ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/log"
	"ledger/internal/services"
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(config.Load())
	logger.Info("Starting ledger-api")

	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateAPI)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	repo := cli.InitSQLite(ctx, logger, cfg.SQLiteDBPath)
	defer repo.Close()

	// Events are optional: without AMQP the worker's pending scan still
	// picks every row up.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, continuing without events", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	tokens, err := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		logger.Error("Failed to initialize token manager", log.FieldError, err)
		os.Exit(1)
	}

	listCache := cache.NewLRU[[]api.TransactionResponse](16, 30*time.Second)
	janitor := cache.NewJanitor(listCache)
	janitor.Start(time.Minute)
	defer janitor.Stop()

	svc := services.NewTransactionService(repo, publisher, logger)
	handler := api.NewTransactionHandler(svc, listCache, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           api.NewRouter(handler, tokens, repo, logger),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	logger.Info("Listening", "port", cfg.APIPort, "db", cfg.SQLiteDBPath)
	err = cli.Run(ctx, logger, 30*time.Second,
		func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
		srv.Shutdown,
	)
	if err != nil {
		logger.Error("Server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
