package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"smartbudget/internal/cli"
	apphttp "smartbudget/internal/http"
)

func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		cli.SetupLogger(nil).Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg)

	app, err := cli.OpenBook(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("Failed to open ledger", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Cleanup failed", "error", err)
		}
	}()

	srv := apphttp.NewServer(":"+cfg.Port, app.Book, apphttp.Options{
		Policy:         app.Policy.Health,
		RequestsPerMin: cfg.RateLimitPerMinute,
		Logger:         logger,
		Ready:          app.Backend,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
	})
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	})

	var g errgroup.Group
	g.Go(func() error {
		logger.Info("Starting smartbudget server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"events", app.Events != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
