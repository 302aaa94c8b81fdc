// Package cli provides common initialization and terminal output utilities
// shared by cmd/budget, cmd/budgetctl and cmd/sheets-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"smartbudget/internal/amqp"
	"smartbudget/internal/backend"
	"smartbudget/internal/config"
	"smartbudget/internal/ledger"
	"smartbudget/internal/log"
)

// SetupLogger initializes structured logging from the configuration and
// sets it as the default logger.
func SetupLogger(cfg *config.Config) *log.Logger {
	logCfg := log.DefaultConfig()
	if cfg != nil {
		logCfg.Level = log.ParseLevel(cfg.LogLevel)
		logCfg.Format = cfg.LogFormat
	}
	logger := log.New(logCfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// App bundles what every entrypoint builds from the configuration.
type App struct {
	Config  *config.Config
	Policy  config.Policy
	Backend *backend.BackendResult
	Book    *ledger.Book
	Events  *amqp.Client
	Logger  *log.Logger
}

// OpenBook creates the configured store, loads the finance policy, connects
// the event publisher when AMQP is configured and hydrates the ledger.
// A failing AMQP connection is logged and the book runs without events.
func OpenBook(ctx context.Context, cfg *config.Config, logger *log.Logger, opts ...ledger.Option) (*App, error) {
	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}
	if !policy.Rates.Has(cfg.DefaultCurrency) {
		return nil, fmt.Errorf("default currency %s is not in the rate table", cfg.DefaultCurrency)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		return nil, err
	}

	app := &App{Config: cfg, Policy: policy, Backend: res, Logger: logger}

	bookOpts := []ledger.Option{ledger.WithLogger(logger), ledger.WithRates(policy.Rates)}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without sync", "error", err)
		} else {
			app.Events = client
			bookOpts = append(bookOpts, ledger.WithNotifier(client))
			logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}
	bookOpts = append(bookOpts, opts...)

	book, err := ledger.Open(ctx, res.Store, bookOpts...)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	app.Book = book

	// A fresh store starts in the configured currency.
	if _, ok, err := res.Store.Get(ctx, ledger.KeySelectedCurrency); err == nil && !ok && cfg.DefaultCurrency != book.Settings().Currency {
		if err := book.SetCurrency(ctx, cfg.DefaultCurrency); err != nil {
			logger.Warn("Failed to apply default currency", "currency", cfg.DefaultCurrency, "error", err)
		}
	}
	return app, nil
}

// Close releases the event publisher and the store.
func (a *App) Close() error {
	var firstErr error
	if a.Events != nil {
		if err := a.Events.Close(); err != nil {
			firstErr = err
		}
	}
	if a.Backend != nil {
		if err := a.Backend.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(ctx context.Context)) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()
		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		if shutdownCtx.Err() != nil {
			logger.Warn("Shutdown timeout reached")
		} else {
			logger.Info("Shutdown complete")
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
