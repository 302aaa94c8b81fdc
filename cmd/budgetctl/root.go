package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"smartbudget/internal/cli"
	"smartbudget/internal/config"
	"smartbudget/internal/finance"
	"smartbudget/internal/log"
)

var (
	flagBackend  string
	flagDataDir  string
	flagDBPath   string
	flagCurrency string
	flagQuiet    bool
)

var rootCmd = &cobra.Command{
	Use:          "budgetctl",
	Short:        "SmartBudget ledger CLI",
	Long:         "Inspect totals, insights and budgets of a smartbudget ledger and record transactions.",
	SilenceUsage: true,
	RunE:         runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagBackend, "backend", "b", "", "Storage backend (sqlite, file, memory); defaults to DATA_BACKEND")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "Directory of the file backend; defaults to DATA_DIR")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "SQLite database path; defaults to SQLITE_DB_PATH")
	rootCmd.PersistentFlags().StringVarP(&flagCurrency, "currency", "c", "", "Display currency; defaults to the ledger setting")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// session is the shared state every command works against.
type session struct {
	app      *cli.App
	currency string
}

// openSession is the shared loading path used by all commands. Flags
// override the environment configuration.
func openSession(ctx context.Context) (*session, error) {
	cli.LoadEnvFile()

	cfg := config.Load()
	if flagBackend != "" {
		cfg.DataBackend = strings.ToLower(flagBackend)
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if flagDBPath != "" {
		cfg.SQLiteDBPath = flagDBPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	// The CLI only reads and writes the store; events stay with the server.
	cfg.AMQPURL = ""

	level := slog.LevelWarn
	if flagQuiet {
		level = slog.LevelError
	}
	logger := log.New(log.Config{Level: level, Format: "text", Output: os.Stderr})
	app, err := cli.OpenBook(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	currency := app.Book.Settings().Currency
	if flagCurrency != "" {
		currency = strings.ToUpper(flagCurrency)
		if !app.Book.Rates().Has(currency) {
			_ = app.Close()
			return nil, fmt.Errorf("%w: %s", finance.ErrUnknownCurrency, flagCurrency)
		}
	}
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Using %s backend\n", cfg.DataBackend)
	}
	return &session{app: app, currency: currency}, nil
}

func (s *session) Close() {
	_ = s.app.Close()
}

// money renders an amount stored in the base currency in the display
// currency.
func (s *session) money(amount float64) string {
	converted, err := s.app.Book.Rates().Convert(amount, finance.BaseCurrency, s.currency)
	if err != nil {
		return cli.FormatMoney(amount, finance.BaseCurrency)
	}
	return cli.FormatMoney(converted, s.currency)
}
