// Command healdash serves the healing history and the latest visual
// report as JSON for external dashboards.
//
// Usage:
//
//	healdash -config selmend.yaml
//	healdash -db out/heals.db -addr :8790
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/selmend/config"
	"github.com/hazyhaar/selmend/dash"
	"github.com/hazyhaar/selmend/report"
)

func main() {
	configPath := flag.String("config", "", "path to selmend.yaml config file")
	dbPath := flag.String("db", "", "healing history database (overrides config)")
	addr := flag.String("addr", "", "listen address (overrides config)")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *configPath, *dbPath, *addr); err != nil {
		logger.Error("healdash: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, configPath, dbPath, addr string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if dbPath == "" {
		dbPath = cfg.AutoHealing.HistoryDB
	}
	if addr == "" {
		addr = cfg.Dash.Addr
	}
	if dbPath == "" {
		return fmt.Errorf("no history database: set -db or autoHealing.historyDB")
	}

	store, err := report.OpenStore(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	srv := dash.New(store, cfg.VisualTesting.ReportPath, logger)
	return srv.ListenAndServe(ctx, addr)
}
