package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/diewo77/go-invoices/internal/config"
	"github.com/diewo77/go-invoices/internal/logging"
	"go.uber.org/zap"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log, err := logging.New(logging.Config{
		Environment: cfg.App.Env,
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("fatal", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("close database", zap.Error(err))
		}
	}()

	if *migrateOnlyFlag {
		if err := app.Migrate(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Info("migrations completed successfully")
		return nil
	}
	if *seedOnlyFlag {
		if err := app.Seed(ctx); err != nil {
			return fmt.Errorf("seeding failed: %w", err)
		}
		log.Info("seeding completed successfully")
		return nil
	}

	if err := app.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if err := app.Seed(ctx); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	return app.Serve(ctx)
}
