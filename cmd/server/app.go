package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/diewo77/go-invoices/auth"
	"github.com/diewo77/go-invoices/internal/config"
	"github.com/diewo77/go-invoices/internal/db"
	"github.com/diewo77/go-invoices/internal/metrics"
	"github.com/diewo77/go-invoices/internal/money"
	"github.com/diewo77/go-invoices/internal/server"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// App owns the store handle and the HTTP server for one process.
type App struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
	srv *http.Server
}

// NewApp connects to the store. Call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	conn, err := db.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	return &App{cfg: cfg, log: log, db: conn}, nil
}

// Migrate applies the versioned SQL migrations when enabled on postgres, and
// falls back to AutoMigrate otherwise.
func (a *App) Migrate() error {
	if a.cfg.App.Migrations && a.cfg.Database.Driver == "postgres" {
		a.log.Info("applying sql migrations", zap.String("source", a.cfg.App.MigrationsPath))
		if err := db.RunSQLMigrations(a.cfg.App.MigrationsPath, a.cfg.Database.URL()); err != nil {
			return err
		}
		return db.CheckSchema(a.db)
	}
	return db.AutoMigrate(a.db)
}

// Seed ensures the admin user exists and, when DB_SEED is set, inserts demo data.
func (a *App) Seed(ctx context.Context) error {
	return db.Seed(ctx, a.db, db.SeedOptions{
		AdminEmail:    a.cfg.App.AdminEmail,
		AdminPassword: a.cfg.App.AdminPassword,
		Demo:          a.cfg.App.Seed,
	})
}

// Handler builds the routed HTTP handler.
func (a *App) Handler() http.Handler {
	auth.SetSecret(a.cfg.App.SessionSecret)
	tag, err := language.Parse(strings.TrimSpace(a.cfg.App.Locale))
	if err != nil {
		a.log.Warn("unknown locale, using default", zap.String("locale", a.cfg.App.Locale))
		tag = language.Spanish
	}
	return server.New(server.Options{
		DB:             a.db,
		Log:            a.log,
		Metrics:        metrics.New(),
		Money:          money.NewFormatter(tag, a.cfg.App.CurrencySymbol),
		LoginRateLimit: a.cfg.Server.LoginRateLimit,
		Production:     a.cfg.App.IsProduction(),
	})
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (a *App) Serve(ctx context.Context) error {
	a.srv = &http.Server{
		Addr:         ":" + a.cfg.Server.Port,
		Handler:      a.Handler(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server starting", zap.String("addr", a.srv.Addr), zap.String("env", a.cfg.App.Env))
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	a.log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	a.log.Info("server stopped gracefully")
	return nil
}

// Close releases the store handle.
func (a *App) Close() error {
	return db.Close(a.db)
}
