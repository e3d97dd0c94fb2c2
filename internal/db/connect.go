// Package db owns the store handle: connection, migrations and seed data.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diewo77/go-invoices/internal/config"
	"github.com/diewo77/go-invoices/internal/logging"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Open connects to the configured store, retrying while the server comes up.
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         logging.NewGormLogger(cfg.Debug),
		TranslateError: true,
	}
	retries := cfg.MaxRetries
	if retries < 1 {
		retries = 1
	}

	var (
		conn *gorm.DB
		err  error
	)
	for attempt := 1; attempt <= retries; attempt++ {
		conn, err = open(cfg, gcfg)
		if err == nil {
			if err = Ping(ctx, conn); err == nil {
				break
			}
			_ = Close(conn)
		}
		if attempt == retries {
			break
		}
		log.Warn("database not ready, retrying", zap.Int("attempt", attempt), zap.Error(err))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cfg.RetryDelay):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after %d attempts: %w", retries, err)
	}
	log.Info("database connected", zap.String("driver", cfg.Driver), zap.String("dsn", MaskDSN(cfg.DSN())))
	return conn, nil
}

func open(cfg config.DatabaseConfig, gcfg *gorm.Config) (*gorm.DB, error) {
	switch cfg.Driver {
	case "sqlite":
		conn, err := gorm.Open(sqlite.Open(cfg.DSN()), gcfg)
		if err != nil {
			return nil, err
		}
		// SQLite serializes writers; a single connection avoids "database is locked".
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return conn, nil
	case "postgres":
		dsn := NormalizeDSN(cfg.DSN())
		if dsn == "" {
			return nil, errors.New("empty DATABASE_DSN")
		}
		return gorm.Open(postgres.Open(dsn), gcfg)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// OpenSQLite opens an SQLite store limited to one connection, as used by tests and local runs.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	return open(config.DatabaseConfig{Driver: "sqlite", SQLitePath: dsn}, &gorm.Config{
		Logger:         logging.NewGormLogger(false),
		TranslateError: true,
	})
}

// Ping performs a lightweight connectivity check (SELECT 1).
func Ping(ctx context.Context, conn *gorm.DB) error {
	return conn.WithContext(ctx).Exec("SELECT 1").Error
}

// Close releases the underlying connection pool.
func Close(conn *gorm.DB) error {
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
