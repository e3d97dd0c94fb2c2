// Package config provides application configuration loaded from environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	LoginRateLimit  int           `envconfig:"LOGIN_RATE_LIMIT" default:"10"` // attempts per minute and IP
}

// DatabaseConfig holds store connection settings.
type DatabaseConfig struct {
	Driver     string        `envconfig:"DB_DRIVER" default:"postgres"` // postgres | sqlite
	RawDSN     string        `envconfig:"DATABASE_DSN"`
	Host       string        `envconfig:"DB_HOST" default:"localhost"`
	Port       int           `envconfig:"DB_PORT" default:"5432"`
	User       string        `envconfig:"DB_USER" default:"invoices"`
	Password   string        `envconfig:"DB_PASSWORD" default:"invoices123"`
	DBName     string        `envconfig:"DB_NAME" default:"invoices"`
	SSLMode    string        `envconfig:"DB_SSLMODE" default:"disable"`
	SQLitePath string        `envconfig:"SQLITE_PATH" default:"invoices.db"`
	MaxRetries int           `envconfig:"DB_MAX_RETRIES" default:"10"`
	RetryDelay time.Duration `envconfig:"DB_RETRY_DELAY" default:"2s"`
	Debug      bool          `envconfig:"DB_DEBUG" default:"false"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env            string `envconfig:"APP_ENV" default:"development"`
	Migrations     bool   `envconfig:"MIGRATIONS" default:"false"`
	MigrationsPath string `envconfig:"MIGRATIONS_PATH" default:"file://migrations"`
	Seed           bool   `envconfig:"DB_SEED" default:"false"`
	SessionSecret  string `envconfig:"SESSION_SECRET" default:"devsessionsecret"`
	Locale         string `envconfig:"LOCALE" default:"es"`
	CurrencySymbol string `envconfig:"CURRENCY_SYMBOL" default:"$"`
	AdminEmail     string `envconfig:"ADMIN_EMAIL" default:"user@nextmail.com"`
	AdminPassword  string `envconfig:"ADMIN_PASSWORD" default:"123456"`
}

// LogConfig holds structured logging settings.
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"` // json | console
}

// IsProduction reports whether the service runs with production settings.
func (a AppConfig) IsProduction() bool { return a.Env == "production" }

// DSN returns the connection string for the configured driver.
// DATABASE_DSN wins over the discrete DB_* settings.
func (d DatabaseConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	if d.RawDSN != "" {
		return d.RawDSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format, as expected by golang-migrate.
func (d DatabaseConfig) URL() string {
	if strings.HasPrefix(d.RawDSN, "postgres://") || strings.HasPrefix(d.RawDSN, "postgresql://") {
		return d.RawDSN
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// Load reads an optional .env file and then the environment.
// It uses sensible defaults for local development.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	for _, section := range []any{&cfg.Server, &cfg.Database, &cfg.App, &cfg.Log} {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.App.IsProduction() && (c.App.SessionSecret == "" || c.App.SessionSecret == "devsessionsecret") {
		return errors.New("config: SESSION_SECRET must be set in production")
	}
	return nil
}
