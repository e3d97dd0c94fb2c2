package db

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-invoices/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// Register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"gorm.io/gorm"
)

// coreTables must exist once the schema is in place.
var coreTables = []string{"users", "customers", "invoices", "products"}

// AutoMigrate creates or updates the schema from the GORM models.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range models.All() {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return CheckSchema(conn)
}

// RunSQLMigrations applies the versioned SQL files at source (e.g. file://migrations)
// to the postgres database at databaseURL.
func RunSQLMigrations(source, databaseURL string) error {
	m, err := migrate.New(source, ToURLDSN(NormalizeDSN(databaseURL)))
	if err != nil {
		return fmt.Errorf("sql migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("sql migrations: %w", err)
	}
	return nil
}

// CheckSchema verifies that every core table exists.
func CheckSchema(conn *gorm.DB) error {
	for _, table := range coreTables {
		if !conn.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}
