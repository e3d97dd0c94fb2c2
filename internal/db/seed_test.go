package db

import (
	"context"
	"testing"

	"github.com/diewo77/go-invoices/auth"
	"github.com/diewo77/go-invoices/internal/models"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := OpenSQLite("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = Close(conn) })
	if err := AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestAutoMigrateCreatesCoreTables(t *testing.T) {
	conn := setupTestDB(t)
	if err := CheckSchema(conn); err != nil {
		t.Fatal(err)
	}
	if err := Ping(context.Background(), conn); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestSeedIdempotent(t *testing.T) {
	conn := setupTestDB(t)
	opts := SeedOptions{AdminEmail: "admin@example.com", AdminPassword: "secret", Demo: true}
	ctx := context.Background()
	if err := Seed(ctx, conn, opts); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := Seed(ctx, conn, opts); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	var users, customers, products int64
	conn.Model(&models.User{}).Count(&users)
	conn.Model(&models.Customer{}).Count(&customers)
	conn.Model(&models.Product{}).Count(&products)
	if users != 1 {
		t.Fatalf("expected 1 user got %d", users)
	}
	if customers != int64(len(demoCustomers)) || products != int64(len(demoProducts)) {
		t.Fatalf("demo data duplicated or missing: customers=%d products=%d", customers, products)
	}

	var admin models.User
	if err := conn.Where("email = ?", opts.AdminEmail).First(&admin).Error; err != nil {
		t.Fatalf("admin: %v", err)
	}
	if !auth.CheckPassword(admin.Password, "secret") {
		t.Fatalf("admin password not hashed with bcrypt")
	}

	var c models.Customer
	conn.Where("email = ?", "amy@burns.com").First(&c)
	if c.Image() != "/customers/amy-burns.png" {
		t.Fatalf("image not normalized: %q", c.Image())
	}

	var unsold int64
	conn.Model(&models.Product{}).Where("invoice_id IS NULL").Count(&unsold)
	if unsold != products {
		t.Fatalf("seeded products must be available")
	}
}
