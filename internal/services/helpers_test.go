package services

import (
	"context"
	"testing"
	"time"

	"github.com/diewo77/go-invoices/internal/db"
	"github.com/diewo77/go-invoices/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.OpenSQLite("file:" + t.Name() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })
	require.NoError(t, db.AutoMigrate(conn))
	return conn
}

func seedCustomer(t *testing.T, conn *gorm.DB, name, email string) models.Customer {
	t.Helper()
	c := models.Customer{Name: name, Email: email}
	require.NoError(t, conn.Create(&c).Error)
	return c
}

func seedProduct(t *testing.T, conn *gorm.DB, name string, price int64) models.Product {
	t.Helper()
	p := models.Product{Name: name, Price: price}
	require.NoError(t, conn.Create(&p).Error)
	return p
}

func reload(t *testing.T, conn *gorm.DB, p models.Product) *models.Product {
	t.Helper()
	var out models.Product
	require.NoError(t, conn.First(&out, "id = ?", p.ID).Error)
	return &out
}

// stepClock returns a clock advancing by one minute per call.
func stepClock(start time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return start.Add(time.Duration(n) * time.Minute)
	}
}

func ids(ps ...models.Product) []uuid.UUID {
	out := make([]uuid.UUID, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

var ctx = context.Background()
