package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/diewo77/go-invoices/internal/models"
	"github.com/diewo77/go-invoices/internal/money"
	"github.com/diewo77/go-invoices/internal/services"
	"github.com/google/uuid"
)

func sampleRow() services.InvoiceRow {
	return services.InvoiceRow{
		ID:       uuid.New(),
		Date:     time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Status:   models.InvoiceStatusPending,
		Customer: services.CustomerSummary{Name: "Ada Lovelace", Email: "ada@example.com"},
		Products: []services.ProductRow{
			{Name: "Keyboard", Price: 123456},
			{Name: "Mouse", Description: "Wireless", Price: 2500},
		},
		Amount: 125956,
	}
}

func TestNewInvoiceDocument(t *testing.T) {
	doc := NewInvoiceDocument(sampleRow(), money.Default(), "es")
	if doc.Total != "$1.259,56" {
		t.Fatalf("Total = %q", doc.Total)
	}
	if doc.Status != "Pendiente" {
		t.Fatalf("Status = %q", doc.Status)
	}
	if doc.Date != "2026-03-14" {
		t.Fatalf("Date = %q", doc.Date)
	}
	if len(doc.Lines) != 2 || doc.Lines[0].Price != "$1.234,56" || doc.Lines[1].Description != "Wireless" {
		t.Fatalf("unexpected lines: %+v", doc.Lines)
	}
}

func TestInvoicePDF(t *testing.T) {
	out, err := InvoicePDF(NewInvoiceDocument(sampleRow(), nil, "en"))
	if err != nil {
		t.Fatalf("InvoicePDF: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF, starts with %q", out[:min(len(out), 8)])
	}
}
