package services

import (
	"time"

	"github.com/diewo77/go-invoices/internal/models"
	"github.com/google/uuid"
)

// CustomerSummary is the customer part of an invoice row.
type CustomerSummary struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	ImageURL string    `json:"image_url"`
}

// ProductRow is a product with its derived status.
type ProductRow struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Price       int64                `json:"price"`
	Status      models.ProductStatus `json:"status"`
	InvoiceID   *uuid.UUID           `json:"invoice_id,omitempty"`
}

// InvoiceRow is an invoice with its customer, products and computed amount.
type InvoiceRow struct {
	ID       uuid.UUID            `json:"id"`
	Date     time.Time            `json:"date"`
	Status   models.InvoiceStatus `json:"status"`
	Customer CustomerSummary      `json:"customer"`
	Products []ProductRow         `json:"products"`
	Amount   int64                `json:"amount"`
}

func summarize(c *models.Customer) CustomerSummary {
	if c == nil {
		return CustomerSummary{ImageURL: models.DefaultCustomerImage}
	}
	return CustomerSummary{ID: c.ID, Name: c.Name, Email: c.Email, ImageURL: c.Image()}
}

func productRow(p *models.Product) ProductRow {
	row := ProductRow{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Status:    p.Status(),
		InvoiceID: p.InvoiceID,
	}
	if p.Description != nil {
		row.Description = *p.Description
	}
	return row
}

func productRows(ps []models.Product) []ProductRow {
	rows := make([]ProductRow, len(ps))
	for i := range ps {
		rows[i] = productRow(&ps[i])
	}
	return rows
}

func invoiceRow(inv *models.Invoice) InvoiceRow {
	return InvoiceRow{
		ID:       inv.ID,
		Date:     inv.Date,
		Status:   inv.Status,
		Customer: summarize(inv.Customer),
		Products: productRows(inv.Products),
		Amount:   inv.Amount(),
	}
}
