package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductStatus is derived from the invoice link, never stored.
type ProductStatus string

const (
	ProductAvailable ProductStatus = "available"
	ProductSold      ProductStatus = "sold"
)

// Product is a sellable line item. It belongs to at most one invoice; the
// invoice amount is the sum of the prices of its products.
type Product struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Name        string     `gorm:"size:255;not null;index" json:"name"`
	Description *string    `gorm:"type:text" json:"description"`
	Price       int64      `gorm:"not null" json:"price"` // minor units
	InvoiceID   *uuid.UUID `gorm:"type:uuid;index" json:"invoice_id"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsAvailable reports whether the product can be attached to an invoice.
func (p *Product) IsAvailable() bool { return p.InvoiceID == nil }

// IsAttachedTo reports whether the product currently belongs to invoiceID.
func (p *Product) IsAttachedTo(invoiceID uuid.UUID) bool {
	return p.InvoiceID != nil && *p.InvoiceID == invoiceID
}

// Status returns the derived availability of the product.
func (p *Product) Status() ProductStatus {
	if p.IsAvailable() {
		return ProductAvailable
	}
	return ProductSold
}

// TotalOf sums product prices. It is the single definition of an invoice amount.
func TotalOf(products []Product) int64 {
	var total int64
	for i := range products {
		total += products[i].Price
	}
	return total
}
