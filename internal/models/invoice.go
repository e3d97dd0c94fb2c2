package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceStatus represents the payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// InvoiceStatuses lists every valid status in display order.
var InvoiceStatuses = []InvoiceStatus{InvoiceStatusPending, InvoiceStatusPaid}

// ParseInvoiceStatus matches s case-insensitively against the known statuses.
func ParseInvoiceStatus(s string) (InvoiceStatus, bool) {
	st := InvoiceStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range InvoiceStatuses {
		if st == known {
			return st, true
		}
	}
	return "", false
}

// Invoice bills a customer for a set of products. The amount is not stored:
// it is always recomputed from the attached products.
type Invoice struct {
	ID         uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
	CustomerID uuid.UUID     `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer   *Customer     `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Status     InvoiceStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Date       time.Time     `gorm:"not null;index" json:"date"`

	Products []Product `gorm:"foreignKey:InvoiceID" json:"products,omitempty"`
}

func (i *Invoice) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Amount is the sum of the loaded products' prices.
func (i *Invoice) Amount() int64 { return TotalOf(i.Products) }

// IsPaid returns true once the invoice has been settled.
func (i *Invoice) IsPaid() bool { return i.Status == InvoiceStatusPaid }
