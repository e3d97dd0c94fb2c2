package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultCustomerImage is served for customers without a stored picture.
const DefaultCustomerImage = "/customers/default.png"

const customerImagePrefix = "/customers/"

// Customer is a billed party. It owns zero or more invoices.
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"size:255;not null;index" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	ImageURL  *string   `gorm:"size:500" json:"image_url"`

	Invoices []Invoice `gorm:"foreignKey:CustomerID" json:"-"`
}

// BeforeCreate assigns a random id when none was provided.
func (c *Customer) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Image returns the stored image path or the default picture.
func (c *Customer) Image() string {
	if c.ImageURL == nil || *c.ImageURL == "" {
		return DefaultCustomerImage
	}
	return *c.ImageURL
}

// NormalizeImageURL maps an uploaded image name to the stored path.
// Blank names fall back to the default picture.
func NormalizeImageURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return DefaultCustomerImage
	}
	if strings.HasPrefix(s, customerImagePrefix) {
		return s
	}
	return customerImagePrefix + strings.TrimPrefix(s, "/")
}
