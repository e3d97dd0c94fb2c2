package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diewo77/go-invoices/internal/models"
	"github.com/diewo77/go-invoices/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceInput is the payload of invoice create and update.
type InvoiceInput struct {
	CustomerID uuid.UUID            `json:"customer_id" validate:"required"`
	ProductIDs []uuid.UUID          `json:"product_ids" validate:"min=1"`
	Status     models.InvoiceStatus `json:"status" validate:"required,oneof=pending paid"`
}

// InvoiceEditData is an invoice together with every product that may be selected for it.
type InvoiceEditData struct {
	Invoice    InvoiceRow   `json:"invoice"`
	Selectable []ProductRow `json:"products"`
}

// InvoiceService owns invoice lifecycle and the derived invoice amounts.
type InvoiceService struct {
	db     *gorm.DB
	ledger Ledger
	now    func() time.Time
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db, now: time.Now}
}

// WithClock replaces the clock used to date new invoices.
func (s *InvoiceService) WithClock(now func() time.Time) *InvoiceService {
	s.now = now
	return s
}

// Create validates in, checks the customer and claims the products, all in one transaction.
func (s *InvoiceService) Create(ctx context.Context, in InvoiceInput) (*models.Invoice, error) {
	if v := validation.Struct(in); !v.Empty() {
		return nil, &ValidationError{Fields: v}
	}
	inv := models.Invoice{CustomerID: in.CustomerID, Status: in.Status, Date: s.now().UTC()}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := customerExists(tx, in.CustomerID); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(&inv).Error; err != nil {
			return wrap("create invoice", err)
		}
		return s.ledger.Attach(ctx, tx, inv.ID, in.ProductIDs)
	})
	if err != nil {
		return nil, wrap("create invoice", err)
	}
	return &inv, nil
}

// Update rewrites customer, status and product set of an invoice. Re-sending
// the same input is a no-op, including for products the invoice already holds.
func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, in InvoiceInput) error {
	if v := validation.Struct(in); !v.Empty() {
		return &ValidationError{Fields: v}
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inv, err := findInvoice(tx, id)
		if err != nil {
			return err
		}
		if err := customerExists(tx, in.CustomerID); err != nil {
			return err
		}
		if err := tx.Model(inv).Updates(map[string]any{
			"customer_id": in.CustomerID,
			"status":      string(in.Status),
		}).Error; err != nil {
			return wrap("update invoice", err)
		}
		return s.ledger.Attach(ctx, tx, id, in.ProductIDs)
	})
	return wrap("update invoice", err)
}

// Delete releases the invoice's products and then removes the invoice.
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findInvoice(tx, id); err != nil {
			return err
		}
		if _, err := s.ledger.DetachAll(ctx, tx, id); err != nil {
			return err
		}
		return tx.Delete(&models.Invoice{}, "id = ?", id).Error
	})
	return wrap("delete invoice", err)
}

// ComputeTotal returns the sum of the prices of the products attached to id.
func (s *InvoiceService) ComputeTotal(ctx context.Context, id uuid.UUID) (int64, error) {
	_, total, err := s.Products(ctx, id)
	return total, err
}

// Products returns the attached products and their total.
func (s *InvoiceService) Products(ctx context.Context, id uuid.UUID) ([]ProductRow, int64, error) {
	db := s.db.WithContext(ctx)
	if _, err := findInvoice(db, id); err != nil {
		return nil, 0, err
	}
	products, err := s.ledger.Products(ctx, db, id)
	if err != nil {
		return nil, 0, err
	}
	return productRows(products), models.TotalOf(products), nil
}

// Get returns one invoice with customer, products and amount.
func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID) (*InvoiceRow, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Products", orderByName).
		First(&inv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("invoice", id)
	}
	if err != nil {
		return nil, wrap("get invoice", err)
	}
	row := invoiceRow(&inv)
	return &row, nil
}

// EditData returns the invoice plus the products that are available or already attached to it.
func (s *InvoiceService) EditData(ctx context.Context, id uuid.UUID) (*InvoiceEditData, error) {
	row, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var selectable []models.Product
	if err := s.db.WithContext(ctx).
		Where("invoice_id IS NULL OR invoice_id = ?", id).
		Order("name ASC").
		Find(&selectable).Error; err != nil {
		return nil, wrap("invoice edit data", err)
	}
	return &InvoiceEditData{Invoice: *row, Selectable: productRows(selectable)}, nil
}

// FetchFiltered returns one page of invoices whose customer name or email
// contains query, or whose status equals it, newest first.
func (s *InvoiceService) FetchFiltered(ctx context.Context, query string, page int) ([]InvoiceRow, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Scopes(invoiceFilter(query)).
		Select("invoices.*").
		Preload("Customer").
		Preload("Products", orderByName).
		Order("invoices.date DESC").
		Order("invoices.id DESC").
		Limit(PageSize).
		Offset(NewPage(page).Offset()).
		Find(&invoices).Error
	if err != nil {
		return nil, wrap("fetch filtered invoices", err)
	}
	rows := make([]InvoiceRow, len(invoices))
	for i := range invoices {
		rows[i] = invoiceRow(&invoices[i])
	}
	return rows, nil
}

// FetchPages returns the number of pages FetchFiltered has for query.
func (s *InvoiceService) FetchPages(ctx context.Context, query string) (int, error) {
	var total int64
	if err := s.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Scopes(invoiceFilter(query)).
		Count(&total).Error; err != nil {
		return 0, wrap("count filtered invoices", err)
	}
	return PageCount(total), nil
}

func invoiceFilter(query string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Joins("JOIN customers ON customers.id = invoices.customer_id")
		if strings.TrimSpace(query) == "" {
			return db
		}
		like := containsPattern(query)
		cond := "LOWER(customers.name) LIKE ?" + likeEscape + " OR LOWER(customers.email) LIKE ?" + likeEscape
		if st, ok := models.ParseInvoiceStatus(query); ok {
			return db.Where("("+cond+" OR invoices.status = ?)", like, like, string(st))
		}
		return db.Where("("+cond+")", like, like)
	}
}

func orderByName(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }

func findInvoice(db *gorm.DB, id uuid.UUID) (*models.Invoice, error) {
	var inv models.Invoice
	err := db.First(&inv, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("invoice", id)
	}
	if err != nil {
		return nil, wrap("find invoice", err)
	}
	return &inv, nil
}

func customerExists(db *gorm.DB, id uuid.UUID) error {
	var n int64
	if err := db.Model(&models.Customer{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return wrap("find customer", err)
	}
	if n == 0 {
		return notFound("customer", id)
	}
	return nil
}
