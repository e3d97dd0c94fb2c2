package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/go-invoices/internal/models"
	"github.com/diewo77/go-invoices/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerInput is the payload of customer create and update.
type CustomerInput struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	ImageURL string `json:"image_url" validate:"max=500"`
}

// StatusTotals maps an invoice status to the summed amounts of the customer's
// invoices in that status. Statuses without invoices are absent; read them as zero.
type StatusTotals map[models.InvoiceStatus]int64

// CustomerRow is a customer with invoice rollups, as shown in the customers table.
type CustomerRow struct {
	ID            uuid.UUID    `json:"id"`
	Name          string       `json:"name"`
	Email         string       `json:"email"`
	ImageURL      string       `json:"image_url"`
	TotalInvoices int          `json:"total_invoices"`
	Totals        StatusTotals `json:"totals"`
}

// CustomerService owns customers and their per-status invoice totals.
type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

func (in *CustomerInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
}

// Create stores a new customer; the email must not be registered yet.
func (s *CustomerService) Create(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	in.normalize()
	if v := validation.Struct(in); !v.Empty() {
		return nil, &ValidationError{Fields: v}
	}
	img := models.NormalizeImageURL(in.ImageURL)
	c := models.Customer{Name: in.Name, Email: in.Email, ImageURL: &img}
	if err := s.db.WithContext(ctx).Omit("Invoices").Create(&c).Error; err != nil {
		if isDuplicate(err) {
			return nil, &ConflictError{Code: CodeEmailTaken}
		}
		return nil, wrap("create customer", err)
	}
	return &c, nil
}

// Update rewrites a customer in place. An empty image keeps the stored one.
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, in CustomerInput) (*models.Customer, error) {
	in.normalize()
	if v := validation.Struct(in); !v.Empty() {
		return nil, &ValidationError{Fields: v}
	}
	c, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	updates := map[string]any{"name": in.Name, "email": in.Email}
	if strings.TrimSpace(in.ImageURL) != "" {
		updates["image_url"] = models.NormalizeImageURL(in.ImageURL)
	}
	if err := s.db.WithContext(ctx).Model(c).Updates(updates).Error; err != nil {
		if isDuplicate(err) {
			return nil, &ConflictError{Code: CodeEmailTaken}
		}
		return nil, wrap("update customer", err)
	}
	return s.find(ctx, id)
}

// Delete removes a customer without invoices.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := customerExists(tx, id); err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.Invoice{}).Where("customer_id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return &ConflictError{Code: CodeCustomerHasInvoices, IDs: []uuid.UUID{id}}
		}
		return tx.Delete(&models.Customer{}, "id = ?", id).Error
	})
	return wrap("delete customer", err)
}

// Get returns one customer.
func (s *CustomerService) Get(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	return s.find(ctx, id)
}

// List returns every customer ordered by name, for selection lists.
func (s *CustomerService) List(ctx context.Context) ([]CustomerSummary, error) {
	var customers []models.Customer
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&customers).Error; err != nil {
		return nil, wrap("list customers", err)
	}
	out := make([]CustomerSummary, len(customers))
	for i := range customers {
		out[i] = summarize(&customers[i])
	}
	return out, nil
}

// ComputeTotals sums the customer's invoice amounts by status.
func (s *CustomerService) ComputeTotals(ctx context.Context, id uuid.UUID) (StatusTotals, error) {
	db := s.db.WithContext(ctx)
	if err := customerExists(db, id); err != nil {
		return nil, err
	}
	var invoices []models.Invoice
	if err := db.Where("customer_id = ?", id).Preload("Products").Find(&invoices).Error; err != nil {
		return nil, wrap("customer totals", err)
	}
	return rollup(invoices), nil
}

// FetchFiltered returns customers whose name or email contains query, ordered
// by name, each with invoice count and per-status totals.
func (s *CustomerService) FetchFiltered(ctx context.Context, query string) ([]CustomerRow, error) {
	db := s.db.WithContext(ctx)
	q := db.Order("name ASC")
	if strings.TrimSpace(query) != "" {
		like := containsPattern(query)
		q = q.Where("(LOWER(name) LIKE ?"+likeEscape+" OR LOWER(email) LIKE ?"+likeEscape+")", like, like)
	}
	var customers []models.Customer
	if err := q.Find(&customers).Error; err != nil {
		return nil, wrap("fetch filtered customers", err)
	}
	if len(customers) == 0 {
		return []CustomerRow{}, nil
	}

	ids := make([]uuid.UUID, len(customers))
	for i := range customers {
		ids[i] = customers[i].ID
	}
	var invoices []models.Invoice
	if err := db.Where("customer_id IN ?", ids).Preload("Products").Find(&invoices).Error; err != nil {
		return nil, wrap("fetch customer invoices", err)
	}
	byCustomer := make(map[uuid.UUID][]models.Invoice, len(customers))
	for _, inv := range invoices {
		byCustomer[inv.CustomerID] = append(byCustomer[inv.CustomerID], inv)
	}

	rows := make([]CustomerRow, len(customers))
	for i := range customers {
		c := &customers[i]
		own := byCustomer[c.ID]
		rows[i] = CustomerRow{
			ID:            c.ID,
			Name:          c.Name,
			Email:         c.Email,
			ImageURL:      c.Image(),
			TotalInvoices: len(own),
			Totals:        rollup(own),
		}
	}
	return rows, nil
}

func rollup(invoices []models.Invoice) StatusTotals {
	totals := StatusTotals{}
	for i := range invoices {
		totals[invoices[i].Status] += invoices[i].Amount()
	}
	return totals
}

func (s *CustomerService) find(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	var c models.Customer
	err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("customer", id)
	}
	if err != nil {
		return nil, wrap("find customer", err)
	}
	return &c, nil
}
