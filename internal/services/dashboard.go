package services

import (
	"context"
	"strings"
	"time"

	"github.com/diewo77/go-invoices/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// LatestInvoicesLimit is the size of the "latest invoices" card.
const LatestInvoicesLimit = 5

// CardData holds the dashboard summary cards.
type CardData struct {
	NumberOfInvoices  int64 `json:"number_of_invoices"`
	NumberOfCustomers int64 `json:"number_of_customers"`
	TotalPaid         int64 `json:"total_paid"`
	TotalPending      int64 `json:"total_pending"`
}

// MonthRevenue is the paid amount invoiced in one calendar month.
type MonthRevenue struct {
	Month   string `json:"month"`
	Revenue int64  `json:"revenue"`
}

// DashboardService computes the overview shown after sign in.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// Cards gathers counts and per-status totals concurrently.
func (s *DashboardService) Cards(ctx context.Context) (CardData, error) {
	var cards CardData
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.db.WithContext(ctx).Model(&models.Invoice{}).Count(&cards.NumberOfInvoices).Error
	})
	g.Go(func() error {
		return s.db.WithContext(ctx).Model(&models.Customer{}).Count(&cards.NumberOfCustomers).Error
	})
	g.Go(func() (err error) {
		cards.TotalPaid, err = s.statusTotal(ctx, models.InvoiceStatusPaid)
		return err
	})
	g.Go(func() (err error) {
		cards.TotalPending, err = s.statusTotal(ctx, models.InvoiceStatusPending)
		return err
	})
	if err := g.Wait(); err != nil {
		return CardData{}, wrap("dashboard cards", err)
	}
	return cards, nil
}

func (s *DashboardService) statusTotal(ctx context.Context, status models.InvoiceStatus) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&models.Product{}).
		Select("COALESCE(SUM(products.price), 0)").
		Joins("JOIN invoices ON invoices.id = products.invoice_id").
		Where("invoices.status = ?", string(status)).
		Scan(&total).Error
	return total, err
}

// Revenue returns paid amounts bucketed by the UTC month of the invoice date, JAN to DEC.
func (s *DashboardService) Revenue(ctx context.Context) ([]MonthRevenue, error) {
	var paid []models.Invoice
	if err := s.db.WithContext(ctx).
		Where("status = ?", string(models.InvoiceStatusPaid)).
		Preload("Products").
		Find(&paid).Error; err != nil {
		return nil, wrap("revenue", err)
	}
	months := make([]MonthRevenue, 12)
	for m := range months {
		months[m].Month = strings.ToUpper(time.Month(m + 1).String()[:3])
	}
	for i := range paid {
		m := paid[i].Date.UTC().Month() - 1
		months[m].Revenue += paid[i].Amount()
	}
	return months, nil
}

// LatestInvoices returns the most recent invoices with their amounts.
func (s *DashboardService) LatestInvoices(ctx context.Context, limit int) ([]InvoiceRow, error) {
	if limit <= 0 {
		limit = LatestInvoicesLimit
	}
	var invoices []models.Invoice
	if err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Products", orderByName).
		Order("date DESC").
		Order("id DESC").
		Limit(limit).
		Find(&invoices).Error; err != nil {
		return nil, wrap("latest invoices", err)
	}
	out := make([]InvoiceRow, len(invoices))
	for i := range invoices {
		out[i] = invoiceRow(&invoices[i])
	}
	return out, nil
}
