package handlers

import (
	"github.com/diewo77/go-invoices/internal/models"
	"github.com/diewo77/go-invoices/internal/money"
	"github.com/diewo77/go-invoices/internal/services"
)

// JSON shapes add display strings next to integer amounts.

type productJSON struct {
	services.ProductRow
	PriceFormatted string `json:"price_formatted"`
}

type invoiceJSON struct {
	services.InvoiceRow
	Products        []productJSON `json:"products"`
	AmountFormatted string        `json:"amount_formatted"`
}

type customerJSON struct {
	services.CustomerRow
	TotalPending          int64  `json:"total_pending"`
	TotalPaid             int64  `json:"total_paid"`
	TotalPendingFormatted string `json:"total_pending_formatted"`
	TotalPaidFormatted    string `json:"total_paid_formatted"`
}

type pageJSON[T any] struct {
	Items []T    `json:"items"`
	Page  int    `json:"page"`
	Query string `json:"query"`
}

func productView(f *money.Formatter, p services.ProductRow) productJSON {
	return productJSON{ProductRow: p, PriceFormatted: f.Cents(p.Price)}
}

func productViews(f *money.Formatter, ps []services.ProductRow) []productJSON {
	out := make([]productJSON, len(ps))
	for i, p := range ps {
		out[i] = productView(f, p)
	}
	return out
}

func invoiceView(f *money.Formatter, row services.InvoiceRow) invoiceJSON {
	return invoiceJSON{
		InvoiceRow:      row,
		Products:        productViews(f, row.Products),
		AmountFormatted: f.Cents(row.Amount),
	}
}

func invoiceViews(f *money.Formatter, rows []services.InvoiceRow) []invoiceJSON {
	out := make([]invoiceJSON, len(rows))
	for i, row := range rows {
		out[i] = invoiceView(f, row)
	}
	return out
}

func customerView(f *money.Formatter, row services.CustomerRow) customerJSON {
	pending := row.Totals[models.InvoiceStatusPending]
	paid := row.Totals[models.InvoiceStatusPaid]
	return customerJSON{
		CustomerRow:           row,
		TotalPending:          pending,
		TotalPaid:             paid,
		TotalPendingFormatted: f.Cents(pending),
		TotalPaidFormatted:    f.Cents(paid),
	}
}

func totalsView(f *money.Formatter, totals services.StatusTotals) map[string]any {
	out := make(map[string]any, 2*len(models.InvoiceStatuses))
	for _, st := range models.InvoiceStatuses {
		out[string(st)] = totals[st]
		out[string(st)+"_formatted"] = f.Cents(totals[st])
	}
	return out
}
