package handlers

import (
	"net/http"

	"github.com/diewo77/go-invoices/httpx"
	"github.com/diewo77/go-invoices/internal/services"
	"github.com/go-chi/chi/v5"
)

type DashboardHandler struct {
	svc *services.DashboardService
	base
}

func NewDashboardHandler(svc *services.DashboardService, o Options) *DashboardHandler {
	return &DashboardHandler{svc: svc, base: newBase(o)}
}

func (h *DashboardHandler) Register(r chi.Router) {
	r.Get("/dashboard", h.Overview)
}

type monthJSON struct {
	services.MonthRevenue
	RevenueFormatted string `json:"revenue_formatted"`
}

// Overview returns the summary cards, monthly revenue and latest invoices.
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cards, err := h.svc.Cards(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	revenue, err := h.svc.Revenue(ctx)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	latest, err := h.svc.LatestInvoices(ctx, services.LatestInvoicesLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	months := make([]monthJSON, len(revenue))
	for i, m := range revenue {
		months[i] = monthJSON{MonthRevenue: m, RevenueFormatted: h.money.Cents(m.Revenue)}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"cards": map[string]any{
			"number_of_invoices":      cards.NumberOfInvoices,
			"number_of_customers":     cards.NumberOfCustomers,
			"total_paid":              cards.TotalPaid,
			"total_pending":           cards.TotalPending,
			"total_paid_formatted":    h.money.Cents(cards.TotalPaid),
			"total_pending_formatted": h.money.Cents(cards.TotalPending),
		},
		"revenue":         months,
		"latest_invoices": invoiceViews(h.money, latest),
	})
}
