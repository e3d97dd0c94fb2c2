package handlers

import (
	"net/http"

	"github.com/diewo77/go-invoices/httpx"
	"github.com/diewo77/go-invoices/i18n"
	"github.com/diewo77/go-invoices/internal/models"
	"github.com/diewo77/go-invoices/internal/pdf"
	"github.com/diewo77/go-invoices/internal/services"
	"github.com/diewo77/go-invoices/validation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type InvoiceHandler struct {
	svc *services.InvoiceService
	base
}

func NewInvoiceHandler(svc *services.InvoiceService, o Options) *InvoiceHandler {
	return &InvoiceHandler{svc: svc, base: newBase(o)}
}

func (h *InvoiceHandler) Register(r chi.Router) {
	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/pages", h.Pages)
		r.Get("/{id}", h.View)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/edit", h.Edit)
		r.Get("/{id}/products", h.Products)
		r.Get("/{id}/pdf", h.PDF)
	})
}

// List returns one page of invoices matching ?query, newest first.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	q, page := searchParams(r)
	rows, err := h.svc.FetchFiltered(r.Context(), q, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pageJSON[invoiceJSON]{Items: invoiceViews(h.money, rows), Page: page, Query: q})
}

func (h *InvoiceHandler) Pages(w http.ResponseWriter, r *http.Request) {
	q, _ := searchParams(r)
	pages, err := h.svc.FetchPages(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"pages": pages})
}

func (h *InvoiceHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	row, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoiceView(h.money, *row))
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.input(w, r)
	if !ok {
		return
	}
	inv, err := h.svc.Create(r.Context(), in)
	h.metrics.Mutation("invoice", "create", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondInvoice(w, r, http.StatusCreated, inv.ID)
}

func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := h.input(w, r)
	if !ok {
		return
	}
	err := h.svc.Update(r.Context(), id, in)
	h.metrics.Mutation("invoice", "update", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.respondInvoice(w, r, http.StatusOK, id)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.svc.Delete(r.Context(), id)
	h.metrics.Mutation("invoice", "delete", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Edit returns the invoice together with the products selectable for it.
func (h *InvoiceHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	data, err := h.svc.EditData(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoice":  invoiceView(h.money, data.Invoice),
		"products": productViews(h.money, data.Selectable),
		"statuses": models.InvoiceStatuses,
	})
}

// Products returns the attached products and their total.
func (h *InvoiceHandler) Products(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	rows, total, err := h.svc.Products(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items":           productViews(h.money, rows),
		"total":           total,
		"total_formatted": h.money.Cents(total),
	})
}

// PDF renders the invoice as a downloadable document.
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	row, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	body, err := pdf.InvoicePDF(pdf.NewInvoiceDocument(*row, h.money, i18n.LangFrom(r.Context())))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="invoice-`+id.String()+`.pdf"`)
	httpx.Bytes(w, http.StatusOK, "application/pdf", body)
}

func (h *InvoiceHandler) respondInvoice(w http.ResponseWriter, r *http.Request, status int, id uuid.UUID) {
	row, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, status, invoiceView(h.money, *row))
}

func (h *InvoiceHandler) input(w http.ResponseWriter, r *http.Request) (services.InvoiceInput, bool) {
	var in services.InvoiceInput
	if isJSON(r) {
		return in, decodeJSON(w, r, &in)
	}
	if !parseForm(w, r) {
		return in, false
	}
	v := validation.Violations{}
	in.CustomerID = formUUID(r.FormValue("customer_id"), "customer_id", v)
	in.ProductIDs = formUUIDs(r.Form["product_ids"], "product_ids", v)
	in.Status = models.InvoiceStatus(r.FormValue("status"))
	if !v.Empty() {
		v.Merge(validation.Struct(in))
		h.fail(w, r, &services.ValidationError{Fields: v})
		return in, false
	}
	return in, true
}
