package handlers

import (
	"net/http"

	"github.com/diewo77/go-invoices/httpx"
	"github.com/diewo77/go-invoices/internal/services"
	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	svc *services.CustomerService
	base
}

func NewCustomerHandler(svc *services.CustomerService, o Options) *CustomerHandler {
	return &CustomerHandler{svc: svc, base: newBase(o)}
}

func (h *CustomerHandler) Register(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.View)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/totals", h.Totals)
	})
}

// List returns every customer matching ?q with invoice rollups.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("query")
	if q == "" {
		q = r.URL.Query().Get("q")
	}
	rows, err := h.svc.FetchFiltered(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]customerJSON, len(rows))
	for i, row := range rows {
		out[i] = customerView(h.money, row)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": out, "query": q})
}

func (h *CustomerHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.input(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Create(r.Context(), in)
	h.metrics.Mutation("customer", "create", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := h.input(w, r)
	if !ok {
		return
	}
	c, err := h.svc.Update(r.Context(), id, in)
	h.metrics.Mutation("customer", "update", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.svc.Delete(r.Context(), id)
	h.metrics.Mutation("customer", "delete", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Totals returns the per-status invoice totals of one customer.
func (h *CustomerHandler) Totals(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	totals, err := h.svc.ComputeTotals(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, totalsView(h.money, totals))
}

func (h *CustomerHandler) input(w http.ResponseWriter, r *http.Request) (services.CustomerInput, bool) {
	var in services.CustomerInput
	if isJSON(r) {
		return in, decodeJSON(w, r, &in)
	}
	if !parseForm(w, r) {
		return in, false
	}
	in.Name = r.FormValue("name")
	in.Email = r.FormValue("email")
	in.ImageURL = r.FormValue("image_url")
	return in, true
}
