package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/diewo77/go-invoices/httpx"
	"github.com/diewo77/go-invoices/internal/services"
	"github.com/diewo77/go-invoices/validation"
	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	svc *services.ProductService
	base
}

func NewProductHandler(svc *services.ProductService, o Options) *ProductHandler {
	return &ProductHandler{svc: svc, base: newBase(o)}
}

func (h *ProductHandler) Register(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/pages", h.Pages)
		r.Get("/available", h.Available)
		r.Get("/{id}", h.View)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns one page of products matching ?query.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q, page := searchParams(r)
	rows, err := h.svc.FetchFiltered(r.Context(), q, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pageJSON[productJSON]{Items: productViews(h.money, rows), Page: page, Query: q})
}

func (h *ProductHandler) Pages(w http.ResponseWriter, r *http.Request) {
	q, _ := searchParams(r)
	pages, err := h.svc.FetchPages(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"pages": pages})
}

// Available lists the products that can still be attached to an invoice.
func (h *ProductHandler) Available(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Available(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": productViews(h.money, rows)})
}

func (h *ProductHandler) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	row, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, productView(h.money, *row))
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.input(w, r)
	if !ok {
		return
	}
	row, err := h.svc.Create(r.Context(), in)
	h.metrics.Mutation("product", "create", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, productView(h.money, *row))
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	in, ok := h.input(w, r)
	if !ok {
		return
	}
	row, err := h.svc.Update(r.Context(), id, in)
	h.metrics.Mutation("product", "update", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, productView(h.money, *row))
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.svc.Delete(r.Context(), id)
	h.metrics.Mutation("product", "delete", err)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProductHandler) input(w http.ResponseWriter, r *http.Request) (services.ProductInput, bool) {
	var in services.ProductInput
	if isJSON(r) {
		return in, decodeJSON(w, r, &in)
	}
	if !parseForm(w, r) {
		return in, false
	}
	in.Name = r.FormValue("name")
	in.Description = r.FormValue("description")
	v := validation.Violations{}
	if raw := strings.TrimSpace(r.FormValue("price")); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			v["price"] = "invalid"
		}
		in.Price = price
	}
	if !v.Empty() {
		v.Merge(validation.Struct(in))
		h.fail(w, r, &services.ValidationError{Fields: v})
		return in, false
	}
	return in, true
}

// searchParams reads ?query (or ?q) and ?page; a missing or malformed page means 1.
func searchParams(r *http.Request) (string, int) {
	v := r.URL.Query()
	q := v.Get("query")
	if q == "" {
		q = v.Get("q")
	}
	page, _ := strconv.Atoi(v.Get("page"))
	return q, int(services.NewPage(page))
}
