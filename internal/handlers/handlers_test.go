package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/diewo77/go-invoices/auth"
	"github.com/diewo77/go-invoices/internal/db"
	"github.com/diewo77/go-invoices/internal/middleware"
	"github.com/diewo77/go-invoices/internal/models"
	"github.com/diewo77/go-invoices/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.OpenSQLite("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(conn) })
	if err := db.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

type recorder struct{ calls []string }

func (r *recorder) Mutation(entity, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.calls = append(r.calls, entity+"."+op+"."+outcome)
}

func newTestRouter(conn *gorm.DB, rec MutationRecorder) http.Handler {
	o := Options{Metrics: rec}
	r := chi.NewRouter()
	r.Use(middleware.Prefs)
	ah := NewAuthHandler(conn, o)
	r.Post("/login", ah.Login)
	ah.Register(r)
	NewCustomerHandler(services.NewCustomerService(conn), o).Register(r)
	NewProductHandler(services.NewProductService(conn), o).Register(r)
	NewInvoiceHandler(services.NewInvoiceService(conn), o).Register(r)
	NewDashboardHandler(services.NewDashboardService(conn), o).Register(r)
	return r
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	switch b := body.(type) {
	case nil:
		req = httptest.NewRequest(method, target, nil)
	case url.Values:
		req = httptest.NewRequest(method, target, strings.NewReader(b.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		req = httptest.NewRequest(method, target, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	}
	req = req.WithContext(auth.WithUserID(req.Context(), 1))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func seed(t *testing.T, conn *gorm.DB) (models.Customer, []models.Product) {
	t.Helper()
	c := models.Customer{Name: "Ada Lovelace", Email: "ada@example.com"}
	if err := conn.Create(&c).Error; err != nil {
		t.Fatalf("customer: %v", err)
	}
	ps := []models.Product{{Name: "Keyboard", Price: 123456}, {Name: "Mouse", Price: 2500}}
	for i := range ps {
		if err := conn.Create(&ps[i]).Error; err != nil {
			t.Fatalf("product: %v", err)
		}
	}
	return c, ps
}

type invoicePayload struct {
	ID              uuid.UUID `json:"id"`
	Status          string    `json:"status"`
	Amount          int64     `json:"amount"`
	AmountFormatted string    `json:"amount_formatted"`
	Products        []struct {
		ID             uuid.UUID `json:"id"`
		PriceFormatted string    `json:"price_formatted"`
	} `json:"products"`
}

type errorPayload struct {
	Error   string                     `json:"error"`
	Message string                     `json:"message"`
	Details map[string]json.RawMessage `json:"details"`
}

func TestInvoiceLifecycle(t *testing.T) {
	conn := setupTestDB(t)
	rec := &recorder{}
	h := newTestRouter(conn, rec)
	c, ps := seed(t, conn)

	w := do(t, h, http.MethodPost, "/invoices", map[string]any{
		"customer_id": c.ID,
		"product_ids": []uuid.UUID{ps[0].ID, ps[1].ID},
		"status":      "pending",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	var inv invoicePayload
	decodeBody(t, w, &inv)
	if inv.Amount != 125956 || inv.AmountFormatted != "$1.259,56" {
		t.Fatalf("unexpected amount %d %q", inv.Amount, inv.AmountFormatted)
	}
	if len(inv.Products) != 2 {
		t.Fatalf("expected 2 products got %d", len(inv.Products))
	}

	// Form update drops the mouse and marks the invoice paid.
	form := url.Values{"customer_id": {c.ID.String()}, "product_ids": {ps[0].ID.String()}, "status": {"paid"}}
	w = do(t, h, http.MethodPut, "/invoices/"+inv.ID.String(), form)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200 got %d: %s", w.Code, w.Body.String())
	}
	decodeBody(t, w, &inv)
	if inv.Amount != 123456 || inv.Status != "paid" {
		t.Fatalf("unexpected invoice after update: %+v", inv)
	}

	w = do(t, h, http.MethodGet, "/products/available", nil)
	var avail struct {
		Items []struct {
			ID uuid.UUID `json:"id"`
		} `json:"items"`
	}
	decodeBody(t, w, &avail)
	if len(avail.Items) != 1 || avail.Items[0].ID != ps[1].ID {
		t.Fatalf("expected mouse to be available again, got %+v", avail.Items)
	}

	w = do(t, h, http.MethodGet, "/invoices/"+inv.ID.String()+"/products", nil)
	var attached struct {
		Total          int64  `json:"total"`
		TotalFormatted string `json:"total_formatted"`
	}
	decodeBody(t, w, &attached)
	if attached.Total != 123456 || attached.TotalFormatted != "$1.234,56" {
		t.Fatalf("unexpected products total: %+v", attached)
	}

	if w = do(t, h, http.MethodDelete, "/invoices/"+inv.ID.String(), nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204 got %d", w.Code)
	}
	if w = do(t, h, http.MethodGet, "/invoices/"+inv.ID.String(), nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404 got %d", w.Code)
	}

	want := []string{"invoice.create.ok", "invoice.update.ok", "invoice.delete.ok"}
	if strings.Join(rec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("mutations = %v, want %v", rec.calls, want)
	}
}

func TestInvoiceCreate_ProductTaken(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestRouter(conn, nil)
	c, ps := seed(t, conn)

	body := map[string]any{"customer_id": c.ID, "product_ids": []uuid.UUID{ps[0].ID}, "status": "pending"}
	if w := do(t, h, http.MethodPost, "/invoices", body); w.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201 got %d", w.Code)
	}
	w := do(t, h, http.MethodPost, "/invoices", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d: %s", w.Code, w.Body.String())
	}
	var e errorPayload
	decodeBody(t, w, &e)
	if e.Error != services.CodeProductUnavailable {
		t.Fatalf("error code = %q", e.Error)
	}
	if !strings.Contains(string(e.Details["ids"]), ps[0].ID.String()) {
		t.Fatalf("expected conflicting id in details, got %s", e.Details["ids"])
	}
}

func TestInvoiceCreate_ValidationLocalized(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestRouter(conn, nil)
	c, _ := seed(t, conn)

	w := do(t, h, http.MethodPost, "/invoices?lang=en", map[string]any{"customer_id": c.ID, "status": "pending"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	var e errorPayload
	decodeBody(t, w, &e)
	if e.Error != "validation_failed" || e.Message != "The submitted data is not valid" {
		t.Fatalf("unexpected error %+v", e)
	}
	var field fieldError
	if err := json.Unmarshal(e.Details["product_ids"], &field); err != nil {
		t.Fatalf("product_ids detail: %v", err)
	}
	if field.Code != "at_least_one" || field.Message != "Select at least one" {
		t.Fatalf("unexpected field error %+v", field)
	}
}

func TestInvoice_BadInput(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestRouter(conn, nil)

	if w := do(t, h, http.MethodGet, "/invoices/not-a-uuid", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400 got %d", w.Code)
	}
	req := httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "invalid_json") {
		t.Fatalf("bad json: got %d %s", w.Code, w.Body.String())
	}
	form := url.Values{"customer_id": {"nope"}, "product_ids": {"x"}, "status": {"pending"}}
	if w := do(t, h, http.MethodPost, "/invoices", form); w.Code != http.StatusBadRequest {
		t.Fatalf("bad form ids: expected 400 got %d", w.Code)
	}
	body := map[string]any{"customer_id": uuid.New(), "product_ids": []uuid.UUID{uuid.New()}, "status": "pending"}
	if w := do(t, h, http.MethodPost, "/invoices", body); w.Code != http.StatusNotFound {
		t.Fatalf("unknown customer: expected 404 got %d", w.Code)
	}
}

func TestInvoiceListAndPages(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestRouter(conn, nil)
	c, ps := seed(t, conn)
	for _, p := range ps {
		body := map[string]any{"customer_id": c.ID, "product_ids": []uuid.UUID{p.ID}, "status": "pending"}
		if w := do(t, h, http.MethodPost, "/invoices", body); w.Code != http.StatusCreated {
			t.Fatalf("create: %d", w.Code)
		}
	}

	w := do(t, h, http.MethodGet, "/invoices?query=ada&page=1", nil)
	var page struct {
		Items []invoicePayload `json:"items"`
		Page  int              `json:"page"`
	}
	decodeBody(t, w, &page)
	if len(page.Items) != 2 || page.Page != 1 {
		t.Fatalf("unexpected page %+v", page)
	}

	w = do(t, h, http.MethodGet, "/invoices/pages?query=nobody", nil)
	var pages map[string]int
	decodeBody(t, w, &pages)
	if pages["pages"] != 0 {
		t.Fatalf("expected 0 pages got %d", pages["pages"])
	}
}

func TestInvoiceEditAndPDF(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestRouter(conn, nil)
	c, ps := seed(t, conn)
	w := do(t, h, http.MethodPost, "/invoices", map[string]any{"customer_id": c.ID, "product_ids": []uuid.UUID{ps[0].ID}, "status": "pending"})
	var inv invoicePayload
	decodeBody(t, w, &inv)

	w = do(t, h, http.MethodGet, "/invoices/"+inv.ID.String()+"/edit", nil)
	var edit struct {
		Products []struct {
			ID uuid.UUID `json:"id"`
		} `json:"products"`
		Statuses []string `json:"statuses"`
	}
	decodeBody(t, w, &edit)
	if len(edit.Products) != 2 || len(edit.Statuses) != 2 {
		t.Fatalf("unexpected edit data %+v", edit)
	}

	w = do(t, h, http.MethodGet, "/invoices/"+inv.ID.String()+"/pdf", nil)
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("pdf: got %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("body is not a pdf")
	}
}

func TestCustomerHandlers(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestRouter(conn, nil)

	form := url.Values{"name": {"Grace Hopper"}, "email": {"Grace@Example.com"}, "image_url": {"grace.png"}}
	w := do(t, h, http.MethodPost, "/customers", form)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201 got %d: %s", w.Code, w.Body.String())
	}
	var created models.Customer
	decodeBody(t, w, &created)
	if created.Email != "grace@example.com" || created.Image() != "/customers/grace.png" {
		t.Fatalf("unexpected customer %+v", created)
	}

	w = do(t, h, http.MethodPost, "/customers", map[string]string{"name": "Other", "email": "grace@example.com"})
	if w.Code != http.StatusConflict || !strings.Contains(w.Body.String(), services.CodeEmailTaken) {
		t.Fatalf("duplicate: got %d %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodGet, "/customers?query=grace", nil)
	var list struct {
		Items []struct {
			Name                  string `json:"name"`
			TotalPendingFormatted string `json:"total_pending_formatted"`
		} `json:"items"`
	}
	decodeBody(t, w, &list)
	if len(list.Items) != 1 || list.Items[0].TotalPendingFormatted != "$0,00" {
		t.Fatalf("unexpected list %+v", list)
	}

	w = do(t, h, http.MethodGet, "/customers/"+created.ID.String()+"/totals", nil)
	var totals map[string]any
	decodeBody(t, w, &totals)
	if totals["paid_formatted"] != "$0,00" {
		t.Fatalf("unexpected totals %+v", totals)
	}

	if w = do(t, h, http.MethodDelete, "/customers/"+created.ID.String(), nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204 got %d", w.Code)
	}
}

func TestProductHandlers(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestRouter(conn, nil)

	for i := 0; i < 7; i++ {
		w := do(t, h, http.MethodPost, "/products", map[string]any{"name": "Lamp " + string(rune('A'+i)), "price": 1500})
		if w.Code != http.StatusCreated {
			t.Fatalf("create: expected 201 got %d: %s", w.Code, w.Body.String())
		}
	}
	w := do(t, h, http.MethodGet, "/products/pages?query=lamp", nil)
	var pages map[string]int
	decodeBody(t, w, &pages)
	if pages["pages"] != 2 {
		t.Fatalf("expected 2 pages got %d", pages["pages"])
	}

	w = do(t, h, http.MethodGet, "/products?query=lamp&page=2", nil)
	var page struct {
		Items []struct {
			Name           string `json:"name"`
			PriceFormatted string `json:"price_formatted"`
		} `json:"items"`
	}
	decodeBody(t, w, &page)
	if len(page.Items) != 1 || page.Items[0].Name != "Lamp G" || page.Items[0].PriceFormatted != "$15,00" {
		t.Fatalf("unexpected page 2 %+v", page.Items)
	}

	w = do(t, h, http.MethodPost, "/products", url.Values{"name": {"Desk"}, "price": {"abc"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad price: expected 400 got %d", w.Code)
	}
	w = do(t, h, http.MethodPost, "/products", url.Values{"name": {"Desk"}, "price": {"0"}})
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "must_be_positive") {
		t.Fatalf("zero price: got %d %s", w.Code, w.Body.String())
	}
}

func TestDashboardHandler(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestRouter(conn, nil)
	c, ps := seed(t, conn)
	do(t, h, http.MethodPost, "/invoices", map[string]any{"customer_id": c.ID, "product_ids": []uuid.UUID{ps[1].ID}, "status": "paid"})

	w := do(t, h, http.MethodGet, "/dashboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", w.Code)
	}
	var out struct {
		Cards struct {
			NumberOfInvoices   int64  `json:"number_of_invoices"`
			TotalPaidFormatted string `json:"total_paid_formatted"`
		} `json:"cards"`
		Revenue        []json.RawMessage `json:"revenue"`
		LatestInvoices []invoicePayload  `json:"latest_invoices"`
	}
	decodeBody(t, w, &out)
	if out.Cards.NumberOfInvoices != 1 || out.Cards.TotalPaidFormatted != "$25,00" {
		t.Fatalf("unexpected cards %+v", out.Cards)
	}
	if len(out.Revenue) != 12 || len(out.LatestInvoices) != 1 {
		t.Fatalf("unexpected revenue/latest lengths %d/%d", len(out.Revenue), len(out.LatestInvoices))
	}
}

func TestLoginLogout(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestRouter(conn, nil)
	hash, err := auth.HashPassword("123456")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := conn.Create(&models.User{Email: "user@nextmail.com", Password: hash}).Error; err != nil {
		t.Fatalf("user: %v", err)
	}

	w := do(t, h, http.MethodPost, "/login", map[string]string{"email": "User@Nextmail.com", "password": "123456"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d: %s", w.Code, w.Body.String())
	}
	if len(w.Result().Cookies()) == 0 {
		t.Fatalf("expected session cookie")
	}

	w = do(t, h, http.MethodPost, "/login", url.Values{"email": {"user@nextmail.com"}, "password": {"wrong"}})
	if w.Code != http.StatusUnauthorized || !strings.Contains(w.Body.String(), "invalid_credentials") {
		t.Fatalf("bad password: got %d %s", w.Code, w.Body.String())
	}

	w = do(t, h, http.MethodPost, "/login", url.Values{"email": {" "}})
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), `"password"`) {
		t.Fatalf("missing fields: got %d %s", w.Code, w.Body.String())
	}

	if w = do(t, h, http.MethodPost, "/logout", nil); w.Code != http.StatusNoContent {
		t.Fatalf("logout: expected 204 got %d", w.Code)
	}
}
