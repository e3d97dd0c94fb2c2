package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/diewo77/go-invoices/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "validation", Outcome(&services.ValidationError{}))
	assert.Equal(t, "not_found", Outcome(&services.NotFoundError{Resource: "invoice"}))
	assert.Equal(t, "conflict", Outcome(&services.ConflictError{Code: services.CodeProductUnavailable}))
	assert.Equal(t, "error", Outcome(errors.New("boom")))
}

func TestMutationCounter(t *testing.T) {
	m := New()
	m.Mutation("invoice", "create", nil)
	m.Mutation("invoice", "create", nil)
	m.Mutation("invoice", "create", &services.ConflictError{})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.mutations.WithLabelValues("invoice", "create", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("invoice", "create", "conflict")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	m := New()
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/invoices/{id}", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	r.Handle("/metrics", m.Handler())

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/invoices/1", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/invoices/{id}", http.MethodGet, "418")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "invoices_http_requests_total"))
}
