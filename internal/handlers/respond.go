package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/go-invoices/httpx"
	"github.com/diewo77/go-invoices/i18n"
	"github.com/diewo77/go-invoices/internal/logging"
	"github.com/diewo77/go-invoices/internal/money"
	"github.com/diewo77/go-invoices/internal/services"
	"github.com/diewo77/go-invoices/validation"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// MutationRecorder counts create, update and delete outcomes.
type MutationRecorder interface {
	Mutation(entity, op string, err error)
}

type noopRecorder struct{}

func (noopRecorder) Mutation(string, string, error) {}

// Options carries the collaborators shared by every handler.
type Options struct {
	Log     *zap.Logger
	Money   *money.Formatter
	Metrics MutationRecorder
}

// base holds the shared collaborators with defaults applied.
type base struct {
	log     *zap.Logger
	money   *money.Formatter
	metrics MutationRecorder
}

func newBase(o Options) base {
	b := base{log: o.Log, money: o.Money, metrics: o.Metrics}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	if b.money == nil {
		b.money = money.Default()
	}
	if b.metrics == nil {
		b.metrics = noopRecorder{}
	}
	return b
}

// fieldError is one localized validation failure.
type fieldError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// fail maps a service error to its HTTP status and localized body.
func (b base) fail(w http.ResponseWriter, r *http.Request, err error) {
	lang := i18n.LangFrom(r.Context())
	var (
		ve *services.ValidationError
		nf *services.NotFoundError
		ce *services.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		details := make(map[string]fieldError, len(ve.Fields))
		for field, code := range ve.Fields {
			details[field] = fieldError{Code: code, Message: i18n.T(lang, code)}
		}
		httpx.JSONErrorMessage(w, http.StatusBadRequest, "validation_failed", i18n.T(lang, "validation_failed"), details)
	case errors.As(err, &nf):
		httpx.JSONErrorMessage(w, http.StatusNotFound, "not_found", i18n.T(lang, "not_found"), map[string]string{"resource": nf.Resource})
	case errors.As(err, &ce):
		var details any
		if len(ce.IDs) > 0 {
			details = map[string][]uuid.UUID{"ids": ce.IDs}
		}
		httpx.JSONErrorMessage(w, http.StatusConflict, ce.Code, i18n.T(lang, ce.Code), details)
	default:
		logging.WithContext(r.Context(), b.log).Error("request failed",
			zap.String("route", logging.RoutePattern(r)),
			zap.Error(err),
		)
		httpx.JSONErrorMessage(w, http.StatusInternalServerError, "internal_error", i18n.T(lang, "internal_error"), nil)
	}
}

// badRequest writes a 400 with a localized message for code.
func badRequest(w http.ResponseWriter, r *http.Request, code string) {
	httpx.JSONErrorMessage(w, http.StatusBadRequest, code, i18n.T(i18n.LangFrom(r.Context()), code), nil)
}

// pathID parses the {id} route parameter; it writes a 400 and returns false when malformed.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		badRequest(w, r, "invalid_id")
		return uuid.Nil, false
	}
	return id, true
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// decodeJSON reads a JSON body into dst; it writes a 400 and returns false on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		badRequest(w, r, "invalid_json")
		return false
	}
	return true
}

// parseForm parses a urlencoded or multipart body; it writes a 400 and returns false on failure.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		err = r.ParseMultipartForm(maxBodyBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		badRequest(w, r, "invalid_form")
		return false
	}
	return true
}

// formUUIDs parses every value of a repeated form field, recording field=invalid on bad input.
func formUUIDs(values []string, field string, v validation.Violations) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(values))
	for _, raw := range values {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			v[field] = "invalid"
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func formUUID(raw, field string, v validation.Violations) uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		v[field] = "invalid"
	}
	return id
}
