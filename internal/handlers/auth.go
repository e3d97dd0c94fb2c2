package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/go-invoices/auth"
	"github.com/diewo77/go-invoices/httpx"
	"github.com/diewo77/go-invoices/i18n"
	"github.com/diewo77/go-invoices/internal/models"
	"github.com/diewo77/go-invoices/internal/services"
	"github.com/diewo77/go-invoices/validation"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthHandler struct {
	db *gorm.DB
	base
}

func NewAuthHandler(db *gorm.DB, o Options) *AuthHandler {
	return &AuthHandler{db: db, base: newBase(o)}
}

// Register mounts logout; login is mounted by the router behind its rate limiter.
func (h *AuthHandler) Register(r chi.Router) {
	r.Post("/logout", h.Logout)
	r.Get("/logout", h.Logout)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionJSON struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if isJSON(r) {
		if !decodeJSON(w, r, &in) {
			return
		}
	} else {
		if !parseForm(w, r) {
			return
		}
		in = credentials{Email: r.FormValue("email"), Password: r.FormValue("password")}
	}
	v := validation.Violations{}
	validation.Required("email", in.Email, v)
	validation.Required("password", in.Password, v)
	if !v.Empty() {
		h.fail(w, r, &services.ValidationError{Fields: v})
		return
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var user models.User
	err := h.db.WithContext(r.Context()).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		h.unauthorized(w, r)
		return
	case err != nil:
		h.fail(w, r, err)
		return
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		h.log.Info("login rejected", zap.String("email", email))
		h.unauthorized(w, r)
		return
	}

	auth.CreateSession(w, user.ID)
	if wantsHTML(r) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	httpx.JSON(w, http.StatusOK, sessionJSON{ID: user.ID, Email: user.Email, Name: user.Name})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	if wantsHTML(r) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) unauthorized(w http.ResponseWriter, r *http.Request) {
	lang := i18n.LangFrom(r.Context())
	httpx.JSONErrorMessage(w, http.StatusUnauthorized, "invalid_credentials", i18n.T(lang, "invalid_credentials"), nil)
}

func wantsHTML(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") && !strings.Contains(accept, "application/json")
}
