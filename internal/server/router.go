// Package server assembles the HTTP router.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/diewo77/go-invoices/auth"
	"github.com/diewo77/go-invoices/httpx"
	"github.com/diewo77/go-invoices/i18n"
	"github.com/diewo77/go-invoices/internal/db"
	"github.com/diewo77/go-invoices/internal/handlers"
	"github.com/diewo77/go-invoices/internal/logging"
	"github.com/diewo77/go-invoices/internal/metrics"
	"github.com/diewo77/go-invoices/internal/middleware"
	"github.com/diewo77/go-invoices/internal/models"
	"github.com/diewo77/go-invoices/internal/money"
	"github.com/diewo77/go-invoices/internal/services"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Options configures New. Only DB is required.
type Options struct {
	DB             *gorm.DB
	Log            *zap.Logger
	Metrics        *metrics.Metrics
	Money          *money.Formatter
	LoginRateLimit int // attempts per minute and IP
	Production     bool
	Clock          func() time.Time
}

// New constructs the root http.Handler with all routes and middlewares applied.
func New(o Options) http.Handler {
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Metrics == nil {
		o.Metrics = metrics.New()
	}
	if o.LoginRateLimit <= 0 {
		o.LoginRateLimit = 10
	}
	conn := o.DB

	// RequireAuth rejects sessions of users deleted since sign in.
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		if err := conn.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.RealIP,
		logging.RequestLogger(o.Log),
		o.Metrics.Middleware,
		withRecover(o.Log),
		withSecureHeaders(o.Log, o.Production),
		middleware.Prefs,
		auth.Middleware,
	)
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONErrorMessage(w, http.StatusNotFound, "not_found", i18n.T(i18n.LangFrom(r.Context()), "not_found"), nil)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx, conn); err != nil {
			logging.WithContext(r.Context(), o.Log).Warn("health check failed", zap.Error(err))
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", o.Metrics.Handler())

	ho := handlers.Options{Log: o.Log, Money: o.Money, Metrics: o.Metrics}
	ah := handlers.NewAuthHandler(conn, ho)
	r.With(loginLimiter(o.LoginRateLimit)).Post("/login", ah.Login)
	ah.Register(r)

	invoices := services.NewInvoiceService(conn)
	if o.Clock != nil {
		invoices.WithClock(o.Clock)
	}
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)
		handlers.NewDashboardHandler(services.NewDashboardService(conn), ho).Register(r)
		handlers.NewCustomerHandler(services.NewCustomerService(conn), ho).Register(r)
		handlers.NewProductHandler(services.NewProductService(conn), ho).Register(r)
		handlers.NewInvoiceHandler(invoices, ho).Register(r)
	})
	return r
}

func loginLimiter(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			lang := i18n.LangFrom(r.Context())
			httpx.JSONErrorMessage(w, http.StatusTooManyRequests, "too_many_requests", i18n.T(lang, "too_many_requests"), nil)
		}),
	)
}

func withSecureHeaders(log *zap.Logger, production bool) func(http.Handler) http.Handler {
	sec := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'",
		SSLRedirect:           production,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		STSSeconds:            31536000,
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := sec.Process(w, r); err != nil {
				logging.WithContext(r.Context(), log).Warn("secure headers blocked request", zap.Error(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func withRecover(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logging.WithContext(r.Context(), log).Error("panic recovered",
						zap.String("panic", fmt.Sprint(rec)),
						zap.Stack("stack"),
					)
					httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
