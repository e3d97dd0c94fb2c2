package middleware

import (
	"net/http"

	"github.com/diewo77/go-invoices/i18n"
)

const langCookie = "lang"

// Prefs resolves the caller's language (query > cookie > Accept-Language) and stores it in context.
// A supported language passed in the query is persisted in a cookie for ~30 days.
func Prefs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := ""
		if ql := r.URL.Query().Get("lang"); i18n.Supported(ql) {
			lang = ql
			http.SetCookie(w, &http.Cookie{Name: langCookie, Value: lang, Path: "/", MaxAge: 86400 * 30, HttpOnly: true, SameSite: http.SameSiteLaxMode})
		} else if c, err := r.Cookie(langCookie); err == nil && i18n.Supported(c.Value) {
			lang = c.Value
		}
		if lang == "" {
			lang = i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

// LangFrom returns the language resolved by Prefs.
func LangFrom(r *http.Request) string {
	return i18n.LangFrom(r.Context())
}
