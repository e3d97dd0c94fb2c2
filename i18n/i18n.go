package i18n

import (
	"context"
	"strings"
)

// DefaultLang is used when nothing better is known about the caller.
const DefaultLang = "es"

var messages = map[string]map[string]string{
	"es": {
		"required":              "Requerido",
		"invalid_email":         "Email inválido",
		"must_be_positive":      "Debe ser mayor que cero",
		"at_least_one":          "Seleccione al menos uno",
		"invalid_choice":        "Opción inválida",
		"too_long":              "Demasiado largo",
		"invalid":               "Valor inválido",
		"validation_failed":     "Los datos enviados no son válidos",
		"not_found":             "No encontrado",
		"invalid_id":            "Identificador inválido",
		"invalid_json":          "JSON inválido",
		"invalid_form":          "Formulario inválido",
		"product_unavailable":   "Uno o más productos ya no están disponibles",
		"product_sold":          "El producto pertenece a una factura",
		"customer_has_invoices": "El cliente tiene facturas",
		"email_taken":           "El email ya está registrado",
		"invalid_credentials":   "Credenciales inválidas",
		"unauthorized":          "No autorizado",
		"internal_error":        "Error de base de datos",
		"too_many_requests":     "Demasiados intentos, espere un momento",
		"pdf_invoice":           "Factura",
		"pdf_date":              "Fecha",
		"pdf_status":            "Estado",
		"pdf_bill_to":           "Cliente",
		"pdf_product":           "Producto",
		"pdf_price":             "Precio",
		"pdf_total":             "Total",
		"pending":               "Pendiente",
		"paid":                  "Pagada",
	},
	"en": {
		"required":              "Required",
		"invalid_email":         "Invalid email",
		"must_be_positive":      "Must be greater than zero",
		"at_least_one":          "Select at least one",
		"invalid_choice":        "Invalid choice",
		"too_long":              "Too long",
		"invalid":               "Invalid value",
		"validation_failed":     "The submitted data is not valid",
		"not_found":             "Not found",
		"invalid_id":            "Invalid identifier",
		"invalid_json":          "Invalid JSON",
		"invalid_form":          "Invalid form",
		"product_unavailable":   "One or more products are no longer available",
		"product_sold":          "The product belongs to an invoice",
		"customer_has_invoices": "The customer has invoices",
		"email_taken":           "Email already registered",
		"invalid_credentials":   "Invalid credentials",
		"unauthorized":          "Unauthorized",
		"internal_error":        "Database error",
		"too_many_requests":     "Too many attempts, please wait",
		"pdf_invoice":           "Invoice",
		"pdf_date":              "Date",
		"pdf_status":            "Status",
		"pdf_bill_to":           "Bill to",
		"pdf_product":           "Product",
		"pdf_price":             "Price",
		"pdf_total":             "Total",
		"pending":               "Pending",
		"paid":                  "Paid",
	},
}

// Supported reports whether lang has a message catalog.
func Supported(lang string) bool {
	_, ok := messages[lang]
	return ok
}

// T translates code for lang, falling back to DefaultLang and then the code itself.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages[DefaultLang][code]; ok {
		return s
	}
	return code
}

// DetectLanguage picks a catalog from an Accept-Language header.
func DetectLanguage(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		base := strings.SplitN(tag, "-", 2)[0]
		if Supported(base) {
			return base
		}
	}
	return DefaultLang
}

type ctxKey struct{}

// WithLang stores the resolved language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFrom returns the language stored by WithLang or DefaultLang.
func LangFrom(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return DefaultLang
}
