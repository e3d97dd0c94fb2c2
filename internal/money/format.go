// Package money renders minor-unit amounts for display.
package money

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultSymbol is prefixed to every formatted amount unless configured otherwise.
const DefaultSymbol = "$"

// Formatter turns amounts expressed in minor units (cents) into strings such
// as "$1.234,56". Separators follow the configured locale; digits are always
// grouped by three, also for four-digit amounts.
type Formatter struct {
	symbol  string
	group   string
	decimal string
}

// NewFormatter builds a formatter for tag. An empty symbol means DefaultSymbol.
func NewFormatter(tag language.Tag, symbol string) *Formatter {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	p := message.NewPrinter(tag)
	return &Formatter{
		symbol:  symbol,
		group:   separator(p.Sprintf("%d", 1234567), ","),
		decimal: separator(p.Sprintf("%.1f", 1.5), "."),
	}
}

// separator extracts the first non-digit run printed by the locale.
func separator(printed, fallback string) string {
	start := strings.IndexFunc(printed, notDigit)
	if start < 0 {
		return fallback
	}
	rest := printed[start:]
	end := strings.IndexFunc(rest, isDigit)
	if end <= 0 {
		return fallback
	}
	return rest[:end]
}

func isDigit(r rune) bool  { return r >= '0' && r <= '9' }
func notDigit(r rune) bool { return !isDigit(r) }

var defaultFormatter = NewFormatter(language.Spanish, DefaultSymbol)

// Default returns the process-wide formatter (es, "$").
func Default() *Formatter { return defaultFormatter }

// FormatCents formats with the default formatter.
func FormatCents(cents int64) string { return defaultFormatter.Cents(cents) }

// Cents formats an int64 amount of minor units.
func (f *Formatter) Cents(cents int64) string {
	if cents < 0 {
		// -(cents+1)+1 keeps math.MinInt64 representable.
		return f.format(true, strconv.FormatUint(uint64(-(cents+1))+1, 10))
	}
	return f.format(false, strconv.FormatInt(cents, 10))
}

// Decimal formats a high-precision amount of minor units. Any fraction of a
// minor unit is truncated, never rounded. A nil amount formats as zero.
func (f *Formatter) Decimal(d *decimal.Decimal) string {
	if d == nil {
		return f.format(false, "0")
	}
	whole := d.Truncate(0)
	return f.format(whole.IsNegative(), whole.Abs().String())
}

func (f *Formatter) format(negative bool, digits string) string {
	digits = strings.TrimLeft(digits, "0")
	if len(digits) < 3 {
		digits = strings.Repeat("0", 3-len(digits)) + digits
	}
	intPart, frac := digits[:len(digits)-2], digits[len(digits)-2:]

	var b strings.Builder
	if negative && strings.Trim(digits, "0") != "" {
		b.WriteByte('-')
	}
	b.WriteString(f.symbol)
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(f.group)
		}
		b.WriteRune(r)
	}
	b.WriteString(f.decimal)
	b.WriteString(frac)
	return b.String()
}
