package money

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestFormatCents(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "$0,00"},
		{5, "$0,05"},
		{99, "$0,99"},
		{100, "$1,00"},
		{123456, "$1.234,56"},
		{100000000, "$1.000.000,00"},
		{-123456, "-$1.234,56"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCents(tt.cents), "cents=%d", tt.cents)
	}
}

func TestFormatCentsExtremes(t *testing.T) {
	assert.Equal(t, "$92.233.720.368.547.758,07", FormatCents(math.MaxInt64))
	assert.Equal(t, "-$92.233.720.368.547.758,08", FormatCents(math.MinInt64))
}

func TestFormatterLocales(t *testing.T) {
	en := NewFormatter(language.English, "")
	assert.Equal(t, "$1,234.56", en.Cents(123456))
	assert.Equal(t, "$0.00", en.Cents(0))

	de := NewFormatter(language.German, "€")
	assert.Equal(t, "€1.234,56", de.Cents(123456))
}

func TestFormatDecimal(t *testing.T) {
	f := Default()
	assert.Equal(t, "$0,00", f.Decimal(nil))

	d := decimal.RequireFromString("123456.99")
	assert.Equal(t, "$1.234,56", f.Decimal(&d), "fraction of a cent is truncated")

	neg := decimal.RequireFromString("-0.5")
	assert.Equal(t, "$0,00", f.Decimal(&neg), "negative zero drops the sign")

	huge := decimal.RequireFromString("123456789012345678901234")
	assert.Equal(t, "$1.234.567.890.123.456.789.012,34", f.Decimal(&huge))
}

func TestSeparator(t *testing.T) {
	assert.Equal(t, ".", separator("1.234.567", ","))
	assert.Equal(t, ",", separator("1,5", "."))
	assert.Equal(t, ".", separator("15", "."))
}
