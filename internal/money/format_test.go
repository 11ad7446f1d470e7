package money

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"wallet/internal/core"
)

func TestFormatLocales(t *testing.T) {
	cases := []struct {
		name   string
		amount int64
		cur    string
		locale string
		want   string
	}{
		{"en-US prefix symbol", 123456, "USD", "en-US", "$1,234.56"},
		{"en-US negative", -1200, "USD", "en-US", "-$12.00"},
		{"de-DE suffix symbol", 123456, "EUR", "de-DE", "1.234,56 €"},
		{"lowercase code", 500, "usd", "en-US", "$5.00"},
		{"beyond float precision", 9007199254740993, "USD", "en-US", "$90,071,992,547,409.93"},
		{"near int64 max", 1<<62 + 1, "USD", "en-US", "$46,116,860,184,273,879.05"},
		{"int64 min", -1 << 63, "USD", "en-US", "-$92,233,720,368,547,758.08"},
		{"de-DE large", 9007199254740993, "EUR", "de-DE", "90.071.992.547.409,93 €"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Format(tc.amount, tc.cur, tc.locale))
		})
	}
}

func TestFormatZeroIsZeroValued(t *testing.T) {
	got := Format(0, "USD", "es-ES")
	assert.True(t, strings.HasPrefix(got, "0,00 "), "got %q", got)
	assert.Contains(t, got, "$")
	assert.NotEqual(t, "0.00 USD", got, "USD is known and should not fall back")

	for _, locale := range []string{"en-US", "de-DE", "fr-FR"} {
		assert.Contains(t, Format(0, "EUR", locale), "0")
	}
}

func TestFormatFallback(t *testing.T) {
	cases := []struct {
		amount int64
		cur    string
		locale string
		want   string
	}{
		{1234, "ZZZ", "es-ES", "12.34 ZZZ"},
		{1234, "ZZZ", "en-US", "12.34 ZZZ"},
		{-5, "ZZZ", "en-US", "-0.05 ZZZ"},
		{100, "XXX", "en-US", "1.00 XXX"},
		{250000, core.MixedCurrency, "es-ES", "2500.00 MIXED"},
		{1234, "USD", "not a locale!", "12.34 USD"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Format(tc.amount, tc.cur, tc.locale), "%d %s %s", tc.amount, tc.cur, tc.locale)
	}
}

func TestFormatDefaults(t *testing.T) {
	assert.Equal(t, Format(1000, DefaultCurrency, DefaultLocale), Format(1000, "", ""))
}

func TestFormatterCachesLayouts(t *testing.T) {
	f := NewFormatter()
	first := f.Format(999, "USD", "en-US")
	assert.Equal(t, 1, f.layouts.Size())
	assert.Equal(t, first, f.Format(999, "USD", "en-US"))
	assert.Equal(t, 1, f.layouts.Size())

	f.Format(1, "ZZZ", "en-US")
	assert.Equal(t, 2, f.layouts.Size(), "fallback layouts are cached too")
}

func TestSigned(t *testing.T) {
	in := core.Transaction{Type: core.Inflow, AmountCents: 1500}
	out := core.Transaction{Type: core.Outflow, AmountCents: 1500}
	assert.Equal(t, "+$15.00", Signed(in, "USD", "en-US"))
	assert.Equal(t, "−$15.00", Signed(out, "USD", "en-US"))
}

func TestFormatMatchesFallbackDigits(t *testing.T) {
	for _, amount := range []int64{1, 99, 100, 9007199254740993, 1<<62 + 1} {
		want := strings.TrimSuffix(Fallback(amount, "USD"), " USD")
		got := strings.ReplaceAll(strings.TrimPrefix(Format(amount, "USD", "en-US"), "$"), ",", "")
		assert.Equal(t, want, got, "amount %d", amount)
	}
}
