// Package money renders minor-unit amounts as locale-aware currency strings.
package money

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"wallet/internal/cache"
	"wallet/internal/core"
)

const (
	DefaultCurrency = "USD"
	DefaultLocale   = "es-ES"
)

// Languages that write the symbol after the amount ("1.234,56 €").
var suffixLanguages = map[string]bool{
	"ca": true, "cs": true, "da": true, "de": true, "es": true, "fi": true,
	"fr": true, "it": true, "nb": true, "pl": true, "ru": true, "sv": true, "uk": true,
}

type layout struct {
	ok     bool
	tag    language.Tag
	symbol string
	suffix bool
}

// Formatter formats amounts and memoizes the per (locale, currency) layout.
type Formatter struct {
	layouts cache.Cache[layout]
}

func NewFormatter() *Formatter {
	return &Formatter{layouts: cache.NewLRUCache[layout](256, 24*time.Hour)}
}

var shared = NewFormatter()

// Format renders amountMinor/100 in currencyCode for locale, for example
// Format(123456, "USD", "en-US") == "$1,234.56". Unknown currencies and
// unparsable locales fall back to "1234.56 CODE". It never fails.
func Format(amountMinor int64, currencyCode, locale string) string {
	return shared.Format(amountMinor, currencyCode, locale)
}

func (f *Formatter) Format(amountMinor int64, currencyCode, locale string) string {
	if currencyCode == "" {
		currencyCode = DefaultCurrency
	}
	if locale == "" {
		locale = DefaultLocale
	}

	l := cache.GetOrCompute(f.layouts, locale+"|"+currencyCode, func() layout {
		return resolve(currencyCode, locale)
	})
	if !l.ok {
		return Fallback(amountMinor, currencyCode)
	}

	neg := amountMinor < 0
	digits := groupedDigits(l.tag, absMinor(amountMinor))

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	switch {
	case l.suffix:
		b.WriteString(digits)
		b.WriteByte(' ')
		b.WriteString(l.symbol)
	case endsWithLetter(l.symbol):
		b.WriteString(l.symbol)
		b.WriteByte(' ')
		b.WriteString(digits)
	default:
		b.WriteString(l.symbol)
		b.WriteString(digits)
	}
	return b.String()
}

// Fallback is the fixed-point rendering used when a currency is not recognized.
func Fallback(amountMinor int64, currencyCode string) string {
	return core.MajorUnits(amountMinor).StringFixed(2) + " " + currencyCode
}

// Signed prefixes a positive rendering with "+" for inflows and "−" (U+2212)
// for outflows, as transaction lines show them.
func Signed(t core.Transaction, currencyCode, locale string) string {
	sign := "+"
	if t.Type == core.Outflow {
		sign = "−"
	}
	return sign + Format(t.AmountCents, currencyCode, locale)
}

// groupedDigits renders minor/100 with the grouping and decimal separator of
// tag. The integer and fractional parts are printed separately so amounts past
// float64 precision keep their exact cents.
func groupedDigits(tag language.Tag, minor uint64) string {
	p := message.NewPrinter(tag)
	whole := p.Sprint(number.Decimal(minor / 100))
	// 0.xx is exact enough at two places; only the separator and digits are kept.
	frac := p.Sprint(number.Decimal(float64(minor%100)/100, number.Scale(2)))
	return whole + strings.TrimPrefix(frac, p.Sprint(number.Decimal(0)))
}

func absMinor(amountMinor int64) uint64 {
	if amountMinor < 0 {
		return uint64(-(amountMinor + 1)) + 1
	}
	return uint64(amountMinor)
}

func resolve(currencyCode, locale string) layout {
	unit, err := currency.ParseISO(currencyCode)
	// XXX parses to the zero unit without error; it has no symbol to render.
	if err != nil || unit == (currency.Unit{}) {
		return layout{}
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return layout{}
	}
	return layout{
		ok:     true,
		tag:    tag,
		symbol: message.NewPrinter(tag).Sprint(currency.Symbol(unit)),
		suffix: symbolAfter(tag),
	}
}

func symbolAfter(tag language.Tag) bool {
	base, _ := tag.Base()
	if !suffixLanguages[base.String()] {
		return false
	}
	if base.String() == "es" {
		// Latin American Spanish puts the symbol first.
		if region, conf := tag.Region(); conf == language.Exact && region.String() != "ES" {
			return false
		}
	}
	return true
}

func endsWithLetter(s string) bool {
	r := []rune(s)
	return len(r) > 0 && unicode.IsLetter(r[len(r)-1])
}
