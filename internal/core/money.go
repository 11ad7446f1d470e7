package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmountToCents converts a user-typed amount to positive minor units.
//
// Anything other than digits and separators is dropped, so "$ 12,50" parses as
// 1250. A comma is read as the decimal separator. Values are rounded half-up to
// two decimals. Zero, negative and malformed input return ErrInvalidAmount.
//
// Examples:
//
//	ParseAmountToCents("12.34")   -> 1234
//	ParseAmountToCents("12,34")   -> 1234
//	ParseAmountToCents("12.345")  -> 1235
//	ParseAmountToCents("US$ 7")   -> 700
func ParseAmountToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.':
			return r
		case r == ',':
			return '.'
		}
		return -1
	}, s)
	if cleaned == "" || strings.Count(cleaned, ".") > 1 {
		return 0, ErrInvalidAmount
	}
	if strings.HasPrefix(cleaned, ".") {
		cleaned = "0" + cleaned
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsPositive() || !cents.LessThan(decimal.New(1, 18)) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// MajorUnits returns amount/100 as an exact decimal.
func MajorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
