package core

import (
	"strings"
	"time"
)

// Period names a reporting window ending now.
type Period string

const (
	MonthToDate    Period = "MTD"
	Trailing30Days Period = "30D"
	YearToDate     Period = "YTD"
)

const trailingWindow = 30 * 24 * time.Hour

// Range is a pair of instants. Both ends are inclusive when used by Summarize.
type Range struct {
	From time.Time
	To   time.Time
}

// Periods lists the supported periods in display order.
func Periods() []Period {
	return []Period{MonthToDate, Trailing30Days, YearToDate}
}

// ParsePeriod accepts the short codes in any case.
func ParsePeriod(s string) (Period, bool) {
	p := Period(strings.ToUpper(strings.TrimSpace(s)))
	switch p {
	case MonthToDate, Trailing30Days, YearToDate:
		return p, true
	}
	return "", false
}

// Label is the human name of the period.
func (p Period) Label() string {
	switch p {
	case Trailing30Days:
		return "Last 30 days"
	case YearToDate:
		return "Year to date"
	default:
		return "This month"
	}
}

// ResolveRange computes the bounds of p ending at now. Calendar boundaries use
// now's location. Unknown periods resolve as MonthToDate.
func ResolveRange(p Period, now time.Time) Range {
	loc := now.Location()
	switch p {
	case Trailing30Days:
		return Range{From: now.Add(-trailingWindow), To: now}
	case YearToDate:
		return Range{From: time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc), To: now}
	default:
		return Range{From: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc), To: now}
	}
}

// Contains reports whether t falls within the range, ends included. A zero bound
// is open.
func (r Range) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}
