package core

import (
	"testing"
	"time"
)

func TestResolveRange(t *testing.T) {
	rome, err := time.LoadLocation("Europe/Rome")
	if err != nil {
		rome = time.FixedZone("CET", 3600)
	}
	now := time.Date(2025, time.March, 15, 10, 30, 0, 0, rome)

	cases := []struct {
		period Period
		from   time.Time
	}{
		{MonthToDate, time.Date(2025, time.March, 1, 0, 0, 0, 0, rome)},
		{YearToDate, time.Date(2025, time.January, 1, 0, 0, 0, 0, rome)},
		{Trailing30Days, now.Add(-30 * 24 * time.Hour)},
		{Period("bogus"), time.Date(2025, time.March, 1, 0, 0, 0, 0, rome)},
	}
	for _, tc := range cases {
		t.Run(string(tc.period), func(t *testing.T) {
			r := ResolveRange(tc.period, now)
			if !r.From.Equal(tc.from) {
				t.Fatalf("from = %v, want %v", r.From, tc.from)
			}
			if !r.To.Equal(now) {
				t.Fatalf("to = %v, want %v", r.To, now)
			}
		})
	}
}

func TestResolveRangeIdempotent(t *testing.T) {
	now := time.Date(2024, time.February, 29, 23, 59, 59, 0, time.UTC)
	for _, p := range Periods() {
		a := ResolveRange(p, now)
		b := ResolveRange(p, now)
		if a != b {
			t.Fatalf("%s: %v != %v", p, a, b)
		}
	}
}

func TestResolveRangeFirstInstant(t *testing.T) {
	now := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := ResolveRange(MonthToDate, now)
	if !r.From.Equal(now) || !r.Contains(now) {
		t.Fatalf("range at first instant of month should be a point: %+v", r)
	}
}

func TestParsePeriod(t *testing.T) {
	for in, want := range map[string]Period{"mtd": MonthToDate, " 30d ": Trailing30Days, "YTD": YearToDate} {
		got, ok := ParsePeriod(in)
		if !ok || got != want {
			t.Fatalf("%q: got %q ok=%v", in, got, ok)
		}
	}
	if _, ok := ParsePeriod("week"); ok {
		t.Fatalf("expected unknown period")
	}
}

func TestRangeContainsOpenBounds(t *testing.T) {
	far := time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	if !(Range{}).Contains(far) || !(Range{}).Contains(time.Time{}) {
		t.Fatalf("zero range should be unbounded")
	}
	if (Range{To: base}).Contains(base.Add(time.Second)) {
		t.Fatalf("upper bound ignored")
	}
}
