package core

import "time"

// MixedCurrency labels a summary whose transactions span accounts with
// different currencies. Totals are never converted.
const MixedCurrency = "MIXED"

// Summary aggregates transactions over a range, optionally for one account.
type Summary struct {
	AccountID    *int64
	From         time.Time
	To           time.Time
	Currency     string
	TotalIn      int64
	TotalOut     int64
	Net          int64
	Transactions int
}

// SummaryQuery selects what a summary covers.
type SummaryQuery struct {
	AccountID *int64
	From      time.Time
	To        time.Time
}

// CurrencyLookup returns the currency of an account.
type CurrencyLookup func(accountID int64) (string, bool)

// AccountCurrencies builds a lookup over a snapshot of accounts.
func AccountCurrencies(accounts []Account) CurrencyLookup {
	m := make(map[int64]string, len(accounts))
	for _, a := range accounts {
		m[a.ID] = a.Currency
	}
	return func(id int64) (string, bool) {
		c, ok := m[id]
		return c, ok
	}
}

// Aggregator computes summaries. BaseCurrency labels summaries that cannot be
// attributed to a single account currency.
type Aggregator struct {
	BaseCurrency string
	Currency     CurrencyLookup
}

// Summarize filters txs by account (when accountFilter is set) and by
// OccurredAt within [from, to], both ends included, and totals them.
// Transactions with an unknown type are ignored, as ProjectBalance ignores them.
//
// Currency: the filtered account's currency when a filter is set; otherwise the
// currency shared by every matched transaction's account, MixedCurrency when
// they differ, or BaseCurrency when nothing matched or accounts are unknown.
func (a Aggregator) Summarize(txs []Transaction, accountFilter *int64, from, to time.Time) Summary {
	s := Summary{
		AccountID: accountFilter,
		From:      from,
		To:        to,
		Currency:  a.base(),
	}
	rng := Range{From: from, To: to}

	var shared string
	mixed := false
	for _, t := range txs {
		if accountFilter != nil && t.AccountID != *accountFilter {
			continue
		}
		if !t.Type.Valid() || !rng.Contains(t.OccurredAt) {
			continue
		}
		if t.Type == Inflow {
			s.TotalIn += t.AmountCents
		} else {
			s.TotalOut += t.AmountCents
		}
		s.Transactions++

		if accountFilter == nil && !mixed {
			c, ok := a.lookup(t.AccountID)
			switch {
			case !ok:
			case shared == "":
				shared = c
			case shared != c:
				mixed = true
			}
		}
	}
	s.Net = s.TotalIn - s.TotalOut

	switch {
	case accountFilter != nil:
		if c, ok := a.lookup(*accountFilter); ok {
			s.Currency = c
		}
	case mixed:
		s.Currency = MixedCurrency
	case shared != "":
		s.Currency = shared
	}
	return s
}

func (a Aggregator) base() string {
	if a.BaseCurrency == "" {
		return "USD"
	}
	return a.BaseCurrency
}

func (a Aggregator) lookup(id int64) (string, bool) {
	if a.Currency == nil {
		return "", false
	}
	c, ok := a.Currency(id)
	if !ok || c == "" {
		return "", false
	}
	return c, true
}
