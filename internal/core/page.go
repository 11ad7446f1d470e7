package core

// DefaultPageLimit is the page size used when a caller does not ask for one.
const DefaultPageLimit = 50

// Page selects a window of a transaction listing.
type Page struct {
	Limit  int
	Offset int
}

// Normalize applies the default limit and clamps negative values.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Next returns the page following p.
func (p Page) Next() Page {
	p = p.Normalize()
	return Page{Limit: p.Limit, Offset: p.Offset + p.Limit}
}

// TransactionPage is one window of an account's transactions, newest first.
type TransactionPage struct {
	Account Account
	Items   []Transaction
	Limit   int
	Offset  int
}

// Last reports whether there are no more pages after this one.
func (p TransactionPage) Last() bool {
	return p.Limit <= 0 || len(p.Items) < p.Limit
}
