// Package memory is an in-process wallet data source. It backs the mock API
// server and the offline client.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"wallet/internal/core"
)

const openingBalanceDescription = "Opening balance"

type Store struct {
	mu           sync.Mutex
	now          func() time.Time
	baseCurrency string

	accounts []core.Account
	txs      []core.Transaction
	users    []core.User

	nextAccountID int64
	nextTxID      int64
	nextUserID    int64
}

func New(baseCurrency string) *Store {
	if baseCurrency == "" {
		baseCurrency = "USD"
	}
	return &Store{
		now:           time.Now,
		baseCurrency:  strings.ToUpper(baseCurrency),
		nextAccountID: 1,
		nextTxID:      1,
		nextUserID:    1,
	}
}

// NewSeeded returns a store holding the demo dataset: a USD checking account
// and an ARS savings account with three transactions relative to now.
func NewSeeded(baseCurrency string, now time.Time) *Store {
	s := New(baseCurrency)
	day := 24 * time.Hour
	s.accounts = []core.Account{
		{ID: 1, Name: "Cuenta Corriente", Currency: "USD", Balance: 90000, CreatedAt: now, UpdatedAt: now},
		{ID: 2, Name: "Caja Ahorro", Currency: "ARS", Balance: 300000, CreatedAt: now, UpdatedAt: now},
	}
	s.txs = []core.Transaction{
		{ID: 1, AccountID: 1, Type: core.Inflow, AmountCents: 120000, Description: "Depósito", OccurredAt: now.Add(-2 * day), CreatedAt: now, UpdatedAt: now},
		{ID: 2, AccountID: 1, Type: core.Outflow, AmountCents: 30000, Description: "Pago", OccurredAt: now.Add(-1 * day), CreatedAt: now, UpdatedAt: now},
		{ID: 3, AccountID: 2, Type: core.Inflow, AmountCents: 300000, Description: "Transferencia", OccurredAt: now.Add(-10 * day), CreatedAt: now, UpdatedAt: now},
	}
	s.nextAccountID = 3
	s.nextTxID = 4
	return s
}

// WithClock replaces the time source.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *Store) ListAccounts(_ context.Context) ([]core.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Account(nil), s.accounts...), nil
}

// Snapshot returns copies of every account and transaction.
func (s *Store) Snapshot(_ context.Context) ([]core.Account, []core.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Account(nil), s.accounts...), append([]core.Transaction(nil), s.txs...)
}

// CreateAccount stores the account. A positive initial amount is recorded as
// an opening inflow so the history explains the cached balance.
func (s *Store) CreateAccount(_ context.Context, n core.NewAccount) (core.Account, error) {
	if err := n.Validate(); err != nil {
		return core.Account{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	a := core.Account{
		ID:        s.nextAccountID,
		Name:      strings.TrimSpace(n.Name),
		Currency:  strings.ToUpper(n.Currency),
		Balance:   n.InitialAmount,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextAccountID++
	s.accounts = append(s.accounts, a)

	if n.InitialAmount > 0 {
		s.txs = append(s.txs, core.Transaction{
			ID:          s.nextTxID,
			AccountID:   a.ID,
			Type:        core.Inflow,
			AmountCents: n.InitialAmount,
			Description: openingBalanceDescription,
			OccurredAt:  now,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		s.nextTxID++
	}
	return a, nil
}

// ListTransactions pages an account's history, newest first then highest id.
func (s *Store) ListTransactions(_ context.Context, accountID int64, page core.Page) (core.TransactionPage, error) {
	page = page.Normalize()
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.accountIndex(accountID)
	if idx < 0 {
		return core.TransactionPage{}, core.ErrAccountNotFound
	}

	var items []core.Transaction
	for _, t := range s.txs {
		if t.AccountID == accountID {
			items = append(items, t)
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].OccurredAt.Equal(items[j].OccurredAt) {
			return items[i].OccurredAt.After(items[j].OccurredAt)
		}
		return items[i].ID > items[j].ID
	})

	out := core.TransactionPage{Account: s.accounts[idx], Items: []core.Transaction{}, Limit: page.Limit, Offset: page.Offset}
	if page.Offset >= len(items) {
		return out, nil
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	out.Items = append(out.Items, items[page.Offset:end]...)
	return out, nil
}

// CreateTransaction records the movement and updates the account's cached balance.
func (s *Store) CreateTransaction(_ context.Context, n core.NewTransaction) (core.Transaction, error) {
	if err := n.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.accountIndex(n.AccountID)
	if idx < 0 {
		return core.Transaction{}, core.ErrAccountNotFound
	}

	now := s.now()
	occurred := now
	if n.OccurredAt != nil {
		occurred = *n.OccurredAt
	}
	t := core.Transaction{
		ID:          s.nextTxID,
		AccountID:   n.AccountID,
		Type:        n.Type,
		AmountCents: n.AmountCents,
		Description: strings.TrimSpace(n.Description),
		OccurredAt:  occurred,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.nextTxID++
	s.txs = append(s.txs, t)

	s.accounts[idx].Balance += t.Signed()
	s.accounts[idx].UpdatedAt = now
	return t, nil
}

// Summary aggregates over [From, To]. A zero From means one month before now
// and a zero To means now.
func (s *Store) Summary(_ context.Context, q core.SummaryQuery) (core.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.AccountID != nil && s.accountIndex(*q.AccountID) < 0 {
		return core.Summary{}, core.ErrAccountNotFound
	}

	now := s.now()
	from, to := q.From, q.To
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = now.AddDate(0, -1, 0)
	}

	agg := core.Aggregator{BaseCurrency: s.baseCurrency, Currency: core.AccountCurrencies(s.accounts)}
	return agg.Summarize(s.txs, q.AccountID, from, to), nil
}

func (s *Store) Register(_ context.Context, r core.Registration) (core.User, error) {
	if err := r.Validate(); err != nil {
		return core.User{}, err
	}
	email := strings.ToLower(strings.TrimSpace(r.Email))

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return core.User{}, core.ErrEmailTaken
		}
	}
	now := s.now()
	u := core.User{ID: s.nextUserID, Name: strings.TrimSpace(r.Name), Email: email, CreatedAt: now, UpdatedAt: now}
	s.nextUserID++
	s.users = append(s.users, u)
	return u, nil
}

// AdjustBalance shifts an account's cached balance without recording a
// transaction. It exists to exercise reconciliation.
func (s *Store) AdjustBalance(accountID, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.accountIndex(accountID)
	if idx < 0 {
		return core.ErrAccountNotFound
	}
	s.accounts[idx].Balance += delta
	return nil
}

func (s *Store) accountIndex(id int64) int {
	for i, a := range s.accounts {
		if a.ID == id {
			return i
		}
	}
	return -1
}
