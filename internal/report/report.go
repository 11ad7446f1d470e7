// Package report builds the dashboard and account screens from gateway data.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"wallet/internal/core"
	"wallet/internal/gateway"
	"wallet/internal/money"
	"wallet/internal/store"
)

// Failure is a gateway failure surfaced to a screen.
type Failure struct {
	Op      string
	Kind    gateway.ErrorKind
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s: %s", f.Op, f.Message)
}

func failed[T any](op string, r gateway.Result[T]) error {
	return &Failure{Op: op, Kind: r.Err, Message: r.Message}
}

type AccountCard struct {
	ID           int64
	Name         string
	Currency     string
	BalanceCents int64
	Balance      string
}

type Dashboard struct {
	Period   core.Period
	Label    string
	Range    core.Range
	Summary  core.Summary
	TotalIn  string
	TotalOut string
	Net      string
	Accounts []AccountCard
}

type TxLine struct {
	ID          int64
	Description string
	Date        string
	Amount      string
	Inflow      bool
}

type AccountDetail struct {
	Account        core.Account
	Balance        string
	Reconciliation core.Reconciliation
	Lines          []TxLine
}

type Builder struct {
	gw        *gateway.Gateway
	accounts  *store.Accounts
	txs       *store.Transactions
	formatter *money.Formatter
	locale    string
	now       func() time.Time
}

func NewBuilder(gw *gateway.Gateway, accounts *store.Accounts, txs *store.Transactions, locale string) *Builder {
	return &Builder{
		gw:        gw,
		accounts:  accounts,
		txs:       txs,
		formatter: money.NewFormatter(),
		locale:    locale,
		now:       time.Now,
	}
}

// WithClock replaces the time source used to resolve periods.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Dashboard loads accounts and the period summary concurrently.
func (b *Builder) Dashboard(ctx context.Context, p core.Period, accountFilter *int64) (Dashboard, error) {
	if _, ok := core.ParsePeriod(string(p)); !ok {
		p = core.MonthToDate
	}
	rng := core.ResolveRange(p, b.now())

	var (
		accountsRes gateway.Result[[]core.Account]
		summaryRes  gateway.Result[core.Summary]
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		accountsRes = b.gw.ListAccounts(gctx)
		if !accountsRes.OK() {
			return failed("accounts", accountsRes)
		}
		return nil
	})
	g.Go(func() error {
		summaryRes = b.gw.GetSummary(gctx, accountFilter, rng.From, rng.To)
		if !summaryRes.OK() {
			return failed("summary", summaryRes)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	b.accounts.Set(accountsRes.Data)

	s := summaryRes.Data
	d := Dashboard{
		Period:   p,
		Label:    p.Label(),
		Range:    rng,
		Summary:  s,
		TotalIn:  b.formatter.Format(s.TotalIn, s.Currency, b.locale),
		TotalOut: b.formatter.Format(s.TotalOut, s.Currency, b.locale),
		Net:      b.formatter.Format(s.Net, s.Currency, b.locale),
	}
	for _, a := range accountsRes.Data {
		d.Accounts = append(d.Accounts, AccountCard{
			ID:           a.ID,
			Name:         a.Name,
			Currency:     a.Currency,
			BalanceCents: a.Balance,
			Balance:      b.formatter.Format(a.Balance, a.Currency, b.locale),
		})
	}
	return d, nil
}

// AccountDetail loads the account's whole history. The balance shown is the
// projection, not the cached value.
func (b *Builder) AccountDetail(ctx context.Context, accountID int64) (AccountDetail, error) {
	account, ok := b.accounts.Find(accountID)
	if !ok {
		res := b.gw.ListAccounts(ctx)
		if !res.OK() {
			return AccountDetail{}, failed("accounts", res)
		}
		b.accounts.Set(res.Data)
		if account, ok = b.accounts.Find(accountID); !ok {
			return AccountDetail{}, &Failure{Op: "account", Kind: gateway.ServerError, Message: core.ErrAccountNotFound.Error()}
		}
	}

	txRes := b.gw.ListTransactionsForAccount(ctx, accountID)
	if !txRes.OK() {
		return AccountDetail{}, failed("transactions", txRes)
	}
	b.txs.ReplaceAccount(accountID, txRes.Data)

	rec := core.Reconcile(account, txRes.Data)
	d := AccountDetail{
		Account:        account,
		Balance:        b.formatter.Format(rec.Projected, account.Currency, b.locale),
		Reconciliation: rec,
		Lines:          Lines(txRes.Data, account.Currency, b.locale),
	}
	return d, nil
}

// Lines renders transactions newest first, then by descending id.
func Lines(txs []core.Transaction, currencyCode, locale string) []TxLine {
	sorted := append([]core.Transaction(nil), txs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].OccurredAt.Equal(sorted[j].OccurredAt) {
			return sorted[i].OccurredAt.After(sorted[j].OccurredAt)
		}
		return sorted[i].ID > sorted[j].ID
	})
	lines := make([]TxLine, 0, len(sorted))
	for _, t := range sorted {
		lines = append(lines, TxLine{
			ID:          t.ID,
			Description: t.Description,
			Date:        t.OccurredAt.Format("2006-01-02"),
			Amount:      money.Signed(t, currencyCode, locale),
			Inflow:      t.Type == core.Inflow,
		})
	}
	return lines
}
