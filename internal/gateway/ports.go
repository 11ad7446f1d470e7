package gateway

import (
	"context"

	"wallet/internal/core"
)

// Source is where wallet data lives: the remote API or the in-process store.
type Source interface {
	ListAccounts(ctx context.Context) ([]core.Account, error)
	CreateAccount(ctx context.Context, n core.NewAccount) (core.Account, error)
	ListTransactions(ctx context.Context, accountID int64, page core.Page) (core.TransactionPage, error)
	CreateTransaction(ctx context.Context, n core.NewTransaction) (core.Transaction, error)
	Summary(ctx context.Context, q core.SummaryQuery) (core.Summary, error)
	Register(ctx context.Context, r core.Registration) (core.User, error)
}

// Publisher announces successful writes.
type Publisher interface {
	PublishAccountChanged(ctx context.Context, a core.Account) error
	PublishTransactionRecorded(ctx context.Context, t core.Transaction) error
}
