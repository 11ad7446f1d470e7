package store

import "wallet/internal/core"

// Transactions is the observable list of loaded transactions.
type Transactions struct {
	*Store[[]core.Transaction]
}

func NewTransactions() *Transactions {
	return &Transactions{Store: New[[]core.Transaction](nil, cloneSlice[core.Transaction])}
}

func (s *Transactions) Add(t core.Transaction) {
	s.Update(func(list []core.Transaction) []core.Transaction {
		return append(list, t)
	})
}

func (s *Transactions) AddMany(txs []core.Transaction) {
	if len(txs) == 0 {
		return
	}
	s.Update(func(list []core.Transaction) []core.Transaction {
		return append(list, txs...)
	})
}

// ReplaceAccount drops the account's transactions and stores txs instead.
func (s *Transactions) ReplaceAccount(accountID int64, txs []core.Transaction) {
	s.Update(func(list []core.Transaction) []core.Transaction {
		kept := list[:0]
		for _, t := range list {
			if t.AccountID != accountID {
				kept = append(kept, t)
			}
		}
		return append(kept, txs...)
	})
}

// ForAccount returns the stored transactions of one account in insertion order.
func (s *Transactions) ForAccount(accountID int64) []core.Transaction {
	var out []core.Transaction
	for _, t := range s.Get() {
		if t.AccountID == accountID {
			out = append(out, t)
		}
	}
	return out
}
