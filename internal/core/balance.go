package core

// ProjectBalance folds the signed amounts of accountID's transactions. It
// returns 0 when the account has none.
func ProjectBalance(txs []Transaction, accountID int64) int64 {
	var balance int64
	for _, t := range txs {
		if t.AccountID == accountID {
			balance += t.Signed()
		}
	}
	return balance
}

// ProjectAll projects every account in one pass.
func ProjectAll(accounts []Account, txs []Transaction) map[int64]int64 {
	out := make(map[int64]int64, len(accounts))
	for _, a := range accounts {
		out[a.ID] = 0
	}
	for _, t := range txs {
		if _, ok := out[t.AccountID]; ok {
			out[t.AccountID] += t.Signed()
		}
	}
	return out
}

// Reconciliation compares an account's cached balance with its projection.
type Reconciliation struct {
	AccountID  int64
	Currency   string
	Cached     int64
	Projected  int64
	Drift      int64 // Cached - Projected
	Consistent bool
}

// Reconcile checks the denormalized balance on account against the history.
func Reconcile(account Account, txs []Transaction) Reconciliation {
	projected := ProjectBalance(txs, account.ID)
	return Reconciliation{
		AccountID:  account.ID,
		Currency:   account.Currency,
		Cached:     account.Balance,
		Projected:  projected,
		Drift:      account.Balance - projected,
		Consistent: account.Balance == projected,
	}
}
