package store

import "wallet/internal/core"

// Accounts is the observable list of accounts.
type Accounts struct {
	*Store[[]core.Account]
}

func NewAccounts() *Accounts {
	return &Accounts{Store: New[[]core.Account](nil, cloneSlice[core.Account])}
}

// Add appends a.
func (s *Accounts) Add(a core.Account) {
	s.Update(func(list []core.Account) []core.Account {
		return append(list, a)
	})
}

// Find returns the account with id.
func (s *Accounts) Find(id int64) (core.Account, bool) {
	for _, a := range s.Get() {
		if a.ID == id {
			return a, true
		}
	}
	return core.Account{}, false
}

// Replace swaps the stored copy of a by id, or appends it when absent.
func (s *Accounts) Replace(a core.Account) {
	s.Update(func(list []core.Account) []core.Account {
		for i := range list {
			if list[i].ID == a.ID {
				list[i] = a
				return list
			}
		}
		return append(list, a)
	})
}
