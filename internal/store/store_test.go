package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/core"
)

func TestStoreNotifiesSubscribers(t *testing.T) {
	s := New(0, nil)
	var got []int
	unsub := s.Subscribe(func(v int) { got = append(got, v) })

	s.Set(1)
	s.Update(func(v int) int { return v + 10 })
	assert.Equal(t, []int{1, 11}, got)
	assert.Equal(t, 11, s.Get())

	unsub()
	unsub()
	s.Set(99)
	assert.Equal(t, []int{1, 11}, got)
}

func TestStoreListenerOrder(t *testing.T) {
	s := New("", nil)
	var calls []string
	s.Subscribe(func(string) { calls = append(calls, "a") })
	unsubB := s.Subscribe(func(string) { calls = append(calls, "b") })
	s.Subscribe(func(string) { calls = append(calls, "c") })

	s.Set("x")
	unsubB()
	s.Set("y")
	assert.Equal(t, []string{"a", "b", "c", "a", "c"}, calls)
}

func TestListenerMayReadStore(t *testing.T) {
	s := New(1, nil)
	var seen int
	s.Subscribe(func(int) { seen = s.Get() })
	s.Set(5)
	assert.Equal(t, 5, seen)
}

func TestAccountsHandsOutCopies(t *testing.T) {
	s := NewAccounts()
	s.Set([]core.Account{{ID: 1, Name: "Cuenta Corriente", Currency: "USD"}})
	s.Add(core.Account{ID: 2, Name: "Caja Ahorro", Currency: "ARS"})

	list := s.Get()
	require.Len(t, list, 2)
	list[0].Name = "mutated"
	a, ok := s.Find(1)
	require.True(t, ok)
	assert.Equal(t, "Cuenta Corriente", a.Name)

	_, ok = s.Find(3)
	assert.False(t, ok)

	s.Replace(core.Account{ID: 2, Name: "Caja Ahorro", Currency: "ARS", Balance: 300000})
	b, _ := s.Find(2)
	assert.Equal(t, int64(300000), b.Balance)
	assert.Len(t, s.Get(), 2)
}

func TestTransactionsStore(t *testing.T) {
	s := NewTransactions()
	var notified [][]core.Transaction
	s.Subscribe(func(v []core.Transaction) { notified = append(notified, v) })

	s.Add(core.Transaction{ID: 1, AccountID: 1})
	s.AddMany([]core.Transaction{{ID: 2, AccountID: 2}, {ID: 3, AccountID: 1}})
	s.AddMany(nil)

	assert.Len(t, notified, 2, "empty AddMany must not notify")
	assert.Len(t, notified[1], 3)

	got := s.ForAccount(1)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)

	s.ReplaceAccount(1, []core.Transaction{{ID: 4, AccountID: 1}})
	assert.Len(t, s.ForAccount(1), 1)
	assert.Len(t, s.ForAccount(2), 1)
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewTransactions()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Add(core.Transaction{ID: int64(i), AccountID: 1})
			_ = s.ForAccount(1)
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.Get(), 50)
}
