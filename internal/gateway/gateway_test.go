package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/api"
	"wallet/internal/core"
	"wallet/internal/memory"
)

var fixedNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	err      error
	pages    [][]core.Transaction
	created  []core.NewTransaction
	pageReqs []core.Page
	calls    int
}

func (f *fakeSource) ListAccounts(context.Context) ([]core.Account, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []core.Account{{ID: 1, Currency: "USD"}}, nil
}

func (f *fakeSource) CreateAccount(_ context.Context, n core.NewAccount) (core.Account, error) {
	f.calls++
	if f.err != nil {
		return core.Account{}, f.err
	}
	return core.Account{ID: 9, Name: n.Name, Currency: n.Currency, Balance: n.InitialAmount}, nil
}

func (f *fakeSource) ListTransactions(_ context.Context, accountID int64, page core.Page) (core.TransactionPage, error) {
	f.calls++
	f.pageReqs = append(f.pageReqs, page)
	if f.err != nil {
		return core.TransactionPage{}, f.err
	}
	i := page.Offset / page.Limit
	if i >= len(f.pages) {
		return core.TransactionPage{Limit: page.Limit, Offset: page.Offset}, nil
	}
	return core.TransactionPage{Items: f.pages[i], Limit: page.Limit, Offset: page.Offset}, nil
}

func (f *fakeSource) CreateTransaction(_ context.Context, n core.NewTransaction) (core.Transaction, error) {
	f.calls++
	f.created = append(f.created, n)
	if f.err != nil {
		return core.Transaction{}, f.err
	}
	return core.Transaction{ID: 1, AccountID: n.AccountID, Type: n.Type, AmountCents: n.AmountCents, Description: n.Description, OccurredAt: *n.OccurredAt}, nil
}

func (f *fakeSource) Summary(_ context.Context, q core.SummaryQuery) (core.Summary, error) {
	f.calls++
	if f.err != nil {
		return core.Summary{}, f.err
	}
	return core.Summary{AccountID: q.AccountID, From: q.From, To: q.To, Currency: "USD"}, nil
}

func (f *fakeSource) Register(_ context.Context, r core.Registration) (core.User, error) {
	f.calls++
	if f.err != nil {
		return core.User{}, f.err
	}
	return core.User{ID: 1, Name: r.Name, Email: r.Email}, nil
}

type fakePublisher struct {
	accounts []core.Account
	txs      []core.Transaction
	err      error
}

func (p *fakePublisher) PublishAccountChanged(_ context.Context, a core.Account) error {
	p.accounts = append(p.accounts, a)
	return p.err
}

func (p *fakePublisher) PublishTransactionRecorded(_ context.Context, t core.Transaction) error {
	p.txs = append(p.txs, t)
	return p.err
}

type statusLog struct {
	mu  sync.Mutex
	got []string
}

func (s *statusLog) record(op string, st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, op+":"+string(st))
}

func TestStatusSequence(t *testing.T) {
	var sl statusLog
	g := New(&fakeSource{}, WithStatusFunc(sl.record))

	res := g.ListAccounts(context.Background())
	require.True(t, res.OK())
	assert.Equal(t, []string{"list_accounts:pending", "list_accounts:success"}, sl.got)

	sl.got = nil
	g = New(&fakeSource{err: api.ErrNoResponse}, WithStatusFunc(sl.record))
	res = g.ListAccounts(context.Background())
	assert.False(t, res.OK())
	assert.Equal(t, []string{"list_accounts:pending", "list_accounts:failure"}, sl.got)
}

func TestClassification(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    ErrorKind
		message string
	}{
		{"bad request", &api.StatusError{Code: 400, Message: "amount must be > 0"}, ValidationError, MsgValidation},
		{"server message", &api.StatusError{Code: 409, Message: "email already registered"}, ServerError, "email already registered"},
		{"server no message", &api.StatusError{Code: 500}, ServerError, MsgServer},
		{"no response", fmt.Errorf("%w: connection refused", api.ErrNoResponse), NetworkError, MsgNetwork},
		{"local validation", core.ErrInvalidAmount, ValidationError, MsgValidation},
		{"not found", core.ErrAccountNotFound, ServerError, "account not found"},
		{"anything else", errors.New("no API base URL configured"), UnknownError, MsgUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := New(&fakeSource{err: tt.err}).Register(context.Background(), "Ana", "ana@example.com", "secret1")
			assert.Equal(t, StatusFailure, res.Status)
			assert.Equal(t, tt.kind, res.Err)
			assert.Equal(t, tt.message, res.Message)
			assert.Zero(t, res.Data)
		})
	}
}

func TestLocalValidationSkipsDispatch(t *testing.T) {
	src := &fakeSource{}
	g := New(src)
	ctx := context.Background()

	cases := []Result[core.Transaction]{
		g.CreateTransaction(ctx, 1, core.Outflow, 0, "x", nil),
		g.CreateTransaction(ctx, 1, "SIDEWAYS", 10, "x", nil),
		g.CreateTransaction(ctx, 1, core.Inflow, 10, "   ", nil),
		g.CreateTransaction(ctx, 0, core.Inflow, 10, "x", nil),
	}
	for i, res := range cases {
		assert.Equal(t, ValidationError, res.Err, "case %d", i)
		assert.Equal(t, MsgValidation, res.Message, "case %d", i)
	}
	acct := g.CreateAccount(ctx, "Wallet", "EURO", 0)
	assert.Equal(t, ValidationError, acct.Err)
	user := g.Register(ctx, "Ana", "not-an-email", "secret1")
	assert.Equal(t, ValidationError, user.Err)
	sum := g.GetSummary(ctx, nil, fixedNow, fixedNow.Add(-time.Hour))
	assert.Equal(t, ValidationError, sum.Err)
	txs := g.ListTransactionsForAccount(ctx, 0)
	assert.Equal(t, ValidationError, txs.Err)

	assert.Zero(t, src.calls, "source must not be called after a local validation failure")
}

func TestCreateTransactionDefaultsOccurredAt(t *testing.T) {
	src := &fakeSource{}
	g := New(src, WithClock(func() time.Time { return fixedNow }))

	res := g.CreateTransaction(context.Background(), 1, core.Inflow, 250000, "  Depósito ", nil)
	require.True(t, res.OK())
	require.Len(t, src.created, 1)
	assert.True(t, src.created[0].OccurredAt.Equal(fixedNow))
	assert.Equal(t, "Depósito", src.created[0].Description)

	at := fixedNow.Add(-48 * time.Hour)
	res = g.CreateTransaction(context.Background(), 1, core.Outflow, 100, "Pago", &at)
	require.True(t, res.OK())
	assert.True(t, res.Data.OccurredAt.Equal(at))
}

func TestListTransactionsForAccountWalksPages(t *testing.T) {
	full := make([]core.Transaction, core.DefaultPageLimit)
	for i := range full {
		full[i] = core.Transaction{ID: int64(100 - i), AccountID: 1, Type: core.Inflow, AmountCents: 1}
	}
	src := &fakeSource{pages: [][]core.Transaction{full, full[:3]}}

	res := New(src).ListTransactionsForAccount(context.Background(), 1)
	require.True(t, res.OK())
	assert.Len(t, res.Data, core.DefaultPageLimit+3)
	require.Len(t, src.pageReqs, 2)
	assert.Equal(t, 0, src.pageReqs[0].Offset)
	assert.Equal(t, core.DefaultPageLimit, src.pageReqs[1].Offset)
}

func TestListTransactionsForAccountEmpty(t *testing.T) {
	res := New(&fakeSource{}).ListTransactionsForAccount(context.Background(), 1)
	require.True(t, res.OK())
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
}

func TestPublisherNotifiedOnSuccessOnly(t *testing.T) {
	pub := &fakePublisher{}
	g := New(&fakeSource{}, WithPublisher(pub))
	ctx := context.Background()

	require.True(t, g.CreateAccount(ctx, " Caja ", "ars", 0).OK())
	require.True(t, g.CreateTransaction(ctx, 9, core.Inflow, 10, "x", nil).OK())
	assert.Len(t, pub.accounts, 1)
	assert.Equal(t, "ARS", pub.accounts[0].Currency)
	assert.Equal(t, "Caja", pub.accounts[0].Name)
	assert.Len(t, pub.txs, 1)

	g = New(&fakeSource{err: errors.New("boom")}, WithPublisher(pub))
	assert.False(t, g.CreateAccount(ctx, "X", "USD", 0).OK())
	assert.Len(t, pub.accounts, 1)

	pub.err = errors.New("broker down")
	g = New(&fakeSource{}, WithPublisher(pub))
	assert.True(t, g.CreateAccount(ctx, "Y", "USD", 0).OK(), "publish failure must not fail the call")
}

func TestGatewayOverRemoteClient(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid currency"}`))
	}))
	defer srv.Close()

	g := New(api.NewClient(api.StaticBaseURL(srv.URL), time.Second))
	res := g.CreateAccount(context.Background(), "Wallet", "USD", 0)
	assert.Equal(t, ValidationError, res.Err)
	assert.Equal(t, 1, hits, "no retries")

	noURL := New(api.NewClient(func(context.Context) (string, error) { return "", errors.New("unset") }, time.Second))
	assert.Equal(t, UnknownError, noURL.ListAccounts(context.Background()).Err)
}

func TestFailuresBeforeDispatchAreUnknown(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	schemeless := New(api.NewClient(api.StaticBaseURL("localhost:8080"), time.Second))
	res := schemeless.ListAccounts(context.Background())
	assert.Equal(t, UnknownError, res.Err)
	assert.Equal(t, MsgUnknown, res.Message)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := New(api.NewClient(api.StaticBaseURL(srv.URL), time.Second))
	res = g.ListAccounts(ctx)
	assert.Equal(t, UnknownError, res.Err)
	assert.Zero(t, hits)

	down := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := down.URL
	down.Close()
	res = New(api.NewClient(api.StaticBaseURL(url), time.Second)).ListAccounts(context.Background())
	assert.Equal(t, NetworkError, res.Err)
}

func TestGatewayOverMemoryScenario(t *testing.T) {
	g := New(memory.New("USD"), WithClock(func() time.Time { return fixedNow }))
	ctx := context.Background()

	acct := g.CreateAccount(ctx, "Cuenta Corriente", "USD", 0)
	require.True(t, acct.OK())
	id := acct.Data.ID
	for _, tx := range []struct {
		typ    core.TxType
		amount int64
		desc   string
	}{
		{core.Inflow, 250000, "Depósito"},
		{core.Outflow, 30500, "Pago servicio"},
		{core.Outflow, 4999, "Café"},
	} {
		require.True(t, g.CreateTransaction(ctx, id, tx.typ, tx.amount, tx.desc, nil).OK())
	}

	txs := g.ListTransactionsForAccount(ctx, id)
	require.True(t, txs.OK())
	assert.Equal(t, int64(214501), core.ProjectBalance(txs.Data, id))

	sum := g.GetSummary(ctx, &id, fixedNow.Add(-time.Hour), fixedNow)
	require.True(t, sum.OK())
	assert.Equal(t, int64(250000), sum.Data.TotalIn)
	assert.Equal(t, int64(35499), sum.Data.TotalOut)
	assert.Equal(t, int64(214501), sum.Data.Net)
	assert.Equal(t, 3, sum.Data.Transactions)

	missing := g.ListTransactionsForAccount(ctx, 404)
	assert.Equal(t, ServerError, missing.Err)
}
