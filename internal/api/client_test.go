package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet/internal/core"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(StaticBaseURL(srv.URL), 2*time.Second)
}

func TestListAccountsDecodesWireFormat(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/accounts", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"Cuenta Corriente","currency":"USD","amountCents":90000,"balanceCents":90000,
			"createdAt":"2025-03-01T10:00:00Z","updatedAt":"2025-03-02T10:00:00Z"}]`))
	})

	accounts, err := c.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, int64(1), accounts[0].ID)
	assert.Equal(t, "USD", accounts[0].Currency)
	assert.Equal(t, int64(90000), accounts[0].Balance)
}

func TestCreateTransactionSendsOccurredAt(t *testing.T) {
	at := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body TransactionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, TransactionRequest{AccountID: 1, Type: "OUT", AmountCents: 4999, Description: "Coffee", OccurredAt: "2025-03-10T09:30:00Z"}, body)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(TransactionDTO{ID: 7, AccountID: 1, Type: "OUT", AmountCents: 4999, Description: "Coffee", OccurredAt: at})
	})

	tx, err := c.CreateTransaction(context.Background(), core.NewTransaction{
		AccountID: 1, Type: core.Outflow, AmountCents: 4999, Description: "Coffee", OccurredAt: &at,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), tx.ID)
	assert.Equal(t, core.Outflow, tx.Type)
	assert.True(t, tx.OccurredAt.Equal(at))
}

func TestListTransactionsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts/2/transactions", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "100", r.URL.Query().Get("offset"))
		_ = json.NewEncoder(w).Encode(TransactionPageDTO{
			Account: AccountDTO{ID: 2, Currency: "ARS"},
			Items:   []TransactionDTO{{ID: 3, AccountID: 2, Type: "IN", AmountCents: 300000}},
			Limit:   50,
			Offset:  100,
		})
	})

	page, err := c.ListTransactions(context.Background(), 2, core.Page{Offset: 100})
	require.NoError(t, err)
	assert.Equal(t, "ARS", page.Account.Currency)
	require.Len(t, page.Items, 1)
	assert.True(t, page.Last())
}

func TestSummaryQueryOmitsZeroBounds(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "1", q.Get("account_id"))
		assert.Equal(t, "2025-03-01T00:00:00Z", q.Get("from"))
		assert.False(t, q.Has("to"))
		_ = json.NewEncoder(w).Encode(SummaryDTO{From: "2025-03-01T00:00:00Z", Currency: "USD", TotalIn: 10, TotalOut: 4, Net: 6, Transactions: 2})
	})

	id := int64(1)
	s, err := c.Summary(context.Background(), core.SummaryQuery{AccountID: &id, From: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, int64(6), s.Net)
	assert.True(t, s.To.IsZero())
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"message key", http.StatusConflict, `{"message":"email already registered"}`, "email already registered"},
		{"error key", http.StatusBadRequest, `{"error":"amount must be > 0"}`, "amount must be > 0"},
		{"message wins", http.StatusInternalServerError, `{"error":"x","message":"y"}`, "y"},
		{"empty body", http.StatusBadGateway, ``, ""},
		{"not json", http.StatusInternalServerError, `<html>oops</html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Register(context.Background(), core.Registration{Name: "a", Email: "a@b.c", Password: "secret"})
			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.Code)
			assert.Equal(t, tt.wantMsg, se.Message)
		})
	}
}

func TestTransportFailureIsNoResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(StaticBaseURL(url), time.Second)
	_, err := c.ListAccounts(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoResponse))
}

func TestBaseURLErrorIsNotNoResponse(t *testing.T) {
	missing := errors.New("no base url")
	c := NewClient(func(context.Context) (string, error) { return "", missing }, time.Second)
	_, err := c.ListAccounts(context.Background())
	require.ErrorIs(t, err, missing)
	assert.False(t, errors.Is(err, ErrNoResponse))
}

func TestFailuresBeforeDispatchAreNotNoResponse(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	for _, base := range []string{"localhost:8080", "ftp://example.com", "http://", "::nope"} {
		_, err := NewClient(StaticBaseURL(base), time.Second).ListAccounts(context.Background())
		require.ErrorIs(t, err, ErrInvalidBaseURL, base)
		assert.False(t, errors.Is(err, ErrNoResponse), base)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(StaticBaseURL(srv.URL), time.Second).ListAccounts(ctx)
	assert.Equal(t, context.Canceled, err)
	assert.Zero(t, hits)
}

func TestValidateBaseURL(t *testing.T) {
	assert.NoError(t, ValidateBaseURL("http://localhost:8080"))
	assert.NoError(t, ValidateBaseURL("https://api.example.com/v1"))
	assert.ErrorIs(t, ValidateBaseURL("localhost:8080"), ErrInvalidBaseURL)
	assert.ErrorIs(t, ValidateBaseURL(""), ErrInvalidBaseURL)
}
