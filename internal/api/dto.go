package api

import (
	"fmt"
	"time"

	"wallet/internal/core"
)

// AccountDTO is the wire form of an account. AmountCents carries the cached
// balance; BalanceCents, when present, is the server's projection.
type AccountDTO struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Currency     string    `json:"currency"`
	AmountCents  int64     `json:"amountCents"`
	BalanceCents *int64    `json:"balanceCents,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type TransactionDTO struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"accountId"`
	Type        string    `json:"type"`
	AmountCents int64     `json:"amountCents"`
	Description string    `json:"description"`
	OccurredAt  time.Time `json:"occurredAt"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type TransactionPageDTO struct {
	Account AccountDTO       `json:"account"`
	Items   []TransactionDTO `json:"items"`
	Limit   int              `json:"limit"`
	Offset  int              `json:"offset"`
}

type SummaryDTO struct {
	AccountID    *int64 `json:"accountId,omitempty"`
	From         string `json:"from"`
	To           string `json:"to"`
	Currency     string `json:"currency"`
	TotalIn      int64  `json:"totalIn"`
	TotalOut     int64  `json:"totalOut"`
	Net          int64  `json:"net"`
	Transactions int    `json:"transactions"`
}

type UserDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type AccountRequest struct {
	Name        string `json:"name"`
	Currency    string `json:"currency"`
	AmountCents int64  `json:"amountCents"`
}

// TransactionRequest is the create-transaction body. OccurredAt is RFC 3339
// and optional.
type TransactionRequest struct {
	AccountID   int64  `json:"accountId"`
	Type        string `json:"type"`
	AmountCents int64  `json:"amountCents"`
	Description string `json:"description"`
	OccurredAt  string `json:"occurredAt,omitempty"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ErrorBody is the error envelope. Servers may fill either field.
type ErrorBody struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

func AccountFromCore(a core.Account) AccountDTO {
	return AccountDTO{
		ID:          a.ID,
		Name:        a.Name,
		Currency:    a.Currency,
		AmountCents: a.Balance,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func (d AccountDTO) ToCore() core.Account {
	return core.Account{
		ID:        d.ID,
		Name:      d.Name,
		Currency:  d.Currency,
		Balance:   d.AmountCents,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func TransactionFromCore(t core.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Type:        string(t.Type),
		AmountCents: t.AmountCents,
		Description: t.Description,
		OccurredAt:  t.OccurredAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (d TransactionDTO) ToCore() (core.Transaction, error) {
	typ, err := core.ParseTxType(d.Type)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("transaction %d: %w", d.ID, err)
	}
	return core.Transaction{
		ID:          d.ID,
		AccountID:   d.AccountID,
		Type:        typ,
		AmountCents: d.AmountCents,
		Description: d.Description,
		OccurredAt:  d.OccurredAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func (d TransactionPageDTO) ToCore() (core.TransactionPage, error) {
	page := core.TransactionPage{
		Account: d.Account.ToCore(),
		Items:   make([]core.Transaction, 0, len(d.Items)),
		Limit:   d.Limit,
		Offset:  d.Offset,
	}
	for _, item := range d.Items {
		t, err := item.ToCore()
		if err != nil {
			return core.TransactionPage{}, err
		}
		page.Items = append(page.Items, t)
	}
	return page, nil
}

func SummaryFromCore(s core.Summary) SummaryDTO {
	return SummaryDTO{
		AccountID:    s.AccountID,
		From:         formatTime(s.From),
		To:           formatTime(s.To),
		Currency:     s.Currency,
		TotalIn:      s.TotalIn,
		TotalOut:     s.TotalOut,
		Net:          s.Net,
		Transactions: s.Transactions,
	}
}

func (d SummaryDTO) ToCore() (core.Summary, error) {
	from, err := parseTime(d.From)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summary from: %w", err)
	}
	to, err := parseTime(d.To)
	if err != nil {
		return core.Summary{}, fmt.Errorf("summary to: %w", err)
	}
	return core.Summary{
		AccountID:    d.AccountID,
		From:         from,
		To:           to,
		Currency:     d.Currency,
		TotalIn:      d.TotalIn,
		TotalOut:     d.TotalOut,
		Net:          d.Net,
		Transactions: d.Transactions,
	}, nil
}

func UserFromCore(u core.User) UserDTO {
	return UserDTO{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt}
}

func (d UserDTO) ToCore() core.User {
	return core.User{ID: d.ID, Name: d.Name, Email: d.Email, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}
