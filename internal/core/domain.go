package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
)

const (
	Inflow  TxType = "IN"
	Outflow TxType = "OUT"
)

const maxDescriptionLen = 200

type (
	// TxType is the direction of a transaction.
	TxType string

	Account struct {
		ID       int64
		Name     string
		Currency string
		// Balance is the denormalized balance in minor units. It may drift from the
		// transaction history; ProjectBalance is authoritative.
		Balance   int64
		CreatedAt time.Time
		UpdatedAt time.Time
	}

	Transaction struct {
		ID          int64
		AccountID   int64
		Type        TxType
		AmountCents int64
		Description string
		OccurredAt  time.Time
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}

	// NewAccount is the create-account form.
	NewAccount struct {
		Name          string
		Currency      string
		InitialAmount int64
	}

	// NewTransaction is the create-transaction form. A nil OccurredAt means now.
	NewTransaction struct {
		AccountID   int64
		Type        TxType
		AmountCents int64
		Description string
		OccurredAt  *time.Time
	}

	Registration struct {
		Name     string
		Email    string
		Password string
	}

	User struct {
		ID        int64
		Name      string
		Email     string
		CreatedAt time.Time
		UpdatedAt time.Time
	}
)

var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")

	ErrInvalidAmount    = fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
	ErrInvalidType      = fmt.Errorf("%w: type must be IN or OUT", ErrValidation)
	ErrEmptyDescription = fmt.Errorf("%w: empty description", ErrValidation)
	ErrLongDescription  = fmt.Errorf("%w: description too long (max %d characters)", ErrValidation, maxDescriptionLen)
	ErrEmptyName        = fmt.Errorf("%w: empty name", ErrValidation)
	ErrInvalidCurrency  = fmt.Errorf("%w: currency must be a 3-letter ISO code", ErrValidation)
	ErrInvalidAccount   = fmt.Errorf("%w: account id is required", ErrValidation)
	ErrNegativeAmount   = fmt.Errorf("%w: initial amount cannot be negative", ErrValidation)
	ErrInvalidEmail     = fmt.Errorf("%w: invalid email", ErrValidation)
	ErrShortPassword    = fmt.Errorf("%w: password too short", ErrValidation)

	ErrAccountNotFound = fmt.Errorf("account %w", ErrNotFound)
	ErrEmailTaken      = fmt.Errorf("%w: email already registered", ErrConflict)
)

// Valid reports whether t is one of the known directions.
func (t TxType) Valid() bool {
	return t == Inflow || t == Outflow
}

// Sign returns +1 for inflows, -1 for outflows and 0 for anything else.
func (t TxType) Sign() int64 {
	switch t {
	case Inflow:
		return 1
	case Outflow:
		return -1
	}
	return 0
}

// ParseTxType accepts IN/OUT in any case.
func ParseTxType(s string) (TxType, error) {
	t := TxType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidType
	}
	return t, nil
}

// Signed returns the contribution of the transaction to its account balance.
func (t Transaction) Signed() int64 {
	return t.Type.Sign() * t.AmountCents
}

func (t Transaction) Validate() error {
	if t.AccountID <= 0 {
		return ErrInvalidAccount
	}
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if t.AmountCents <= 0 {
		return ErrInvalidAmount
	}
	return validateDescription(t.Description)
}

func (n NewTransaction) Validate() error {
	return Transaction{
		AccountID:   n.AccountID,
		Type:        n.Type,
		AmountCents: n.AmountCents,
		Description: n.Description,
	}.Validate()
}

func (n NewAccount) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return ErrEmptyName
	}
	if !ValidCurrencyCode(n.Currency) {
		return ErrInvalidCurrency
	}
	if n.InitialAmount < 0 {
		return ErrNegativeAmount
	}
	return nil
}

func (r Registration) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	email := strings.TrimSpace(r.Email)
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return ErrInvalidEmail
	}
	if len(r.Password) < 6 {
		return ErrShortPassword
	}
	return nil
}

// ValidCurrencyCode checks the shape of an ISO 4217 code, not whether it exists.
func ValidCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if !unicode.IsLetter(r) || r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func validateDescription(d string) error {
	if len(strings.TrimSpace(d)) == 0 {
		return ErrEmptyDescription
	}
	if len(d) > maxDescriptionLen {
		return ErrLongDescription
	}
	return nil
}
