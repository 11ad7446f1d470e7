// Package gateway is the single entry point the client uses to reach wallet
// data. Every call reports its progress and returns a Result instead of an
// error.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"wallet/internal/core"
	"wallet/internal/log"
)

// StatusFunc observes the in-flight state of each operation.
type StatusFunc func(op string, s Status)

type Gateway struct {
	source    Source
	now       func() time.Time
	onStatus  StatusFunc
	publisher Publisher
	logger    *log.Logger
}

type Option func(*Gateway)

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

func WithStatusFunc(fn StatusFunc) Option {
	return func(g *Gateway) { g.onStatus = fn }
}

// WithPublisher announces created accounts and transactions. A nil publisher
// disables announcements.
func WithPublisher(p Publisher) Option {
	return func(g *Gateway) { g.publisher = p }
}

func WithLogger(l *log.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

func New(source Source, opts ...Option) *Gateway {
	g := &Gateway{
		source: source,
		now:    time.Now,
		logger: log.Default(log.ComponentGateway),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) ListAccounts(ctx context.Context) Result[[]core.Account] {
	return call(ctx, g, log.OpListAccounts, nil, func(ctx context.Context) ([]core.Account, error) {
		return g.source.ListAccounts(ctx)
	})
}

func (g *Gateway) CreateAccount(ctx context.Context, name, currency string, initialAmount int64) Result[core.Account] {
	n := core.NewAccount{
		Name:          strings.TrimSpace(name),
		Currency:      strings.ToUpper(strings.TrimSpace(currency)),
		InitialAmount: initialAmount,
	}
	res := call(ctx, g, log.OpCreateAccount, n.Validate, func(ctx context.Context) (core.Account, error) {
		return g.source.CreateAccount(ctx, n)
	})
	if res.OK() && g.publisher != nil {
		if err := g.publisher.PublishAccountChanged(ctx, res.Data); err != nil {
			g.logger.WarnContext(ctx, "Failed to publish account change",
				log.FieldAccountID, res.Data.ID, log.FieldError, err)
		}
	}
	return res
}

// ListTransactionsForAccount walks every page of the account's history.
func (g *Gateway) ListTransactionsForAccount(ctx context.Context, accountID int64) Result[[]core.Transaction] {
	validate := func() error {
		if accountID <= 0 {
			return core.ErrInvalidAccount
		}
		return nil
	}
	return call(ctx, g, log.OpListTransactions, validate, func(ctx context.Context) ([]core.Transaction, error) {
		all := []core.Transaction{}
		page := core.Page{Limit: core.DefaultPageLimit}
		for {
			p, err := g.source.ListTransactions(ctx, accountID, page)
			if err != nil {
				return nil, err
			}
			all = append(all, p.Items...)
			if p.Last() {
				return all, nil
			}
			page = page.Next()
		}
	})
}

// CreateTransaction records a movement. A nil occurredAt means the gateway's now.
func (g *Gateway) CreateTransaction(ctx context.Context, accountID int64, txType core.TxType, amountCents int64, description string, occurredAt *time.Time) Result[core.Transaction] {
	if occurredAt == nil {
		now := g.now()
		occurredAt = &now
	}
	n := core.NewTransaction{
		AccountID:   accountID,
		Type:        txType,
		AmountCents: amountCents,
		Description: strings.TrimSpace(description),
		OccurredAt:  occurredAt,
	}
	res := call(ctx, g, log.OpCreateTransaction, n.Validate, func(ctx context.Context) (core.Transaction, error) {
		return g.source.CreateTransaction(ctx, n)
	})
	if res.OK() && g.publisher != nil {
		if err := g.publisher.PublishTransactionRecorded(ctx, res.Data); err != nil {
			g.logger.WarnContext(ctx, "Failed to publish transaction",
				log.NewFields().WithTransaction(res.Data.AccountID, string(res.Data.Type), res.Data.AmountCents).WithError(err).ToSlice()...)
		}
	}
	return res
}

// GetSummary totals transactions in [from, to]. A zero bound is left to the source.
func (g *Gateway) GetSummary(ctx context.Context, accountFilter *int64, from, to time.Time) Result[core.Summary] {
	validate := func() error {
		if !from.IsZero() && !to.IsZero() && from.After(to) {
			return fmt.Errorf("%w: range start is after its end", core.ErrValidation)
		}
		return nil
	}
	q := core.SummaryQuery{AccountID: accountFilter, From: from, To: to}
	return call(ctx, g, log.OpSummary, validate, func(ctx context.Context) (core.Summary, error) {
		return g.source.Summary(ctx, q)
	})
}

func (g *Gateway) Register(ctx context.Context, name, email, password string) Result[core.User] {
	r := core.Registration{Name: strings.TrimSpace(name), Email: strings.TrimSpace(email), Password: password}
	return call(ctx, g, log.OpRegister, r.Validate, func(ctx context.Context) (core.User, error) {
		return g.source.Register(ctx, r)
	})
}

// call runs one operation: pending notification, local validation, dispatch,
// classification, metrics, logging and the final notification.
func call[T any](ctx context.Context, g *Gateway, op string, validate func() error, fn func(context.Context) (T, error)) Result[T] {
	g.notify(op, StatusPending)
	timer := prometheus.NewTimer(callDuration.WithLabelValues(op))
	defer timer.ObserveDuration()

	var (
		data T
		err  error
	)
	if validate != nil {
		err = validate()
	}
	if err == nil {
		data, err = fn(ctx)
	}

	var res Result[T]
	if err != nil {
		res = failure[T](err)
		g.logger.WarnContext(ctx, "Gateway call failed",
			log.FieldOperation, op,
			log.FieldErrorType, string(res.Err),
			log.FieldError, err)
	} else {
		res = success(data)
		g.logger.DebugContext(ctx, "Gateway call succeeded", log.FieldOperation, op)
	}

	callsTotal.WithLabelValues(op, outcome(res.Err)).Inc()
	g.notify(op, res.Status)
	return res
}

func (g *Gateway) notify(op string, s Status) {
	if g.onStatus != nil {
		g.onStatus(op, s)
	}
}
