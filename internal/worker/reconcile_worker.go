package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"wallet/internal/amqp"
	"wallet/internal/core"
	"wallet/internal/gateway"
	"wallet/internal/log"
)

// Recorder persists reconciliation outcomes.
type Recorder interface {
	RecordReconciliation(ctx context.Context, rec core.Reconciliation, checkedAt time.Time) (int64, error)
}

// SweepStats summarizes one pass over every account.
type SweepStats struct {
	Checked int
	Drifted int
	Failed  int
}

// ReconcileWorker compares cached account balances with their transaction
// history and records every outcome.
type ReconcileWorker struct {
	gw          *gateway.Gateway
	recorder    Recorder
	concurrency int
	now         func() time.Time
	logger      *log.Logger
}

func NewReconcileWorker(gw *gateway.Gateway, recorder Recorder, concurrency int) *ReconcileWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &ReconcileWorker{
		gw:          gw,
		recorder:    recorder,
		concurrency: concurrency,
		now:         time.Now,
		logger:      log.Default(log.ComponentWorker),
	}
}

func (w *ReconcileWorker) WithClock(now func() time.Time) *ReconcileWorker {
	w.now = now
	return w
}

// HandleAccountEvent reconciles the account named by an AMQP event.
func (w *ReconcileWorker) HandleAccountEvent(ctx context.Context, msg *amqp.AccountEvent) error {
	w.logger.InfoContext(ctx, "Processing account event",
		"type", msg.Type,
		log.FieldAccountID, msg.AccountID,
		"transaction_id", msg.TransactionID)

	_, err := w.ReconcileAccount(ctx, msg.AccountID)
	return err
}

// ReconcileAccount loads one account and its full history, reconciles and
// records the outcome.
func (w *ReconcileWorker) ReconcileAccount(ctx context.Context, accountID int64) (core.Reconciliation, error) {
	accounts := w.gw.ListAccounts(ctx)
	if !accounts.OK() {
		return core.Reconciliation{}, resultError(log.OpListAccounts, accounts.Err, accounts.Message)
	}
	for _, a := range accounts.Data {
		if a.ID == accountID {
			return w.reconcile(ctx, a)
		}
	}
	return core.Reconciliation{}, fmt.Errorf("reconcile %d: %w", accountID, core.ErrAccountNotFound)
}

// Sweep reconciles every account, at most concurrency at a time. A failing
// account is counted without stopping the others; the returned error joins
// every per-account failure.
func (w *ReconcileWorker) Sweep(ctx context.Context) (SweepStats, error) {
	accounts := w.gw.ListAccounts(ctx)
	if !accounts.OK() {
		return SweepStats{}, resultError(log.OpListAccounts, accounts.Err, accounts.Message)
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		stats SweepStats
		errs  []error
	)
	slots := make(chan struct{}, w.concurrency)
	for _, a := range accounts.Data {
		slots <- struct{}{}
		wg.Add(1)
		go func() {
			defer func() {
				<-slots
				wg.Done()
			}()
			rec, err := w.reconcile(ctx, a)
			mu.Lock()
			defer mu.Unlock()
			stats.Checked++
			switch {
			case err != nil:
				stats.Failed++
				errs = append(errs, fmt.Errorf("account %d: %w", a.ID, err))
			case !rec.Consistent:
				stats.Drifted++
			}
		}()
	}
	wg.Wait()

	w.logger.InfoContext(ctx, "Reconciliation sweep completed",
		"checked", stats.Checked,
		"drifted", stats.Drifted,
		"failed", stats.Failed)
	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, errors.Join(errs...)
}

// Run sweeps immediately and then every interval until ctx is done.
func (w *ReconcileWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := w.Sweep(ctx); err != nil && ctx.Err() == nil {
			w.logger.ErrorContext(ctx, "Reconciliation sweep failed", log.FieldError, err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *ReconcileWorker) reconcile(ctx context.Context, a core.Account) (core.Reconciliation, error) {
	txs := w.gw.ListTransactionsForAccount(ctx, a.ID)
	if !txs.OK() {
		err := resultError(log.OpListTransactions, txs.Err, txs.Message)
		w.logger.ErrorContext(ctx, "Failed to load account history",
			log.FieldAccountID, a.ID, log.FieldError, err)
		return core.Reconciliation{}, err
	}

	rec := core.Reconcile(a, txs.Data)
	if _, err := w.recorder.RecordReconciliation(ctx, rec, w.now()); err != nil {
		w.logger.ErrorContext(ctx, "Failed to record reconciliation",
			log.FieldAccountID, a.ID, log.FieldError, err)
		return rec, fmt.Errorf("record reconciliation: %w", err)
	}

	if !rec.Consistent {
		w.logger.WarnContext(ctx, "Cached balance drifts from history",
			log.FieldAccountID, a.ID,
			log.FieldCurrency, a.Currency,
			log.FieldDrift, rec.Drift,
			"cached_cents", rec.Cached,
			"projected_cents", rec.Projected)
	}
	return rec, nil
}

func resultError(op string, kind gateway.ErrorKind, msg string) error {
	return fmt.Errorf("%s failed: %s (%s)", op, msg, kind)
}
