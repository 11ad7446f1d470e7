package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wallet/internal/core"
	"wallet/internal/log"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("setting not found")

// SQLiteRepository stores local client state: key/value settings and the
// reconciliation history written by the reconciler.
type SQLiteRepository struct {
	db     *sql.DB
	logger *log.Logger
}

// ReconciliationRecord is a persisted reconciliation outcome.
type ReconciliationRecord struct {
	ID int64
	core.Reconciliation
	CheckedAt  time.Time
	ExportedAt *time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger := log.Default(log.ComponentStorage)
	if _, err := migrateSchema(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:     db,
		logger: logger,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Get returns the value stored under key, or ErrNotFound.
func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

// Set upserts key.
func (r *SQLiteRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	r.logger.DebugContext(ctx, "Setting stored", "key", key)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete setting %q: %w", key, err)
	}
	return nil
}

// RecordReconciliation appends one outcome and returns its row id.
func (r *SQLiteRepository) RecordReconciliation(ctx context.Context, rec core.Reconciliation, checkedAt time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO reconciliations
			(account_id, currency, cached_cents, projected_cents, drift_cents, consistent, checked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.AccountID, rec.Currency, rec.Cached, rec.Projected, rec.Drift, boolToInt(rec.Consistent), checkedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert reconciliation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reconciliation id: %w", err)
	}

	r.logger.InfoContext(ctx, "Reconciliation recorded",
		"id", id,
		log.FieldAccountID, rec.AccountID,
		log.FieldDrift, rec.Drift,
		"consistent", rec.Consistent)
	return id, nil
}

// ListReconciliations returns the newest records first. accountID 0 means all accounts.
func (r *SQLiteRepository) ListReconciliations(ctx context.Context, accountID int64, limit int) ([]ReconciliationRecord, error) {
	if limit <= 0 {
		limit = core.DefaultPageLimit
	}
	query := `SELECT ` + reconciliationColumns + ` FROM reconciliations`
	args := []any{}
	if accountID != 0 {
		query += ` WHERE account_id = ?`
		args = append(args, accountID)
	}
	query += ` ORDER BY checked_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	return r.queryReconciliations(ctx, query, args...)
}

// PendingExport returns records not yet exported, oldest first.
func (r *SQLiteRepository) PendingExport(ctx context.Context, limit int) ([]ReconciliationRecord, error) {
	if limit <= 0 {
		limit = core.DefaultPageLimit
	}
	return r.queryReconciliations(ctx,
		`SELECT `+reconciliationColumns+` FROM reconciliations
		 WHERE exported_at IS NULL ORDER BY id ASC LIMIT ?`, limit)
}

// MarkExported stamps the given records as exported.
func (r *SQLiteRepository) MarkExported(ctx context.Context, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE reconciliations SET exported_at = ? WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("prepare mark exported: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.ExecContext(ctx, at.UTC(), id); err != nil {
			return fmt.Errorf("mark reconciliation %d exported: %w", id, err)
		}
	}
	return tx.Commit()
}

const reconciliationColumns = `id, account_id, currency, cached_cents, projected_cents, drift_cents, consistent, checked_at, exported_at`

func (r *SQLiteRepository) queryReconciliations(ctx context.Context, query string, args ...any) ([]ReconciliationRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reconciliations: %w", err)
	}
	defer rows.Close()

	var out []ReconciliationRecord
	for rows.Next() {
		var (
			rec        ReconciliationRecord
			consistent int64
			exportedAt sql.NullTime
		)
		if err := rows.Scan(&rec.ID, &rec.AccountID, &rec.Currency, &rec.Cached, &rec.Projected,
			&rec.Drift, &consistent, &rec.CheckedAt, &exportedAt); err != nil {
			return nil, fmt.Errorf("scan reconciliation: %w", err)
		}
		rec.Consistent = consistent == 1
		if exportedAt.Valid {
			t := exportedAt.Time
			rec.ExportedAt = &t
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reconciliations: %w", err)
	}
	return out, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
