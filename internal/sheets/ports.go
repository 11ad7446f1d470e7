package sheets

import (
	"context"

	"wallet/internal/storage"
)

// Ports for outbound adapters.
type (
	// ReconciliationWriter appends reconciliation outcomes to a report.
	ReconciliationWriter interface {
		AppendReconciliations(ctx context.Context, recs []storage.ReconciliationRecord) (rowRef string, err error)
	}
)
