package memory

import (
	"context"
	"fmt"
	"sync"

	ports "wallet/internal/sheets"
	"wallet/internal/storage"
)

// Report keeps exported reconciliations in memory. It stands in for the
// spreadsheet when no GOOGLE_SPREADSHEET_ID is configured.
type Report struct {
	mu   sync.Mutex
	rows []storage.ReconciliationRecord
}

var _ ports.ReconciliationWriter = (*Report)(nil)

func New() *Report {
	return &Report{}
}

// AppendReconciliations stores the records and returns a synthetic row range.
func (r *Report) AppendReconciliations(_ context.Context, recs []storage.ReconciliationRecord) (string, error) {
	if len(recs) == 0 {
		return "", nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	first := len(r.rows) + 1
	r.rows = append(r.rows, recs...)
	return fmt.Sprintf("mem:%d-%d", first, len(r.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (r *Report) Rows() []storage.ReconciliationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]storage.ReconciliationRecord(nil), r.rows...)
}
