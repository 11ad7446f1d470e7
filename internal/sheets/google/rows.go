package google

import (
	"wallet/internal/core"
	"wallet/internal/storage"
)

const checkedAtLayout = "2006-01-02 15:04:05"

func headerRow() []any {
	return []any{"Checked at", "Account", "Currency", "Cached", "Projected", "Drift", "Consistent"}
}

// reconciliationRow renders amounts in major units so USER_ENTERED parses
// them as numbers.
func reconciliationRow(rec storage.ReconciliationRecord) []any {
	consistent := "no"
	if rec.Consistent {
		consistent = "yes"
	}
	return []any{
		rec.CheckedAt.UTC().Format(checkedAtLayout),
		rec.AccountID,
		rec.Currency,
		core.MajorUnits(rec.Cached).StringFixed(2),
		core.MajorUnits(rec.Projected).StringFixed(2),
		core.MajorUnits(rec.Drift).StringFixed(2),
		consistent,
	}
}
