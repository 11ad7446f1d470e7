//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"wallet/internal/core"
	"wallet/internal/storage"
)

// Integration tests require real Google Sheets credentials
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_ExportReconciliation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	if os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON") == "" &&
		os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE") == "" &&
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := NewFromConfig(ctx, spreadsheetID, "Integration Reconciliation")
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	rec := storage.ReconciliationRecord{
		ID:        1,
		CheckedAt: time.Now(),
		Reconciliation: core.Reconciliation{
			AccountID: 1, Currency: "USD", Cached: 90000, Projected: 90000, Consistent: true,
		},
	}
	ref, err := client.AppendReconciliations(ctx, []storage.ReconciliationRecord{rec})
	if err != nil {
		t.Fatalf("AppendReconciliations failed: %v", err)
	}
	t.Logf("Appended reconciliation at %s", ref)
}
