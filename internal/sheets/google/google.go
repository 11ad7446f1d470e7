package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"wallet/internal/log"
	ports "wallet/internal/sheets"
	"wallet/internal/storage"
)

// valuesAPI is the slice of the Sheets values service the exporter needs.
type valuesAPI interface {
	Append(ctx context.Context, spreadsheetID, rng string, vr *gsheet.ValueRange) (*gsheet.AppendValuesResponse, error)
	Get(ctx context.Context, spreadsheetID, rng string) (*gsheet.ValueRange, error)
}

type serviceValues struct {
	svc *gsheet.Service
}

func (s serviceValues) Append(ctx context.Context, spreadsheetID, rng string, vr *gsheet.ValueRange) (*gsheet.AppendValuesResponse, error) {
	return s.svc.Spreadsheets.Values.Append(spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
}

func (s serviceValues) Get(ctx context.Context, spreadsheetID, rng string) (*gsheet.ValueRange, error) {
	return s.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
}

// Client exports reconciliation outcomes to a yearly sheet.
type Client struct {
	values        valuesAPI
	spreadsheetID string
	sheet         string
	logger        *log.Logger
}

var _ ports.ReconciliationWriter = (*Client)(nil)

// NewFromConfig creates an exporter for spreadsheetID. The sheet name is
// prefixed with the current year unless it already carries one.
func NewFromConfig(ctx context.Context, spreadsheetID, sheetName string) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Reconciliation"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		values:        serviceValues{svc: svc},
		spreadsheetID: spreadsheetID,
		sheet:         yearPrefixedName(sheetName, time.Now().Year()),
		logger:        log.Default(log.ComponentSheets),
	}, nil
}

// credentialsJSON reads Service Account credentials from
// GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE or
// GOOGLE_APPLICATION_CREDENTIALS, in that order.
func credentialsJSON() ([]byte, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	switch {
	case serviceAccountJSON != "":
		return []byte(serviceAccountJSON), nil
	case serviceAccountFile != "":
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials over a pooled HTTP transport.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	raw, err := credentialsJSON()
	if err != nil {
		return nil, err
	}

	creds, err := oauthgoogle.CredentialsFromJSON(ctx, raw, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account credentials: %w", err)
	}

	pooled := newHTTPClientWithPooling()
	httpClient := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, pooled), creds.TokenSource)
	httpClient.Timeout = pooled.Timeout

	service, err := gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	log.Default(log.ComponentSheets).InfoContext(ctx, "Google Sheets service created",
		"scope", gsheet.SpreadsheetsScope)
	return service, nil
}

// newHTTPClientWithPooling creates an HTTP client tuned for the Sheets API
// with connection pooling and keep-alive.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		DialContext: dialer.DialContext,

		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		ForceAttemptHTTP2: true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

// AppendReconciliations writes one row per record, adding the header first
// when the sheet is empty. It returns the updated range.
func (c *Client) AppendReconciliations(ctx context.Context, recs []storage.ReconciliationRecord) (string, error) {
	if c.values == nil {
		return "", errors.New("sheets service not initialized")
	}
	if len(recs) == 0 {
		return "", nil
	}

	rows := make([][]any, 0, len(recs)+1)
	empty, err := c.sheetEmpty(ctx)
	if err != nil {
		return "", err
	}
	if empty {
		rows = append(rows, headerRow())
	}
	for _, rec := range recs {
		rows = append(rows, reconciliationRow(rec))
	}

	rng := fmt.Sprintf("%s!A:G", c.sheet)
	resp, err := c.values.Append(ctx, c.spreadsheetID, rng, &gsheet.ValueRange{Values: rows})
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.sheet, err)
	}

	ref := rng
	if resp != nil && resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	c.logger.InfoContext(ctx, "Exported reconciliations",
		log.FieldCount, len(recs),
		"sheets_ref", ref)
	return ref, nil
}

func (c *Client) sheetEmpty(ctx context.Context) (bool, error) {
	rng := fmt.Sprintf("%s!A1:A1", c.sheet)
	resp, err := c.values.Get(ctx, c.spreadsheetID, rng)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp == nil || len(resp.Values) == 0, nil
}

func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
