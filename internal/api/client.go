// Package api is the HTTP client for the wallet JSON API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"wallet/internal/core"
	"wallet/internal/log"
)

const RequestIDHeader = "X-Request-ID"

// ErrNoResponse means the request was sent but no response came back.
var ErrNoResponse = errors.New("no response from server")

// ErrInvalidBaseURL means the configured base URL is not an absolute http(s) URL.
var ErrInvalidBaseURL = errors.New("invalid API base URL")

// ValidateBaseURL reports whether raw is an absolute http or https URL with a host.
func ValidateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidBaseURL, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w %q: scheme must be http or https", ErrInvalidBaseURL, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%w %q: missing host", ErrInvalidBaseURL, raw)
	}
	return nil
}

// StatusError is a non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Code)
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

// BaseURLFunc resolves the API base URL for each request.
type BaseURLFunc func(ctx context.Context) (string, error)

// StaticBaseURL always resolves to u.
func StaticBaseURL(u string) BaseURLFunc {
	return func(context.Context) (string, error) { return u, nil }
}

type Client struct {
	httpClient *http.Client
	baseURL    BaseURLFunc
	logger     *log.Logger
}

func NewClient(baseURL BaseURLFunc, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     log.Default(log.ComponentAPI),
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) ListAccounts(ctx context.Context) ([]core.Account, error) {
	var dtos []AccountDTO
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, nil, &dtos); err != nil {
		return nil, err
	}
	out := make([]core.Account, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, d.ToCore())
	}
	return out, nil
}

func (c *Client) CreateAccount(ctx context.Context, n core.NewAccount) (core.Account, error) {
	body := AccountRequest{Name: n.Name, Currency: n.Currency, AmountCents: n.InitialAmount}
	var dto AccountDTO
	if err := c.do(ctx, http.MethodPost, "/accounts", nil, body, &dto); err != nil {
		return core.Account{}, err
	}
	return dto.ToCore(), nil
}

func (c *Client) ListTransactions(ctx context.Context, accountID int64, page core.Page) (core.TransactionPage, error) {
	page = page.Normalize()
	q := url.Values{}
	q.Set("limit", strconv.Itoa(page.Limit))
	q.Set("offset", strconv.Itoa(page.Offset))

	var dto TransactionPageDTO
	path := "/accounts/" + strconv.FormatInt(accountID, 10) + "/transactions"
	if err := c.do(ctx, http.MethodGet, path, q, nil, &dto); err != nil {
		return core.TransactionPage{}, err
	}
	return dto.ToCore()
}

func (c *Client) CreateTransaction(ctx context.Context, n core.NewTransaction) (core.Transaction, error) {
	body := TransactionRequest{
		AccountID:   n.AccountID,
		Type:        string(n.Type),
		AmountCents: n.AmountCents,
		Description: n.Description,
	}
	if n.OccurredAt != nil {
		body.OccurredAt = n.OccurredAt.Format(time.RFC3339)
	}
	var dto TransactionDTO
	if err := c.do(ctx, http.MethodPost, "/transactions", nil, body, &dto); err != nil {
		return core.Transaction{}, err
	}
	return dto.ToCore()
}

func (c *Client) Summary(ctx context.Context, sq core.SummaryQuery) (core.Summary, error) {
	q := url.Values{}
	if sq.AccountID != nil {
		q.Set("account_id", strconv.FormatInt(*sq.AccountID, 10))
	}
	if !sq.From.IsZero() {
		q.Set("from", sq.From.Format(time.RFC3339))
	}
	if !sq.To.IsZero() {
		q.Set("to", sq.To.Format(time.RFC3339))
	}
	var dto SummaryDTO
	if err := c.do(ctx, http.MethodGet, "/reports/summary", q, nil, &dto); err != nil {
		return core.Summary{}, err
	}
	return dto.ToCore()
}

func (c *Client) Register(ctx context.Context, r core.Registration) (core.User, error) {
	body := RegisterRequest{Name: r.Name, Email: r.Email, Password: r.Password}
	var dto UserDTO
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, body, &dto); err != nil {
		return core.User{}, err
	}
	return dto.ToCore(), nil
}

// do sends one request and decodes a 2xx body into out. Failures after the
// request went out wrap ErrNoResponse and non-2xx responses are returned as
// *StatusError. Nothing that fails before dispatch wraps ErrNoResponse.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	base, err := c.baseURL(ctx)
	if err != nil {
		return fmt.Errorf("resolve base URL: %w", err)
	}
	if err := ValidateBaseURL(base); err != nil {
		return err
	}
	target := base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Request failed",
			log.FieldMethod, method, log.FieldPath, path, log.FieldRequestID, requestID, log.FieldError, err)
		return fmt.Errorf("%w: %v", ErrNoResponse, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Request completed",
		requestFields(method, path, requestID, resp.StatusCode, time.Since(start))...)

	if resp.StatusCode >= 400 {
		return decodeStatusError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func requestFields(method, path, requestID string, status int, elapsed time.Duration) []any {
	return log.NewFields().
		WithHTTPRequest(method, path, "", "").
		WithRequestID(requestID).
		WithHTTPResponse(status, elapsed).
		ToSlice()
}

func decodeStatusError(resp *http.Response) error {
	se := &StatusError{Code: resp.StatusCode}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return se
	}
	var eb ErrorBody
	if json.Unmarshal(raw, &eb) == nil {
		se.Message = eb.Message
		if se.Message == "" {
			se.Message = eb.Error
		}
	}
	return se
}
