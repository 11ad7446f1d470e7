package log

import (
	"sort"
	"time"
)

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientIP    = "client_ip"
	FieldMethod      = "method"
	FieldPath        = "path"
	FieldQuery       = "query"
	FieldStatusCode  = "status_code"
	FieldDuration    = "duration_ms"
	FieldUserAgent   = "user_agent"
	FieldSuccess     = "success"
	FieldError       = "error"
	FieldErrorType   = "error_type"
	FieldOperation   = "operation"
	FieldStatus      = "status"
	FieldAccountID   = "account_id"
	FieldTxType      = "tx_type"
	FieldAmountCents = "amount_cents"
	FieldCurrency    = "currency"
	FieldCount       = "count"
	FieldDrift       = "drift_cents"
	FieldFrom        = "from"
	FieldTo          = "to"
)

const (
	ComponentApp        = "app"
	ComponentHTTP       = "http"
	ComponentGateway    = "gateway"
	ComponentAPI        = "api"
	ComponentStorage    = "storage"
	ComponentSession    = "session"
	ComponentAMQP       = "amqp"
	ComponentWorker     = "worker"
	ComponentSheets     = "sheets"
	ComponentBackend    = "backend"
	ComponentMockServer = "mock_server"
)

const (
	OpListAccounts      = "list_accounts"
	OpCreateAccount     = "create_account"
	OpListTransactions  = "list_transactions"
	OpCreateTransaction = "create_transaction"
	OpSummary           = "summary"
	OpRegister          = "register"
	OpReconcile         = "reconcile"
	OpExport            = "export"
	OpStartup           = "startup"
	OpShutdown          = "shutdown"
)

const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNetwork       = "network_error"
	ErrorTypeServer        = "server_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeConflict      = "conflict_error"
	ErrorTypeUnknown       = "unknown_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	if requestID != "" {
		f[FieldRequestID] = requestID
	}
	return f
}

func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithErrorType(kind string) LogFields {
	f[FieldErrorType] = kind
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithTransaction adds the fields that identify a transaction without its description.
func (f LogFields) WithTransaction(accountID int64, txType string, amountCents int64) LogFields {
	f[FieldAccountID] = accountID
	f[FieldTxType] = txType
	f[FieldAmountCents] = amountCents
	return f
}

func (f LogFields) WithRange(from, to time.Time) LogFields {
	if !from.IsZero() {
		f[FieldFrom] = from.Format(time.RFC3339)
	}
	if !to.IsZero() {
		f[FieldTo] = to.Format(time.RFC3339)
	}
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	if query != "" {
		f[FieldQuery] = query
	}
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, duration time.Duration) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = duration.Milliseconds()
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts the fields to slog key/value pairs in key order.
func (f LogFields) ToSlice() []any {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(f)*2)
	for _, k := range keys {
		out = append(out, k, f[k])
	}
	return out
}
