package backend

import (
	"context"
	"fmt"
	"time"

	"wallet/internal/amqp"
	"wallet/internal/api"
	"wallet/internal/log"
	"wallet/internal/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	now    func() time.Time
}

func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Default(log.ComponentBackend)
	}
	return &DefaultFactory{logger: logger, now: time.Now}
}

// CreateBackend builds the configured source. A broker that cannot be
// reached is logged and skipped; the source still works without events.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var result *BackendResult
	switch config.Type {
	case RemoteBackend:
		result = f.createRemoteBackend(ctx, config)
	case MemoryBackend:
		result = f.createMemoryBackend(ctx, config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
			result.Publisher = client
			result.Cleanup = client.Close
		}
	}
	return result, nil
}

func (f *DefaultFactory) createRemoteBackend(ctx context.Context, config Config) *BackendResult {
	baseURL := config.BaseURL
	if baseURL == nil {
		baseURL = api.StaticBaseURL(config.APIBaseURL)
	}
	f.logger.InfoContext(ctx, "Initialized remote backend", "timeout", config.APITimeout.String())
	return &BackendResult{Source: api.NewClient(baseURL, config.APITimeout)}
}

func (f *DefaultFactory) createMemoryBackend(ctx context.Context, config Config) *BackendResult {
	currency := config.BaseCurrency
	if currency == "" {
		currency = "USD"
	}
	store := memory.NewSeeded(currency, f.now())
	f.logger.InfoContext(ctx, "Initialized memory backend", log.FieldCurrency, currency)
	return &BackendResult{Source: store}
}
