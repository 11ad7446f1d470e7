package backend

import (
	"context"
	"time"

	"wallet/internal/api"
	"wallet/internal/gateway"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the data source, an optional event publisher and
// an optional cleanup function.
type BackendResult struct {
	Source    gateway.Source
	Publisher gateway.Publisher
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Remote specific. BaseURL wins over APIBaseURL when set.
	APIBaseURL string
	BaseURL    api.BaseURLFunc
	APITimeout time.Duration

	// Memory specific
	BaseCurrency string

	// Optional event publishing
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	RemoteBackend BackendType = "remote"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case RemoteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
