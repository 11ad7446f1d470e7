package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"wallet/internal/log"
	"wallet/internal/sheets"
	"wallet/internal/storage"
)

// ExportStore is the part of the repository the processor drains.
type ExportStore interface {
	PendingExport(ctx context.Context, limit int) ([]storage.ReconciliationRecord, error)
	MarkExported(ctx context.Context, ids []int64, at time.Time) error
}

// ExportProcessorConfig holds configuration for the export processor
type ExportProcessorConfig struct {
	// PollInterval is how often to look for unexported records (default: 1m)
	PollInterval time.Duration

	// BatchSize is the max number of records appended per call (default: 50)
	BatchSize int
}

func DefaultExportProcessorConfig() ExportProcessorConfig {
	return ExportProcessorConfig{
		PollInterval: time.Minute,
		BatchSize:    50,
	}
}

// ExportProcessor copies recorded reconciliations to the report sheet.
type ExportProcessor struct {
	store  ExportStore
	writer sheets.ReconciliationWriter
	config ExportProcessorConfig
	logger *log.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewExportProcessor(store ExportStore, writer sheets.ReconciliationWriter, config ExportProcessorConfig) *ExportProcessor {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultExportProcessorConfig().PollInterval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultExportProcessorConfig().BatchSize
	}
	return &ExportProcessor{
		store:  store,
		writer: writer,
		config: config,
		logger: log.Default(log.ComponentWorker),
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *ExportProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("export processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "Export processor started",
		"poll_interval", p.config.PollInterval,
		"batch_size", p.config.BatchSize)
	return nil
}

// Stop signals the loop and waits for it, or for ctx.
func (p *ExportProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		p.logger.InfoContext(ctx, "Export processor stopped gracefully")
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Export processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	return nil
}

func (p *ExportProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *ExportProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	p.drain(ctx)
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.drain(ctx)
		}
	}
}

// drain exports batches until nothing is pending or a batch fails.
func (p *ExportProcessor) drain(ctx context.Context) {
	for {
		n, err := p.ExportPending(ctx)
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to export reconciliations",
				log.FieldOperation, log.OpExport, log.FieldError, err)
			return
		}
		if n < p.config.BatchSize {
			return
		}
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}
	}
}

// ExportPending appends one batch of unexported records and marks them
// exported. It returns how many were exported.
func (p *ExportProcessor) ExportPending(ctx context.Context) (int, error) {
	recs, err := p.store.PendingExport(ctx, p.config.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("load pending export: %w", err)
	}
	if len(recs) == 0 {
		return 0, nil
	}

	ref, err := p.writer.AppendReconciliations(ctx, recs)
	if err != nil {
		return 0, fmt.Errorf("append to sheets: %w", err)
	}

	ids := make([]int64, len(recs))
	for i, r := range recs {
		ids[i] = r.ID
	}
	if err := p.store.MarkExported(ctx, ids, time.Now()); err != nil {
		// The rows are in the sheet already; they will be appended again next time.
		return 0, fmt.Errorf("mark exported: %w", err)
	}

	p.logger.InfoContext(ctx, "Exported reconciliations to sheets",
		log.FieldCount, len(recs),
		"sheets_ref", ref)
	return len(recs), nil
}
