// Command wallet-reconciler checks cached account balances against their
// transaction history. It reacts to account events over AMQP, sweeps every
// account periodically, records each outcome in SQLite and exports the
// history to Google Sheets when a spreadsheet is configured.
package main

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"wallet/internal/amqp"
	"wallet/internal/backend"
	"wallet/internal/cli"
	"wallet/internal/gateway"
	"wallet/internal/log"
	"wallet/internal/services"
	"wallet/internal/sheets"
	gsheet "wallet/internal/sheets/google"
	memsheet "wallet/internal/sheets/memory"
	"wallet/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker, os.Getenv("LOG_LEVEL"), nil)
	logger.Info("Starting wallet-reconciler")

	cfg := cli.LoadAndValidateConfig(logger)

	sqliteRepo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer sqliteRepo.Close()

	// The reconciler only reads from the source; events come in through its
	// own consumer below.
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	bcfg.AMQPURL = ""
	result, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend)).CreateBackend(context.Background(), bcfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err)
		os.Exit(1)
	}

	gw := gateway.New(result.Source, gateway.WithLogger(logger.WithComponent(log.ComponentGateway)))
	reconciler := worker.NewReconcileWorker(gw, sqliteRepo, cfg.ReconcileConcurrency)

	var writer sheets.ReconciliationWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromConfig(context.Background(), cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
			os.Exit(1)
		}
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
		writer = client
	} else {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided, exporting in memory")
		writer = memsheet.New()
	}
	exporter := services.NewExportProcessor(sqliteRepo, writer, services.DefaultExportProcessorConfig())

	var amqpClient *amqp.Client
	if cfg.AMQPEnabled() {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, relying on periodic sweeps", log.FieldError, err)
			amqpClient = nil
		}
	}

	var wg sync.WaitGroup
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := exporter.Stop(shutdownCtx); err != nil {
			logger.Warn("Export processor stop failed", log.FieldError, err)
		}
		wg.Wait()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("AMQP close failed", log.FieldError, err)
			}
		}
		if result.Cleanup != nil {
			_ = result.Cleanup()
		}
	})

	if err := exporter.Start(ctx); err != nil {
		logger.Error("Failed to start export processor", log.FieldError, err)
		os.Exit(1)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := reconciler.Run(ctx, cfg.ReconcileInterval); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Reconciler stopped", log.FieldError, err)
		}
	}()

	if amqpClient != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := amqpClient.ConsumeAccountEvents(ctx, cfg.ReconcileConcurrency, reconciler.HandleAccountEvent)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Message consumption failed", log.FieldError, err)
			}
		}()
	}

	logger.Info("wallet-reconciler running",
		"interval", cfg.ReconcileInterval.String(),
		"concurrency", cfg.ReconcileConcurrency,
		"amqp", amqpClient != nil)
	cli.WaitForShutdown(ctx, done)
}
