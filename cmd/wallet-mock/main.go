// Command wallet-mock serves the wallet JSON API over the seeded in-memory
// ledger.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"time"

	"wallet/internal/cli"
	wallethttp "wallet/internal/http"
	"wallet/internal/log"
	"wallet/internal/memory"
)

func main() {
	empty := flag.Bool("empty", false, "start without the demo accounts")
	flag.Parse()

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentMockServer, os.Getenv("LOG_LEVEL"), nil)
	cfg := cli.LoadAndValidateConfig(logger)

	ledger := memory.NewSeeded(cfg.BaseCurrency, time.Now())
	if *empty {
		ledger = memory.New(cfg.BaseCurrency)
	}

	addr := ":" + cfg.Port
	srv := wallethttp.NewServer(addr, ledger, logger, wallethttp.Options{})

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed", log.FieldError, err)
		}
	})

	go func() {
		logger.Info("Mock API listening", "addr", addr, log.FieldCurrency, cfg.BaseCurrency)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", log.FieldError, err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
