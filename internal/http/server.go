// Package http serves the wallet JSON API over an in-process ledger. It is
// the mock backend the client talks to during development and in tests.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wallet/internal/core"
	"wallet/internal/gateway"
	"wallet/internal/log"
	"wallet/internal/middleware/ratelimit"
	"wallet/internal/middleware/security"
	"wallet/internal/middleware/trace"
)

// Ledger is the data the server exposes. Snapshot feeds the balance
// projection on account listings.
type Ledger interface {
	gateway.Source
	Snapshot(ctx context.Context) ([]core.Account, []core.Transaction)
}

type Server struct {
	http.Server
	ledger   Ledger
	logger   *log.Logger
	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// Options tunes the middleware chain. The zero value uses the defaults.
type Options struct {
	RateLimit      ratelimit.Config
	TrustedProxies []string
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, ledger Ledger, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Default(log.ComponentMockServer)
	}

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		ledger:   ledger,
		logger:   logger,
		limiter:  ratelimit.NewLimiter(opts.RateLimit),
		detector: security.NewDetector(),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}

	router := mux.NewRouter()
	router.Use(instrument)
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	router.HandleFunc("/accounts", s.handleListAccounts).Methods(http.MethodGet)
	router.HandleFunc("/accounts/{id:[0-9]+}/transactions", s.handleListTransactions).Methods(http.MethodGet)
	router.HandleFunc("/reports/summary", s.handleSummary).Methods(http.MethodGet)

	writes := router.Methods(http.MethodPost).Subrouter()
	writes.Use(s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusTooManyRequests, "rate limit exceeded")
	}))
	writes.HandleFunc("/accounts", s.handleCreateAccount)
	writes.HandleFunc("/transactions", s.handleCreateTransaction)
	writes.HandleFunc("/auth/register", s.handleRegister)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(logger, s.detector.ExtractClientIP)

	s.Handler = tracer.Middleware(headers.Middleware(s.detector.Middleware(router)))
	return s
}

// Shutdown stops the rate limiter and drains the HTTP server. Only the first
// call has any effect.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
