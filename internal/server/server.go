// Package server exposes the orchestration and anomaly engines over a JSON
// HTTP API.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/expensed-ai/expensed/internal/anomaly"
	"github.com/expensed-ai/expensed/internal/metrics"
	"github.com/expensed-ai/expensed/internal/policy"
	"github.com/expensed-ai/expensed/internal/provider"
	"github.com/expensed-ai/expensed/internal/router"
	"github.com/expensed-ai/expensed/internal/service"
)

// Dependencies are the engines and stores the API serves.
type Dependencies struct {
	Orchestrator *router.Orchestrator
	Anomalies    *anomaly.Engine
	Policy       *policy.Engine
	Registry     *provider.Registry
	Expenses     service.ExpenseStore
	Flags        service.FlagStore
	Metrics      *metrics.Store
}

// Config configures the HTTP server.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

// Server is the HTTP API.
type Server struct {
	router          *chi.Mux
	server          *http.Server
	logger          *slog.Logger
	deps            Dependencies
	shutdownTimeout time.Duration
}

// New builds the API router and server.
func New(logger *slog.Logger, cfg Config) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	s := &Server{
		logger:          logger,
		deps:            cfg.Dependencies,
		shutdownTimeout: shutdownTimeout,
	}

	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/process", s.handleProcess)

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", s.handleListExpenses)
			r.Post("/", s.handleUpsertExpense)
			r.Get("/{id}", s.handleGetExpense)
			r.Delete("/{id}", s.handleDeleteExpense)
		})

		r.Route("/anomalies", func(r chi.Router) {
			r.Post("/detect", s.handleDetect)
			r.Get("/flags", s.handleListFlags)
			r.Get("/flags/{id}", s.handleGetFlag)
			r.Post("/explain", s.handleExplain)
		})

		r.Route("/metrics", func(r chi.Router) {
			r.Get("/", s.handleAggregateMetrics)
			r.Get("/history", s.handleMetricsHistory)
		})

		r.Route("/policy", func(r chi.Router) {
			r.Get("/", s.handleGetPolicy)
			r.Post("/", s.handleSetPolicy)
			r.Post("/evaluate", s.handleEvaluatePolicy)
		})

		r.Get("/providers", s.handleProviders)
	})

	s.router = r
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the underlying router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until an error or an interrupt, then shuts down gracefully.
func (s *Server) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("starting server", "addr", s.server.Addr)
		serverErrors <- s.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		s.logger.Info("shutdown initiated")

		ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Error("graceful shutdown failed", "error", err)
			return s.server.Close()
		}
	}
	return nil
}
