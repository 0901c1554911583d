// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	handler "github.com/newthinker/aurum/internal/api/handler/api"
	"github.com/newthinker/aurum/internal/metrics"
)

// writeTimeoutMargin is added on top of the backtest handler's run timeout.
const writeTimeoutMargin = 30 * time.Second

// Server represents the HTTP server for aurum
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	handler    http.Handler
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	WriteTimeout time.Duration // Raised to outlast the backtest handler's run timeout
	MetricsPath  string
}

// Dependencies holds the components the routes are served by
type Dependencies struct {
	Backtests *handler.BacktestHandler
	Reports   *handler.ReportsHandler // Optional, set when the archive is enabled
	Metrics   *metrics.Registry       // Optional
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.Backtests == nil {
		return nil, fmt.Errorf("backtest handler is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	// A synchronous run must time out inside the handler, not at the socket
	writeTimeout := cfg.WriteTimeout
	if floor := deps.Backtests.Timeout() + writeTimeoutMargin; writeTimeout < floor {
		writeTimeout = floor
	}

	mux := http.NewServeMux()
	s := &Server{
		logger: logger,
		mux:    mux,
	}
	s.setupRoutes(cfg, deps)

	var h http.Handler = metrics.LoggingMiddleware(logger)(mux)
	if deps.Metrics != nil {
		h = metrics.HTTPMiddleware(deps.Metrics)(h)
	}
	s.handler = h

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	bt := deps.Backtests
	s.mux.HandleFunc("POST /api/backtest/run", bt.Run)
	s.mux.HandleFunc("POST /api/v1/backtests", bt.Create)
	s.mux.HandleFunc("GET /api/v1/backtests", bt.List)
	s.mux.HandleFunc("GET /api/v1/backtests/{id}", bt.GetStatus)

	if deps.Reports != nil {
		s.mux.HandleFunc("GET /api/v1/reports", deps.Reports.List)
		s.mux.HandleFunc("GET /api/v1/reports/{path...}", deps.Reports.Get)
	}

	if deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle("GET "+path, deps.Metrics.Handler())
	}
}

// Handler returns the routed handler with middleware applied
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
