package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"polaris-hq/polaris/pkg/config"
	"polaris-hq/polaris/pkg/lifecycle"
	"polaris-hq/polaris/pkg/policy/engine"
	"polaris-hq/polaris/pkg/simulate"
	"polaris-hq/polaris/pkg/telemetry/metrics"
)

// Server is the Polaris HTTP API server.
type Server struct {
	config       *config.Config
	engine       *engine.Engine
	manager      *lifecycle.Manager
	simulator    *simulate.Simulator
	recorder     *lifecycle.Recorder
	metrics      *metrics.Collector
	logger       *slog.Logger
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// Dependencies carries the wired components the server serves.
type Dependencies struct {
	// Engine is the live decision engine.
	Engine *engine.Engine

	// Manager is the bundle lifecycle manager.
	Manager *lifecycle.Manager

	// Simulator is the what-if simulator.
	Simulator *simulate.Simulator

	// Recorder collects per-bundle decision statistics for gate checks.
	// Optional; the decide endpoint skips recording when nil.
	Recorder *lifecycle.Recorder

	// Metrics is the Prometheus collector. Optional.
	Metrics *metrics.Collector
}

// New creates the API server. A nil logger falls back to slog.Default.
func New(cfg *config.Config, deps Dependencies, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Engine == nil || deps.Manager == nil || deps.Simulator == nil {
		return nil, fmt.Errorf("engine, manager, and simulator are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:    cfg,
		engine:    deps.Engine,
		manager:   deps.Manager,
		simulator: deps.Simulator,
		recorder:  deps.Recorder,
		metrics:   deps.Metrics,
		logger:    logger.With("component", "server"),
	}, nil
}

// Start starts the HTTP server and blocks until the context is cancelled,
// a shutdown signal arrives, or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.config.Server.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting API server", "address", s.config.Server.ListenAddress)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server, waiting up to the configured
// shutdown timeout for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown",
			"timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("API server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
