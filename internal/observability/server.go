// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package observability serves engine metrics, health probes and a status
// snapshot over HTTP.
package observability

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"

	"github.com/holomush/periscope/internal/cost"
	"github.com/holomush/periscope/internal/executor"
	"github.com/holomush/periscope/internal/method"
	"github.com/holomush/periscope/internal/script/lua"
)

// ShutdownTimeout bounds how long Serve waits for in-flight requests once
// its context ends.
const ShutdownTimeout = 5 * time.Second

// ReadinessChecker returns whether the engine is ready to run scripts.
type ReadinessChecker func() bool

// Collectors registers engine metrics with a registry.
type Collectors func(reg prometheus.Registerer)

// DefaultCollectors registers the metrics of every engine package: cost
// charges, world-goroutine tasks, method calls and script runs.
func DefaultCollectors(reg prometheus.Registerer) {
	cost.RegisterMetrics(reg)
	executor.RegisterMetrics(reg)
	method.RegisterMetrics(reg)
	lua.RegisterMetrics(reg)
}

// Status is the engine snapshot served at /status.
type Status struct {
	PendingTasks int               `json:"pending_tasks"`
	Scripts      []string          `json:"scripts"`
	Integrations map[string]string `json:"integrations"`
}

// StatusFunc captures a Status. It is called once per request.
type StatusFunc func() Status

// Option configures a Server.
type Option func(*Server)

// WithReadiness sets the readiness check. Without one the engine always
// reports ready.
func WithReadiness(ready ReadinessChecker) Option {
	return func(s *Server) { s.ready = ready }
}

// WithCollectors replaces DefaultCollectors.
func WithCollectors(c ...Collectors) Option {
	return func(s *Server) { s.collectors = c }
}

// WithStatus enables the /status endpoint.
func WithStatus(status StatusFunc) Option {
	return func(s *Server) { s.status = status }
}

// WithLogger sets the logger for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// Server exposes the engine over HTTP. Listen binds the address, Serve
// handles requests until its context ends.
type Server struct {
	addr       string
	ready      ReadinessChecker
	status     StatusFunc
	collectors []Collectors
	logger     *slog.Logger
	registry   *prometheus.Registry

	mu       sync.Mutex
	listener net.Listener
	served   bool
}

// NewServer creates a server for addr ("127.0.0.1:9100", ":9100", or
// port 0 for an ephemeral port). Every server owns its registry.
func NewServer(addr string, opts ...Option) *Server {
	s := &Server{
		addr:       addr,
		collectors: []Collectors{DefaultCollectors},
		logger:     slog.Default(),
		registry:   prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.registry.MustRegister(collectors.NewGoCollector())
	s.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	for _, register := range s.collectors {
		register(s.registry)
	}
	return s
}

// Registry returns the server's Prometheus registry.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Listen binds the server's address. A server listens at most once.
func (s *Server) Listen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return oops.In("observability").With("addr", s.Addr()).Errorf("already listening")
	}
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return oops.In("observability").With("addr", s.addr).Wrap(err)
	}
	s.listener = l
	return nil
}

// Addr returns the bound address, or "" before Listen.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Serve handles requests until ctx ends, then shuts down gracefully.
// Listen must have succeeded first.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	l := s.listener
	if l == nil || s.served {
		s.mu.Unlock()
		return oops.In("observability").Errorf("serve requires a fresh listener")
	}
	s.served = true
	s.mu.Unlock()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(l) }()
	s.logger.Info("observability server started", "addr", l.Addr().String())

	select {
	case err := <-errCh:
		return oops.In("observability").With("addr", l.Addr().String()).Wrap(err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return oops.In("observability").With("operation", "shutdown").Wrap(err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return oops.In("observability").Wrap(err)
	}
	s.logger.Info("observability server stopped")
	return nil
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("GET /healthz/liveness", s.handleLiveness)
	mux.HandleFunc("GET /healthz/readiness", s.handleReadiness)
	if s.status != nil {
		mux.HandleFunc("GET /status", s.handleStatus)
	}
	return mux
}

func (s *Server) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok\n")
}

func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if s.ready == nil || s.ready() {
		writeText(w, http.StatusOK, "ok\n")
		return
	}
	writeText(w, http.StatusServiceUnavailable, "not ready\n")
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := s.status()
	if st.Scripts == nil {
		st.Scripts = []string{}
	}
	if st.Integrations == nil {
		st.Integrations = map[string]string{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		s.logger.DebugContext(r.Context(), "failed to write status", "error", err)
	}
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	//nolint:errcheck // the client may have gone away
	w.Write([]byte(body))
}
