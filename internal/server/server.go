// Package server exposes the AI engine, the evaluator and the tie resolver
// over a websocket.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/lox/headsup/internal/randutil"
	"github.com/lox/headsup/internal/strategy"
)

// Config configures the decision service
type Config struct {
	Addr string
	// Seed derives every connection's engine; zero picks one from the clock
	Seed   int64
	Engine strategy.Config
	// RequestsPerSecond limits each connection; zero means unlimited
	RequestsPerSecond float64
	// Burst is the number of requests allowed at once; zero means one second's worth
	Burst  int
	Clock  quartz.Clock
	Logger *log.Logger
}

// Server accepts websocket clients, each with its own engine
type Server struct {
	cfg         Config
	seed        int64
	upgrader    websocket.Upgrader
	clock       quartz.Clock
	logger      *log.Logger
	metrics     *Metrics
	mu          sync.RWMutex
	connections map[*Connection]bool
	accepted    int
}

// New creates a server; call ListenAndServe or mount Handler
func New(cfg Config) *Server {
	clock := cfg.Clock
	if clock == nil {
		clock = quartz.NewReal()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		cfg:  cfg,
		seed: randutil.Seed(cfg.Seed),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(*http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clock:       clock,
		logger:      logger.WithPrefix("server"),
		metrics:     newMetrics(),
		connections: make(map[*Connection]bool),
	}
}

// Handler routes /ws, /healthz and /metrics
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", s.metrics.Handler())
	return mux
}

// Metrics returns the service's collectors
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// newLimiter returns the per-connection request limiter
func (s *Server) newLimiter() *rate.Limiter {
	if s.cfg.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := s.cfg.Burst
	if burst <= 0 {
		burst = max(1, int(s.cfg.RequestsPerSecond))
	}
	return rate.NewLimiter(rate.Limit(s.cfg.RequestsPerSecond), burst)
}

// ListenAndServe serves until ctx is cancelled, then closes every client
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting decision service", "addr", s.cfg.Addr, "seed", s.seed)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close disconnects every client
func (s *Server) Close() {
	s.mu.Lock()
	conns := make([]*Connection, 0, len(s.connections))
	for conn := range s.connections {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.Close()
	}
}

// Connections returns the number of connected clients
func (s *Server) Connections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	s.mu.Lock()
	n := s.accepted
	s.accepted++
	s.mu.Unlock()

	engineCfg := s.cfg.Engine
	if engineCfg.Logger == nil {
		engineCfg.Logger = s.logger
	}
	engine := strategy.NewEngine(randutil.New(randutil.Derive(s.seed, n)), engineCfg)
	client := newConnection(uuid.NewString(), ws, engine, s.newLimiter(), s.metrics, s.clock, s.logger)

	s.mu.Lock()
	s.connections[client] = true
	total := len(s.connections)
	s.mu.Unlock()
	s.metrics.connections.Inc()
	s.logger.Info("Client connected", "conn", client.id, "total", total)

	client.Start()
	go func() {
		<-client.Done()
		s.mu.Lock()
		delete(s.connections, client)
		total := len(s.connections)
		s.mu.Unlock()
		s.metrics.connections.Dec()
		s.logger.Info("Client disconnected", "conn", client.id, "total", total)
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}
