package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/finpulse/monitor/pkg/logger"
	"github.com/finpulse/monitor/pkg/models"
)

// AnalysisProvider exposes the latest in-memory analysis document.
type AnalysisProvider interface {
	Latest() models.AnalysisDocument
}

// HealthChecker is a named dependency probe.
type HealthChecker interface {
	Health() error
}

// Server provides the HTTP query surface: liveness/readiness probes, the
// latest analysis document, and the live alert websocket.
type Server struct {
	server   *http.Server
	provider AnalysisProvider
	checks   map[string]HealthChecker
	hub      *Hub
	ready    bool
	readyMu  sync.RWMutex
	start    time.Time
}

// HealthStatus represents system health
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ReadinessStatus represents system readiness
type ReadinessStatus struct {
	Ready     bool              `json:"ready"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// NewServer creates new HTTP server
func NewServer(port string, provider AnalysisProvider, hub *Hub, checks map[string]HealthChecker) *Server {
	mux := http.NewServeMux()

	s := &Server{
		server: &http.Server{
			Addr:         ":" + port,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		provider: provider,
		checks:   checks,
		hub:      hub,
		ready:    false,
		start:    time.Now(),
	}

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReadiness)
	mux.HandleFunc("/api/analysis", s.handleAnalysis)
	mux.HandleFunc("/api/analysis/", s.handleSymbolAnalysis)
	if hub != nil {
		mux.Handle("/ws", hub)
	}

	return s
}

// Start starts the server. Blocks until shutdown.
func (s *Server) Start() error {
	logger.Info("http server starting",
		zap.String("addr", s.server.Addr),
	)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Stop gracefully stops the server
func (s *Server) Stop(ctx context.Context) error {
	logger.Info("stopping http server...")
	if s.hub != nil {
		s.hub.Close()
	}
	return s.server.Shutdown(ctx)
}

// SetReady marks the service as ready
func (s *Server) SetReady(ready bool) {
	s.readyMu.Lock()
	defer s.readyMu.Unlock()
	s.ready = ready
}

// handleHealth handles liveness probe - returns 200 if the process is alive
// even when dependencies are down.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(s.start).Round(time.Second).String(),
	}

	if r.URL.Query().Get("verbose") == "true" {
		status.Checks = s.runChecks()
	}

	writeJSON(w, http.StatusOK, status)
}

// handleReadiness returns 200 only when startup completed and all
// dependencies respond.
func (s *Server) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	s.readyMu.RLock()
	ready := s.ready
	s.readyMu.RUnlock()

	checks := s.runChecks()
	for _, v := range checks {
		if v != "healthy" {
			ready = false
		}
	}

	status := ReadinessStatus{
		Ready:     ready,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	}

	code := http.StatusOK
	if !ready {
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, status)
}

// handleAnalysis returns the full latest analysis document.
func (s *Server) handleAnalysis(w http.ResponseWriter, _ *http.Request) {
	doc := s.provider.Latest()
	if doc.Symbols == nil {
		doc.Symbols = map[string]models.SymbolSnapshot{}
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleSymbolAnalysis returns the snapshot for one symbol or 404.
func (s *Server) handleSymbolAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimPrefix(r.URL.Path, "/api/analysis/")
	if symbol == "" {
		http.NotFound(w, r)
		return
	}

	doc := s.provider.Latest()
	snap, ok := doc.Symbols[symbol]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "symbol not tracked or not yet analyzed",
		})
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) runChecks() map[string]string {
	checks := make(map[string]string, len(s.checks))
	for name, c := range s.checks {
		if err := c.Health(); err != nil {
			checks[name] = "unhealthy: " + err.Error()
		} else {
			checks[name] = "healthy"
		}
	}
	return checks
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
