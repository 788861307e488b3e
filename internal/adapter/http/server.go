package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// readyProbeTimeout bounds one CheckReadiness call from /readyz.
	readyProbeTimeout = 2 * time.Second

	readTimeout  = 10 * time.Second
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
)

// ReadinessChecker answers whether the tracker should be considered ready.
// The listener implements it by watching for the first received packet.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server is the tracker's operational HTTP surface: liveness, readiness, and
// Prometheus metrics. Track files stay on disk; nothing here serves them.
type Server struct {
	httpServer *http.Server
	ready      ReadinessChecker
	logger     *slog.Logger
}

// NewServer wires the /healthz, /readyz, and /metrics routes onto a server
// listening at addr.
func NewServer(addr string, ready ReadinessChecker, logger *slog.Logger) *Server {
	s := &Server{ready: ready, logger: logger}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// statusResponse is the body of every health and readiness reply.
type statusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.reply(w, http.StatusOK, statusResponse{Status: "healthy"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyProbeTimeout)
	defer cancel()

	if err := s.ready.CheckReadiness(ctx); err != nil {
		s.reply(w, http.StatusServiceUnavailable, statusResponse{Status: "not ready", Error: err.Error()})
		return
	}
	s.reply(w, http.StatusOK, statusResponse{Status: "ready"})
}

// reply writes one JSON status body with the given HTTP code.
func (s *Server) reply(w http.ResponseWriter, code int, body statusResponse) {
	b, err := json.Marshal(body)
	if err != nil {
		s.logger.Error("encode status response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(b) //nolint:errcheck // nothing to do for a failed status reply
}

// Start listens and serves until Shutdown. The returned error is
// http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("operational endpoints listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting connections and drains in-flight requests until
// ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP dispatches one request through the server's mux. Tests use it to
// drive the routes without a network listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}
