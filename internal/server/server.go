// Package server exposes a node over HTTP. Handlers are thin: each one calls
// a single node operation and encodes the result as JSON.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/papapumpkin/lexis/internal/engine"
	"github.com/papapumpkin/lexis/internal/lexicon"
	"github.com/papapumpkin/lexis/internal/peer"
	"github.com/papapumpkin/lexis/internal/sentence"
)

// Node is the lexicon surface the handlers call.
type Node interface {
	Advance(ctx context.Context) (engine.Result, error)
	Sentence() sentence.Sentence
	Snapshot() *lexicon.State
	History() lexicon.History
	Connected() bool
}

// Server serves the lexis HTTP API.
type Server struct {
	node     Node
	addr     string
	gatherer prometheus.Gatherer
	logger   *zap.Logger

	srv *http.Server
	ln  net.Listener
}

// New returns a Server for node listening on addr. Metrics are served from
// gatherer when it is non-nil.
func New(node Node, addr string, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{node: node, addr: addr, gatherer: gatherer, logger: logger}
}

// Handler returns the API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET "+peer.SnapshotPath, s.handleLexicon)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /api/sentence", s.handleSentence)
	mux.HandleFunc("POST /api/evolve", s.handleEvolve)
	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return s.logRequests(mux)
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", s.addr, err)
	}
	s.ln = ln
	s.srv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("serve failed", zap.Error(err))
		}
	}()
	s.logger.Info("listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the listener address, useful with port 0.
func (s *Server) Addr() net.Addr {
	if s.ln != nil {
		return s.ln.Addr()
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// lexiconResponse is the snapshot plus the peer connection flag.
type lexiconResponse struct {
	*lexicon.State
	Connected bool `json:"connected"`
}

type statsResponse struct {
	Generation int           `json:"generation"`
	Words      int           `json:"words"`
	Compounds  int           `json:"compounds"`
	Stats      lexicon.Stats `json:"stats"`
	Connected  bool          `json:"connected"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLexicon(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, lexiconResponse{State: s.node.Snapshot(), Connected: s.node.Connected()})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	snap := s.node.Snapshot()
	s.writeJSON(w, http.StatusOK, statsResponse{
		Generation: snap.Generation,
		Words:      len(snap.Words),
		Compounds:  len(snap.Compounds),
		Stats:      snap.Stats,
		Connected:  s.node.Connected(),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.node.History())
}

func (s *Server) handleSentence(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.node.Sentence())
}

func (s *Server) handleEvolve(w http.ResponseWriter, r *http.Request) {
	res, err := s.node.Advance(r.Context())
	if err != nil {
		// The generation happened; only recording it failed.
		s.logger.Warn("evolve not fully recorded", zap.Error(err))
	}
	if res.Events == nil {
		res.Events = []lexicon.LoggedEvent{}
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("encode response", zap.Error(err))
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Duration("took", time.Since(start)))
	})
}
