package visualization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/nvandessel/brainsim/internal/brain"
	"github.com/nvandessel/brainsim/internal/sanitize"
	"github.com/nvandessel/brainsim/internal/session"
)

// Server serves a live status page and a small JSON API over a running session.
type Server struct {
	session    *session.Session
	opts       Options
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	addr       string
}

// NewServer creates a new visualization server for s.
func NewServer(s *session.Session, opts Options) *Server {
	return &Server{session: s, opts: opts}
}

// Addr returns the address the server is listening on (e.g., "localhost:PORT").
// Returns empty string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/graph", s.handleGraph)
	mux.HandleFunc("/api/inject", s.handleInject)
	mux.HandleFunc("/api/reward", s.handleReward)
	return mux
}

// ListenAndServe starts the HTTP server on addr ("localhost:0" lets the OS
// pick a port) and blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	s.mu.Unlock()

	// Graceful shutdown when context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	err = s.httpServer.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var page []byte
	var err error
	s.session.Do(func(net *brain.Network) {
		page, err = RenderHTML(net, s.opts, 50, 2)
	})
	if err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Status())
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	opts := s.opts
	if v := r.URL.Query().Get("min_weight"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, "invalid min_weight: "+v, http.StatusBadRequest)
			return
		}
		opts.MinWeight = f
	}

	var graph map[string]interface{}
	s.session.Do(func(net *brain.Network) {
		graph = RenderJSON(net, opts)
	})
	writeJSON(w, http.StatusOK, graph)
}

// handleInject delivers one symbol: POST /api/inject?modality=text&symbol=a
func (s *Server) handleInject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	q := r.URL.Query()
	modality := sanitize.Name(q.Get("modality"))
	if modality == "" {
		modality = session.TextModality
	}
	symbol := sanitize.Symbol(q.Get("symbol"))
	if symbol == "" {
		http.Error(w, "missing or empty 'symbol' query parameter", http.StatusBadRequest)
		return
	}

	if err := s.session.Inject(modality, symbol); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, brain.ErrUnknownModality) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"modality": modality, "symbol": symbol})
}

// handleReward delivers dopamine: POST /api/reward?amount=1
func (s *Server) handleReward(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	amount, err := strconv.ParseFloat(r.URL.Query().Get("amount"), 64)
	if err != nil {
		http.Error(w, "invalid amount", http.StatusBadRequest)
		return
	}
	s.session.Reward(amount)
	writeJSON(w, http.StatusOK, map[string]any{"amount": amount})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
