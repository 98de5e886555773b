package visualization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nvandessel/neurosim/internal/engine"
	"github.com/nvandessel/neurosim/internal/logging"
	"github.com/nvandessel/neurosim/internal/memory"
	"github.com/nvandessel/neurosim/internal/network"
)

// Simulation is the engine surface the server reads and drives.
type Simulation interface {
	Snapshot() engine.Snapshot
	Stats() engine.Stats
	Patterns() []memory.Pattern
	AddToTrace(id int, immediate bool) error
	CommitTrace() engine.CommitResult
	CollapseAt(x, y, z, radius, intensity float64)
	StimulateNear(x, y, z, radius float64)
}

// maxBodyBytes bounds gesture request bodies.
const maxBodyBytes = 4 << 10

// Server serves the viewer page, snapshot feed and gesture endpoints.
type Server struct {
	sim        Simulation
	addr       string
	log        *slog.Logger
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	boundAddr  string
}

// NewServer creates a server for sim that will listen on addr
// ("localhost:0" lets the OS pick a port).
func NewServer(sim Simulation, addr string, log *slog.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	if addr == "" {
		addr = "localhost:0"
	}
	return &Server{sim: sim, addr: addr, log: log}
}

// Addr returns the address the server is listening on (e.g., "localhost:PORT").
// Returns empty string if the server hasn't started yet.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boundAddr
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/graph.dot", s.handleDOT)
	mux.HandleFunc("GET /api/graph.json", s.handleGraphJSON)
	mux.HandleFunc("POST /api/trace", s.handleTrace)
	mux.HandleFunc("POST /api/commit", s.handleCommit)
	mux.HandleFunc("POST /api/collapse", s.handleCollapse)
	mux.HandleFunc("POST /api/stimulate", s.handleStimulate)
	return mux
}

// ListenAndServe starts the HTTP server and blocks until the context is
// cancelled. A clean shutdown returns nil.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.boundAddr = ln.Addr().String()
	s.httpServer = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	s.mu.Unlock()

	s.log.Info("snapshot server listening", "addr", ln.Addr().String())

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
	html, err := RenderHTML("neurosim", "http://"+s.Addr())
	if err != nil {
		http.Error(w, "render error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.Snapshot())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sim.Stats())
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	opts := DOTOptions{}
	if role := r.URL.Query().Get("role"); role != "" {
		parsed, err := network.ParseRole(role)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		opts.Roles = []network.Role{parsed}
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.Write([]byte(RenderDOT(s.sim.Snapshot(), opts)))
}

func (s *Server) handleGraphJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RenderJSON(s.sim.Snapshot(), s.sim.Patterns()))
}

// TraceRequest is the body of POST /api/trace.
type TraceRequest struct {
	ID        int  `json:"id"`
	Immediate bool `json:"immediate"`
}

func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	var req TraceRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.sim.AddToTrace(req.ID, req.Immediate); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, network.ErrOutOfRange) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": req.ID, "immediate": req.Immediate})
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	res := s.sim.CommitTrace()
	s.log.Debug("commit via http", "outcome", res.Outcome, "points", res.Points)
	writeJSON(w, http.StatusOK, res)
}

// CollapseRequest is the body of POST /api/collapse and POST /api/stimulate.
// Intensity is ignored by stimulate.
type CollapseRequest struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Z         float64 `json:"z"`
	Radius    float64 `json:"radius"`
	Intensity float64 `json:"intensity"`
}

func (s *Server) handleCollapse(w http.ResponseWriter, r *http.Request) {
	var req CollapseRequest
	if !decode(w, r, &req) {
		return
	}
	s.sim.CollapseAt(req.X, req.Y, req.Z, req.Radius, req.Intensity)
	writeJSON(w, http.StatusOK, req)
}

func (s *Server) handleStimulate(w http.ResponseWriter, r *http.Request) {
	var req CollapseRequest
	if !decode(w, r, &req) {
		return
	}
	s.sim.StimulateNear(req.X, req.Y, req.Z, req.Radius)
	writeJSON(w, http.StatusOK, req)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
