// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the simulation console as tools.
package mcp

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/neurosim/internal/constants"
	"github.com/nvandessel/neurosim/internal/engine"
	"github.com/nvandessel/neurosim/internal/logging"
	"github.com/nvandessel/neurosim/internal/memory"
	"github.com/nvandessel/neurosim/internal/ratelimit"
)

// Simulation is the engine surface the console tools drive.
type Simulation interface {
	InjectStimulus(count int, strength float64)
	CollapseAt(x, y, z, radius, intensity float64)
	StimulateNear(x, y, z, radius float64)
	AddToTrace(id int, immediate bool) error
	Trace() []int
	CommitTrace() engine.CommitResult
	RecallSymbol(label string) error
	Snapshot() engine.Snapshot
	Stats() engine.Stats
	Patterns() []memory.Pattern
}

// Server wraps the MCP SDK server and routes tool calls to a Simulation.
type Server struct {
	server       *sdk.Server
	sim          Simulation
	toolLimiters ratelimit.ToolLimiters
	log          *slog.Logger
	audit        *logging.EventLog
}

// Config holds server configuration.
type Config struct {
	Name         string // Server name (e.g., "neurosim")
	Version      string // Server version
	GestureRate  float64
	GestureBurst int
	Logger       *slog.Logger
	// Audit receives one "tool_call" event per invocation when non-nil.
	Audit *logging.EventLog
}

// NewServer creates a new MCP server with the console tools registered.
func NewServer(cfg *Config, sim Simulation) (*Server, error) {
	if cfg.Name == "" {
		cfg.Name = "neurosim"
	}
	if cfg.GestureRate <= 0 {
		cfg.GestureRate = constants.DefaultGestureRate
	}
	if cfg.GestureBurst <= 0 {
		cfg.GestureBurst = constants.DefaultGestureBurst
	}
	log := cfg.Logger
	if log == nil {
		log = logging.Discard()
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			log.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server:       mcpServer,
		sim:          sim,
		toolLimiters: ratelimit.NewToolLimiters(cfg.GestureRate, cfg.GestureBurst),
		log:          log,
		audit:        cfg.Audit,
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	return s.server.Run(ctx, &sdk.StdioTransport{})
}
