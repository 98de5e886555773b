package mcp

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/neurosim/internal/engine"
	"github.com/nvandessel/neurosim/internal/network"
	"github.com/nvandessel/neurosim/internal/ratelimit"
	"github.com/nvandessel/neurosim/internal/sanitize"
)

// maxInjectCount bounds a single neurosim_inject call.
const maxInjectCount = 10000

// registerTools registers all console tools with the MCP server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "neurosim_inject",
		Description: "Add potential to a number of randomly chosen neurons",
	}, s.handleInject)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "neurosim_collapse",
		Description: "Pointer collapse: raise potential around a point with linear falloff and clear refractory state",
	}, s.handleCollapse)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "neurosim_stimulate",
		Description: "Pointer hover: add a small potential bump around a point",
	}, s.handleStimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "neurosim_trace",
		Description: "Add sensory neurons to the drawing trace, or fire them at once in immediate mode",
	}, s.handleTrace)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "neurosim_commit",
		Description: "Commit the drawing trace: recognize it against stored patterns or learn it as a new concept",
	}, s.handleCommit)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "neurosim_recall",
		Description: "Fire the concept for a stored pattern label and project it onto the motor layer",
	}, s.handleRecall)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "neurosim_stats",
		Description: "Get cumulative simulation counters",
	}, s.handleStats)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "neurosim_snapshot",
		Description: "Get a filtered copy of neuron state and in-flight signals",
	}, s.handleSnapshot)
}

// registerResources registers the pattern memory listing.
func (s *Server) registerResources() {
	s.server.AddResource(&sdk.Resource{
		URI:         "neurosim://patterns",
		Name:        "neurosim-patterns",
		Description: "Stored patterns: concept slot, label and motor outputs.",
		MIMEType:    "text/markdown",
	}, s.handlePatternsResource)
}

// handlePatternsResource lists pattern memory as markdown.
func (s *Server) handlePatternsResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	var b strings.Builder
	b.WriteString("# Stored patterns\n\n")
	patterns := s.sim.Patterns()
	if len(patterns) == 0 {
		b.WriteString("No patterns stored.\n")
	}
	for _, p := range patterns {
		kind := "canonical"
		if p.Learned {
			kind = "learned"
		}
		fmt.Fprintf(&b, "- **%s** (concept %d, %s): %d outputs\n", p.Label, p.ConceptID, kind, len(p.Outputs))
	}
	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      "neurosim://patterns",
				MIMEType: "text/markdown",
				Text:     b.String(),
			},
		},
	}, nil
}

func (s *Server) handleInject(ctx context.Context, req *sdk.CallToolRequest, args InjectInput) (_ *sdk.CallToolResult, _ InjectOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("neurosim_inject", start, retErr, map[string]any{"count": args.Count, "strength": args.Strength})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "neurosim_inject"); err != nil {
		return nil, InjectOutput{}, err
	}
	if args.Count < 0 || args.Count > maxInjectCount {
		return nil, InjectOutput{}, fmt.Errorf("count must be between 0 and %d, got %d", maxInjectCount, args.Count)
	}
	if math.IsNaN(args.Strength) || math.IsInf(args.Strength, 0) {
		return nil, InjectOutput{}, fmt.Errorf("strength must be finite")
	}

	s.sim.InjectStimulus(args.Count, args.Strength)
	return nil, InjectOutput{
		Count:    args.Count,
		Strength: args.Strength,
		Tick:     s.sim.Stats().Ticks,
	}, nil
}

func (s *Server) handleCollapse(ctx context.Context, req *sdk.CallToolRequest, args CollapseInput) (_ *sdk.CallToolResult, _ GestureOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("neurosim_collapse", start, retErr, map[string]any{"radius": args.Radius, "intensity": args.Intensity})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "neurosim_collapse"); err != nil {
		return nil, GestureOutput{}, err
	}
	if err := validRadius(args.Radius); err != nil {
		return nil, GestureOutput{}, err
	}
	intensity := args.Intensity
	if intensity == 0 {
		intensity = 1.0
	}

	affected := s.inRange(args.X, args.Y, args.Z, args.Radius)
	s.sim.CollapseAt(args.X, args.Y, args.Z, args.Radius, intensity)
	return nil, GestureOutput{Affected: affected, Tick: s.sim.Stats().Ticks}, nil
}

func (s *Server) handleStimulate(ctx context.Context, req *sdk.CallToolRequest, args StimulateInput) (_ *sdk.CallToolResult, _ GestureOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("neurosim_stimulate", start, retErr, map[string]any{"radius": args.Radius})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "neurosim_stimulate"); err != nil {
		return nil, GestureOutput{}, err
	}
	if err := validRadius(args.Radius); err != nil {
		return nil, GestureOutput{}, err
	}

	affected := s.inRange(args.X, args.Y, args.Z, args.Radius)
	s.sim.StimulateNear(args.X, args.Y, args.Z, args.Radius)
	return nil, GestureOutput{Affected: affected, Tick: s.sim.Stats().Ticks}, nil
}

func (s *Server) handleTrace(ctx context.Context, req *sdk.CallToolRequest, args TraceInput) (_ *sdk.CallToolResult, _ TraceOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("neurosim_trace", start, retErr, map[string]any{"points": len(args.IDs), "immediate": args.Immediate})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "neurosim_trace"); err != nil {
		return nil, TraceOutput{}, err
	}
	if len(args.IDs) == 0 {
		return nil, TraceOutput{}, fmt.Errorf("'ids' parameter is required")
	}

	added := 0
	for _, id := range args.IDs {
		if err := s.sim.AddToTrace(id, args.Immediate); err != nil {
			return nil, TraceOutput{}, fmt.Errorf("trace point %d of %d: %w", added+1, len(args.IDs), err)
		}
		added++
	}

	trace := append([]int{}, s.sim.Trace()...)
	return nil, TraceOutput{Added: added, TraceLen: len(trace), Trace: trace}, nil
}

func (s *Server) handleCommit(ctx context.Context, req *sdk.CallToolRequest, args CommitInput) (_ *sdk.CallToolResult, _ CommitOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("neurosim_commit", start, retErr, nil)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "neurosim_commit"); err != nil {
		return nil, CommitOutput{}, err
	}

	res := s.sim.CommitTrace()
	s.log.Info("trace committed via mcp", "outcome", res.Outcome, "points", res.Points, "concept", res.ConceptID)
	return nil, CommitOutput{
		Outcome:   res.Outcome.String(),
		Points:    res.Points,
		Spread:    res.Spread,
		ConceptID: res.ConceptID,
		Label:     res.Label,
		Score:     res.Score,
		Tick:      res.Tick,
		Message:   commitMessage(res),
	}, nil
}

func (s *Server) handleRecall(ctx context.Context, req *sdk.CallToolRequest, args RecallInput) (_ *sdk.CallToolResult, _ RecallOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("neurosim_recall", start, retErr, map[string]any{"label": args.Label})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "neurosim_recall"); err != nil {
		return nil, RecallOutput{}, err
	}
	label := sanitize.Label(args.Label)
	if label == "" {
		return nil, RecallOutput{}, fmt.Errorf("'label' parameter is required")
	}

	if err := s.sim.RecallSymbol(label); err != nil {
		if errors.Is(err, engine.ErrUnknownSymbol) {
			return nil, RecallOutput{}, fmt.Errorf("no pattern labelled %q; read neurosim://patterns for stored labels", label)
		}
		return nil, RecallOutput{}, err
	}

	out := RecallOutput{Label: label, Outputs: []int{}}
	for _, p := range s.sim.Patterns() {
		if p.Label == label {
			out.ConceptID = p.ConceptID
			out.Outputs = p.Outputs
			break
		}
	}
	return nil, out, nil
}

func (s *Server) handleStats(ctx context.Context, req *sdk.CallToolRequest, args StatsInput) (_ *sdk.CallToolResult, _ StatsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("neurosim_stats", start, retErr, nil)
	}()
	return nil, StatsOutput{Stats: s.sim.Stats()}, nil
}

func (s *Server) handleSnapshot(ctx context.Context, req *sdk.CallToolRequest, args SnapshotInput) (_ *sdk.CallToolResult, _ SnapshotOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("neurosim_snapshot", start, retErr, map[string]any{"role": args.Role, "connections": args.Connections})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "neurosim_snapshot"); err != nil {
		return nil, SnapshotOutput{}, err
	}

	var (
		role       network.Role
		filterRole bool
	)
	if args.Role != "" {
		r, err := network.ParseRole(args.Role)
		if err != nil {
			return nil, SnapshotOutput{}, err
		}
		role, filterRole = r, true
	}

	snap := s.sim.Snapshot()
	out := SnapshotOutput{
		Tick:    snap.Tick,
		Elapsed: snap.Elapsed,
		Neurons: []SnapshotNeuron{},
		Signals: append([]engine.SignalView{}, snap.Signals...),
	}
	for _, n := range snap.Neurons {
		if filterRole && n.Role != role {
			continue
		}
		if n.Potential < args.MinPotential {
			continue
		}
		out.Neurons = append(out.Neurons, SnapshotNeuron{
			ID:         n.ID,
			Role:       n.Role.String(),
			Position:   [3]float64(n.Position),
			Potential:  n.Potential,
			Threshold:  n.Threshold,
			Refractory: n.Refractory,
			Label:      n.Label,
			InSequence: n.InSequence,
		})
	}
	if args.Connections {
		out.Connections = append([]engine.ConnectionView{}, snap.Connections...)
	}
	return nil, out, nil
}

// inRange counts neurons a pointer gesture at (x, y, z) will touch.
func (s *Server) inRange(x, y, z, radius float64) int {
	p := mgl64.Vec3{x, y, z}
	count := 0
	for _, n := range s.sim.Snapshot().Neurons {
		if n.Position.Sub(p).Len() < radius {
			count++
		}
	}
	return count
}

func validRadius(r float64) error {
	if !(r > 0) || math.IsInf(r, 0) {
		return fmt.Errorf("radius must be a positive finite number, got %v", r)
	}
	return nil
}

func commitMessage(res engine.CommitResult) string {
	switch res.Outcome {
	case engine.OutcomeIdle:
		return "trace was empty"
	case engine.OutcomeRejected:
		return fmt.Sprintf("trace rejected as noise (%d points, spread %.1f)", res.Points, res.Spread)
	case engine.OutcomeRecognized:
		return fmt.Sprintf("recognized %s (score %.2f)", res.Label, res.Score)
	case engine.OutcomeLearnRejected:
		return fmt.Sprintf("unrecognized stroke too small to learn (%d points, spread %.1f)", res.Points, res.Spread)
	case engine.OutcomeLearned:
		return fmt.Sprintf("learned %s in concept slot %d", res.Label, res.ConceptID)
	case engine.OutcomeMemoryFull:
		return "pattern memory is full; trace fired as a raw sequence"
	}
	return res.Outcome.String()
}
