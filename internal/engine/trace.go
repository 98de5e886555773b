package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/nvandessel/neurosim/internal/memory"
	"github.com/nvandessel/neurosim/internal/network"
)

// Outcome is the result class of a commit.
type Outcome int

const (
	// OutcomeIdle means the trace was empty.
	OutcomeIdle Outcome = iota
	// OutcomeRejected means the trace failed the point count or spread guard.
	OutcomeRejected
	// OutcomeRecognized means a stored pattern cleared the acceptance threshold.
	OutcomeRecognized
	// OutcomeLearnRejected means nothing matched and the trace failed the
	// stricter learning guards.
	OutcomeLearnRejected
	// OutcomeLearned means the trace was stored in a free concept slot.
	OutcomeLearned
	// OutcomeMemoryFull means nothing matched and no concept slot was free;
	// the raw sensory trace was fired instead.
	OutcomeMemoryFull
)

func (o Outcome) String() string {
	switch o {
	case OutcomeIdle:
		return "idle"
	case OutcomeRejected:
		return "rejected"
	case OutcomeRecognized:
		return "recognized"
	case OutcomeLearnRejected:
		return "learn_rejected"
	case OutcomeLearned:
		return "learned"
	case OutcomeMemoryFull:
		return "memory_full"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// CommitResult describes what a commit did.
type CommitResult struct {
	Outcome   Outcome `json:"outcome"`
	Points    int     `json:"points"`
	Spread    float64 `json:"spread"`
	ConceptID int     `json:"concept_id"`
	Label     string  `json:"label,omitempty"`
	Score     float64 `json:"score"`
	Tick      uint64  `json:"tick"`
	Elapsed   float64 `json:"elapsed"`
}

// AddToTrace registers a pointer contact on a sensory neuron. In immediate
// mode the neuron fires at once; otherwise it glows and joins the buffer
// until CommitTrace.
func (e *Engine) AddToTrace(id int, immediate bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	n, err := e.sensory(id)
	if err != nil {
		return err
	}

	if immediate {
		n.Potential = e.params.TraceLatch
		e.fire(n, e.params.ImmediateFireDepth, 1.0)
		return nil
	}

	n.Potential = e.params.TraceGlow
	if _, ok := e.trace[id]; !ok {
		e.trace[id] = struct{}{}
		e.traceOrder = append(e.traceOrder, id)
	}
	return nil
}

// Trace returns the buffered sensory ids in insertion order.
func (e *Engine) Trace() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.traceOrder...)
}

// CommitTrace evaluates the buffered trace: reject, recognize, learn, or fall
// back to firing the raw input. The buffer is always empty afterwards.
func (e *Engine) CommitTrace() CommitResult {
	e.mu.Lock()
	res := e.commit()
	res.Tick = e.tick
	res.Elapsed = e.elapsed
	e.clearTrace()
	hooks := e.hooks
	e.mu.Unlock()

	for _, h := range hooks {
		h(res)
	}
	return res
}

func (e *Engine) commit() CommitResult {
	res := CommitResult{Points: len(e.traceOrder), ConceptID: -1}
	if res.Points == 0 {
		return res
	}
	res.Spread = e.traceSpread()

	if res.Points < e.params.MinCommitPoints || res.Spread < e.params.MinCommitSpread {
		e.stats.Rejected++
		res.Outcome = OutcomeRejected
		e.log.Debug("trace rejected", "points", res.Points, "spread", res.Spread)
		return res
	}

	outputs := e.projectTrace()
	match := e.memory.Best(memory.SetOf(outputs))
	res.Score = match.Score
	if match.Found && match.Score > e.params.AcceptThreshold {
		concept := e.neurons.At(match.ConceptID)
		concept.Potential = 1.0
		e.fire(concept, e.params.RecallDepth, 1.0)
		e.stats.Recognized++
		res.Outcome = OutcomeRecognized
		res.ConceptID = match.ConceptID
		res.Label = concept.Label
		e.log.Info("pattern recognized", "concept", match.ConceptID, "label", concept.Label, "score", match.Score)
		return res
	}

	return e.learn(res, outputs)
}

func (e *Engine) learn(res CommitResult, outputs []int) CommitResult {
	if res.Points < e.params.MinLearnPoints || res.Spread < e.params.MinLearnSpread || len(outputs) == 0 {
		e.stats.LearnRejected++
		res.Outcome = OutcomeLearnRejected
		e.log.Debug("learning rejected", "points", res.Points, "spread", res.Spread, "best_score", res.Score)
		return res
	}

	slot, ok := e.memory.FreeSlot()
	if !ok {
		for _, id := range e.traceOrder {
			e.fire(e.neurons.At(id), e.params.RecallDepth, 1.0)
		}
		e.stats.MemoryFull++
		res.Outcome = OutcomeMemoryFull
		e.log.Warn("pattern memory full, firing raw trace", "points", res.Points, "capacity", e.memory.Capacity())
		return res
	}

	label := fmt.Sprintf("LEARNED_%d", slot)
	if err := e.memory.Store(slot, outputs, label, true); err != nil {
		// FreeSlot only returns empty concept slots, so Store cannot fail here.
		panic(fmt.Sprintf("engine: storing learned pattern: %v", err))
	}
	concept := e.neurons.At(slot)
	concept.Label = label
	for _, out := range outputs {
		e.graph.Add(slot, out, e.params.ProjectionWeight)
	}
	concept.Potential = 1.0
	e.fire(concept, e.params.RecallDepth, 1.0)

	e.stats.Learned++
	res.Outcome = OutcomeLearned
	res.ConceptID = slot
	res.Label = label
	e.log.Info("pattern learned", "concept", slot, "label", label, "outputs", len(outputs), "best_score", res.Score)
	return res
}

// traceSpread is the bounding-box diagonal of the buffered neurons in the
// two layout axes orthogonal to depth (y and z).
func (e *Engine) traceSpread() float64 {
	minY, maxY := math.Inf(1), math.Inf(-1)
	minZ, maxZ := math.Inf(1), math.Inf(-1)
	for _, id := range e.traceOrder {
		p := e.neurons.At(id).Position
		minY, maxY = math.Min(minY, p.Y()), math.Max(maxY, p.Y())
		minZ, maxZ = math.Min(minZ, p.Z()), math.Max(maxZ, p.Z())
	}
	return math.Hypot(maxY-minY, maxZ-minZ)
}

// projectTrace maps the buffered sensory ids onto output ids.
func (e *Engine) projectTrace() []int {
	seen := make(map[int]struct{}, len(e.traceOrder))
	outputs := make([]int, 0, len(e.traceOrder))
	for _, id := range e.traceOrder {
		out, ok := e.layout.OutputFor(id)
		if !ok {
			continue
		}
		if _, dup := seen[out]; dup {
			continue
		}
		seen[out] = struct{}{}
		outputs = append(outputs, out)
	}
	sort.Ints(outputs)
	return outputs
}

func (e *Engine) clearTrace() {
	for id := range e.trace {
		delete(e.trace, id)
	}
	e.traceOrder = e.traceOrder[:0]
}

// sensory returns neuron id if it exists and is sensory.
func (e *Engine) sensory(id int) (*network.Neuron, error) {
	n, err := e.neurons.Get(id)
	if err != nil {
		return nil, err
	}
	if n.Role != network.RoleSensory {
		return nil, fmt.Errorf("neuron %d is %s, not in sensory block: %w", id, n.Role, network.ErrOutOfRange)
	}
	return n, nil
}
