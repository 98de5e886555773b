// Package engine runs the neuron simulation: per-tick decay, refractory and
// spontaneous activity, threshold firing, delayed signal delivery, top-down
// masking by active concepts, and the input trace that is recognized against
// or learned into pattern memory.
//
// An Engine is safe for concurrent use. Every exported method holds a single
// mutex for its whole duration, so a tick and a gesture never interleave.
package engine

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/nvandessel/neurosim/internal/logging"
	"github.com/nvandessel/neurosim/internal/memory"
	"github.com/nvandessel/neurosim/internal/network"
)

// CommitHook observes every commit after the engine lock is released.
type CommitHook func(CommitResult)

// Engine owns all neuron, connection, signal, trace and memory state.
type Engine struct {
	mu sync.Mutex

	params Params
	rng    network.Source
	log    *slog.Logger
	hooks  []CommitHook

	layout  network.Layout
	neurons *network.Store
	graph   *network.Graph
	memory  *memory.Memory

	trace      map[int]struct{}
	traceOrder []int

	signals  []Signal
	arrivals []Signal

	activeConcepts []int
	allowed        map[int]struct{}

	tick    uint64
	elapsed float64
	stats   Stats
}

type options struct {
	rng    network.Source
	log    *slog.Logger
	layout *network.Layout
	wire   bool
	hooks  []CommitHook
}

// Option configures New.
type Option func(*options)

// WithRand injects the random source used for placement, weights, noise and
// residual emission.
func WithRand(rng network.Source) Option {
	return func(o *options) { o.rng = rng }
}

// WithSeed seeds a PCG source. Equal seeds give equal networks.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithLayout replaces the default role layout.
func WithLayout(l network.Layout) Option {
	return func(o *options) { o.layout = &l }
}

// WithoutWiring skips the initial wiring and canonical shapes, leaving an
// empty graph and empty pattern memory.
func WithoutWiring() Option {
	return func(o *options) { o.wire = false }
}

// WithCommitHook registers a hook called after every CommitTrace.
func WithCommitHook(h CommitHook) Option {
	return func(o *options) { o.hooks = append(o.hooks, h) }
}

// New creates an engine with params.NeuronCount neurons and wires it.
func New(params Params, opts ...Option) (*Engine, error) {
	o := options{wire: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		seed := uint64(time.Now().UnixNano())
		o.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if o.log == nil {
		o.log = logging.Discard()
	}
	layout := network.DefaultLayout(params.NeuronCount)
	if o.layout != nil {
		layout = o.layout.Clip(params.NeuronCount)
	}

	neurons, err := network.NewStore(params.NeuronCount, layout, o.rng)
	if err != nil {
		return nil, fmt.Errorf("creating neurons: %w", err)
	}

	e := &Engine{
		params:  params,
		rng:     o.rng,
		log:     o.log,
		hooks:   o.hooks,
		layout:  neurons.Layout(),
		neurons: neurons,
		graph:   network.NewGraph(),
		memory:  memory.New(neurons.Block(network.RoleConcept)),
		trace:   make(map[int]struct{}),
		allowed: make(map[int]struct{}),
	}

	if o.wire {
		e.wire()
		if err := e.wireCanonicalShapes(); err != nil {
			return nil, fmt.Errorf("wiring canonical shapes: %w", err)
		}
	}

	e.log.Info("engine initialized",
		"neurons", neurons.Len(),
		"connections", e.graph.Len(),
		"patterns", e.memory.Len())
	return e, nil
}

// Params returns the parameters the engine was built with.
func (e *Engine) Params() Params {
	return e.params
}

// Layout returns the role layout.
func (e *Engine) Layout() network.Layout {
	return e.layout
}

// NeuronCount returns the number of neurons.
func (e *Engine) NeuronCount() int {
	return e.neurons.Len()
}
