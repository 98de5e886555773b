package network

// Connection is a directed weighted edge. Activity is presentation state in
// [0, 1] set on signal arrival and decayed every tick.
type Connection struct {
	From     int
	To       int
	Weight   float64
	Activity float64
}

type edgeKey struct{ from, to int }

// Graph stores connections with O(1) dedup and adjacency lookup. Connections
// are never removed, so their indices are stable and signals may hold them.
type Graph struct {
	conns     []Connection
	adjacency map[int][]int
	edgeSet   map[edgeKey]struct{}
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		adjacency: make(map[int][]int),
		edgeSet:   make(map[edgeKey]struct{}),
	}
}

// Add appends the edge from -> to with the given weight. It is a no-op for
// self-loops and for pairs that already exist, in which case added is false
// and idx is the existing index (or -1 for a self-loop).
func (g *Graph) Add(from, to int, weight float64) (idx int, added bool) {
	if from == to {
		return -1, false
	}
	key := edgeKey{from, to}
	if _, exists := g.edgeSet[key]; exists {
		for _, i := range g.adjacency[from] {
			if g.conns[i].To == to {
				return i, false
			}
		}
	}
	g.edgeSet[key] = struct{}{}
	g.conns = append(g.conns, Connection{From: from, To: to, Weight: weight})
	idx = len(g.conns) - 1
	g.adjacency[from] = append(g.adjacency[from], idx)
	return idx, true
}

// AddRandom adds a structural edge whose weight is drawn from
// [0.2, 0.3) and scaled by factor.
func (g *Graph) AddRandom(from, to int, factor float64, rng Source) (int, bool) {
	if from == to || g.Has(from, to) {
		return g.Add(from, to, 0)
	}
	return g.Add(from, to, (0.2+rng.Float64()*0.1)*factor)
}

// Has reports whether the ordered pair exists.
func (g *Graph) Has(from, to int) bool {
	_, ok := g.edgeSet[edgeKey{from, to}]
	return ok
}

// Outbound returns the connection indices leaving id in insertion order. The
// returned slice must not be modified.
func (g *Graph) Outbound(id int) []int {
	return g.adjacency[id]
}

// At returns the connection at idx.
func (g *Graph) At(idx int) *Connection {
	return &g.conns[idx]
}

// Len returns the number of connections.
func (g *Graph) Len() int { return len(g.conns) }

// Connections returns the backing slice. Callers may update Activity but must
// not append to it.
func (g *Graph) Connections() []Connection { return g.conns }

// DecayActivity multiplies every connection's activity by factor.
func (g *Graph) DecayActivity(factor float64) {
	for i := range g.conns {
		g.conns[i].Activity *= factor
	}
}
