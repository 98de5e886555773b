package network

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Source is the random source used for scattered placement and structural
// weights. *math/rand/v2.Rand satisfies it.
type Source interface {
	Float64() float64
	IntN(n int) int
}

// Placement computes a neuron position from its index within a block.
type Placement interface {
	Place(idx int, rng Source) mgl64.Vec3
}

// Grid lays a block out on a plane at a fixed x, rows along y and columns along z.
type Grid struct {
	Width   int
	XOffset float64
	Scale   float64
}

// Place implements Placement.
func (g Grid) Place(idx int, _ Source) mgl64.Vec3 {
	r, c := g.Cell(idx)
	center := float64(g.Width) / 2
	return mgl64.Vec3{
		g.XOffset,
		(float64(r) - center) * g.Scale,
		(float64(c) - center) * g.Scale,
	}
}

// Cell returns the row and column of idx.
func (g Grid) Cell(idx int) (row, col int) {
	return idx / g.Width, idx % g.Width
}

// Scatter places neurons uniformly inside a box centered on the origin.
type Scatter struct {
	X, Y, Z float64
}

// Place implements Placement.
func (s Scatter) Place(_ int, rng Source) mgl64.Vec3 {
	return mgl64.Vec3{
		(rng.Float64() - 0.5) * s.X,
		(rng.Float64() - 0.5) * s.Y,
		(rng.Float64() - 0.5) * s.Z,
	}
}

// Block is a contiguous id range [Start, End) sharing a role and placement.
type Block struct {
	Role  Role
	Start int
	End   int
	Place Placement
}

// Len returns the number of ids in the block.
func (b Block) Len() int {
	if b.End <= b.Start {
		return 0
	}
	return b.End - b.Start
}

// Contains reports whether id lies inside the block.
func (b Block) Contains(id int) bool {
	return id >= b.Start && id < b.End
}

// Layout is the table of blocks. It is the single source of truth for which
// ids carry which role; wiring, masking and learning all key off it.
type Layout struct {
	Blocks []Block
}

// DefaultLayout returns the reference layout sized for count neurons. The
// inhibitory block absorbs everything from 700 up to count; blocks are
// clipped when count is smaller.
func DefaultLayout(count int) Layout {
	l := Layout{Blocks: []Block{
		{Role: RoleSensory, Start: 0, End: 200, Place: Grid{Width: 14, XOffset: -90, Scale: 6}},
		{Role: RoleMotor, Start: 200, End: 250, Place: Grid{Width: 7, XOffset: 90, Scale: 11}},
		{Role: RoleFeatureEdge, Start: 250, End: 300, Place: Grid{Width: 7, XOffset: -50, Scale: 10}},
		{Role: RoleFeatureAngle, Start: 300, End: 325, Place: Grid{Width: 5, XOffset: -30, Scale: 10}},
		{Role: RoleMemory, Start: 325, End: 425, Place: Scatter{X: 45, Y: 90, Z: 90}},
		{Role: RoleConcept, Start: 425, End: 475, Place: Grid{Width: 7, XOffset: 45, Scale: 13}},
		{Role: RoleAssociation, Start: 475, End: 700, Place: Scatter{X: 45, Y: 90, Z: 90}},
		{Role: RoleInhibitory, Start: 700, End: count, Place: Scatter{X: 140, Y: 120, Z: 100}},
	}}
	return l.Clip(count)
}

// Clip returns a copy of the layout with every block truncated to [0, count).
func (l Layout) Clip(count int) Layout {
	out := Layout{Blocks: make([]Block, 0, len(l.Blocks))}
	for _, b := range l.Blocks {
		if b.End > count {
			b.End = count
		}
		if b.Start > b.End {
			b.Start = b.End
		}
		out.Blocks = append(out.Blocks, b)
	}
	return out
}

// Block returns the first block carrying role. ok is false when the layout
// has no block for it or the block is empty.
func (l Layout) Block(role Role) (Block, bool) {
	for _, b := range l.Blocks {
		if b.Role == role && b.Len() > 0 {
			return b, true
		}
	}
	return Block{}, false
}

// RoleOf returns the role of id.
func (l Layout) RoleOf(id int) (Role, error) {
	for _, b := range l.Blocks {
		if b.Contains(id) {
			return b.Role, nil
		}
	}
	return 0, fmt.Errorf("neuron %d: %w", id, ErrOutOfRange)
}

// Validate checks that blocks do not overlap and cover [0, count) without gaps.
func (l Layout) Validate(count int) error {
	covered := make([]bool, count)
	for _, b := range l.Blocks {
		if b.Place == nil && b.Len() > 0 {
			return fmt.Errorf("block %s has no placement", b.Role)
		}
		for id := b.Start; id < b.End; id++ {
			if id < 0 || id >= count {
				return fmt.Errorf("block %s id %d: %w", b.Role, id, ErrOutOfRange)
			}
			if covered[id] {
				return fmt.Errorf("block %s overlaps at id %d", b.Role, id)
			}
			covered[id] = true
		}
	}
	for id, ok := range covered {
		if !ok {
			return fmt.Errorf("id %d is not covered by any block", id)
		}
	}
	return nil
}

// OutputFor projects a sensory id onto the motor grid by halving its row and
// column. ok is false when the sensory id is outside the sensory block or the
// projected cell falls outside the motor block.
func (l Layout) OutputFor(sensoryID int) (int, bool) {
	in, out, ok := l.projectionGrids()
	if !ok || !in.block.Contains(sensoryID) {
		return 0, false
	}
	r, c := in.grid.Cell(sensoryID - in.block.Start)
	r, c = r/2, c/2
	if c >= out.grid.Width {
		return 0, false
	}
	id := out.block.Start + r*out.grid.Width + c
	if !out.block.Contains(id) {
		return 0, false
	}
	return id, true
}

// SensoryFor returns the top-left sensory cell that projects onto outputID.
func (l Layout) SensoryFor(outputID int) (int, bool) {
	in, out, ok := l.projectionGrids()
	if !ok || !out.block.Contains(outputID) {
		return 0, false
	}
	r, c := out.grid.Cell(outputID - out.block.Start)
	r, c = r*2, c*2
	if c >= in.grid.Width {
		return 0, false
	}
	id := in.block.Start + r*in.grid.Width + c
	if !in.block.Contains(id) {
		return 0, false
	}
	return id, true
}

type gridBlock struct {
	block Block
	grid  Grid
}

func (l Layout) projectionGrids() (in, out gridBlock, ok bool) {
	sb, ok1 := l.Block(RoleSensory)
	mb, ok2 := l.Block(RoleMotor)
	if !ok1 || !ok2 {
		return in, out, false
	}
	sg, ok1 := sb.Place.(Grid)
	mg, ok2 := mb.Place.(Grid)
	if !ok1 || !ok2 || sg.Width <= 0 || mg.Width <= 0 {
		return in, out, false
	}
	return gridBlock{sb, sg}, gridBlock{mb, mg}, true
}
