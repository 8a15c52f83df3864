package engine

import (
	"github.com/piwi3910/lazor/internal/model"
)

// Layout is anything the simulator can trace beams through: a bare Board or a
// Candidate with solver placements.
type Layout interface {
	Base() *model.Board
	BlockAt(row, col int) (model.Block, bool)
}

// direction is a beam velocity in half-block units.
type direction struct {
	vx, vy int
}

// beam is one live ray: where it is and where it is heading.
type beam struct {
	pos model.Point
	dir direction
}

// Segment is one unit step of a beam.
type Segment struct {
	From model.Point `json:"from"`
	To   model.Point `json:"to"`
}

// Trace is the full result of a simulation.
type Trace struct {
	Visited    model.PointSet
	Segments   []Segment
	Iterations int
	Truncated  bool // iteration cap reached with beams still queued
}

// Simulator traces lasers through a layout.
type Simulator struct {
	maxIterations int
	margin        int
}

// NewSimulator builds a simulator from the iteration cap and bounds margin in s.
func NewSimulator(s Settings) *Simulator {
	s = s.normalized()
	return &Simulator{maxIterations: s.MaxIterations, margin: s.BoundsMargin}
}

var defaultSimulator = NewSimulator(DefaultSettings())

// Simulate returns every half-block point visited by any beam on the layout,
// using the default iteration cap and margin.
func Simulate(l Layout) model.PointSet {
	return defaultSimulator.Visited(l)
}

// Visited returns the set of points visited by every beam on the layout.
func (s *Simulator) Visited(l Layout) model.PointSet {
	return s.run(l, nil).Visited
}

// Trace runs the simulation and also records each beam step.
func (s *Simulator) Trace(l Layout) Trace {
	var segs []Segment
	t := s.run(l, func(from, to model.Point) {
		segs = append(segs, Segment{From: from, To: to})
	})
	t.Segments = segs
	return t
}

func (s *Simulator) run(l Layout, onStep func(from, to model.Point)) Trace {
	board := l.Base()
	width, height := board.Extent()
	outside := func(p model.Point) bool {
		return p.Y < -s.margin || p.Y > height+s.margin || p.X < -s.margin || p.X > width+s.margin
	}

	visited := make(model.PointSet)
	seen := make(map[beam]struct{})
	queue := make([]beam, 0, len(board.Lasers))
	for _, las := range board.Lasers {
		queue = append(queue, beam{pos: las.Origin(), dir: direction{vx: las.VX, vy: las.VY}})
	}

	iterations := 0
	for len(queue) > 0 && iterations < s.maxIterations {
		iterations++
		cur := queue[0]
		queue = queue[1:]

		next, outs := advance(l, cur)
		visited.Add(next)
		if onStep != nil {
			onStep(cur.pos, next)
		}
		if outside(next) {
			continue
		}

		for _, d := range outs {
			if outside(model.Point{X: next.X + d.vx, Y: next.Y + d.vy}) {
				continue
			}
			st := beam{pos: next, dir: d}
			if _, ok := seen[st]; ok {
				continue
			}
			seen[st] = struct{}{}
			queue = append(queue, st)
		}
	}

	truncated := len(queue) > 0
	if truncated {
		engLog.Warn().
			Str("board", board.Name).
			Int("maxIterations", s.maxIterations).
			Int("pending", len(queue)).
			Msg("simulation reached iteration cap, returning partial trace")
	}
	return Trace{Visited: visited, Iterations: iterations, Truncated: truncated}
}

// interaction is a block met on a specific boundary during one step.
type interaction struct {
	block model.Block
	at    boundary
}

// advance moves b one step and returns its new position and the directions
// leaving that position after all block interactions.
func advance(l Layout, b beam) (model.Point, []direction) {
	cr := stepCrossing(b.pos, b.dir.vx, b.dir.vy)

	var hits [2]interaction
	n := 0
	switch {
	case cr.vertical && cr.horizontal:
		// Corner policy: the block owning the corner cell decides. Only when
		// that cell is empty are the two edges resolved independently.
		corner := cr.cornerCell()
		if blk, ok := l.BlockAt(corner.Row, corner.Col); ok {
			hits[n] = interaction{block: blk, at: boundaryCorner}
			n++
			break
		}
		if blk, ok := firstBlock(l, verticalEdgeCells(cr.mid.X, b.pos.Y, b.dir.vy)); ok {
			hits[n] = interaction{block: blk, at: boundaryVertical}
			n++
		}
		if blk, ok := firstBlock(l, horizontalEdgeCells(b.pos.X, cr.mid.Y, b.dir.vx)); ok {
			hits[n] = interaction{block: blk, at: boundaryHorizontal}
			n++
		}
	case cr.vertical:
		if blk, ok := firstBlock(l, verticalEdgeCells(cr.mid.X, b.pos.Y, b.dir.vy)); ok {
			hits[n] = interaction{block: blk, at: boundaryVertical}
			n++
		}
	case cr.horizontal:
		if blk, ok := firstBlock(l, horizontalEdgeCells(b.pos.X, cr.mid.Y, b.dir.vx)); ok {
			hits[n] = interaction{block: blk, at: boundaryHorizontal}
			n++
		}
	}

	dirs := []direction{b.dir}
	for _, hit := range hits[:n] {
		var out []direction
		for _, d := range dirs {
			out = append(out, interact(hit.block, d, hit.at)...)
		}
		dirs = out
		if len(dirs) == 0 {
			break
		}
	}
	return cr.next, dirs
}

func firstBlock(l Layout, cells [2]model.Cell) (model.Block, bool) {
	for _, c := range cells {
		if blk, ok := l.BlockAt(c.Row, c.Col); ok {
			return blk, true
		}
	}
	return model.Block{}, false
}

// interact returns the directions leaving blk when a beam heading d meets it
// on boundary at.
func interact(blk model.Block, d direction, at boundary) []direction {
	switch blk.Kind {
	case model.Opaque:
		return nil
	case model.Reflect:
		if blk.Orientation == model.Backslash {
			return []direction{{vx: d.vy, vy: d.vx}}
		}
		return []direction{{vx: -d.vy, vy: -d.vx}}
	case model.Refract:
		reflected := direction{vx: -d.vx, vy: -d.vy}
		switch at {
		case boundaryVertical:
			reflected = direction{vx: -d.vx, vy: d.vy}
		case boundaryHorizontal:
			reflected = direction{vx: d.vx, vy: -d.vy}
		}
		return []direction{d, reflected}
	default:
		return []direction{d}
	}
}
