// Package export writes solved puzzles to solution files, PDF diagrams,
// QR-coded cards, DXF drawings and spreadsheet reports.
package export

import (
	"time"

	"github.com/piwi3910/lazor/internal/engine"
	"github.com/piwi3910/lazor/internal/model"
)

// Solved bundles what the exporters need to know about one puzzle.
type Solved struct {
	Board    *model.Board
	Solution *model.Candidate // nil when the puzzle was not solved
	Trace    engine.Trace     // beams through the solution, or the bare board
	Elapsed  time.Duration
}

// NewSolved traces the solution (or the bare board when sol is nil) so the
// drawings can show beam paths.
func NewSolved(b *model.Board, sol *model.Candidate, elapsed time.Duration) Solved {
	s := Solved{Board: b, Solution: sol, Elapsed: elapsed}
	s.Trace = engine.NewSimulator(engine.DefaultSettings()).Trace(s.Layout())
	return s
}

// Layout returns the solution if there is one, else the bare board.
func (s Solved) Layout() engine.Layout {
	if s.Solution != nil {
		return s.Solution
	}
	return s.Board
}

// Covered reports whether every target lies on a traced beam.
func (s Solved) Covered() bool {
	return s.Trace.Visited.ContainsAll(s.Board.Targets)
}

// blockAt returns the block drawn on a cell and whether the solver placed it.
func (s Solved) blockAt(row, col int) (blk model.Block, placed, ok bool) {
	blk, ok = s.Layout().BlockAt(row, col)
	if !ok {
		return blk, false, false
	}
	_, fixed := s.Board.FixedAt(row, col)
	return blk, !fixed, true
}
