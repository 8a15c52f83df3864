package engine

import (
	"testing"

	"github.com/piwi3910/lazor/internal/model"
	"github.com/stretchr/testify/require"
)

// mustBoard builds a board from one string per row, one token per character.
func mustBoard(t *testing.T, rows []string, inv model.Inventory, lasers []model.Laser, targets []model.Point) *model.Board {
	t.Helper()
	grid := make([][]string, len(rows))
	for r, row := range rows {
		for _, ch := range row {
			grid[r] = append(grid[r], string(ch))
		}
	}
	b, err := model.NewBoard(model.Puzzle{
		Name:      t.Name(),
		Grid:      grid,
		Inventory: inv,
		Lasers:    lasers,
		Targets:   targets,
	})
	require.NoError(t, err)
	return b
}

func laser(x, y, vx, vy int) model.Laser {
	return model.Laser{X: x, Y: y, VX: vx, VY: vy}
}

func pt(x, y int) model.Point {
	return model.Point{X: x, Y: y}
}

// exhaustiveSolvable reports whether any assignment of the whole inventory to
// open cells covers every target. It shares no code with the solver's
// enumerator and serves as a reference.
func exhaustiveSolvable(b *model.Board) bool {
	cells := b.PlaceableCells()
	cand := model.NewCandidate(b)
	options := []model.Block{
		model.Mirror(model.Slash),
		model.Mirror(model.Backslash),
		model.NewBlock(model.Opaque),
		model.NewBlock(model.Refract),
	}
	left := b.Inventory

	var rec func(i int) bool
	rec = func(i int) bool {
		if left.Total() == 0 {
			return Simulate(cand).ContainsAll(b.Targets)
		}
		if i == len(cells) {
			return false
		}
		if rec(i + 1) {
			return true
		}
		for _, blk := range options {
			if left.Count(blk.Kind) == 0 {
				continue
			}
			if err := cand.Place(cells[i], blk); err != nil {
				continue
			}
			left.Set(blk.Kind, left.Count(blk.Kind)-1)
			ok := rec(i + 1)
			left.Set(blk.Kind, left.Count(blk.Kind)+1)
			cand.Undo(1)
			if ok {
				return true
			}
		}
		return false
	}
	return rec(0)
}
