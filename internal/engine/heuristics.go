package engine

import (
	"sort"

	"github.com/piwi3910/lazor/internal/model"
)

// HotSlots returns the open cells next to a boundary crossed by some laser
// travelling straight across the empty board. Blocks placed elsewhere cannot
// change a beam's first straight run.
func HotSlots(b *model.Board) map[model.Cell]bool {
	hot := make(map[model.Cell]bool)
	mark := func(row, col int) {
		if b.IsOpen(row, col) {
			hot[model.Cell{Row: row, Col: col}] = true
		}
	}

	xmax, ymax := b.Extent()
	maxSteps := (xmax + ymax) * 2
	for _, las := range b.Lasers {
		x, y, vx, vy := las.X, las.Y, las.VX, las.VY
		seen := make(map[beam]struct{})

		for steps := 0; x >= -2 && x <= xmax+2 && y >= -2 && y <= ymax+2 && steps < maxSteps; steps++ {
			cr := stepCrossing(model.Point{X: x, Y: y}, vx, vy)
			mx, my := cr.mid.X, cr.mid.Y

			switch {
			case vy == 0 && cr.vertical:
				col := floorDiv(mx-1, 2)
				mark(floorDiv(y-1, 2), col)
				mark(floorDiv(y+1, 2), col)
			case vx == 0 && cr.horizontal:
				row := floorDiv(my-1, 2)
				mark(row, floorDiv(x-1, 2))
				mark(row, floorDiv(x+1, 2))
			case vx != 0 && vy != 0 && cr.vertical && cr.horizontal:
				corner := cr.cornerCell()
				for dr := -1; dr <= 1; dr++ {
					for dc := -1; dc <= 1; dc++ {
						mark(corner.Row+dr, corner.Col+dc)
					}
				}
			}

			x, y = cr.next.X, cr.next.Y
			st := beam{pos: cr.next, dir: direction{vx: vx, vy: vy}}
			if _, ok := seen[st]; ok {
				break
			}
			seen[st] = struct{}{}
			if abs(x) > xmax+10 || abs(y) > ymax+10 {
				break
			}
		}
	}
	return hot
}

// OrderSlots sorts cells so the most promising come first: nearest to a
// target the base board leaves uncovered, then hot slots, then row-major.
// Coverage comes from sim so it agrees with the search that uses the order.
// It only reorders; every input cell is kept.
func OrderSlots(sim *Simulator, b *model.Board, cells []model.Cell) []model.Cell {
	hot := HotSlots(b)

	goals := sim.Visited(b).Missing(b.Targets)
	if len(goals) == 0 {
		goals = b.Targets
	}
	dist := func(c model.Cell) int {
		if len(goals) == 0 {
			return 0
		}
		center := CellCenter(c)
		best := manhattan(center, goals[0])
		for _, t := range goals[1:] {
			if d := manhattan(center, t); d < best {
				best = d
			}
		}
		return best
	}

	out := append([]model.Cell(nil), cells...)
	keys := make(map[model.Cell]int, len(out))
	for _, c := range out {
		keys[c] = dist(c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, c := out[i], out[j]
		if keys[a] != keys[c] {
			return keys[a] < keys[c]
		}
		if hot[a] != hot[c] {
			return hot[a]
		}
		if a.Row != c.Row {
			return a.Row < c.Row
		}
		return a.Col < c.Col
	})
	return out
}
