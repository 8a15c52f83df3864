package engine

import "github.com/piwi3910/lazor/internal/model"

// boundary names the lattice line crossed by one beam step.
type boundary int

const (
	boundaryVertical   boundary = iota + 1 // x midpoint odd
	boundaryHorizontal                     // y midpoint odd
	boundaryCorner                         // both odd, resolved at the corner cell
)

// floorDiv divides rounding toward negative infinity. Beams routinely walk
// past the top and left edges, so truncating division would pick the wrong cell.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func isOdd(n int) bool {
	return n&1 != 0
}

// crossing describes which boundaries a step from p along (vx, vy) touches.
type crossing struct {
	next       model.Point
	mid        model.Point
	vertical   bool
	horizontal bool
}

func stepCrossing(p model.Point, vx, vy int) crossing {
	next := model.Point{X: p.X + vx, Y: p.Y + vy}
	mid := model.Point{X: floorDiv(p.X+next.X, 2), Y: floorDiv(p.Y+next.Y, 2)}
	return crossing{
		next:       next,
		mid:        mid,
		vertical:   isOdd(mid.X),
		horizontal: isOdd(mid.Y),
	}
}

// cornerCell is the cell owning the lattice corner at the step midpoint.
func (cr crossing) cornerCell() model.Cell {
	return model.Cell{Row: floorDiv(cr.mid.Y-1, 2), Col: floorDiv(cr.mid.X-1, 2)}
}

// verticalEdgeCells returns the cells beside the vertical edge crossed at
// midpoint mx, nearest to the direction of vertical travel first.
func verticalEdgeCells(mx, y, vy int) [2]model.Cell {
	col := floorDiv(mx-1, 2)
	up := model.Cell{Row: floorDiv(y-1, 2), Col: col}
	down := model.Cell{Row: floorDiv(y+1, 2), Col: col}
	if vy > 0 {
		return [2]model.Cell{down, up}
	}
	return [2]model.Cell{up, down}
}

// horizontalEdgeCells returns the cells beside the horizontal edge crossed at
// midpoint my, nearest to the direction of horizontal travel first.
func horizontalEdgeCells(x, my, vx int) [2]model.Cell {
	row := floorDiv(my-1, 2)
	left := model.Cell{Row: row, Col: floorDiv(x-1, 2)}
	right := model.Cell{Row: row, Col: floorDiv(x+1, 2)}
	if vx > 0 {
		return [2]model.Cell{right, left}
	}
	return [2]model.Cell{left, right}
}

// CellCenter returns the half-block coordinate of a cell's centre.
func CellCenter(c model.Cell) model.Point {
	return model.Point{X: 2*c.Col + 1, Y: 2*c.Row + 1}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func manhattan(a, b model.Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}
