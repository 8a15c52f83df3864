package model

import (
	"fmt"
	"strings"
)

// Puzzle is the raw content of a puzzle file before validation.
type Puzzle struct {
	Name      string
	Grid      [][]string // tokens o, x, A, B, C
	Inventory Inventory
	Lasers    []Laser
	Targets   []Point
}

// Board is a validated puzzle. It is read-only once built and may be shared
// between goroutines; per-candidate state lives in a Candidate.
type Board struct {
	Name      string
	Rows      int
	Cols      int
	Inventory Inventory
	Lasers    []Laser
	Targets   []Point // deduplicated, sorted by (X, Y)

	open  []bool  // row-major, true where a block may be placed
	fixed []Block // row-major, zero Block where no fixed block
}

// NewBoard validates a puzzle and builds its board. Fixed block cells are
// never open.
func NewBoard(p Puzzle) (*Board, error) {
	if len(p.Grid) == 0 || len(p.Grid[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	rows, cols := len(p.Grid), len(p.Grid[0])
	b := &Board{
		Name:      p.Name,
		Rows:      rows,
		Cols:      cols,
		Inventory: p.Inventory,
		open:      make([]bool, rows*cols),
		fixed:     make([]Block, rows*cols),
	}

	for r, row := range p.Grid {
		if len(row) != cols {
			return nil, fmt.Errorf("row 0 has %d cols but row %d has %d: %w", cols, r, len(row), ErrNotRectangular)
		}
		for c, tok := range row {
			idx := r*cols + c
			switch tok {
			case "o", "O":
				b.open[idx] = true
			case "x", "X":
			case "A", "B", "C", "a", "b", "c":
				kind, err := KindFromLetter(tok[0])
				if err != nil {
					return nil, err
				}
				b.fixed[idx] = NewBlock(kind)
			default:
				return nil, fmt.Errorf("token %q at (%d, %d): %w", tok, r, c, ErrUnknownToken)
			}
		}
	}

	for _, k := range AllKinds {
		if p.Inventory.Count(k) < 0 {
			return nil, fmt.Errorf("negative count %d for %s blocks", p.Inventory.Count(k), k)
		}
	}

	for _, l := range p.Lasers {
		if err := l.Validate(); err != nil {
			return nil, err
		}
	}
	b.Lasers = append([]Laser(nil), p.Lasers...)

	seen := make(PointSet, len(p.Targets))
	for _, t := range p.Targets {
		seen.Add(t)
	}
	b.Targets = seen.Sorted()

	return b, nil
}

// Base returns the board itself, so a Board can be simulated directly.
func (b *Board) Base() *Board {
	return b
}

// InBounds reports whether (row, col) is on the grid.
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.Rows && col >= 0 && col < b.Cols
}

// IsOpen reports whether a block may be placed on the cell.
func (b *Board) IsOpen(row, col int) bool {
	return b.InBounds(row, col) && b.open[row*b.Cols+col]
}

// FixedAt returns the fixed block on the cell, if any.
func (b *Board) FixedAt(row, col int) (Block, bool) {
	if !b.InBounds(row, col) {
		return Block{}, false
	}
	blk := b.fixed[row*b.Cols+col]
	return blk, !blk.IsZero()
}

// BlockAt returns the block on the cell. On a bare board only fixed blocks exist.
func (b *Board) BlockAt(row, col int) (Block, bool) {
	return b.FixedAt(row, col)
}

// PlaceableCells returns every open cell in row-major order.
func (b *Board) PlaceableCells() []Cell {
	var cells []Cell
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			if b.open[r*b.Cols+c] {
				cells = append(cells, Cell{Row: r, Col: c})
			}
		}
	}
	return cells
}

// Extent returns the half-block size of the board: x in [0, 2*Cols], y in [0, 2*Rows].
func (b *Board) Extent() (width, height int) {
	return 2 * b.Cols, 2 * b.Rows
}

// String renders the grid with fixed blocks as letters.
func (b *Board) String() string {
	return renderGrid(b, b)
}

// Summary returns a multi-line description of the board.
func (b *Board) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Board %dx%d\n", b.Rows, b.Cols)
	fmt.Fprintf(&sb, "Grid:\n%s\n", b.String())
	fmt.Fprintf(&sb, "Free blocks: %s\n", b.Inventory)
	lasers := make([]string, len(b.Lasers))
	for i, l := range b.Lasers {
		lasers[i] = l.String()
	}
	fmt.Fprintf(&sb, "Lasers: %s\n", strings.Join(lasers, "; "))
	points := make([]string, len(b.Targets))
	for i, p := range b.Targets {
		points[i] = fmt.Sprintf("P(%d,%d)", p.X, p.Y)
	}
	fmt.Fprintf(&sb, "Points: %s\n", strings.Join(points, "; "))
	return sb.String()
}

// blockSource is satisfied by Board and Candidate.
type blockSource interface {
	BlockAt(row, col int) (Block, bool)
}

func renderGrid(b *Board, src blockSource) string {
	lines := make([]string, b.Rows)
	for r := 0; r < b.Rows; r++ {
		tokens := make([]string, b.Cols)
		for c := 0; c < b.Cols; c++ {
			switch blk, ok := src.BlockAt(r, c); {
			case ok:
				tokens[c] = string(blk.Kind.Letter())
			case b.open[r*b.Cols+c]:
				tokens[c] = "o"
			default:
				tokens[c] = "x"
			}
		}
		lines[r] = strings.Join(tokens, " ")
	}
	return strings.Join(lines, "\n")
}
