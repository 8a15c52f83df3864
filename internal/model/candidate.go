package model

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Placement is one block put on one cell by the solver.
type Placement struct {
	Cell  Cell  `json:"cell"`
	Block Block `json:"block"`
}

// Candidate overlays solver placements on a shared base board. Placing and
// undoing touches only the affected cells, so a worker keeps one Candidate
// for its whole search instead of copying the board per trial.
type Candidate struct {
	board   *Board
	overlay []Block
	placed  []Cell // placement order, used by Undo
}

// NewCandidate returns an empty overlay on b.
func NewCandidate(b *Board) *Candidate {
	return &Candidate{
		board:   b,
		overlay: make([]Block, b.Rows*b.Cols),
	}
}

// Base returns the underlying board.
func (c *Candidate) Base() *Board {
	return c.board
}

// BlockAt returns the placed or fixed block on the cell.
func (c *Candidate) BlockAt(row, col int) (Block, bool) {
	if !c.board.InBounds(row, col) {
		return Block{}, false
	}
	if blk := c.overlay[row*c.board.Cols+col]; !blk.IsZero() {
		return blk, true
	}
	return c.board.FixedAt(row, col)
}

// Place puts blk on cell. It fails with ErrInvalidPlacement when the cell is
// off the grid, not open, or already holds a placed block.
func (c *Candidate) Place(cell Cell, blk Block) error {
	if blk.IsZero() {
		return fmt.Errorf("empty block at %v: %w", cell, ErrInvalidPlacement)
	}
	if !c.board.IsOpen(cell.Row, cell.Col) {
		return fmt.Errorf("cell %v is not open: %w", cell, ErrInvalidPlacement)
	}
	idx := cell.Row*c.board.Cols + cell.Col
	if !c.overlay[idx].IsZero() {
		return fmt.Errorf("cell %v already holds %s: %w", cell, c.overlay[idx], ErrInvalidPlacement)
	}
	c.overlay[idx] = blk
	c.placed = append(c.placed, cell)
	return nil
}

// Undo removes the last n placements.
func (c *Candidate) Undo(n int) {
	for ; n > 0 && len(c.placed) > 0; n-- {
		last := c.placed[len(c.placed)-1]
		c.overlay[last.Row*c.board.Cols+last.Col] = Block{}
		c.placed = c.placed[:len(c.placed)-1]
	}
}

// Reset removes every placement.
func (c *Candidate) Reset() {
	c.Undo(len(c.placed))
}

// Len returns the number of placed blocks.
func (c *Candidate) Len() int {
	return len(c.placed)
}

// Placements returns the placed blocks ordered by cell.
func (c *Candidate) Placements() []Placement {
	out := make([]Placement, 0, len(c.placed))
	for _, cell := range c.placed {
		out = append(out, Placement{Cell: cell, Block: c.overlay[cell.Row*c.board.Cols+cell.Col]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Cell.Row != out[j].Cell.Row {
			return out[i].Cell.Row < out[j].Cell.Row
		}
		return out[i].Cell.Col < out[j].Cell.Col
	})
	return out
}

// Clone returns an independent copy sharing only the read-only base board.
func (c *Candidate) Clone() *Candidate {
	cp := &Candidate{
		board:   c.board,
		overlay: make([]Block, len(c.overlay)),
		placed:  make([]Cell, len(c.placed)),
	}
	copy(cp.overlay, c.overlay)
	copy(cp.placed, c.placed)
	return cp
}

// Key identifies the realized layout by exact cell and block, e.g.
// "0,0=A/;1,0=C". Two candidates share a key only if they place the same
// blocks on the same cells.
func (c *Candidate) Key() string {
	var sb strings.Builder
	for i, p := range c.Placements() {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(strconv.Itoa(p.Cell.Row))
		sb.WriteByte(',')
		sb.WriteString(strconv.Itoa(p.Cell.Col))
		sb.WriteByte('=')
		sb.WriteByte(p.Block.Kind.Letter())
		sb.WriteString(p.Block.Orientation.String())
	}
	return sb.String()
}

// String renders the grid with fixed and placed blocks as letters.
func (c *Candidate) String() string {
	return renderGrid(c.board, c)
}
