package export

import (
	"fmt"

	"github.com/piwi3910/lazor/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
)

// DXF layer names.
const (
	LayerGrid    = "GRID"
	LayerBlocks  = "BLOCKS"
	LayerBeams   = "BEAMS"
	LayerTargets = "TARGETS"
)

// dxfUnit is the drawing size of one half-block step.
const dxfUnit = 10.0

// ExportDXF writes the board outline, blocks, beam steps and targets to a
// DXF drawing, one layer each. The y axis is flipped so row 0 is on top.
func ExportDXF(path string, s Solved) error {
	d := dxf.NewDrawing()
	_, height := s.Board.Extent()

	pt := func(p model.Point) (float64, float64) {
		return float64(p.X) * dxfUnit, float64(height-p.Y) * dxfUnit
	}
	line := func(a, b model.Point) error {
		x1, y1 := pt(a)
		x2, y2 := pt(b)
		_, err := d.Line(x1, y1, 0, x2, y2, 0)
		return err
	}
	square := func(c model.Cell) error {
		lo, hi := model.Point{X: 2 * c.Col, Y: 2 * c.Row}, model.Point{X: 2*c.Col + 2, Y: 2*c.Row + 2}
		corners := []model.Point{lo, {X: hi.X, Y: lo.Y}, hi, {X: lo.X, Y: hi.Y}, lo}
		for i := 1; i < len(corners); i++ {
			if err := line(corners[i-1], corners[i]); err != nil {
				return err
			}
		}
		return nil
	}

	// Open and blocked cells
	if _, err := d.AddLayer(LayerGrid, color.White, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add grid layer: %w", err)
	}
	for r := 0; r < s.Board.Rows; r++ {
		for c := 0; c < s.Board.Cols; c++ {
			cell := model.Cell{Row: r, Col: c}
			if err := square(cell); err != nil {
				return fmt.Errorf("failed to draw cell %v: %w", cell, err)
			}
			if !s.Board.IsOpen(r, c) {
				if _, ok := s.Board.FixedAt(r, c); !ok {
					// Cross out cells that can never hold a block
					if err := line(model.Point{X: 2 * c, Y: 2 * r}, model.Point{X: 2*c + 2, Y: 2*r + 2}); err != nil {
						return err
					}
					if err := line(model.Point{X: 2*c + 2, Y: 2 * r}, model.Point{X: 2 * c, Y: 2*r + 2}); err != nil {
						return err
					}
				}
			}
		}
	}

	// Blocks with their letter, mirrors with their diagonal
	if _, err := d.AddLayer(LayerBlocks, color.Blue, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add blocks layer: %w", err)
	}
	for r := 0; r < s.Board.Rows; r++ {
		for c := 0; c < s.Board.Cols; c++ {
			blk, _, ok := s.blockAt(r, c)
			if !ok {
				continue
			}
			x, y := pt(model.Point{X: 2*c + 1, Y: 2*r + 1})
			if _, err := d.Text(string(blk.Kind.Letter()), x-dxfUnit/3, y-dxfUnit/3, 0, dxfUnit*0.6); err != nil {
				return fmt.Errorf("failed to label block at (%d,%d): %w", r, c, err)
			}
			if blk.Kind != model.Reflect {
				continue
			}
			from, to := model.Point{X: 2 * c, Y: 2*r + 2}, model.Point{X: 2*c + 2, Y: 2 * r}
			if blk.Orientation == model.Backslash {
				from, to = model.Point{X: 2 * c, Y: 2 * r}, model.Point{X: 2*c + 2, Y: 2*r + 2}
			}
			if err := line(from, to); err != nil {
				return err
			}
		}
	}

	if _, err := d.AddLayer(LayerBeams, color.Red, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add beams layer: %w", err)
	}
	for _, seg := range s.Trace.Segments {
		if err := line(seg.From, seg.To); err != nil {
			return fmt.Errorf("failed to draw beam: %w", err)
		}
	}

	if _, err := d.AddLayer(LayerTargets, color.Yellow, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add targets layer: %w", err)
	}
	for _, p := range s.Board.Targets {
		x, y := pt(p)
		if _, err := d.Circle(x, y, 0, dxfUnit*0.3); err != nil {
			return fmt.Errorf("failed to draw target %v: %w", p, err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF: %w", err)
	}
	return nil
}
