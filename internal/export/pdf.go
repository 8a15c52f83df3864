package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/lazor/internal/model"
)

// rgb is a fill or stroke color.
type rgb struct {
	R, G, B int
}

// blockColors gives each block kind a fixed fill.
var blockColors = map[model.BlockKind]rgb{
	model.Reflect: {R: 33, G: 150, B: 243},  // blue
	model.Opaque:  {R: 66, G: 66, B: 66},    // charcoal
	model.Refract: {R: 0, G: 188, B: 212},   // cyan
}

var (
	openColor    = rgb{R: 245, G: 240, B: 225}
	blockedColor = rgb{R: 190, G: 190, B: 190}
	beamColor    = rgb{R: 244, G: 67, B: 54}
	targetColor  = rgb{R: 255, G: 152, B: 0}
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF renders one page per puzzle with the board, placed blocks, beam
// paths and targets, followed by a summary page.
func ExportPDF(path string, puzzles []Solved) error {
	if len(puzzles) == 0 {
		return fmt.Errorf("no puzzles to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for _, s := range puzzles {
		pdf.AddPage()
		renderBoardPage(pdf, s)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, puzzles)

	return pdf.OutputFileAndClose(path)
}

// boardView maps half-block coordinates onto the page.
type boardView struct {
	scale            float64 // mm per half-block unit
	offsetX, offsetY float64
	minX, minY       int // half-block coordinate drawn at the offset
}

func (v boardView) at(p model.Point) (float64, float64) {
	return v.offsetX + float64(p.X-v.minX)*v.scale, v.offsetY + float64(p.Y-v.minY)*v.scale
}

// newBoardView fits the board plus every traced point into the drawing area.
func newBoardView(s Solved, drawWidth, drawHeight float64) boardView {
	w, h := s.Board.Extent()
	minX, minY, maxX, maxY := 0, 0, w, h
	for _, seg := range s.Trace.Segments {
		for _, p := range []model.Point{seg.From, seg.To} {
			minX, maxX = min(minX, p.X), max(maxX, p.X)
			minY, maxY = min(minY, p.Y), max(maxY, p.Y)
		}
	}
	spanX, spanY := float64(maxX-minX), float64(maxY-minY)
	scale := math.Min(drawWidth/spanX, drawHeight/spanY)

	return boardView{
		scale:   scale,
		offsetX: marginLeft + (drawWidth-spanX*scale)/2,
		offsetY: drawAreaTop,
		minX:    minX,
		minY:    minY,
	}
}

// renderBoardPage draws a single puzzle on the current PDF page.
func renderBoardPage(pdf *fpdf.Fpdf, s Solved) {
	b := s.Board

	// Title
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	status := "unsolved"
	if s.Solution != nil {
		status = "solved"
	}
	title := fmt.Sprintf("%s: %d x %d board (%s)", b.Name, b.Rows, b.Cols, status)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	// Stats line
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Blocks: %s | Lasers: %d | Targets: %d/%d hit | Time: %.3fs",
		b.Inventory, len(b.Lasers), s.Trace.Visited.CountOf(b.Targets), len(b.Targets), s.Elapsed.Seconds())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	view := newBoardView(s, drawWidth, drawHeight)
	cell := 2 * view.scale

	// Cells
	for r := 0; r < b.Rows; r++ {
		for c := 0; c < b.Cols; c++ {
			x, y := view.at(model.Point{X: 2 * c, Y: 2 * r})
			fill := blockedColor
			if b.IsOpen(r, c) {
				fill = openColor
			}
			blk, placed, ok := s.blockAt(r, c)
			if ok {
				fill = blockColors[blk.Kind]
			}

			pdf.SetFillColor(fill.R, fill.G, fill.B)
			pdf.SetDrawColor(100, 100, 100)
			pdf.SetLineWidth(0.3)
			pdf.Rect(x, y, cell, cell, "FD")

			if ok {
				drawBlockMarks(pdf, blk, placed, x, y, cell)
			}
		}
	}

	drawBeams(pdf, s, view)
	drawTargets(pdf, s, view)
	drawGridAnnotations(pdf, b, view)
	drawBlockLegend(pdf, s, pageHeight-marginBottom-legendHeight+5)
}

// drawBlockMarks adds the mirror diagonal and letter to a block cell. Solver
// placements get a heavier outline than fixed blocks.
func drawBlockMarks(pdf *fpdf.Fpdf, blk model.Block, placed bool, x, y, size float64) {
	if placed {
		pdf.SetDrawColor(255, 255, 255)
		pdf.SetLineWidth(0.8)
		pdf.Rect(x+0.6, y+0.6, size-1.2, size-1.2, "D")
	}

	if blk.Kind == model.Reflect {
		pdf.SetDrawColor(255, 255, 255)
		pdf.SetLineWidth(0.6)
		if blk.Orientation == model.Backslash {
			pdf.Line(x, y, x+size, y+size)
		} else {
			pdf.Line(x, y+size, x+size, y)
		}
	}

	if size > 8 {
		letter := string(blk.Kind.Letter())
		pdf.SetFont("Helvetica", "B", labelFontSize(size, size))
		pdf.SetTextColor(255, 255, 255)
		lw := pdf.GetStringWidth(letter)
		pdf.SetXY(x+1, y+1)
		pdf.CellFormat(lw, 4, letter, "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
}

// drawBeams draws every traced beam step and marks the laser origins.
func drawBeams(pdf *fpdf.Fpdf, s Solved, view boardView) {
	pdf.SetDrawColor(beamColor.R, beamColor.G, beamColor.B)
	pdf.SetLineWidth(0.5)
	for _, seg := range s.Trace.Segments {
		x1, y1 := view.at(seg.From)
		x2, y2 := view.at(seg.To)
		pdf.Line(x1, y1, x2, y2)
	}

	pdf.SetFillColor(beamColor.R, beamColor.G, beamColor.B)
	for _, l := range s.Board.Lasers {
		x, y := view.at(l.Origin())
		pdf.Circle(x, y, math.Max(view.scale*0.25, 0.8), "F")
	}
}

// drawTargets circles each target, filled when a beam passes through it.
func drawTargets(pdf *fpdf.Fpdf, s Solved, view boardView) {
	radius := math.Max(view.scale*0.3, 1)
	pdf.SetDrawColor(targetColor.R, targetColor.G, targetColor.B)
	pdf.SetFillColor(targetColor.R, targetColor.G, targetColor.B)
	pdf.SetLineWidth(0.4)
	for _, p := range s.Board.Targets {
		x, y := view.at(p)
		style := "D"
		if s.Trace.Visited.Has(p) {
			style = "FD"
		}
		pdf.Circle(x, y, radius, style)
	}
}

// drawGridAnnotations labels columns above and rows left of the board.
func drawGridAnnotations(pdf *fpdf.Fpdf, b *model.Board, view boardView) {
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(80, 80, 80)

	for c := 0; c < b.Cols; c++ {
		x, y := view.at(model.Point{X: 2*c + 1, Y: 0})
		label := fmt.Sprintf("%d", c)
		lw := pdf.GetStringWidth(label)
		pdf.SetXY(x-lw/2, y-4)
		pdf.CellFormat(lw, 3, label, "", 0, "C", false, 0, "")
	}

	for r := 0; r < b.Rows; r++ {
		x, y := view.at(model.Point{X: 0, Y: 2*r + 1})
		label := fmt.Sprintf("%d", r)
		pdf.TransformBegin()
		pdf.TransformRotate(90, x-3, y)
		lw := pdf.GetStringWidth(label)
		pdf.SetXY(x-3-lw/2, y-1.5)
		pdf.CellFormat(lw, 3, label, "", 0, "C", false, 0, "")
		pdf.TransformEnd()
	}

	pdf.SetTextColor(0, 0, 0)
}

// drawBlockLegend lists the solver placements at the bottom of the page.
func drawBlockLegend(pdf *fpdf.Fpdf, s Solved, startY float64) {
	if s.Solution == nil || s.Solution.Len() == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Blocks placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for _, p := range s.Solution.Placements() {
		col := blockColors[p.Block.Kind]
		label := fmt.Sprintf("%c%s at %v", p.Block.Kind.Letter(), p.Block.Orientation, p.Cell)
		labelW := pdf.GetStringWidth(label) + 6

		// Wrap to next line if needed
		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws a table of every exported puzzle.
func renderSummaryPage(pdf *fpdf.Fpdf, puzzles []Solved) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Lazor Solutions Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft+5, y)
	pdf.CellFormat(60, 6, "Puzzles solved:", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(40, 6, fmt.Sprintf("%d of %d", countSolved(puzzles), len(puzzles)), "", 0, "L", false, 0, "")
	y += 12

	colWidths := []float64{50, 30, 45, 30, 35, 35, 40}
	headers := []string{"Puzzle", "Size", "Inventory", "Lasers", "Targets hit", "Status", "Time"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, s := range puzzles {
		if y > pageHeight-marginBottom-10 {
			pdf.AddPage()
			y = marginTop
		}
		status := "no solution"
		if s.Solution != nil {
			status = "solved"
		}
		row := []string{
			s.Board.Name,
			fmt.Sprintf("%d x %d", s.Board.Rows, s.Board.Cols),
			s.Board.Inventory.String(),
			fmt.Sprintf("%d", len(s.Board.Lasers)),
			fmt.Sprintf("%d/%d", s.Trace.Visited.CountOf(s.Board.Targets), len(s.Board.Targets)),
			status,
			fmt.Sprintf("%.3fs", s.Elapsed.Seconds()),
		}

		// Alternate row background
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos = marginLeft
		for j, cell := range row {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	// Footer
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by lazor - laser puzzle solver", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 12
	case minDim > 20:
		return 9
	default:
		return 7
	}
}

func countSolved(puzzles []Solved) int {
	n := 0
	for _, s := range puzzles {
		if s.Solution != nil {
			n++
		}
	}
	return n
}
