package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// CardInfo holds the data encoded into each solution card's QR code.
type CardInfo struct {
	Puzzle     string `json:"puzzle"`
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols"`
	Placements string `json:"placements"` // e.g. "0,0=A/;2,1=C"
	Grid       string `json:"grid"`
	Targets    int    `json:"targets"`
}

// Card layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each card is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	cardMarginTop  = 12.7 // mm
	cardMarginLeft = 4.8  // mm
	cardWidth      = 66.7 // mm per card
	cardHeight     = 25.4 // mm per card
	cardCols       = 3
	cardRows       = 10
	cardsPerPage   = cardCols * cardRows
	qrSize         = 20.0 // QR code size in mm
	cardPadding    = 2.0  // mm internal padding
)

// ExportCards generates a PDF of QR-coded cards, one per solved puzzle. The
// QR code carries the placements as JSON so a solution can be scanned back.
func ExportCards(path string, puzzles []Solved) error {
	cards := CollectCardInfos(puzzles)
	if len(cards) == 0 {
		return fmt.Errorf("no solved puzzles to generate cards for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, card := range cards {
		if i%cardsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % cardsPerPage
		col := posOnPage % cardCols
		row := posOnPage / cardCols

		x := cardMarginLeft + float64(col)*cardWidth
		y := cardMarginTop + float64(row)*cardHeight

		if err := renderCard(pdf, x, y, i, card); err != nil {
			return fmt.Errorf("failed to render card for %q: %w", card.Puzzle, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderCard draws a single card at the given position.
func renderCard(pdf *fpdf.Fpdf, x, y float64, idx int, info CardInfo) error {
	// Light border for cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, cardWidth, cardHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal card info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d_%s", idx, info.Puzzle)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	// QR code on the right side of the card
	qrX := x + cardWidth - qrSize - cardPadding
	qrY := y + (cardHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + cardPadding
	textW := cardWidth - qrSize - 3*cardPadding

	// Puzzle name (bold, truncated to fit)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+cardPadding)
	name := info.Puzzle
	if pdf.GetStringWidth(name) > textW {
		for len(name) > 0 && pdf.GetStringWidth(name+"...") > textW {
			name = name[:len(name)-1]
		}
		name += "..."
	}
	pdf.CellFormat(textW, 4.5, name, "", 1, "L", false, 0, "")

	// Board size and targets
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+cardPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%d x %d, %d targets", info.Rows, info.Cols, info.Targets), "", 1, "L", false, 0, "")

	// Solved grid in monospace, one row per line while it fits
	pdf.SetFont("Courier", "", 6)
	pdf.SetTextColor(100, 100, 100)
	lineY := y + cardPadding + 9
	for _, line := range strings.Split(info.Grid, "\n") {
		if lineY > y+cardHeight-cardPadding-2.5 {
			break
		}
		pdf.SetXY(textX, lineY)
		pdf.CellFormat(textW, 2.5, line, "", 0, "L", false, 0, "")
		lineY += 2.5
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}

// CollectCardInfos extracts card data for every solved puzzle.
func CollectCardInfos(puzzles []Solved) []CardInfo {
	var cards []CardInfo
	for _, s := range puzzles {
		if s.Solution == nil {
			continue
		}
		cards = append(cards, CardInfo{
			Puzzle:     s.Board.Name,
			Rows:       s.Board.Rows,
			Cols:       s.Board.Cols,
			Placements: s.Solution.Key(),
			Grid:       s.Solution.String(),
			Targets:    len(s.Board.Targets),
		})
	}
	return cards
}
