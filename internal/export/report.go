package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// ReportRow is one puzzle in a batch report.
type ReportRow struct {
	File       string
	Status     string
	Elapsed    time.Duration
	Inventory  string
	Slots      int
	Blocks     int
	Targets    int
	BestHits   int
	Candidates int
	Layout     string // solved grid or best partial layout
	Solution   string // output path, empty when unsolved
	Error      string
}

const (
	resultsSheet = "Results"
	summarySheet = "Summary"
)

var reportHeaders = []string{
	"File", "Status", "Time (s)", "Inventory", "Slots", "Blocks",
	"Targets", "Best Hits", "Candidates", "Layout", "Solution", "Error",
}

// ExportReport writes a workbook with one row per puzzle on a Results sheet
// and per-status counts on a Summary sheet.
func ExportReport(path, runID string, rows []ReportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return fmt.Errorf("failed to name results sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range reportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(resultsSheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(reportHeaders), 1)
	if err := f.SetCellStyle(resultsSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	counts := make(map[string]int)
	var order []string
	for r, row := range rows {
		if _, ok := counts[row.Status]; !ok {
			order = append(order, row.Status)
		}
		counts[row.Status]++

		values := []interface{}{
			row.File, row.Status, row.Elapsed.Seconds(), row.Inventory, row.Slots, row.Blocks,
			row.Targets, row.BestHits, row.Candidates, row.Layout, row.Solution, row.Error,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(resultsSheet, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", r+1, err)
			}
		}
	}
	_ = f.SetColWidth(resultsSheet, "A", "A", 24)
	_ = f.SetColWidth(resultsSheet, "J", "J", 30)

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	summary := [][]interface{}{
		{"Run", runID},
		{"Puzzles", len(rows)},
	}
	for _, status := range order {
		summary = append(summary, []interface{}{status, counts[status]})
	}
	for r, pair := range summary {
		for c, v := range pair {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			if err := f.SetCellValue(summarySheet, cell, v); err != nil {
				return fmt.Errorf("failed to write summary: %w", err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}
