package batch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/piwi3910/lazor/internal/export"
	"github.com/piwi3910/lazor/internal/project"
)

// RunRecord summarizes the report for the history store.
func (r Report) RunRecord() project.RunRecord {
	return project.RunRecord{
		ID:        r.RunID,
		StartedAt: r.StartedAt,
		Source:    r.Source,
		Puzzles:   len(r.Outcomes),
		Solved:    r.Count(StatusOK),
		Elapsed:   r.Elapsed.Seconds(),
	}
}

// PuzzleRecord converts an outcome to its history row.
func (o Outcome) PuzzleRecord(runID string) project.PuzzleRecord {
	p := project.PuzzleRecord{
		RunID:      runID,
		File:       filepath.Base(o.File),
		Status:     string(o.Status),
		Elapsed:    o.Elapsed.Seconds(),
		Candidates: o.Result.Stats.Candidates,
		BestHits:   o.Result.Stats.BestHits,
		Layout:     o.layout(),
	}
	if o.Err != nil && o.Status != StatusOK {
		p.Error = o.Err.Error()
	}
	return p
}

// layout is the solved grid, or the best partial layout when unsolved.
func (o Outcome) layout() string {
	if o.Result.Solution != nil {
		return o.Result.Solution.String()
	}
	return o.Result.Stats.BestLayout
}

// record stores the run in the history and the archive when configured.
func (r *Runner) record(rep Report) error {
	var errs []error
	if r.history != nil {
		puzzles := make([]project.PuzzleRecord, len(rep.Outcomes))
		for i, o := range rep.Outcomes {
			puzzles[i] = o.PuzzleRecord(rep.RunID)
		}
		if _, err := r.history.Record(rep.RunRecord(), puzzles); err != nil {
			errs = append(errs, err)
		}
	}
	if r.archiveDir != "" {
		if err := writeArchive(r.archiveDir, rep); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func writeArchive(dir string, rep Report) error {
	w, err := project.CreateArchive(dir, rep.RunRecord())
	if err != nil {
		return err
	}
	for _, o := range rep.Outcomes {
		e := project.ArchiveEntry{Puzzle: o.PuzzleRecord(rep.RunID)}
		if o.Result.Solution != nil {
			e.Placements = o.Result.Solution.Key()
			e.Visited = o.Result.Visited.Sorted()
		}
		if err := w.Write(e); err != nil {
			_ = w.Close()
			return fmt.Errorf("failed to archive %s: %w", o.File, err)
		}
	}
	return w.Close()
}

// ReportRows converts the outcomes to spreadsheet rows.
func (r Report) ReportRows() []export.ReportRow {
	rows := make([]export.ReportRow, len(r.Outcomes))
	for i, o := range r.Outcomes {
		row := export.ReportRow{
			File:       filepath.Base(o.File),
			Status:     string(o.Status),
			Elapsed:    o.Elapsed,
			Slots:      o.Result.Stats.Slots,
			Blocks:     o.Result.Stats.Blocks,
			Targets:    o.Result.Stats.Targets,
			BestHits:   o.Result.Stats.BestHits,
			Candidates: o.Result.Stats.Candidates,
			Layout:     o.layout(),
			Solution:   o.Solution,
		}
		if o.Board != nil {
			row.Inventory = o.Board.Inventory.String()
		}
		if o.Err != nil && o.Status != StatusOK {
			row.Error = o.Err.Error()
		}
		rows[i] = row
	}
	return rows
}

// Solved returns the exporter view of every puzzle that loaded.
func (r Report) Solved() []export.Solved {
	var out []export.Solved
	for _, o := range r.Outcomes {
		if o.Board == nil {
			continue
		}
		sol := o.Result.Solution
		if o.Status != StatusOK {
			sol = nil
		}
		out = append(out, export.NewSolved(o.Board, sol, o.Elapsed))
	}
	return out
}

// Export writes the run-level artifacts named in formats into dir and returns
// the paths written. The sol format is handled per puzzle by the runner.
func (r Report) Export(dir string, formats []string) ([]string, error) {
	var written []string
	solved := r.Solved()
	for _, f := range formats {
		switch f {
		case project.FormatSol:
			continue
		case project.FormatXLSX:
			path := filepath.Join(dir, "report.xlsx")
			if err := export.ExportReport(path, r.RunID, r.ReportRows()); err != nil {
				return written, err
			}
			written = append(written, path)
		case project.FormatPDF:
			if len(solved) == 0 {
				continue
			}
			path := filepath.Join(dir, "solutions.pdf")
			if err := export.ExportPDF(path, solved); err != nil {
				return written, err
			}
			written = append(written, path)
		case project.FormatCards:
			if len(export.CollectCardInfos(solved)) == 0 {
				continue
			}
			path := filepath.Join(dir, "cards.pdf")
			if err := export.ExportCards(path, solved); err != nil {
				return written, err
			}
			written = append(written, path)
		case project.FormatDXF:
			for _, s := range solved {
				if s.Solution == nil {
					continue
				}
				path := filepath.Join(dir, s.Board.Name+".dxf")
				if err := export.ExportDXF(path, s); err != nil {
					return written, err
				}
				written = append(written, path)
			}
		default:
			return written, fmt.Errorf("unknown output format %q (want one of %s)", f,
				strings.Join([]string{project.FormatSol, project.FormatPDF, project.FormatCards, project.FormatDXF, project.FormatXLSX}, ", "))
		}
	}
	return written, nil
}
