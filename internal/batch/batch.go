// Package batch solves a set of puzzle files one after another, each under
// its own time limit, and records what happened to every one of them.
package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/piwi3910/lazor/internal/engine"
	"github.com/piwi3910/lazor/internal/export"
	"github.com/piwi3910/lazor/internal/importer"
	"github.com/piwi3910/lazor/internal/logging"
	"github.com/piwi3910/lazor/internal/model"
	"github.com/piwi3910/lazor/internal/project"
	"github.com/rs/zerolog"
)

var batchLog zerolog.Logger = logging.Module("batch")

// Status is the outcome class of one puzzle.
type Status string

const (
	StatusOK         Status = "OK"          // solved and confirmed by re-simulation
	StatusHitMiss    Status = "HIT_MISS"    // solved but the re-simulation misses a target
	StatusNoSolution Status = "NO_SOLUTION" // search space exhausted
	StatusTimeout    Status = "TIMEOUT"     // per-puzzle limit reached
	StatusError      Status = "ERROR"       // puzzle could not be loaded
)

// Options control a batch run.
type Options struct {
	Settings       engine.Settings
	Timeout        time.Duration // per puzzle, 0 = none
	OutputDir      string        // where .sol files go, empty = next to the puzzle
	WriteSolutions bool
}

// Outcome is the result of one puzzle.
type Outcome struct {
	File     string
	Board    *model.Board // nil when the puzzle failed to load
	Status   Status
	Result   engine.Result
	Elapsed  time.Duration
	Solution string // path of the written .sol file
	Err      error
}

// Solved reports whether the outcome carries a confirmed solution.
func (o Outcome) Solved() bool {
	return o.Status == StatusOK
}

// Report is the result of a whole run.
type Report struct {
	RunID     string
	Source    string
	StartedAt time.Time
	Elapsed   time.Duration
	Outcomes  []Outcome
}

// Count returns how many outcomes have the given status.
func (r Report) Count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Runner solves puzzles and optionally records each run.
type Runner struct {
	opts       Options
	history    *project.History
	archiveDir string

	verify func(b *model.Board, sol *model.Candidate) bool
}

// NewRunner creates a runner with the given options.
func NewRunner(opts Options) *Runner {
	r := &Runner{opts: opts}
	sim := engine.NewSimulator(opts.Settings)
	r.verify = func(b *model.Board, sol *model.Candidate) bool {
		return sim.Visited(sol).ContainsAll(b.Targets)
	}
	return r
}

// WithHistory records every run into h.
func (r *Runner) WithHistory(h *project.History) *Runner {
	r.history = h
	return r
}

// WithArchive writes a compressed archive of every run into dir.
func (r *Runner) WithArchive(dir string) *Runner {
	r.archiveDir = dir
	return r
}

// Run solves every .bff file in dir in name order.
func (r *Runner) Run(ctx context.Context, dir string) (Report, error) {
	files, err := importer.FindPuzzles(dir)
	if err != nil {
		return Report{}, err
	}
	if len(files) == 0 {
		return Report{}, fmt.Errorf("no .bff puzzles found in %s", dir)
	}
	return r.RunFiles(ctx, dir, files)
}

// RunFiles solves the given files in order. Source names the run in history.
// It stops early and returns ctx.Err() when ctx ends; the outcomes so far are
// still returned and recorded.
func (r *Runner) RunFiles(ctx context.Context, source string, files []string) (Report, error) {
	rep := Report{RunID: project.NewRunID(), Source: source, StartedAt: time.Now()}
	batchLog.Info().Str("run", rep.RunID).Str("source", source).Int("puzzles", len(files)).Msg("batch started")

	var runErr error
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		rep.Outcomes = append(rep.Outcomes, r.SolveFile(ctx, file))
	}
	rep.Elapsed = time.Since(rep.StartedAt)

	if err := r.record(rep); err != nil {
		batchLog.Error().Err(err).Str("run", rep.RunID).Msg("failed to record run")
		if runErr == nil {
			runErr = err
		}
	}

	batchLog.Info().
		Str("run", rep.RunID).
		Int("ok", rep.Count(StatusOK)).
		Int("noSolution", rep.Count(StatusNoSolution)).
		Int("timeout", rep.Count(StatusTimeout)).
		Int("error", rep.Count(StatusError)+rep.Count(StatusHitMiss)).
		Dur("elapsed", rep.Elapsed).
		Msg("batch finished")
	return rep, runErr
}

// SolveFile loads, solves and verifies one puzzle under the configured limit.
func (r *Runner) SolveFile(ctx context.Context, path string) Outcome {
	out := Outcome{File: path}
	start := time.Now()

	b, err := importer.LoadBoard(path)
	if err != nil {
		out.Status, out.Err = StatusError, err
		out.Elapsed = time.Since(start)
		r.logOutcome(out)
		return out
	}
	out.Board = b

	solveCtx := ctx
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	res, err := engine.New(r.opts.Settings).Solve(solveCtx, b)
	out.Result = res
	switch {
	case err == nil && r.verify(b, res.Solution):
		out.Status = StatusOK
	case err == nil:
		out.Status = StatusHitMiss
		out.Err = fmt.Errorf("layout %s does not reach every target", res.Solution.Key())
	case errors.Is(err, engine.ErrNoSolution):
		out.Status, out.Err = StatusNoSolution, err
	case errors.Is(err, context.DeadlineExceeded):
		out.Status, out.Err = StatusTimeout, err
	default:
		out.Status, out.Err = StatusError, err
	}

	if out.Status == StatusOK && r.opts.WriteSolutions {
		solPath := r.solutionPath(path)
		if err := export.SaveSolution(solPath, export.NewSolved(b, res.Solution, time.Since(start))); err != nil {
			out.Status, out.Err = StatusError, err
		} else {
			out.Solution = solPath
		}
	}

	out.Elapsed = time.Since(start)
	r.logOutcome(out)
	return out
}

func (r *Runner) solutionPath(puzzle string) string {
	dir := r.opts.OutputDir
	if dir == "" {
		dir = filepath.Dir(puzzle)
	}
	base := strings.TrimSuffix(filepath.Base(puzzle), filepath.Ext(puzzle))
	return filepath.Join(dir, base+".sol")
}

func (r *Runner) logOutcome(o Outcome) {
	ev := batchLog.Info()
	if o.Status == StatusError || o.Status == StatusHitMiss {
		ev = batchLog.Warn()
	}
	ev = ev.Str("file", filepath.Base(o.File)).
		Str("status", string(o.Status)).
		Float64("seconds", o.Elapsed.Seconds())
	if o.Board != nil {
		ev = ev.Str("inventory", o.Board.Inventory.String()).
			Int("slots", o.Result.Stats.Slots).
			Int("candidates", o.Result.Stats.Candidates)
	}
	if o.Err != nil {
		ev = ev.AnErr("reason", o.Err)
	}
	ev.Msg("puzzle done")
}
