package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/piwi3910/lazor/internal/model"
)

// ErrNoSolution is returned when the search space was exhausted without a
// layout covering every target.
var ErrNoSolution = errors.New("no solution")

// Stats describes the work done by one Solve call.
type Stats struct {
	Slots        int           `json:"slots"`
	Blocks       int           `json:"blocks"`
	Targets      int           `json:"targets"`
	Combinations int           `json:"combinations"` // position combinations entered
	Candidates   int           `json:"candidates"`   // layouts simulated
	Invalid      int           `json:"invalid"`      // layouts rejected by Place
	CacheHits    int           `json:"cache_hits"`
	BestHits     int           `json:"best_hits"` // most targets covered by any layout
	BestLayout   string        `json:"best_layout,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
}

// merge folds the counters of o into s, keeping the better partial layout.
func (s *Stats) merge(o Stats) {
	s.Combinations += o.Combinations
	s.Candidates += o.Candidates
	s.Invalid += o.Invalid
	s.CacheHits += o.CacheHits
	if o.BestHits > s.BestHits {
		s.BestHits = o.BestHits
		s.BestLayout = o.BestLayout
	}
}

// Result is the outcome of a Solve call. Solution is nil unless the error is nil.
type Result struct {
	Solution *model.Candidate
	Visited  model.PointSet
	Stats    Stats
}

// Solver searches block placements for a board.
type Solver struct {
	Settings Settings
}

// New creates a solver with the given settings.
func New(settings Settings) *Solver {
	return &Solver{Settings: settings.normalized()}
}

// Solve returns the first layout, in search order, whose beams cover every
// target. It returns ErrNoSolution when none exists and ctx.Err() when the
// context ends first. Stats are filled in either case.
func (s *Solver) Solve(ctx context.Context, b *model.Board) (Result, error) {
	start := time.Now()
	settings := s.Settings.normalized()
	sim := NewSimulator(settings)

	tokens := BlockTokens(b)
	slots := PlaceableCells(b)
	stats := Stats{Slots: len(slots), Blocks: len(tokens), Targets: len(b.Targets), BestHits: -1}

	finish := func(res Result, err error) (Result, error) {
		res.Stats.Elapsed = time.Since(start)
		if res.Stats.BestHits < 0 {
			res.Stats.BestHits = 0
		}
		ev := engLog.Info().
			Str("board", b.Name).
			Int("candidates", res.Stats.Candidates).
			Int("combinations", res.Stats.Combinations).
			Dur("elapsed", res.Stats.Elapsed)
		switch {
		case err == nil:
			ev.Msg("solution found")
		case errors.Is(err, ErrNoSolution):
			ev.Int("bestHits", res.Stats.BestHits).
				Int("targets", res.Stats.Targets).
				Str("bestLayout", res.Stats.BestLayout).
				Msg("search exhausted")
		default:
			ev.Err(err).Msg("search aborted")
		}
		return res, err
	}

	// No blocks to place: the board as given either works or it does not
	if len(tokens) == 0 {
		cand := model.NewCandidate(b)
		visited := sim.Visited(cand)
		stats.Candidates = 1
		stats.BestHits = visited.CountOf(b.Targets)
		stats.BestLayout = cand.String()
		if visited.ContainsAll(b.Targets) {
			return finish(Result{Solution: cand, Visited: visited, Stats: stats}, nil)
		}
		return finish(Result{Stats: stats}, fmt.Errorf("board %q with no blocks to place: %w", b.Name, ErrNoSolution))
	}

	if len(tokens) > len(slots) {
		return finish(Result{Stats: stats},
			fmt.Errorf("%d blocks but only %d placeable cells: %w", len(tokens), len(slots), ErrNoSolution))
	}

	if settings.OrderSlots {
		slots = OrderSlots(sim, b, slots)
	}

	arrs := buildArrangements(tokens)
	engLog.Debug().
		Str("board", b.Name).
		Int("slots", len(slots)).
		Int("blocks", len(tokens)).
		Int("arrangements", len(arrs)).
		Int("combinations", CountCombinations(len(slots), len(tokens))).
		Int("workers", settings.Workers).
		Msg("starting search")

	var (
		res Result
		err error
	)
	if settings.Workers > 1 {
		res, err = solveParallel(ctx, b, slots, arrs, settings)
	} else {
		res, err = solveSequential(ctx, b, slots, arrs, settings)
	}
	res.Stats.Slots, res.Stats.Blocks, res.Stats.Targets = stats.Slots, stats.Blocks, stats.Targets
	if err == nil && res.Solution == nil {
		err = fmt.Errorf("searched %d candidates: %w", res.Stats.Candidates, ErrNoSolution)
	}
	return finish(res, err)
}

func solveSequential(ctx context.Context, b *model.Board, slots []model.Cell, arrs []arrangement, settings Settings) (Result, error) {
	w := newWorker(b, slots, arrs, settings)
	var (
		res    Result
		runErr error
	)
	forEachCombination(len(slots), len(arrs[0].kinds), func(idx []int) bool {
		if err := ctx.Err(); err != nil {
			runErr = err
			return false
		}
		sol, visited, err := w.tryCombination(ctx, idx)
		if err != nil {
			runErr = err
			return false
		}
		if sol != nil {
			res.Solution, res.Visited = sol, visited
			return false
		}
		return true
	})
	res.Stats = w.stats
	return res, runErr
}

// arrangement is one distinct ordering of the block kinds to place.
type arrangement struct {
	kinds    []model.BlockKind
	reflects int
}

func buildArrangements(tokens []model.BlockKind) []arrangement {
	perms := UniqueArrangements(tokens)
	out := make([]arrangement, len(perms))
	for i, p := range perms {
		out[i] = arrangement{kinds: p, reflects: countReflect(p)}
	}
	return out
}

// worker owns the mutable state of one search thread.
type worker struct {
	board    *model.Board
	slots    []model.Cell
	arrs     []arrangement
	sim      *Simulator
	cand     *model.Candidate
	cache    map[string]struct{}
	progress int
	stats    Stats

	cells  []model.Cell
	blocks []model.Block
}

func newWorker(b *model.Board, slots []model.Cell, arrs []arrangement, settings Settings) *worker {
	n := len(arrs[0].kinds)
	w := &worker{
		board:    b,
		slots:    slots,
		arrs:     arrs,
		sim:      NewSimulator(settings),
		cand:     model.NewCandidate(b),
		progress: settings.ProgressEvery,
		stats:    Stats{BestHits: -1},
		cells:    make([]model.Cell, n),
		blocks:   make([]model.Block, 0, n),
	}
	if settings.StateCache {
		w.cache = make(map[string]struct{})
	}
	return w
}

// tryCombination checks every arrangement and orientation on the slots named
// by idx. It returns a clone of the first covering layout, or nil.
func (w *worker) tryCombination(ctx context.Context, idx []int) (*model.Candidate, model.PointSet, error) {
	w.stats.Combinations++
	for i, j := range idx {
		w.cells[i] = w.slots[j]
	}

	for _, arr := range w.arrs {
		for t := 0; t < 1<<arr.reflects; t++ {
			w.blocks = realize(arr.kinds, t, arr.reflects, w.blocks)
			if err := PlaceAll(w.cand, w.cells, w.blocks); err != nil {
				w.stats.Invalid++
				continue
			}

			if w.cache != nil {
				key := w.cand.Key()
				if _, ok := w.cache[key]; ok {
					w.stats.CacheHits++
					w.cand.Reset()
					continue
				}
				w.cache[key] = struct{}{}
			}

			visited := w.sim.Visited(w.cand)
			w.stats.Candidates++
			hits := visited.CountOf(w.board.Targets)
			if hits > w.stats.BestHits {
				w.stats.BestHits = hits
				w.stats.BestLayout = w.cand.String()
			}
			if hits == len(w.board.Targets) {
				sol := w.cand.Clone()
				w.cand.Reset()
				return sol, visited, nil
			}
			w.cand.Reset()

			if w.progress > 0 && w.stats.Candidates%w.progress == 0 {
				engLog.Debug().
					Str("board", w.board.Name).
					Int("candidates", w.stats.Candidates).
					Int("combinations", w.stats.Combinations).
					Int("bestHits", w.stats.BestHits).
					Msg("search progress")
				if err := ctx.Err(); err != nil {
					return nil, nil, err
				}
			}
		}
	}
	return nil, nil, nil
}
