package engine

import (
	"context"
	"math"
	"sync"
	"sync/atomic"

	"github.com/piwi3910/lazor/internal/model"
)

// combination is one top-level unit of parallel work.
type combination struct {
	index int
	idx   []int
}

// solveParallel splits the search by position combination. Workers keep
// scanning combinations below the best index found so far, so the returned
// layout is the one the sequential search would return.
func solveParallel(ctx context.Context, b *model.Board, slots []model.Cell, arrs []arrangement, settings Settings) (Result, error) {
	jobs := make(chan combination, settings.Workers*2)
	var best atomic.Int64
	best.Store(math.MaxInt64)

	var (
		mu      sync.Mutex
		res     Result
		firstEr error
	)

	// Produce combinations in lexicographic order until exhausted, cancelled
	// or past a found solution.
	go func() {
		defer close(jobs)
		n := 0
		forEachCombination(len(slots), len(arrs[0].kinds), func(idx []int) bool {
			if int64(n) > best.Load() {
				return false
			}
			job := combination{index: n, idx: append([]int(nil), idx...)}
			n++
			select {
			case jobs <- job:
				return true
			case <-ctx.Done():
				return false
			}
		})
	}()

	var wg sync.WaitGroup
	workers := make([]*worker, settings.Workers)
	for i := range workers {
		w := newWorker(b, slots, arrs, settings)
		workers[i] = w
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if int64(job.index) > best.Load() || ctx.Err() != nil {
					continue
				}
				sol, visited, err := w.tryCombination(ctx, job.idx)
				if err != nil {
					mu.Lock()
					if firstEr == nil {
						firstEr = err
					}
					mu.Unlock()
					continue
				}
				if sol == nil {
					continue
				}
				mu.Lock()
				if int64(job.index) < best.Load() {
					best.Store(int64(job.index))
					res.Solution, res.Visited = sol, visited
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	res.Stats = Stats{BestHits: -1}
	for _, w := range workers {
		res.Stats.merge(w.stats)
	}

	if res.Solution != nil {
		return res, nil
	}
	if firstEr != nil {
		return res, firstEr
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}
