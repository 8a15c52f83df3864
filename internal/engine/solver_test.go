package engine

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/piwi3910/lazor/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threeByThree is a 3x3 board with an opaque block at (0,1), three reflect
// blocks and one refract block to place.
func threeByThree(t *testing.T, l model.Laser, targets ...model.Point) *model.Board {
	return mustBoard(t, []string{"oBo", "ooo", "ooo"},
		model.Inventory{Reflect: 3, Refract: 1}, []model.Laser{l}, targets)
}

func quietSettings() Settings {
	s := DefaultSettings()
	s.ProgressEvery = 0
	return s
}

func requireCovers(t *testing.T, b *model.Board, res Result) {
	t.Helper()
	require.NotNil(t, res.Solution)
	assert.Equal(t, b.Inventory.Total(), res.Solution.Len(), "every block must be placed")
	assert.True(t, Simulate(res.Solution).ContainsAll(b.Targets), "solution must cover every target")
	assert.True(t, res.Visited.ContainsAll(b.Targets))
}

func TestSolve_FindsCoveringLayout(t *testing.T) {
	b := threeByThree(t, laser(4, 5, -1, -1), pt(1, 2), pt(6, 3))

	res, err := New(quietSettings()).Solve(context.Background(), b)

	require.NoError(t, err)
	requireCovers(t, b, res)
	assert.True(t, exhaustiveSolvable(b))
	assert.Greater(t, res.Stats.Candidates, 0)
	assert.Equal(t, 8, res.Stats.Slots)
	assert.Equal(t, 4, res.Stats.Blocks)
	assert.Equal(t, 2, res.Stats.BestHits)
}

func TestSolve_UnorderedSlotsAlsoSound(t *testing.T) {
	b := threeByThree(t, laser(4, 5, -1, -1), pt(1, 2), pt(6, 3))
	s := quietSettings()
	s.OrderSlots = false

	res, err := New(s).Solve(context.Background(), b)

	require.NoError(t, err)
	requireCovers(t, b, res)
}

func TestSolve_InfeasibleScenarioAgreesWithOracle(t *testing.T) {
	// Laser from (2,7) up-left with targets (3,0) and (4,3): no layout of
	// three reflect and one refract block covers both.
	b := threeByThree(t, laser(2, 7, -1, -1), pt(3, 0), pt(4, 3))

	res, err := New(quietSettings()).Solve(context.Background(), b)

	assert.False(t, exhaustiveSolvable(b))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSolution))
	assert.Nil(t, res.Solution)
	assert.Equal(t, CountCombinations(8, 4), res.Stats.Combinations, "search must be exhaustive")
	assert.Less(t, res.Stats.BestHits, 2)
	assert.NotEmpty(t, res.Stats.BestLayout)
}

func TestSolve_ZeroInventoryUncoveredTarget(t *testing.T) {
	b := mustBoard(t, []string{"oo", "oo"}, model.Inventory{}, []model.Laser{laser(0, 1, 1, 1)}, []model.Point{pt(0, 0)})

	res, err := New(quietSettings()).Solve(context.Background(), b)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSolution))
	assert.Nil(t, res.Solution)
	assert.Equal(t, 1, res.Stats.Candidates)
}

func TestSolve_ZeroInventoryAlreadySolved(t *testing.T) {
	b := mustBoard(t, []string{"oo", "oo"}, model.Inventory{}, []model.Laser{laser(0, 1, 1, 1)}, []model.Point{pt(2, 3)})

	res, err := New(quietSettings()).Solve(context.Background(), b)

	require.NoError(t, err)
	require.NotNil(t, res.Solution)
	assert.Equal(t, 0, res.Solution.Len())
}

func TestSolve_InventoryExceedsSlots(t *testing.T) {
	b := mustBoard(t, []string{"ox"}, model.Inventory{Reflect: 2}, []model.Laser{laser(0, 1, 1, 1)}, []model.Point{pt(2, 3)})

	res, err := New(quietSettings()).Solve(context.Background(), b)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSolution))
	assert.Equal(t, 0, res.Stats.Candidates)
	assert.Equal(t, 0, res.Stats.Combinations)
}

func TestSolve_CancelledContext(t *testing.T) {
	b := threeByThree(t, laser(2, 7, -1, -1), pt(3, 0), pt(4, 3))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(quietSettings()).Solve(ctx, b)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, ErrNoSolution))
}

func TestSolve_DeadlineExceeded(t *testing.T) {
	b := threeByThree(t, laser(2, 7, -1, -1), pt(3, 0), pt(4, 3))
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := New(quietSettings()).Solve(ctx, b)

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestSolve_ParallelMatchesSequential(t *testing.T) {
	b := threeByThree(t, laser(4, 5, -1, -1), pt(1, 2), pt(6, 3))

	seq, err := New(quietSettings()).Solve(context.Background(), b)
	require.NoError(t, err)

	s := quietSettings()
	s.Workers = 4
	par, err := New(s).Solve(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, seq.Solution.Key(), par.Solution.Key())
	requireCovers(t, b, par)
}

func TestSolve_ParallelExhaustsInfeasible(t *testing.T) {
	b := threeByThree(t, laser(2, 7, -1, -1), pt(3, 0), pt(4, 3))
	s := quietSettings()
	s.Workers = 3

	res, err := New(s).Solve(context.Background(), b)

	assert.True(t, errors.Is(err, ErrNoSolution))
	assert.Equal(t, CountCombinations(8, 4), res.Stats.Combinations)
}

func TestSolve_StateCacheKeepsResult(t *testing.T) {
	b := threeByThree(t, laser(4, 5, -1, -1), pt(1, 2), pt(6, 3))

	plain, err := New(quietSettings()).Solve(context.Background(), b)
	require.NoError(t, err)

	s := quietSettings()
	s.StateCache = true
	cached, err := New(s).Solve(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, plain.Solution.Key(), cached.Solution.Key())
}

func TestSolve_AgreesWithOracleOnRandomBoards(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tokens := []string{"o", "o", "o", "o", "x", "A", "B", "C"}
	dirs := []int{-1, 1}

	for i := 0; i < 25; i++ {
		rows := make([]string, 2)
		for r := range rows {
			for c := 0; c < 3; c++ {
				rows[r] += tokens[rng.Intn(len(tokens))]
			}
		}
		inv := model.Inventory{Reflect: rng.Intn(2), Opaque: rng.Intn(2), Refract: rng.Intn(2)}
		l := laser(2*rng.Intn(4), 2*rng.Intn(3)+1, dirs[rng.Intn(2)], dirs[rng.Intn(2)])
		targets := []model.Point{pt(rng.Intn(7), rng.Intn(5))}
		if rng.Intn(2) == 0 {
			targets = append(targets, pt(rng.Intn(7), rng.Intn(5)))
		}
		b := mustBoard(t, rows, inv, []model.Laser{l}, targets)

		res, err := New(quietSettings()).Solve(context.Background(), b)
		want := exhaustiveSolvable(b)

		if want {
			require.NoError(t, err, "board %d\n%s", i, b)
			requireCovers(t, b, res)
		} else {
			assert.True(t, errors.Is(err, ErrNoSolution), "board %d\n%s", i, b)
		}
	}
}

func TestCompareScenarios_AllAgree(t *testing.T) {
	b := threeByThree(t, laser(4, 5, -1, -1), pt(1, 2), pt(6, 3))
	base := quietSettings()

	results := CompareScenarios(context.Background(), BuildDefaultScenarios(base), b)

	require.GreaterOrEqual(t, len(results), 3)
	assert.Equal(t, "Current Settings", results[0].Scenario.Name)
	for _, r := range results {
		assert.True(t, r.Solved, r.Scenario.Name)
		assert.NoError(t, r.Err)
		assert.NotEmpty(t, r.Layout)
		assert.Greater(t, r.Candidates, 0)
	}
}

func TestBuildDefaultScenarios_FlipsOrdering(t *testing.T) {
	base := quietSettings()
	base.Workers = 2

	scenarios := BuildDefaultScenarios(base)

	require.Len(t, scenarios, 3)
	assert.Equal(t, "Row-Major Slots", scenarios[1].Name)
	assert.False(t, scenarios[1].Settings.OrderSlots)
	assert.True(t, scenarios[2].Settings.StateCache)
}
