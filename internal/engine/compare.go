package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/piwi3910/lazor/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings Settings
}

// ComparisonResult holds the search outcome and statistics for a single scenario.
type ComparisonResult struct {
	Scenario   ComparisonScenario
	Solved     bool
	Layout     string // solution grid, empty when unsolved
	Candidates int
	Elapsed    time.Duration
	Err        error // nil for both solved and exhausted searches
}

// CompareScenarios solves the board once per scenario and returns the results
// in scenario order. Every scenario must agree on solvability; the candidate
// counts show how much each setting prunes.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, b *model.Board) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		res, err := New(scenario.Settings).Solve(ctx, b)

		cr := ComparisonResult{
			Scenario:   scenario,
			Solved:     err == nil,
			Candidates: res.Stats.Candidates,
			Elapsed:    res.Stats.Elapsed,
		}
		if err == nil {
			cr.Layout = res.Solution.String()
		} else if !errors.Is(err, ErrNoSolution) {
			cr.Err = err
		}
		results = append(results, cr)
	}

	return results
}

// BuildDefaultScenarios generates what-if variations of the current settings.
func BuildDefaultScenarios(base Settings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{
			Name:     "Current Settings",
			Settings: base,
		},
	}

	// Scenario: Flip slot ordering
	alt := base
	alt.OrderSlots = !base.OrderSlots
	name := "Row-Major Slots"
	if alt.OrderSlots {
		name = "Ordered Slots"
	}
	scenarios = append(scenarios, ComparisonScenario{Name: name, Settings: alt})

	// Scenario: State cache on
	if !base.StateCache {
		cached := base
		cached.StateCache = true
		scenarios = append(scenarios, ComparisonScenario{Name: "State Cache", Settings: cached})
	}

	// Scenario: Parallel workers
	if base.Workers <= 1 && runtime.NumCPU() > 1 {
		par := base
		par.Workers = runtime.NumCPU()
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("%d Workers", par.Workers),
			Settings: par,
		})
	}

	return scenarios
}
