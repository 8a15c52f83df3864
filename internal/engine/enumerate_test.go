package engine

import (
	"errors"
	"testing"

	"github.com/piwi3910/lazor/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectCombinations gathers every k-subset of {0..n-1} in visiting order.
func collectCombinations(n, k int) [][]int {
	var out [][]int
	forEachCombination(n, k, func(idx []int) bool {
		out = append(out, append([]int(nil), idx...))
		return true
	})
	return out
}

func TestCombinations_Lexicographic(t *testing.T) {
	got := collectCombinations(4, 2)

	assert.Equal(t, [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, got)
}

func TestCombinations_EdgeCases(t *testing.T) {
	assert.Len(t, collectCombinations(3, 0), 1)
	assert.Nil(t, collectCombinations(2, 3))
	assert.Equal(t, [][]int{{0, 1, 2}}, collectCombinations(3, 3))
}

func TestCountCombinations(t *testing.T) {
	assert.Equal(t, 70, CountCombinations(8, 4))
	assert.Equal(t, 1, CountCombinations(5, 0))
	assert.Equal(t, 0, CountCombinations(2, 3))
	assert.Len(t, collectCombinations(8, 4), CountCombinations(8, 4))
}

func TestUniqueArrangements_SkipsDuplicates(t *testing.T) {
	A, B, C := model.Reflect, model.Opaque, model.Refract

	got := UniqueArrangements([]model.BlockKind{A, A, C})
	assert.Equal(t, [][]model.BlockKind{{A, A, C}, {A, C, A}, {C, A, A}}, got)

	assert.Len(t, UniqueArrangements([]model.BlockKind{A, B, C}), 6)
	assert.Len(t, UniqueArrangements([]model.BlockKind{A, A, A}), 1)
	// 4!/(3!*1!)
	assert.Len(t, UniqueArrangements([]model.BlockKind{C, A, A, A}), 4)
}

func TestUniqueArrangements_InputOrderIgnored(t *testing.T) {
	A, C := model.Reflect, model.Refract

	assert.Equal(t,
		UniqueArrangements([]model.BlockKind{A, A, C}),
		UniqueArrangements([]model.BlockKind{C, A, A}))
}

func TestRealize_OrientationOrder(t *testing.T) {
	A, B := model.Reflect, model.Opaque
	kinds := []model.BlockKind{A, B, A}
	slash, back := model.Mirror(model.Slash), model.Mirror(model.Backslash)
	opaque := model.NewBlock(model.Opaque)

	var got [][]model.Block
	buf := make([]model.Block, 0, len(kinds))
	for i := 0; i < 4; i++ {
		buf = realize(kinds, i, countReflect(kinds), buf)
		got = append(got, append([]model.Block(nil), buf...))
	}

	assert.Equal(t, [][]model.Block{
		{slash, opaque, slash},
		{slash, opaque, back},
		{back, opaque, slash},
		{back, opaque, back},
	}, got)
}

func TestPlaceAll_RollsBackOnFailure(t *testing.T) {
	b := mustBoard(t, []string{"oxo"}, model.Inventory{Opaque: 2}, nil, nil)
	cand := model.NewCandidate(b)
	blocks := []model.Block{model.NewBlock(model.Opaque), model.NewBlock(model.Opaque)}

	err := PlaceAll(cand, []model.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 1}}, blocks)

	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInvalidPlacement))
	assert.Equal(t, 0, cand.Len())

	require.NoError(t, PlaceAll(cand, []model.Cell{{Row: 0, Col: 0}, {Row: 0, Col: 2}}, blocks))
	assert.Equal(t, 2, cand.Len())
}

func TestPlaceableCells_SkipsBlockedAndFixed(t *testing.T) {
	b := mustBoard(t, []string{"oxA", "Boo"}, model.Inventory{}, nil, nil)

	assert.Equal(t, []model.Cell{{Row: 0, Col: 0}, {Row: 1, Col: 1}, {Row: 1, Col: 2}}, PlaceableCells(b))
}
