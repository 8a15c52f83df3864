package engine

import (
	"sort"

	"github.com/piwi3910/lazor/internal/model"
)

// PlaceableCells returns the cells where the solver may put a block: open
// cells without a fixed block, in row-major order.
func PlaceableCells(b *model.Board) []model.Cell {
	return b.PlaceableCells()
}

// BlockTokens expands the board inventory into one kind per block to place.
func BlockTokens(b *model.Board) []model.BlockKind {
	return b.Inventory.Tokens()
}

// forEachCombination calls fn with every k-subset of {0..n-1} as ascending
// indices, in lexicographic order. fn must not keep idx. Iteration stops when
// fn returns false; the return value reports whether it ran to completion.
func forEachCombination(n, k int, fn func(idx []int) bool) bool {
	if k < 0 || k > n {
		return true
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		if !fn(idx) {
			return false
		}
		// Find the rightmost index that can still move right.
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return true
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// CountCombinations returns C(n, k), saturating at the int range.
func CountCombinations(n, k int) int {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	result := 1
	for i := 1; i <= k; i++ {
		next := result * (n - k + i) / i
		if next < result {
			return int(^uint(0) >> 1)
		}
		result = next
	}
	return result
}

// UniqueArrangements returns every distinct ordering of the given kinds in
// lexicographic order. Orderings that only swap two blocks of the same kind
// are produced once.
func UniqueArrangements(kinds []model.BlockKind) [][]model.BlockKind {
	cur := append([]model.BlockKind(nil), kinds...)
	sort.Slice(cur, func(i, j int) bool { return cur[i] < cur[j] })

	var out [][]model.BlockKind
	for {
		out = append(out, append([]model.BlockKind(nil), cur...))
		if !nextPermutation(cur) {
			return out
		}
	}
}

// nextPermutation rearranges s into its lexicographic successor and reports
// whether one existed.
func nextPermutation(s []model.BlockKind) bool {
	i := len(s) - 2
	for i >= 0 && s[i] >= s[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(s) - 1
	for s[j] <= s[i] {
		j--
	}
	s[i], s[j] = s[j], s[i]
	for l, r := i+1, len(s)-1; l < r; l, r = l+1, r-1 {
		s[l], s[r] = s[r], s[l]
	}
	return true
}

// orientationChoice returns the orientation of reflect slot i (of m) in
// combination t. Slot m-1 changes fastest and Slash comes before Backslash.
func orientationChoice(t, i, m int) model.Orientation {
	if (t>>(m-1-i))&1 == 0 {
		return model.Slash
	}
	return model.Backslash
}

// realize builds the block list for one arrangement and orientation choice.
// blocks must have len(kinds) capacity and is overwritten.
func realize(kinds []model.BlockKind, t, reflects int, blocks []model.Block) []model.Block {
	blocks = blocks[:0]
	slot := 0
	for _, k := range kinds {
		if k == model.Reflect {
			blocks = append(blocks, model.Mirror(orientationChoice(t, slot, reflects)))
			slot++
			continue
		}
		blocks = append(blocks, model.NewBlock(k))
	}
	return blocks
}

func countReflect(kinds []model.BlockKind) int {
	n := 0
	for _, k := range kinds {
		if k == model.Reflect {
			n++
		}
	}
	return n
}

// PlaceAll puts blocks[i] on cells[i]. On the first invalid placement it
// removes whatever it placed and returns the error.
func PlaceAll(c *model.Candidate, cells []model.Cell, blocks []model.Block) error {
	for i, cell := range cells {
		if err := c.Place(cell, blocks[i]); err != nil {
			c.Undo(i)
			return err
		}
	}
	return nil
}
