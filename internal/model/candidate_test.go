package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidate_PlaceAndUndo(t *testing.T) {
	b, err := NewBoard(samplePuzzle())
	require.NoError(t, err)
	c := NewCandidate(b)

	require.NoError(t, c.Place(Cell{Row: 1, Col: 0}, NewBlock(Refract)))
	require.NoError(t, c.Place(Cell{Row: 0, Col: 0}, Mirror(Backslash)))
	assert.Equal(t, 2, c.Len())

	blk, ok := c.BlockAt(0, 0)
	require.True(t, ok)
	assert.Equal(t, Mirror(Backslash), blk)

	// Fixed blocks show through the overlay
	blk, ok = c.BlockAt(0, 1)
	require.True(t, ok)
	assert.Equal(t, Opaque, blk.Kind)

	assert.Equal(t, "0,0=A\\;1,0=C", c.Key())
	assert.Equal(t, "A B o\nC x A", c.String())

	c.Undo(1)
	_, ok = c.BlockAt(0, 0)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.Reset()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, b.String(), c.String(), "base board is untouched")
}

func TestCandidate_PlaceRejects(t *testing.T) {
	b, err := NewBoard(samplePuzzle())
	require.NoError(t, err)
	c := NewCandidate(b)
	require.NoError(t, c.Place(Cell{Row: 0, Col: 0}, NewBlock(Opaque)))

	cases := map[string]struct {
		cell Cell
		blk  Block
	}{
		"occupied":      {Cell{Row: 0, Col: 0}, NewBlock(Refract)},
		"fixed":         {Cell{Row: 0, Col: 1}, NewBlock(Refract)},
		"blocked":       {Cell{Row: 1, Col: 1}, NewBlock(Refract)},
		"out of bounds": {Cell{Row: 5, Col: 0}, NewBlock(Refract)},
		"empty block":   {Cell{Row: 0, Col: 2}, Block{}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := c.Place(tc.cell, tc.blk)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidPlacement))
		})
	}
	assert.Equal(t, 1, c.Len())
}

func TestCandidate_CloneIsIndependent(t *testing.T) {
	b, err := NewBoard(samplePuzzle())
	require.NoError(t, err)
	c := NewCandidate(b)
	require.NoError(t, c.Place(Cell{Row: 0, Col: 2}, Mirror(Slash)))

	cp := c.Clone()
	c.Reset()

	assert.Equal(t, 1, cp.Len())
	assert.Equal(t, []Placement{{Cell: Cell{Row: 0, Col: 2}, Block: Mirror(Slash)}}, cp.Placements())
	assert.Same(t, b, cp.Base())
}
