package model

import "errors"

var (
	// ErrInvalidPlacement is returned when a block is placed outside the grid,
	// on a blocked cell, or on a cell that already holds a block.
	ErrInvalidPlacement = errors.New("invalid placement")

	// ErrZeroDirection is returned for a laser whose direction is (0, 0).
	ErrZeroDirection = errors.New("laser direction cannot be (0, 0)")

	// ErrInvalidDirection is returned for direction components outside {-1, 0, 1}.
	ErrInvalidDirection = errors.New("laser direction components must be -1, 0 or 1")

	// ErrNotRectangular is returned when grid rows differ in length.
	ErrNotRectangular = errors.New("grid is not rectangular")

	// ErrUnknownToken is returned for a grid token other than o, x, A, B or C.
	ErrUnknownToken = errors.New("unknown grid token")

	// ErrEmptyGrid is returned for a board without any cells.
	ErrEmptyGrid = errors.New("grid is empty")
)
