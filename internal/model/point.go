package model

import (
	"fmt"
	"sort"
)

// Cell is a block-grid coordinate. Row 0 is the top row.
type Cell struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Point is a half-block coordinate. Even values lie on block edges,
// odd values on block centres.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Laser is a beam origin and direction in half-block units.
type Laser struct {
	X  int `json:"x"`
	Y  int `json:"y"`
	VX int `json:"vx"`
	VY int `json:"vy"`
}

// Origin returns the start point of the laser.
func (l Laser) Origin() Point {
	return Point{X: l.X, Y: l.Y}
}

// Validate checks that the direction components are in {-1,0,1} and not both zero.
func (l Laser) Validate() error {
	if l.VX == 0 && l.VY == 0 {
		return fmt.Errorf("laser at %v: %w", l.Origin(), ErrZeroDirection)
	}
	if l.VX < -1 || l.VX > 1 || l.VY < -1 || l.VY > 1 {
		return fmt.Errorf("laser at %v with direction (%d,%d): %w", l.Origin(), l.VX, l.VY, ErrInvalidDirection)
	}
	return nil
}

func (l Laser) String() string {
	return fmt.Sprintf("L(%d,%d,%d,%d)", l.X, l.Y, l.VX, l.VY)
}

// PointSet is an unordered set of half-block points.
type PointSet map[Point]struct{}

// Add inserts p.
func (s PointSet) Add(p Point) {
	s[p] = struct{}{}
}

// Has reports whether p is in the set.
func (s PointSet) Has(p Point) bool {
	_, ok := s[p]
	return ok
}

// ContainsAll reports whether every point in pts is in the set.
func (s PointSet) ContainsAll(pts []Point) bool {
	for _, p := range pts {
		if _, ok := s[p]; !ok {
			return false
		}
	}
	return true
}

// CountOf returns how many of pts are in the set.
func (s PointSet) CountOf(pts []Point) int {
	n := 0
	for _, p := range pts {
		if _, ok := s[p]; ok {
			n++
		}
	}
	return n
}

// Missing returns the points of pts absent from the set, in input order.
func (s PointSet) Missing(pts []Point) []Point {
	var out []Point
	for _, p := range pts {
		if _, ok := s[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// Sorted returns the points ordered by (X, Y).
func (s PointSet) Sorted() []Point {
	out := make([]Point, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	SortPoints(out)
	return out
}

// SortPoints orders points by (X, Y) in place.
func SortPoints(pts []Point) {
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})
}
