// Package hex implements axial-coordinate geometry for hexagonal boards.
// A board is a disk of some radius centred on the origin; the implied third
// cube coordinate s = -q-r is used for disk membership.
package hex

import "fmt"

// Coord is an axial hex coordinate.
type Coord struct {
	Q int
	R int
}

// Origin is the centre cell of every board.
var Origin = Coord{}

// Directions are the six axial neighbour offsets.
var Directions = [6]Coord{
	{1, 0},
	{1, -1},
	{0, -1},
	{-1, 0},
	{-1, 1},
	{0, 1},
}

// S returns the implied cube coordinate.
func (c Coord) S() int {
	return -c.Q - c.R
}

// Add returns the component-wise sum of c and o.
func (c Coord) Add(o Coord) Coord {
	return Coord{Q: c.Q + o.Q, R: c.R + o.R}
}

// Neighbors returns the six cells adjacent to c, in Directions order.
func (c Coord) Neighbors() [6]Coord {
	var out [6]Coord
	for i, d := range Directions {
		out[i] = c.Add(d)
	}
	return out
}

// Distance returns the hex distance between c and o.
func (c Coord) Distance(o Coord) int {
	return (abs(c.Q-o.Q) + abs(c.R-o.R) + abs(c.S()-o.S())) / 2
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Q, c.R)
}

// IsValid reports whether c lies inside the disk of the given radius centred
// on the origin.
func IsValid(c Coord, radius int) bool {
	return abs(c.Q) <= radius && abs(c.R) <= radius && abs(c.S()) <= radius
}

// CellCount returns the number of cells in a disk of the given radius.
func CellCount(radius int) int {
	if radius < 0 {
		return 0
	}
	return 3*radius*(radius+1) + 1
}

// Disk returns every cell within radius of origin, ordered by q then r.
func Disk(radius int, origin Coord) []Coord {
	cells := make([]Coord, 0, CellCount(radius))
	for q := -radius; q <= radius; q++ {
		lo, hi := rowBounds(q, radius)
		for r := lo; r <= hi; r++ {
			cells = append(cells, origin.Add(Coord{Q: q, R: r}))
		}
	}
	return cells
}

// rowBounds returns the inclusive r range of column q in a disk of radius.
func rowBounds(q, radius int) (lo, hi int) {
	return max(-radius, -q-radius), min(radius, -q+radius)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
