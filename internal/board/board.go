package board

import (
	"cmp"
	"slices"

	"github.com/peter-guba/benchmaker/internal/hex"
)

// Board is a hexagonal battle environment: a disk of Radius cells around the
// origin with a set of impassable cells.
type Board struct {
	// Name identifies the environment in generated battles.
	Name string

	// Radius is fixed for the lifetime of the board.
	Radius int

	// impassable is set at construction time and never mutated afterwards.
	impassable map[hex.Coord]struct{}
}

// New creates a board with an obstacle at every sun position.
// A sun blocks its own cell and the six cells around it.
func New(name string, radius int, suns ...hex.Coord) *Board {
	b := &Board{
		Name:       name,
		Radius:     radius,
		impassable: make(map[hex.Coord]struct{}, len(suns)*7),
	}
	for _, sun := range suns {
		b.addSun(sun)
	}
	return b
}

func (b *Board) addSun(sun hex.Coord) {
	b.impassable[sun] = struct{}{}
	for _, n := range sun.Neighbors() {
		b.impassable[n] = struct{}{}
	}
}

// Contains reports whether c lies on the board.
func (b *Board) Contains(c hex.Coord) bool {
	return hex.IsValid(c, b.Radius)
}

// Impassable reports whether c is blocked by an obstacle.
// Blocked cells may lie outside the board.
func (b *Board) Impassable(c hex.Coord) bool {
	_, ok := b.impassable[c]
	return ok
}

// Passable reports whether a unit may stand on c.
func (b *Board) Passable(c hex.Coord) bool {
	return b.Contains(c) && !b.Impassable(c)
}

// ImpassableCells returns the blocked cells ordered by q then r.
func (b *Board) ImpassableCells() []hex.Coord {
	cells := make([]hex.Coord, 0, len(b.impassable))
	for c := range b.impassable {
		cells = append(cells, c)
	}
	slices.SortFunc(cells, func(a, c hex.Coord) int {
		if n := cmp.Compare(a.Q, c.Q); n != 0 {
			return n
		}
		return cmp.Compare(a.R, c.R)
	})
	return cells
}

// PassableCount returns the number of cells a unit may stand on.
func (b *Board) PassableCount() int {
	n := hex.CellCount(b.Radius)
	for c := range b.impassable {
		if b.Contains(c) {
			n--
		}
	}
	return n
}
