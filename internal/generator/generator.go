package generator

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/peter-guba/benchmaker/internal/board"
	"github.com/peter-guba/benchmaker/internal/hex"
	"github.com/peter-guba/benchmaker/internal/scenario"
)

const (
	DefaultSearchMargin = 12
	DefaultMaxAttempts  = 10000
)

var (
	ErrPlacementExhausted = errors.New("no free cell found for placement")
	ErrInvalidMargin      = errors.New("search margin does not fit on the board")
)

// Generator places units for battles.
type Generator struct {
	options *Options
	rng     *rand.Rand
}

// New creates a placement generator with the given options.
func New(options *Options) *Generator {
	if options == nil {
		options = DefaultOptions()
	}

	seed := options.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		options: options,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Occupied is the set of cells already holding a unit.
type Occupied map[hex.Coord]struct{}

// Has reports whether c is occupied.
func (o Occupied) Has(c hex.Coord) bool {
	_, ok := o[c]
	return ok
}

// PlaceBattle lays out a fresh battle for the given composition.
//
// Each player gets a random passable anchor and all of that player's units are
// scattered within SearchMargin of it, battleships first. Every unit of both
// players is checked against the same occupied set, so no two units share a
// cell.
func (g *Generator) PlaceBattle(id string, fc scenario.ForceComposition, b *board.Board) (scenario.Battle, error) {
	battle := scenario.Battle{
		ID:          id,
		Environment: b.Name,
		Placements:  make([]scenario.Placement, 0, fc.Total()),
	}
	occupied := make(Occupied, fc.Total())

	for player := range scenario.Players {
		anchor, err := g.Anchor(b)
		if err != nil {
			return scenario.Battle{}, fmt.Errorf("battle %s: player %d: %w", id, player, err)
		}

		if free := g.freeCells(anchor, b, occupied); free < fc.Units(player) {
			return scenario.Battle{}, fmt.Errorf("%w: battle %s: player %d needs %d cells, %d free around %v",
				ErrPlacementExhausted, id, player, fc.Units(player), free, anchor)
		}

		for _, unit := range []scenario.UnitType{scenario.Battleship, scenario.Destroyer} {
			for range fc.Count(player, unit) {
				pos, err := g.FindEmpty(g.options.SearchMargin, anchor, b, occupied)
				if err != nil {
					return scenario.Battle{}, fmt.Errorf("battle %s: player %d: %w", id, player, err)
				}
				occupied[pos] = struct{}{}
				battle.Placements = append(battle.Placements, scenario.Placement{
					Unit:   unit,
					Player: player,
					Pos:    pos,
				})
			}
		}
	}

	return battle, nil
}

// Anchor picks a random passable cell at least SearchMargin away from the rim.
func (g *Generator) Anchor(b *board.Board) (hex.Coord, error) {
	radius := b.Radius - g.options.SearchMargin
	if radius < 0 {
		return hex.Coord{}, fmt.Errorf("%w: margin %d, board radius %d",
			ErrInvalidMargin, g.options.SearchMargin, b.Radius)
	}

	for range g.maxAttempts() {
		pos := hex.Random(g.rng, radius, hex.Origin)
		if !b.Impassable(pos) {
			return pos, nil
		}
	}
	return hex.Coord{}, fmt.Errorf("%w: no passable anchor within radius %d after %d attempts",
		ErrPlacementExhausted, radius, g.maxAttempts())
}

// FindEmpty draws cells around anchor until one is on the board, passable and
// unoccupied. It gives up after MaxAttempts draws.
func (g *Generator) FindEmpty(searchRadius int, anchor hex.Coord, b *board.Board, occupied Occupied) (hex.Coord, error) {
	for range g.maxAttempts() {
		pos := hex.Random(g.rng, searchRadius, anchor)
		if b.Impassable(pos) || occupied.Has(pos) || !b.Contains(pos) {
			continue
		}
		return pos, nil
	}
	return hex.Coord{}, fmt.Errorf("%w: nothing free within %d of %v after %d attempts",
		ErrPlacementExhausted, searchRadius, anchor, g.maxAttempts())
}

// freeCells counts the cells around anchor a unit could still be placed on.
func (g *Generator) freeCells(anchor hex.Coord, b *board.Board, occupied Occupied) int {
	n := 0
	for _, c := range hex.Disk(g.options.SearchMargin, anchor) {
		if b.Passable(c) && !occupied.Has(c) {
			n++
		}
	}
	return n
}

func (g *Generator) maxAttempts() int {
	if g.options.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return g.options.MaxAttempts
}
