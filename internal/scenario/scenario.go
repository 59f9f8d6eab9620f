// Package scenario defines the records a benchmark suite is made of and the
// identifiers the evaluation harness matches them by.
package scenario

import (
	"fmt"

	"github.com/peter-guba/benchmaker/internal/hex"
)

// Players is the number of sides in every battle.
const Players = 2

// UnitType is the kind of ship placed on the board.
type UnitType int

const (
	Battleship UnitType = iota
	Destroyer
)

func (u UnitType) String() string {
	switch u {
	case Battleship:
		return "battleship"
	case Destroyer:
		return "destroyer"
	default:
		return fmt.Sprintf("UnitType(%d)", int(u))
	}
}

// ForceComposition holds battleship and destroyer counts per player.
type ForceComposition struct {
	Battleships [Players]int
	Destroyers  [Players]int
}

// Units returns the number of units owned by player.
func (fc ForceComposition) Units(player int) int {
	return fc.Battleships[player] + fc.Destroyers[player]
}

// Total returns the number of units on the board.
func (fc ForceComposition) Total() int {
	n := 0
	for p := range Players {
		n += fc.Units(p)
	}
	return n
}

// Count returns how many units of type u player owns.
func (fc ForceComposition) Count(player int, u UnitType) int {
	if u == Battleship {
		return fc.Battleships[player]
	}
	return fc.Destroyers[player]
}

// Placement puts one unit of one player on a cell.
type Placement struct {
	Unit   UnitType
	Player int
	Pos    hex.Coord
}

// Battle is a single starting layout. Placements are ordered by player, and
// within a player all battleships precede all destroyers.
type Battle struct {
	ID          string
	Environment string
	Placements  []Placement
}

// ForPlayer returns the placements of one player in order.
func (b Battle) ForPlayer(player int) []Placement {
	var out []Placement
	for _, p := range b.Placements {
		if p.Player == player {
			out = append(out, p)
		}
	}
	return out
}

// Composition counts the battle's units by player and type.
func (b Battle) Composition() ForceComposition {
	var fc ForceComposition
	for _, p := range b.Placements {
		if p.Player < 0 || p.Player >= Players {
			continue
		}
		if p.Unit == Battleship {
			fc.Battleships[p.Player]++
		} else {
			fc.Destroyers[p.Player]++
		}
	}
	return fc
}

// BattleSet is a named family of battles sharing one force composition.
type BattleSet struct {
	ID      string
	Battles []string
}

// Benchmark pairs two agents on one battle set.
type Benchmark struct {
	ID        string
	AgentA    string
	AgentB    string
	BattleSet string
	MaxRounds int
	Symmetric bool
	Repeats   int
}

// BenchmarkSet bundles the round-robin benchmarks of one force composition.
type BenchmarkSet struct {
	ID         string
	Benchmarks []string
}

// Settings are shared by every benchmark of a run.
type Settings struct {
	MaxRounds int
	Repeats   int
}

// DefaultSettings returns the settings used when none are configured.
func DefaultSettings() Settings {
	return Settings{MaxRounds: 999999, Repeats: 1}
}

// UnitTemplates maps unit types to the unit definition ids the harness loads.
type UnitTemplates struct {
	Battleship string
	Destroyer  string
}

// DefaultUnitTemplates returns the stock unit definitions.
func DefaultUnitTemplates() UnitTemplates {
	return UnitTemplates{Battleship: "battleship_0", Destroyer: "destroyer_0"}
}

// For returns the template id of u.
func (t UnitTemplates) For(u UnitType) string {
	if u == Battleship {
		return t.Battleship
	}
	return t.Destroyer
}

// Lookup resolves a template id back to its unit type.
func (t UnitTemplates) Lookup(id string) (UnitType, bool) {
	switch id {
	case t.Battleship:
		return Battleship, true
	case t.Destroyer:
		return Destroyer, true
	default:
		return 0, false
	}
}

// IDs returns both template ids, battleship first.
func (t UnitTemplates) IDs() []string {
	return []string{t.Battleship, t.Destroyer}
}
