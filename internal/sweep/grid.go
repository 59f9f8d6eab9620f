// Package sweep enumerates the force compositions of a run and drives the
// generation of every one of them.
package sweep

import (
	"errors"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/peter-guba/benchmaker/internal/scenario"
)

var ErrInvalidFilter = errors.New("invalid exclude filter")

// Grid is the parameter sweep over force compositions.
type Grid struct {
	MinUnits         int
	MaxUnits         int // exclusive
	Step             int
	ForceRatios      []float64
	BattleshipRatios []float64

	// Exclude is an optional boolean expression over a composition; matching
	// compositions are dropped. See filterEnv for the names it may use.
	Exclude string
}

// Composition is one point of the grid.
type Composition struct {
	scenario.ForceComposition

	Units           int     // first player's unit count
	Second          int     // second player's unit count
	ForceRatio      float64 // Second / Units before truncation
	BattleshipRatio float64
}

// filterEnv exposes a composition to Exclude expressions.
type filterEnv struct {
	Units           int     `expr:"units"`
	Second          int     `expr:"second"`
	Total           int     `expr:"total"`
	BS0             int     `expr:"bs0"`
	DS0             int     `expr:"ds0"`
	BS1             int     `expr:"bs1"`
	DS1             int     `expr:"ds1"`
	ForceRatio      float64 `expr:"force_ratio"`
	BattleshipRatio float64 `expr:"bs_ratio"`
}

func newFilterEnv(c Composition) filterEnv {
	return filterEnv{
		Units:           c.Units,
		Second:          c.Second,
		Total:           c.Total(),
		BS0:             c.Battleships[0],
		DS0:             c.Destroyers[0],
		BS1:             c.Battleships[1],
		DS1:             c.Destroyers[1],
		ForceRatio:      c.ForceRatio,
		BattleshipRatio: c.BattleshipRatio,
	}
}

// Compositions enumerates the grid in generation order: unit counts
// ascending, then force ratios, then battleship ratios, each in the order
// given. A force ratio other than 1 that leaves both sides equal is skipped,
// and so is any composition equal to an earlier one since both would write
// the same records.
func (g Grid) Compositions() ([]Composition, error) {
	if g.Step <= 0 {
		return nil, fmt.Errorf("unit count step must be positive, got %d", g.Step)
	}
	exclude, err := compileFilter(g.Exclude)
	if err != nil {
		return nil, err
	}

	var out []Composition
	seen := make(map[scenario.ForceComposition]bool)
	for units := g.MinUnits; units < g.MaxUnits; units += g.Step {
		for _, force := range g.ForceRatios {
			second := int(float64(units) * force)
			if force != 1.0 && second == units {
				continue
			}
			for _, ratio := range g.BattleshipRatios {
				c := Composition{
					Units:           units,
					Second:          second,
					ForceRatio:      force,
					BattleshipRatio: ratio,
				}
				for p, side := range [scenario.Players]int{units, second} {
					c.Battleships[p] = int(float64(side) * ratio)
					c.Destroyers[p] = side - c.Battleships[p]
				}
				if seen[c.ForceComposition] {
					continue
				}
				seen[c.ForceComposition] = true

				drop, err := exclude.match(c)
				if err != nil {
					return nil, err
				}
				if !drop {
					out = append(out, c)
				}
			}
		}
	}
	return out, nil
}

type filter struct {
	src     string
	program *vm.Program
}

func compileFilter(src string) (*filter, error) {
	if src == "" {
		return &filter{}, nil
	}
	prog, err := expr.Compile(src, expr.Env(filterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidFilter, src, err)
	}
	return &filter{src: src, program: prog}, nil
}

func (f *filter) match(c Composition) (bool, error) {
	if f.program == nil {
		return false, nil
	}
	result, err := expr.Run(f.program, newFilterEnv(c))
	if err != nil {
		return false, fmt.Errorf("%w: %q on %v: %v", ErrInvalidFilter, f.src, c.ForceComposition, err)
	}
	match, _ := result.(bool)
	return match, nil
}
