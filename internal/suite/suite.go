// Package suite assembles battles into battle sets and agents into round-robin
// benchmark sets, handing every record to a Sink as it is produced.
package suite

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/peter-guba/benchmaker/internal/board"
	"github.com/peter-guba/benchmaker/internal/generator"
	"github.com/peter-guba/benchmaker/internal/scenario"
)

// Assembler builds the records of one force composition.
type Assembler struct {
	gen  *generator.Generator
	sink Sink
}

// New creates an assembler that places units with gen and writes to sink.
func New(gen *generator.Generator, sink Sink) *Assembler {
	return &Assembler{gen: gen, sink: sink}
}

// MakeBattleSet places layouts independent battles for fc and writes each one
// before writing the set that names them.
func (a *Assembler) MakeBattleSet(ctx context.Context, fc scenario.ForceComposition, b *board.Board, layouts int) (scenario.BattleSet, error) {
	if layouts < 0 {
		return scenario.BattleSet{}, fmt.Errorf("negative layout count %d", layouts)
	}

	set := scenario.BattleSet{
		ID:      scenario.BattleSetID(fc),
		Battles: make([]string, 0, layouts),
	}
	for i := range layouts {
		battle, err := a.gen.PlaceBattle(scenario.BattleID(fc, i), fc, b)
		if err != nil {
			return scenario.BattleSet{}, err
		}
		if err := a.sink.WriteBattle(ctx, battle); err != nil {
			return scenario.BattleSet{}, fmt.Errorf("write battle %s: %w", battle.ID, err)
		}
		set.Battles = append(set.Battles, battle.ID)
	}

	if err := a.sink.WriteBattleSet(ctx, set); err != nil {
		return scenario.BattleSet{}, fmt.Errorf("write battle set %s: %w", set.ID, err)
	}
	slog.Debug("battle set assembled", "id", set.ID, "battles", len(set.Battles))
	return set, nil
}

// MakeBenchmarkSet pairs every agent with every later agent in roster order,
// each pair playing battleSet once.
func (a *Assembler) MakeBenchmarkSet(ctx context.Context, agents []string, battleSet string, fc scenario.ForceComposition, settings scenario.Settings) (scenario.BenchmarkSet, error) {
	pairs := Pairs(len(agents))
	set := scenario.BenchmarkSet{
		ID:         scenario.BenchmarkSetID(fc),
		Benchmarks: make([]string, 0, len(pairs)),
	}

	for _, p := range pairs {
		agentA, agentB := agents[p[0]], agents[p[1]]
		bench := scenario.Benchmark{
			ID:        scenario.BenchmarkID(agentA, agentB, fc),
			AgentA:    agentA,
			AgentB:    agentB,
			BattleSet: battleSet,
			MaxRounds: settings.MaxRounds,
			Symmetric: true,
			Repeats:   settings.Repeats,
		}
		if err := a.sink.WriteBenchmark(ctx, bench); err != nil {
			return scenario.BenchmarkSet{}, fmt.Errorf("write benchmark %s: %w", bench.ID, err)
		}
		set.Benchmarks = append(set.Benchmarks, bench.ID)
	}

	if err := a.sink.WriteBenchmarkSet(ctx, set); err != nil {
		return scenario.BenchmarkSet{}, fmt.Errorf("write benchmark set %s: %w", set.ID, err)
	}
	slog.Debug("benchmark set assembled", "id", set.ID, "benchmarks", len(set.Benchmarks))
	return set, nil
}

// Pairs returns every index pair (i, j) with i < j < n, ordered by i then j.
func Pairs(n int) [][2]int {
	if n < 2 {
		return nil
	}
	pairs := make([][2]int, 0, n*(n-1)/2)
	for i := range n {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, [2]int{i, j})
		}
	}
	return pairs
}
