package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/peter-guba/benchmaker/internal/board"
	"github.com/peter-guba/benchmaker/internal/generator"
	"github.com/peter-guba/benchmaker/internal/scenario"
	"github.com/peter-guba/benchmaker/internal/suite"
)

var ErrNoCompositions = errors.New("grid yields no compositions")

// Publisher copies the assets generated records refer to into the output
// tree.
type Publisher interface {
	Publish(ctx context.Context) error
}

// Driver generates the whole suite of one run.
type Driver struct {
	Board    *board.Board
	Agents   []string
	Grid     Grid
	Layouts  int
	Settings scenario.Settings
	Options  generator.Options
	Workers  int

	Sink      suite.Sink
	Publisher Publisher // optional

	// Out is removed before generation and receives the manifest.
	// Empty leaves the file system alone.
	Out string
}

// Run generates every composition of the grid, publishes assets and writes
// the manifest. Compositions run on up to Workers goroutines; each one draws
// from its own generator seeded from a master source, so a fixed Options.Seed
// yields the same records whatever the worker count.
func (d *Driver) Run(ctx context.Context) (Manifest, error) {
	comps, err := d.Grid.Compositions()
	if err != nil {
		return Manifest{}, err
	}
	if len(comps) == 0 {
		return Manifest{}, ErrNoCompositions
	}

	if d.Out != "" {
		if err := os.RemoveAll(d.Out); err != nil {
			return Manifest{}, fmt.Errorf("clear output: %w", err)
		}
	}

	seeds := d.seeds(len(comps))
	records := make([]CompositionRecord, len(comps))

	workers := max(d.Workers, 1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range comps {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := d.generate(gctx, c, seeds[i])
			if err != nil {
				return fmt.Errorf("composition %v: %w", c.ForceComposition, err)
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Manifest{}, err
	}

	if d.Publisher != nil {
		if err := d.Publisher.Publish(ctx); err != nil {
			return Manifest{}, err
		}
	}

	m := Manifest{
		RunID:        uuid.NewString(),
		Created:      time.Now().UTC(),
		Environment:  d.Board.Name,
		Agents:       d.Agents,
		Layouts:      d.Layouts,
		MaxRounds:    d.Settings.MaxRounds,
		Repeats:      d.Settings.Repeats,
		Compositions: records,
	}
	if d.Out != "" {
		if err := WriteManifest(d.Out, m); err != nil {
			return Manifest{}, fmt.Errorf("write manifest: %w", err)
		}
	}
	return m, nil
}

func (d *Driver) generate(ctx context.Context, c Composition, seed int64) (CompositionRecord, error) {
	options := d.Options
	options.Seed = seed
	a := suite.New(generator.New(&options), d.Sink)

	battleSet, err := a.MakeBattleSet(ctx, c.ForceComposition, d.Board, d.Layouts)
	if err != nil {
		return CompositionRecord{}, err
	}
	benchmarkSet, err := a.MakeBenchmarkSet(ctx, d.Agents, battleSet.ID, c.ForceComposition, d.Settings)
	if err != nil {
		return CompositionRecord{}, err
	}

	slog.Info("composition generated",
		"id", c.ForceComposition.String(),
		"battles", len(battleSet.Battles),
		"benchmarks", len(benchmarkSet.Benchmarks))

	return CompositionRecord{
		ID:              c.ForceComposition.String(),
		Units:           c.Units,
		Second:          c.Second,
		ForceRatio:      c.ForceRatio,
		BattleshipRatio: c.BattleshipRatio,
		BattleSet:       battleSet.ID,
		Battles:         battleSet.Battles,
		BenchmarkSet:    benchmarkSet.ID,
		Benchmarks:      benchmarkSet.Benchmarks,
	}, nil
}

// seeds draws one generator seed per composition. Zero is avoided since the
// generator treats it as a request for a time-based seed.
func (d *Driver) seeds(n int) []int64 {
	master := d.Options.Seed
	if master == 0 {
		master = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(master))

	out := make([]int64, n)
	for i := range out {
		for out[i] == 0 {
			out[i] = rng.Int63()
		}
	}
	return out
}
