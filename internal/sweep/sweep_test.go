package sweep

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peter-guba/benchmaker/internal/board"
	"github.com/peter-guba/benchmaker/internal/catalog"
	"github.com/peter-guba/benchmaker/internal/generator"
	"github.com/peter-guba/benchmaker/internal/hex"
	"github.com/peter-guba/benchmaker/internal/resources"
	"github.com/peter-guba/benchmaker/internal/scenario"
	"github.com/peter-guba/benchmaker/internal/suite"
)

func ids(comps []Composition) []string {
	out := make([]string, len(comps))
	for i, c := range comps {
		out[i] = c.ForceComposition.String()
	}
	return out
}

func TestCompositionsDefaults(t *testing.T) {
	g := Grid{MinUnits: 48, MaxUnits: 49, Step: 16, ForceRatios: []float64{1.0}, BattleshipRatios: []float64{0.25, 0.75}}
	comps, err := g.Compositions()
	require.NoError(t, err)
	assert.Equal(t, []string{"(12+36)vs(12+36)", "(36+12)vs(36+12)"}, ids(comps))
	assert.Equal(t, 48, comps[0].Units)
	assert.Equal(t, 48, comps[0].Second)
	assert.Equal(t, 0.75, comps[1].BattleshipRatio)
}

func TestCompositionsMaxIsExclusive(t *testing.T) {
	g := Grid{MinUnits: 16, MaxUnits: 48, Step: 16, ForceRatios: []float64{1.0}, BattleshipRatios: []float64{0.5}}
	comps, err := g.Compositions()
	require.NoError(t, err)
	assert.Equal(t, []string{"(08+08)vs(08+08)", "(16+16)vs(16+16)"}, ids(comps))
}

func TestCompositionsUnevenForces(t *testing.T) {
	g := Grid{MinUnits: 48, MaxUnits: 49, Step: 16, ForceRatios: []float64{1.0, 0.5}, BattleshipRatios: []float64{0.25}}
	comps, err := g.Compositions()
	require.NoError(t, err)
	assert.Equal(t, []string{"(12+36)vs(12+36)", "(12+36)vs(06+18)"}, ids(comps))
	assert.Equal(t, 24, comps[1].Second)
}

func TestCompositionsStrongerSecondSide(t *testing.T) {
	g := Grid{MinUnits: 48, MaxUnits: 49, Step: 16, ForceRatios: []float64{1.5, 0}, BattleshipRatios: []float64{0.25}}
	comps, err := g.Compositions()
	require.NoError(t, err)
	assert.Equal(t, []string{"(12+36)vs(18+54)", "(12+36)vs(00+00)"}, ids(comps))
	assert.Equal(t, 72, comps[0].Second)
}

func TestCompositionsSkipsEqualSidesForUnevenRatio(t *testing.T) {
	g := Grid{MinUnits: 0, MaxUnits: 2, Step: 1, ForceRatios: []float64{1.0, 0.5}, BattleshipRatios: []float64{0.5}}
	comps, err := g.Compositions()
	require.NoError(t, err)
	// units 0 with ratio 0.5 leaves both sides at 0 and is skipped.
	assert.Equal(t, []string{"(00+00)vs(00+00)", "(00+01)vs(00+01)", "(00+01)vs(00+00)"}, ids(comps))
}

func TestCompositionsDropsDuplicates(t *testing.T) {
	g := Grid{MinUnits: 4, MaxUnits: 5, Step: 1, ForceRatios: []float64{1.0}, BattleshipRatios: []float64{0.1, 0.2, 0.5}}
	comps, err := g.Compositions()
	require.NoError(t, err)
	assert.Equal(t, []string{"(00+04)vs(00+04)", "(02+02)vs(02+02)"}, ids(comps))
}

func TestCompositionsExclude(t *testing.T) {
	g := Grid{
		MinUnits: 16, MaxUnits: 65, Step: 16,
		ForceRatios:      []float64{1.0},
		BattleshipRatios: []float64{0.25, 0.75},
		Exclude:          "total > 64 || (bs_ratio > 0.5 && units == 16)",
	}
	comps, err := g.Compositions()
	require.NoError(t, err)
	assert.Equal(t, []string{"(04+12)vs(04+12)", "(08+24)vs(08+24)", "(24+08)vs(24+08)"}, ids(comps))
}

func TestCompositionsRejectsBadInput(t *testing.T) {
	_, err := Grid{MinUnits: 1, MaxUnits: 2, Step: 1, ForceRatios: []float64{1}, BattleshipRatios: []float64{1}, Exclude: "units +"}.Compositions()
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = Grid{MinUnits: 1, MaxUnits: 2, Step: 1, ForceRatios: []float64{1}, BattleshipRatios: []float64{1}, Exclude: "units"}.Compositions()
	assert.ErrorIs(t, err, ErrInvalidFilter, "non-boolean filters are rejected")

	_, err = Grid{MinUnits: 1, MaxUnits: 2, Step: 0}.Compositions()
	assert.Error(t, err)
}

type fakePublisher struct {
	calls atomic.Int32
	err   error
}

func (p *fakePublisher) Publish(context.Context) error {
	p.calls.Add(1)
	return p.err
}

func testDriver(t *testing.T, sink suite.Sink, workers int) *Driver {
	t.Helper()
	return &Driver{
		Board:  board.New("DefaultEnv", 20, hex.Origin),
		Agents: []string{"Alpha", "Beta", "Gamma"},
		Grid: Grid{
			MinUnits: 4, MaxUnits: 13, Step: 4,
			ForceRatios:      []float64{1.0, 0.5},
			BattleshipRatios: []float64{0.25, 0.75},
		},
		Layouts:  3,
		Settings: scenario.DefaultSettings(),
		Options:  generator.Options{SearchMargin: 12, MaxAttempts: 5000, Seed: 2024},
		Workers:  workers,
		Sink:     sink,
	}
}

func newCatalog(t *testing.T) *catalog.MemoryStore {
	t.Helper()
	store := catalog.NewMemoryStore()
	require.NoError(t, store.Init(context.Background()))
	return store
}

func TestRunGeneratesEveryComposition(t *testing.T) {
	ctx := context.Background()
	store := newCatalog(t)
	pub := &fakePublisher{}
	d := testDriver(t, store, 1)
	d.Publisher = pub
	d.Out = filepath.Join(t.TempDir(), "Resources")

	m, err := d.Run(ctx)
	require.NoError(t, err)

	comps, err := d.Grid.Compositions()
	require.NoError(t, err)
	require.Len(t, m.Compositions, len(comps))
	battles, benchmarks := m.Counts()
	assert.Equal(t, 3*len(comps), battles)
	assert.Equal(t, 3*len(comps), benchmarks, "three agents play three pairs")

	sum, err := store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, battles, sum.Battles)
	assert.Equal(t, benchmarks, sum.Benchmarks)
	assert.Equal(t, len(comps), sum.BattleSets)
	assert.Equal(t, len(comps), sum.BenchmarkSets)
	assert.Equal(t, int32(1), pub.calls.Load())

	for i, rec := range m.Compositions {
		assert.Equal(t, comps[i].ForceComposition.String(), rec.ID)
		assert.Equal(t, scenario.BattleSetID(comps[i].ForceComposition), rec.BattleSet)
		b, ok, err := store.GetBattle(ctx, rec.Battles[0])
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, comps[i].ForceComposition, b.Composition())
	}

	read, err := ReadManifest(d.Out)
	require.NoError(t, err)
	assert.Equal(t, m.RunID, read.RunID)
	assert.Equal(t, m.Compositions, read.Compositions)
	assert.Equal(t, "DefaultEnv", read.Environment)
}

func TestRunIsReproducibleAcrossWorkerCounts(t *testing.T) {
	ctx := context.Background()
	sequential, parallel := newCatalog(t), newCatalog(t)

	m1, err := testDriver(t, sequential, 1).Run(ctx)
	require.NoError(t, err)
	m2, err := testDriver(t, parallel, 4).Run(ctx)
	require.NoError(t, err)
	require.Equal(t, m1.Compositions, m2.Compositions)

	for _, rec := range m1.Compositions {
		for _, id := range rec.Battles {
			a, _, err := sequential.GetBattle(ctx, id)
			require.NoError(t, err)
			b, _, err := parallel.GetBattle(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, a, b)
		}
	}
}

func TestRunClearsOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "Resources")
	stale := filepath.Join(out, resources.BattlesDir, "stale.xml")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("<Battle/>"), 0o644))

	w := resources.NewWriter(out, scenario.DefaultUnitTemplates())
	d := testDriver(t, w, 2)
	d.Out = out
	_, err := d.Run(context.Background())
	require.NoError(t, err)

	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(out, ManifestFile))
	ids, err := resources.ListIDs(out, resources.BattleSetsDir)
	require.NoError(t, err)
	assert.NotEmpty(t, ids)
}

func TestRunStopsOnPlacementFailure(t *testing.T) {
	pub := &fakePublisher{}
	d := testDriver(t, newCatalog(t), 2)
	d.Publisher = pub
	d.Grid = Grid{MinUnits: 600, MaxUnits: 601, Step: 1, ForceRatios: []float64{1}, BattleshipRatios: []float64{0.5}}

	_, err := d.Run(context.Background())
	assert.ErrorIs(t, err, generator.ErrPlacementExhausted)
	assert.Zero(t, pub.calls.Load(), "assets are not published for a failed run")
}

func TestRunReportsPublishFailure(t *testing.T) {
	d := testDriver(t, newCatalog(t), 1)
	d.Publisher = &fakePublisher{err: resources.ErrAssetMissing}
	_, err := d.Run(context.Background())
	assert.True(t, errors.Is(err, resources.ErrAssetMissing))
}

func TestRunHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := testDriver(t, newCatalog(t), 2).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunEmptyGrid(t *testing.T) {
	d := testDriver(t, newCatalog(t), 1)
	d.Grid.Exclude = "true"
	_, err := d.Run(context.Background())
	assert.ErrorIs(t, err, ErrNoCompositions)
}
