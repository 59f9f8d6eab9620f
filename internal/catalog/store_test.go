package catalog

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peter-guba/benchmaker/internal/hex"
	"github.com/peter-guba/benchmaker/internal/scenario"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewStore("sqlite", filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	memory, err := NewStore("memory", "")
	require.NoError(t, err)
	return map[string]Store{"memory": memory, "sqlite": sqlite}
}

func initStore(t *testing.T, store Store) {
	t.Helper()
	require.NoError(t, store.Init(context.Background()))
	t.Cleanup(func() {
		_ = CloseIfSupported(store)
	})
}

func TestStoreRoundTrip(t *testing.T) {
	battle := scenario.Battle{
		ID:          "(01+01)vs(01+00)_[00]",
		Environment: "DefaultEnv",
		Placements: []scenario.Placement{
			{Unit: scenario.Battleship, Player: 0, Pos: hex.Coord{Q: 3, R: -1}},
			{Unit: scenario.Destroyer, Player: 0, Pos: hex.Coord{Q: 4, R: -1}},
			{Unit: scenario.Battleship, Player: 1, Pos: hex.Coord{Q: -2, R: 5}},
		},
	}
	bench := scenario.Benchmark{
		ID:        "Alpha_vs_Beta-[(01+01)vs(01+00)]",
		AgentA:    "Alpha",
		AgentB:    "Beta",
		BattleSet: "(01+01)vs(01+00)_BattleSet",
		MaxRounds: 999999,
		Symmetric: true,
		Repeats:   3,
	}

	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			initStore(t, store)

			require.NoError(t, store.WriteBattle(ctx, battle))
			require.NoError(t, store.WriteBattleSet(ctx, scenario.BattleSet{ID: bench.BattleSet, Battles: []string{battle.ID}}))
			require.NoError(t, store.WriteBenchmark(ctx, bench))
			require.NoError(t, store.WriteBenchmarkSet(ctx, scenario.BenchmarkSet{ID: "(01+01)vs(01+00)", Benchmarks: []string{bench.ID}}))

			gotBattle, ok, err := store.GetBattle(ctx, battle.ID)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, battle, gotBattle)

			gotBench, ok, err := store.GetBenchmark(ctx, bench.ID)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, bench, gotBench)

			_, ok, err = store.GetBattle(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			sum, err := store.Summary(ctx)
			require.NoError(t, err)
			assert.Equal(t, Summary{Battles: 1, Placements: 3, BattleSets: 1, Benchmarks: 1, BenchmarkSets: 1}, sum)
		})
	}
}

func TestStoreOverwritesBattle(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			initStore(t, store)

			b := scenario.Battle{ID: "b", Environment: "Env", Placements: []scenario.Placement{
				{Unit: scenario.Battleship, Pos: hex.Coord{Q: 1, R: 1}},
				{Unit: scenario.Destroyer, Pos: hex.Coord{Q: 2, R: 1}},
			}}
			require.NoError(t, store.WriteBattle(ctx, b))
			b.Placements = b.Placements[:1]
			require.NoError(t, store.WriteBattle(ctx, b))

			got, ok, err := store.GetBattle(ctx, "b")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Len(t, got.Placements, 1)

			sum, err := store.Summary(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, sum.Battles)
			assert.Equal(t, 1, sum.Placements)
		})
	}
}

func TestStoreConcurrentWrites(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			initStore(t, store)

			var wg sync.WaitGroup
			for i := range 8 {
				wg.Add(1)
				go func() {
					defer wg.Done()
					fc := scenario.ForceComposition{Battleships: [2]int{i, i}}
					assert.NoError(t, store.WriteBattleSet(ctx, scenario.BattleSet{
						ID:      scenario.BattleSetID(fc),
						Battles: []string{scenario.BattleID(fc, 0), scenario.BattleID(fc, 1)},
					}))
				}()
			}
			wg.Wait()

			sum, err := store.Summary(ctx)
			require.NoError(t, err)
			assert.Equal(t, 8, sum.BattleSets)
		})
	}
}

func TestStoreRequiresInit(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := store.WriteBenchmark(context.Background(), scenario.Benchmark{ID: "x"})
			assert.ErrorIs(t, err, errNotInitialized)
		})
	}
}

func TestNewStoreRejectsUnknownBackend(t *testing.T) {
	_, err := NewStore("postgres", "")
	assert.Error(t, err)

	err = NewSQLiteStore("").Init(context.Background())
	assert.Error(t, err)
}
