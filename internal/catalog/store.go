// Package catalog records every generated record in a queryable store next to
// the XML tree, so a run can be inspected without parsing thousands of files.
package catalog

import (
	"context"
	"fmt"

	"github.com/peter-guba/benchmaker/internal/scenario"
)

// Store persists the records of one run. A Store is a suite sink: the driver
// writes to it alongside the XML writer.
type Store interface {
	Init(ctx context.Context) error
	WriteBattle(ctx context.Context, b scenario.Battle) error
	WriteBattleSet(ctx context.Context, s scenario.BattleSet) error
	WriteBenchmark(ctx context.Context, b scenario.Benchmark) error
	WriteBenchmarkSet(ctx context.Context, s scenario.BenchmarkSet) error
	GetBattle(ctx context.Context, id string) (scenario.Battle, bool, error)
	GetBenchmark(ctx context.Context, id string) (scenario.Benchmark, bool, error)
	Summary(ctx context.Context) (Summary, error)
}

// Summary counts the stored records.
type Summary struct {
	Battles       int
	Placements    int
	BattleSets    int
	Benchmarks    int
	BenchmarkSets int
}

// NewStore returns an uninitialized store of the given kind. path is only
// used by the sqlite backend.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(path), nil
	default:
		return nil, fmt.Errorf("unsupported catalog backend: %s", kind)
	}
}

// CloseIfSupported closes store if its backend holds resources.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
