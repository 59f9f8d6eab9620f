package catalog

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/peter-guba/benchmaker/internal/scenario"
)

var errNotInitialized = errors.New("catalog is not initialized")

type MemoryStore struct {
	mu            sync.RWMutex
	initialized   bool
	battles       map[string]scenario.Battle
	battleSets    map[string]scenario.BattleSet
	benchmarks    map[string]scenario.Benchmark
	benchmarkSets map[string]scenario.BenchmarkSet
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.battles = make(map[string]scenario.Battle)
	s.battleSets = make(map[string]scenario.BattleSet)
	s.benchmarks = make(map[string]scenario.Benchmark)
	s.benchmarkSets = make(map[string]scenario.BenchmarkSet)
	return nil
}

func (s *MemoryStore) WriteBattle(_ context.Context, b scenario.Battle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	b.Placements = slices.Clone(b.Placements)
	s.battles[b.ID] = b
	return nil
}

func (s *MemoryStore) WriteBattleSet(_ context.Context, set scenario.BattleSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	set.Battles = slices.Clone(set.Battles)
	s.battleSets[set.ID] = set
	return nil
}

func (s *MemoryStore) WriteBenchmark(_ context.Context, b scenario.Benchmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	s.benchmarks[b.ID] = b
	return nil
}

func (s *MemoryStore) WriteBenchmarkSet(_ context.Context, set scenario.BenchmarkSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized {
		return errNotInitialized
	}

	set.Benchmarks = slices.Clone(set.Benchmarks)
	s.benchmarkSets[set.ID] = set
	return nil
}

func (s *MemoryStore) GetBattle(_ context.Context, id string) (scenario.Battle, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return scenario.Battle{}, false, errNotInitialized
	}

	b, ok := s.battles[id]
	if !ok {
		return scenario.Battle{}, false, nil
	}
	b.Placements = slices.Clone(b.Placements)
	return b, true, nil
}

func (s *MemoryStore) GetBenchmark(_ context.Context, id string) (scenario.Benchmark, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return scenario.Benchmark{}, false, errNotInitialized
	}

	b, ok := s.benchmarks[id]
	return b, ok, nil
}

func (s *MemoryStore) Summary(_ context.Context) (Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.initialized {
		return Summary{}, errNotInitialized
	}

	sum := Summary{
		Battles:       len(s.battles),
		BattleSets:    len(s.battleSets),
		Benchmarks:    len(s.benchmarks),
		BenchmarkSets: len(s.benchmarkSets),
	}
	for _, b := range s.battles {
		sum.Placements += len(b.Placements)
	}
	return sum, nil
}
