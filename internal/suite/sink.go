package suite

import (
	"context"

	"github.com/peter-guba/benchmaker/internal/scenario"
)

// Sink receives every record as soon as it is assembled.
// Implementations used with more than one worker must be safe for concurrent
// use.
type Sink interface {
	WriteBattle(ctx context.Context, b scenario.Battle) error
	WriteBattleSet(ctx context.Context, s scenario.BattleSet) error
	WriteBenchmark(ctx context.Context, b scenario.Benchmark) error
	WriteBenchmarkSet(ctx context.Context, s scenario.BenchmarkSet) error
}

// MultiSink forwards each record to every sink in order, stopping at the
// first error.
type MultiSink []Sink

func (m MultiSink) WriteBattle(ctx context.Context, b scenario.Battle) error {
	for _, s := range m {
		if err := s.WriteBattle(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) WriteBattleSet(ctx context.Context, set scenario.BattleSet) error {
	for _, s := range m {
		if err := s.WriteBattleSet(ctx, set); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) WriteBenchmark(ctx context.Context, b scenario.Benchmark) error {
	for _, s := range m {
		if err := s.WriteBenchmark(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) WriteBenchmarkSet(ctx context.Context, set scenario.BenchmarkSet) error {
	for _, s := range m {
		if err := s.WriteBenchmarkSet(ctx, set); err != nil {
			return err
		}
	}
	return nil
}
