package resources

import (
	"context"
	"fmt"

	"github.com/peter-guba/benchmaker/internal/scenario"
)

// Partition splits benchmark set id into parts smaller sets so the harness
// can run them on separate machines. Order is preserved and the first
// len%parts slices take one extra benchmark; no empty slice is written, so a
// set with fewer benchmarks than parts yields one slice per benchmark.
func Partition(ctx context.Context, w *Writer, id string, parts int) ([]scenario.BenchmarkSet, error) {
	if parts < 1 {
		return nil, fmt.Errorf("partition count must be positive, got %d", parts)
	}
	set, err := ReadBenchmarkSet(w.Root(), id)
	if err != nil {
		return nil, fmt.Errorf("read benchmark set %s: %w", id, err)
	}

	var out []scenario.BenchmarkSet
	for i, bench := range SplitEven(set.Benchmarks, parts) {
		part := scenario.BenchmarkSet{ID: scenario.PartitionID(id, i+1), Benchmarks: bench}
		if err := w.WriteBenchmarkSet(ctx, part); err != nil {
			return nil, fmt.Errorf("write %s: %w", part.ID, err)
		}
		out = append(out, part)
	}
	return out, nil
}

// SplitEven cuts items into at most parts consecutive non-empty slices whose
// lengths differ by at most one, longer slices first.
func SplitEven[T any](items []T, parts int) [][]T {
	if parts < 1 || len(items) == 0 {
		return nil
	}
	per, extra := len(items)/parts, len(items)%parts

	var out [][]T
	for start := 0; start < len(items); {
		n := per
		if len(out) < extra {
			n++
		}
		out = append(out, items[start:start+n])
		start += n
	}
	return out
}
