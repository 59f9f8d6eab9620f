package resources

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/peter-guba/benchmaker/internal/scenario"
)

// ReadBattle loads battle id from the tree at root.
func ReadBattle(root, id string, templates scenario.UnitTemplates) (scenario.Battle, error) {
	var doc battleDoc
	if err := readDocument(Path(root, BattlesDir, id), &doc); err != nil {
		return scenario.Battle{}, err
	}
	return doc.battle(id, templates)
}

// ReadBattleSet loads battle set id from the tree at root.
func ReadBattleSet(root, id string) (scenario.BattleSet, error) {
	var doc battleSetDoc
	if err := readDocument(Path(root, BattleSetsDir, id), &doc); err != nil {
		return scenario.BattleSet{}, err
	}
	return scenario.BattleSet{ID: id, Battles: ids(doc.Battles)}, nil
}

// ReadBenchmark loads benchmark id from the tree at root.
func ReadBenchmark(root, id string) (scenario.Benchmark, error) {
	var doc benchmarkDoc
	if err := readDocument(Path(root, BenchmarksDir, id), &doc); err != nil {
		return scenario.Benchmark{}, err
	}
	return doc.benchmark(id)
}

// ReadBenchmarkSet loads benchmark set id from the tree at root.
func ReadBenchmarkSet(root, id string) (scenario.BenchmarkSet, error) {
	var doc benchmarkSetDoc
	if err := readDocument(Path(root, BenchmarkSetsDir, id), &doc); err != nil {
		return scenario.BenchmarkSet{}, err
	}
	return scenario.BenchmarkSet{ID: id, Benchmarks: ids(doc.Benchmarks)}, nil
}

func readDocument(path string, doc any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
