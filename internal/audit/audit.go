// Package audit re-checks a generated resource tree the way the evaluation
// harness would load it: every reference must resolve and every battle must
// be a legal starting layout on its board.
package audit

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/peter-guba/benchmaker/internal/board"
	"github.com/peter-guba/benchmaker/internal/hex"
	"github.com/peter-guba/benchmaker/internal/resources"
	"github.com/peter-guba/benchmaker/internal/scenario"
)

var (
	ErrOutOfBounds         = board.ErrOutOfBounds
	ErrImpassable          = board.ErrImpassable
	ErrOverlap             = errors.New("two units share a cell")
	ErrPlacementOrder      = errors.New("placements out of order")
	ErrCompositionMismatch = errors.New("units do not match battle id")
	ErrEnvironmentMismatch = errors.New("battle names another environment")
	ErrDanglingReference   = errors.New("dangling reference")
)

// Battle checks one battle against brd and returns every finding joined, or
// nil if the battle is sound.
func Battle(b scenario.Battle, brd *board.Board) error {
	var errs []error
	if b.Environment != brd.Name {
		errs = append(errs, fmt.Errorf("%w: battle %s: %q, board is %q",
			ErrEnvironmentMismatch, b.ID, b.Environment, brd.Name))
	}

	seen := make(map[hex.Coord]int, len(b.Placements))
	for i, p := range b.Placements {
		if err := brd.CheckCell(p.Pos); err != nil {
			errs = append(errs, fmt.Errorf("battle %s: unit %d: %w", b.ID, i, err))
		}
		if j, ok := seen[p.Pos]; ok {
			errs = append(errs, fmt.Errorf("%w: battle %s: units %d and %d at %v", ErrOverlap, b.ID, j, i, p.Pos))
		} else {
			seen[p.Pos] = i
		}
		if i > 0 && !ordered(b.Placements[i-1], p) {
			errs = append(errs, fmt.Errorf("%w: battle %s: unit %d", ErrPlacementOrder, b.ID, i))
		}
	}

	want, err := scenario.ParseComposition(b.ID)
	if err != nil {
		errs = append(errs, err)
	} else if got := b.Composition(); got != want {
		errs = append(errs, fmt.Errorf("%w: battle %s holds %v", ErrCompositionMismatch, b.ID, got))
	}
	return errors.Join(errs...)
}

// ordered reports whether b may follow a: players ascend and, within a
// player, destroyers never precede battleships.
func ordered(a, b scenario.Placement) bool {
	if a.Player != b.Player {
		return a.Player < b.Player
	}
	return a.Unit <= b.Unit
}

// Report counts the records an audit visited.
type Report struct {
	BenchmarkSets int
	Benchmarks    int
	BattleSets    int
	Battles       int
}

// Tree audits the resource tree at root. It starts from every benchmark set
// and follows benchmarks to agents and battle sets, battle sets to battles,
// and battles to their environment and unit templates. Each record is checked
// once; all findings are returned joined.
func Tree(ctx context.Context, root string, brd *board.Board, templates scenario.UnitTemplates) (Report, error) {
	t := &treeAudit{
		root:       root,
		board:      brd,
		templates:  templates,
		benchmarks: map[string]bool{},
		battleSets: map[string]bool{},
		battles:    map[string]bool{},
		files:      map[string]bool{},
	}

	sets, err := resources.ListIDs(root, resources.BenchmarkSetsDir)
	if err != nil {
		return Report{}, err
	}
	for _, id := range sets {
		if err := ctx.Err(); err != nil {
			return t.report, err
		}
		t.benchmarkSet(id)
	}
	return t.report, errors.Join(t.errs...)
}

type treeAudit struct {
	root      string
	board     *board.Board
	templates scenario.UnitTemplates

	benchmarks map[string]bool
	battleSets map[string]bool
	battles    map[string]bool
	files      map[string]bool

	report Report
	errs   []error
}

func (t *treeAudit) benchmarkSet(id string) {
	set, err := resources.ReadBenchmarkSet(t.root, id)
	if err != nil {
		t.errs = append(t.errs, fmt.Errorf("benchmark set %s: %w", id, err))
		return
	}
	t.report.BenchmarkSets++
	for _, bench := range set.Benchmarks {
		t.benchmark("benchmark set "+id, bench)
	}
}

func (t *treeAudit) benchmark(referrer, id string) {
	if t.benchmarks[id] {
		return
	}
	t.benchmarks[id] = true

	bench, err := resources.ReadBenchmark(t.root, id)
	if err != nil {
		t.fail(referrer, "benchmark", id, err)
		return
	}
	t.report.Benchmarks++

	self := "benchmark " + id
	for _, agent := range []string{bench.AgentA, bench.AgentB} {
		t.file(self, "agent", resources.Path(t.root, resources.AIsDir, agent), agent)
	}
	t.battleSet(self, bench.BattleSet)
}

func (t *treeAudit) battleSet(referrer, id string) {
	if t.battleSets[id] {
		return
	}
	t.battleSets[id] = true

	set, err := resources.ReadBattleSet(t.root, id)
	if err != nil {
		t.fail(referrer, "battle set", id, err)
		return
	}
	t.report.BattleSets++
	for _, battle := range set.Battles {
		t.battle("battle set "+id, battle)
	}
}

func (t *treeAudit) battle(referrer, id string) {
	if t.battles[id] {
		return
	}
	t.battles[id] = true

	b, err := resources.ReadBattle(t.root, id, t.templates)
	if err != nil {
		t.fail(referrer, "battle", id, err)
		return
	}
	t.report.Battles++

	self := "battle " + id
	t.file(self, "environment", resources.Path(t.root, resources.EnvironmentsDir, b.Environment), b.Environment)
	for _, unit := range t.templates.IDs() {
		t.file(self, "unit", resources.Path(t.root, resources.UnitsDir, unit), unit)
	}
	if err := Battle(b, t.board); err != nil {
		t.errs = append(t.errs, err)
	}
}

// file checks a referenced asset exists, once per path.
func (t *treeAudit) file(referrer, kind, path, id string) {
	if _, done := t.files[path]; done {
		return
	}
	_, err := os.Stat(path)
	t.files[path] = err == nil
	if err != nil {
		t.fail(referrer, kind, id, err)
	}
}

func (t *treeAudit) fail(referrer, kind, id string, err error) {
	if errors.Is(err, os.ErrNotExist) {
		err = fmt.Errorf("%w: %s references missing %s %s", ErrDanglingReference, referrer, kind, id)
	} else {
		err = fmt.Errorf("%s %s: %w", kind, id, err)
	}
	t.errs = append(t.errs, err)
}
