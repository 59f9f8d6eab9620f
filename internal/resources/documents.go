// Package resources reads and writes the resource tree consumed by the
// evaluation harness: one XML document per record, plus the environment,
// agent, unit and schema files the records refer to.
package resources

import (
	"encoding/xml"
	"errors"
	"fmt"

	"github.com/peter-guba/benchmaker/internal/hex"
	"github.com/peter-guba/benchmaker/internal/scenario"
)

// Directories of the resource tree.
const (
	BattlesDir       = "Battles"
	BattleSetsDir    = "BattleSets"
	BenchmarksDir    = "Benchmarks"
	BenchmarkSetsDir = "BenchmarkSets"
	EnvironmentsDir  = "Environments"
	AIsDir           = "AIs"
	UnitsDir         = "Units"
	SchemaTypesDir   = "SchemaTypes"
)

// Ext is the extension of every record document.
const Ext = ".xml"

var ErrUnknownUnit = errors.New("unknown unit template")

type refDoc struct {
	ID string `xml:"Id,attr"`
}

type battleDoc struct {
	XMLName     xml.Name          `xml:"Battle"`
	Environment refDoc            `xml:"Environment"`
	Players     []battlePlayerDoc `xml:"Player"`
}

type battlePlayerDoc struct {
	Index int      `xml:"Index,attr"`
	Units unitsDoc `xml:"Units"`
}

type unitsDoc struct {
	Units []unitDoc `xml:"Unit"`
}

type unitDoc struct {
	ID string `xml:"Id,attr"`
	Q  int    `xml:"Q,attr"`
	R  int    `xml:"R,attr"`
}

type battleSetDoc struct {
	XMLName xml.Name `xml:"BattleSet"`
	Battles []refDoc `xml:"Battle"`
}

type benchmarkDoc struct {
	XMLName     xml.Name             `xml:"Benchmark"`
	MaxRounds   int                  `xml:"MaxRounds"`
	IsSymmetric bool                 `xml:"IsSymmetric"`
	Repeats     int                  `xml:"Repeats"`
	Players     []benchmarkPlayerDoc `xml:"Player"`
	BattleSet   refDoc               `xml:"BattleSet"`
}

type benchmarkPlayerDoc struct {
	Index int    `xml:"Index,attr"`
	AI    refDoc `xml:"AIRef"`
}

type benchmarkSetDoc struct {
	XMLName    xml.Name `xml:"BenchmarkSet"`
	Benchmarks []refDoc `xml:"Benchmark"`
}

func newBattleDoc(b scenario.Battle, templates scenario.UnitTemplates) battleDoc {
	doc := battleDoc{
		Environment: refDoc{ID: b.Environment},
		Players:     make([]battlePlayerDoc, scenario.Players),
	}
	for i := range doc.Players {
		doc.Players[i].Index = i
	}
	for _, p := range b.Placements {
		units := &doc.Players[p.Player].Units
		units.Units = append(units.Units, unitDoc{
			ID: templates.For(p.Unit),
			Q:  p.Pos.Q,
			R:  p.Pos.R,
		})
	}
	return doc
}

func (d battleDoc) battle(id string, templates scenario.UnitTemplates) (scenario.Battle, error) {
	battle := scenario.Battle{ID: id, Environment: d.Environment.ID}
	for _, player := range d.Players {
		if player.Index < 0 || player.Index >= scenario.Players {
			return scenario.Battle{}, fmt.Errorf("battle %s: player index %d out of range", id, player.Index)
		}
		for _, u := range player.Units.Units {
			unit, ok := templates.Lookup(u.ID)
			if !ok {
				return scenario.Battle{}, fmt.Errorf("%w: battle %s: %q", ErrUnknownUnit, id, u.ID)
			}
			battle.Placements = append(battle.Placements, scenario.Placement{
				Unit:   unit,
				Player: player.Index,
				Pos:    hex.Coord{Q: u.Q, R: u.R},
			})
		}
	}
	return battle, nil
}

func refs(ids []string) []refDoc {
	out := make([]refDoc, len(ids))
	for i, id := range ids {
		out[i] = refDoc{ID: id}
	}
	return out
}

func ids(refs []refDoc) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.ID
	}
	return out
}

func newBenchmarkDoc(b scenario.Benchmark) benchmarkDoc {
	return benchmarkDoc{
		MaxRounds:   b.MaxRounds,
		IsSymmetric: b.Symmetric,
		Repeats:     b.Repeats,
		Players: []benchmarkPlayerDoc{
			{Index: 0, AI: refDoc{ID: b.AgentA}},
			{Index: 1, AI: refDoc{ID: b.AgentB}},
		},
		BattleSet: refDoc{ID: b.BattleSet},
	}
}

func (d benchmarkDoc) benchmark(id string) (scenario.Benchmark, error) {
	b := scenario.Benchmark{
		ID:        id,
		BattleSet: d.BattleSet.ID,
		MaxRounds: d.MaxRounds,
		Symmetric: d.IsSymmetric,
		Repeats:   d.Repeats,
	}
	for _, p := range d.Players {
		switch p.Index {
		case 0:
			b.AgentA = p.AI.ID
		case 1:
			b.AgentB = p.AI.ID
		default:
			return scenario.Benchmark{}, fmt.Errorf("benchmark %s: player index %d out of range", id, p.Index)
		}
	}
	return b, nil
}
