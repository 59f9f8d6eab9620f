package scenario

import (
	"errors"
	"fmt"
)

// The harness matches records by these exact strings: counts and layout
// indices are zero-padded to two digits.
const (
	compositionFormat = "(%02d+%02d)vs(%02d+%02d)"
	battleFormat      = compositionFormat + "_[%02d]"
	battleSetSuffix   = "_BattleSet"
	partitionFormat   = "%s_Pt_%d"

	// compositionScan reads counts of any width back.
	compositionScan = "(%d+%d)vs(%d+%d)"
)

var ErrInvalidID = errors.New("identifier does not name a force composition")

// String renders the composition as it appears in every identifier.
func (fc ForceComposition) String() string {
	return fmt.Sprintf(compositionFormat,
		fc.Battleships[0], fc.Destroyers[0],
		fc.Battleships[1], fc.Destroyers[1])
}

// BattleID names the layout-th battle of a composition.
func BattleID(fc ForceComposition, layout int) string {
	return fmt.Sprintf(battleFormat,
		fc.Battleships[0], fc.Destroyers[0],
		fc.Battleships[1], fc.Destroyers[1],
		layout)
}

// BattleSetID names the battle family of a composition.
func BattleSetID(fc ForceComposition) string {
	return fc.String() + battleSetSuffix
}

// BenchmarkID names the benchmark pitting agentA against agentB.
func BenchmarkID(agentA, agentB string, fc ForceComposition) string {
	return fmt.Sprintf("%s_vs_%s-[%s]", agentA, agentB, fc)
}

// BenchmarkSetID names the round robin of a composition.
func BenchmarkSetID(fc ForceComposition) string {
	return fc.String()
}

// PartitionID names the part-th (1-based) slice of a benchmark set.
func PartitionID(benchmarkSet string, part int) string {
	return fmt.Sprintf(partitionFormat, benchmarkSet, part)
}

// ParseComposition recovers the force composition from any battle, battle
// set or benchmark set identifier.
func ParseComposition(id string) (ForceComposition, error) {
	var fc ForceComposition
	_, err := fmt.Sscanf(id, compositionScan,
		&fc.Battleships[0], &fc.Destroyers[0],
		&fc.Battleships[1], &fc.Destroyers[1])
	if err != nil {
		return ForceComposition{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return fc, nil
}
