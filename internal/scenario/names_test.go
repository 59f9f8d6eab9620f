package scenario

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifiers(t *testing.T) {
	fc := ForceComposition{Battleships: [2]int{2, 12}, Destroyers: [2]int{2, 36}}

	assert.Equal(t, "(02+02)vs(12+36)", fc.String())
	assert.Equal(t, "(02+02)vs(12+36)_[00]", BattleID(fc, 0))
	assert.Equal(t, "(02+02)vs(12+36)_[04]", BattleID(fc, 4))
	assert.Equal(t, "(02+02)vs(12+36)_BattleSet", BattleSetID(fc))
	assert.Equal(t, "Alpha_vs_Beta-[(02+02)vs(12+36)]", BenchmarkID("Alpha", "Beta", fc))
	assert.Equal(t, "(02+02)vs(12+36)", BenchmarkSetID(fc))
	assert.Equal(t, "(02+02)vs(12+36)_Pt_3", PartitionID(BenchmarkSetID(fc), 3))
}

func TestIdentifiersWideCounts(t *testing.T) {
	fc := ForceComposition{Battleships: [2]int{120, 0}, Destroyers: [2]int{7, 100}}
	assert.Equal(t, "(120+07)vs(00+100)_[11]", BattleID(fc, 11))
}

func TestParseComposition(t *testing.T) {
	want := ForceComposition{Battleships: [2]int{12, 120}, Destroyers: [2]int{36, 5}}

	for _, id := range []string{
		BattleID(want, 3),
		BattleSetID(want),
		BenchmarkSetID(want),
		PartitionID(BenchmarkSetID(want), 2),
	} {
		got, err := ParseComposition(id)
		require.NoError(t, err, id)
		assert.Equal(t, want, got, id)
	}

	_, err := ParseComposition("Alpha_vs_Beta")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestBattleComposition(t *testing.T) {
	b := Battle{Placements: []Placement{
		{Unit: Battleship, Player: 0},
		{Unit: Destroyer, Player: 0},
		{Unit: Destroyer, Player: 0},
		{Unit: Battleship, Player: 1},
	}}
	fc := b.Composition()
	assert.Equal(t, [2]int{1, 1}, fc.Battleships)
	assert.Equal(t, [2]int{2, 0}, fc.Destroyers)
	assert.Equal(t, 4, fc.Total())
	assert.Equal(t, 3, fc.Units(0))
	assert.Equal(t, 2, fc.Count(0, Destroyer))
	assert.Len(t, b.ForPlayer(0), 3)
}

func TestUnitTemplates(t *testing.T) {
	tpl := DefaultUnitTemplates()
	assert.Equal(t, "battleship_0", tpl.For(Battleship))
	assert.Equal(t, "destroyer_0", tpl.For(Destroyer))

	u, ok := tpl.Lookup("destroyer_0")
	assert.True(t, ok)
	assert.Equal(t, Destroyer, u)

	_, ok = tpl.Lookup("carrier_0")
	assert.False(t, ok)
}
