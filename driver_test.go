package omega

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverPlaysAFullGame(t *testing.T) {
	d := NewDriver(UCT, 2, false, 0, 1)
	totalMoves := d.State().CellNum() - d.State().CellNum()%4
	expectedRounds := totalMoves / 2

	rounds := 0
	for !d.State().End() && rounds < 100 {
		d.RunSearch(50)
		rounds++
	}

	require.True(t, d.State().End(), "game did not finish within the round cap")
	assert.Equal(t, expectedRounds, rounds)
	assert.Equal(t, totalMoves, d.State().MovesPlayed())
}

func TestDriverResetStartsOver(t *testing.T) {
	d := NewDriver(MCRAVE, 2, true, 500, 1)
	d.RunSearch(50)
	require.Equal(t, 2, d.State().MovesPlayed())

	d.Reset()
	assert.Equal(t, 0, d.State().MovesPlayed())
}

func TestNewDriverPanicsOnUnknownKind(t *testing.T) {
	assert.Panics(t, func() {
		NewDriver(NodeKind(99), 2, false, 0, 1)
	})
}

func TestDriverUpdateAppliesExternalMove(t *testing.T) {
	d := NewDriver(UCT, 2, false, 0, 1)
	mv := d.State().RandomMove()
	d.Update(mv)
	assert.Equal(t, mv, d.State().LastMoveIdx())
}
