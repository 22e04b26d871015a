package omega

import (
	"testing"

	"github.com/omega-mcts/omega/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaPlayGameFinishes(t *testing.T) {
	white := PlayerConfig{Kind: UCT, Recycling: false}
	black := PlayerConfig{Kind: MCRAVE, Recycling: true, Budget: 500}
	a := NewArena(2, 500, white, black)

	winner, moves := a.PlayGame(1)

	require.Greater(t, moves, 0)
	assert.Contains(t, []game.Color{game.White, game.Black, game.Empty}, winner)
}

func TestArenaPlayMatchTalliesEverySingleGame(t *testing.T) {
	white := PlayerConfig{Kind: UCT, Recycling: false}
	black := PlayerConfig{Kind: UCT, Recycling: false}
	a := NewArena(2, 300, white, black)

	result := a.PlayMatch(4, 1)

	assert.Equal(t, 4, result.WhiteWins+result.BlackWins+result.Draws)
}
