package mast

import (
	"math/rand"
	"testing"

	"github.com/omega-mcts/omega/game"
	xrand "golang.org/x/exp/rand"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPolicy(boardSize int) (*game.State, *Policy) {
	s := game.NewState(boardSize, rand.New(rand.NewSource(1)))
	p := New(s, 0, 0, xrand.NewSource(1))
	return s, p
}

func TestSelectReturnsLegalMove(t *testing.T) {
	s, p := newTestPolicy(3)
	moveIdx, childIdx := p.Select()

	found := false
	count := 0
	s.EachValidMove(func(mv int) {
		if mv == moveIdx {
			found = true
			require.Equal(t, count, childIdx)
		}
		count++
	})
	assert.True(t, found, "Select returned a move index not in the legal-move set")
}

func TestUpdateAppliesEMA(t *testing.T) {
	_, p := newTestPolicy(2)
	before := p.Score(0, game.White)

	p.AddMove(game.White, 0)
	p.Update(1.0)

	after := p.Score(0, game.White)
	assert.InDelta(t, p.w*before+(1-p.w)*1.0, after, 1e-9)
	assert.Empty(t, p.pending)
}

func TestUpdateSegregatesByPlayer(t *testing.T) {
	_, p := newTestPolicy(2)
	p.AddMove(game.White, 3)
	p.AddMove(game.Black, 3)
	p.Update(1.0)

	// White made the move and the outcome was a White win: val=1.
	assert.InDelta(t, p.w*1+(1-p.w)*1, p.Score(3, game.White), 1e-9)
	// Black made the move; val = outcome + 1*(1-2*outcome) = 1-outcome = 0.
	assert.InDelta(t, p.w*1+(1-p.w)*0, p.Score(3, game.Black), 1e-9)
}

func TestSetupCachesInitialPolicy(t *testing.T) {
	s, p := newTestPolicy(2)
	p.Setup(50)
	cached := p.initialScores

	p.Reset()
	p.Setup(50)
	assert.Equal(t, cached, p.initialScores)
	assert.Equal(t, s.CellNum(), s.ValidMoveCount())
}
