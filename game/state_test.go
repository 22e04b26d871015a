package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestState(boardSize int) *State {
	return NewState(boardSize, rand.New(rand.NewSource(1)))
}

func TestCellNumFormula(t *testing.T) {
	cases := map[int]int{2: 7, 3: 19, 4: 37, 5: 61}
	for n, want := range cases {
		s := newTestState(n)
		assert.Equal(t, want, s.CellNum(), "boardSize %d", n)
	}
}

func TestValidMoveCountMatchesFreeCells(t *testing.T) {
	s := newTestState(3)
	require.Equal(t, s.CellNum(), s.ValidMoveCount())

	played := 0
	for !s.End() {
		mv := s.RandomMove()
		s.Update(mv)
		played++
		assert.Equal(t, s.CellNum()-played, s.ValidMoveCount())
	}
}

func TestUpdateUndoRestoresState(t *testing.T) {
	s := newTestState(3)

	var moves []int
	for i := 0; i < 6 && !s.End(); i++ {
		mv := s.RandomMove()
		moves = append(moves, mv)
		s.Update(mv)
	}

	color := s.CurrentColor()
	player := s.CurrentPlayer()
	prev := s.PreviousPlayer()
	white := s.PlayerScore(White)
	black := s.PlayerScore(Black)
	free := s.ValidMoveCount()

	s.Undo()
	s.Update(moves[len(moves)-1])

	assert.Equal(t, color, s.CurrentColor())
	assert.Equal(t, player, s.CurrentPlayer())
	assert.Equal(t, prev, s.PreviousPlayer())
	assert.Equal(t, white, s.PlayerScore(White))
	assert.Equal(t, black, s.PlayerScore(Black))
	assert.Equal(t, free, s.ValidMoveCount())
}

func TestFullUndoReturnsToCleanBoard(t *testing.T) {
	s := newTestState(2)

	var moves []int
	for !s.End() {
		mv := s.RandomMove()
		moves = append(moves, mv)
		s.Update(mv)
	}
	require.True(t, s.End())

	for i := len(moves) - 1; i >= 0; i-- {
		s.Undo()
	}

	assert.Equal(t, s.CellNum(), s.ValidMoveCount())
	assert.Equal(t, White, s.CurrentColor())
	assert.Equal(t, White, s.CurrentPlayer())
	assert.Equal(t, 0, s.PlayerScore(White))
	assert.Equal(t, 0, s.PlayerScore(Black))
}

func TestScoreMatchesLeader(t *testing.T) {
	s := newTestState(3)
	for !s.End() {
		s.Update(s.RandomMove())
	}
	switch s.Leader() {
	case White:
		assert.Equal(t, 1.0, s.Score())
	case Black:
		assert.Equal(t, 0.0, s.Score())
	default:
		assert.Equal(t, 0.5, s.Score())
	}
}

func TestColorAlternatesEveryMove(t *testing.T) {
	s := newTestState(3)
	prev := s.CurrentColor()
	for i := 0; i < 8 && !s.End(); i++ {
		s.Update(s.RandomMove())
		assert.NotEqual(t, prev, s.CurrentColor())
		prev = s.CurrentColor()
	}
}

func TestEachValidMoveVisitsEveryFreeCellOnce(t *testing.T) {
	s := newTestState(2)
	s.Update(s.RandomMove())

	seen := make(map[int]bool)
	color := s.CurrentColor()
	s.EachValidMove(func(mv int) {
		cellIdx := mv % s.CellNum()
		assert.Equal(t, Empty, s.cells[cellIdx].color)
		assert.Equal(t, int(color), mv/s.CellNum())
		seen[cellIdx] = true
	})
	assert.Equal(t, s.ValidMoveCount(), len(seen))
}

func TestWhiteBlackCellTrackLastMoves(t *testing.T) {
	s := newTestState(3)
	wMove := s.RandomMove()
	s.Update(wMove)
	assert.Equal(t, wMove, s.WhiteCell())

	bMove := s.RandomMove()
	s.Update(bMove)
	assert.Equal(t, bMove-s.CellNum(), s.BlackCell())
	assert.Equal(t, wMove, s.WhiteCell())
}

func TestNeighboursAreSymmetric(t *testing.T) {
	s := newTestState(3)
	for i, c := range s.cells {
		for _, nIdx := range c.neighbours {
			n := s.cells[nIdx]
			found := false
			for _, back := range n.neighbours {
				if back == i {
					found = true
					break
				}
			}
			assert.True(t, found, "cell %d neighbour %d is not mutual", i, nIdx)
		}
	}
}

func TestResetReusesBoardSize(t *testing.T) {
	s := newTestState(3)
	for i := 0; i < 4; i++ {
		s.Update(s.RandomMove())
	}
	s.Reset()
	assert.Equal(t, 19, s.CellNum())
	assert.Equal(t, s.CellNum(), s.ValidMoveCount())
	assert.True(t, len(s.moveIdxs) == 0)
}

func TestInitialPolicyStaysInUnitRange(t *testing.T) {
	s := newTestState(2)
	scores := s.InitialPolicy(200)
	for _, color := range []Color{White, Black} {
		for _, v := range scores[color] {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
	// the state must be restored to its starting position by InitialPolicy
	assert.Equal(t, s.CellNum(), s.ValidMoveCount())
	assert.True(t, len(s.moveIdxs) == 0)
}
