package omega

import (
	"time"

	"github.com/omega-mcts/omega/game"
)

// PlayerConfig is one side's search configuration for an Arena match:
// which node flavour it searches with, and that engine's
// transposition table replacement policy.
type PlayerConfig struct {
	Kind      NodeKind
	Recycling bool
	Budget    int
}

// MatchResult tallies the outcome of one or more Arena games.
type MatchResult struct {
	WhiteWins int
	BlackWins int
	Draws     int
	Moves     int
}

// Arena pits two independently configured Drivers against each other
// on a shared board: each side keeps its own transposition table and
// MAST policy, and the move one side's search commits to is replayed
// into the other's state via Update rather than by sharing Go state
// directly - the same shape a match between two separately-built
// engine binaries would take.
type Arena struct {
	boardSize  int
	totalMsecs int64
	white      PlayerConfig
	black      PlayerConfig
}

// NewArena builds an Arena for boardSize-radius boards, where each
// side gets totalMsecs of clock for the whole game.
func NewArena(boardSize int, totalMsecs int64, white, black PlayerConfig) *Arena {
	return &Arena{boardSize: boardSize, totalMsecs: totalMsecs, white: white, black: black}
}

// PlayGame runs one game to completion and returns the winning color
// (game.Empty on a tie) along with how many moves were played.
func (a *Arena) PlayGame(seed uint64) (game.Color, int) {
	white := NewDriver(a.white.Kind, a.boardSize, a.white.Recycling, a.white.Budget, seed)
	black := NewDriver(a.black.Kind, a.boardSize, a.black.Recycling, a.black.Budget, seed+1)

	remaining := [2]int64{a.totalMsecs, a.totalMsecs}

	for !white.State().End() {
		mover := white.State().CurrentPlayer()
		start := time.Now()

		var moves [2]int
		if mover == game.White {
			moves = white.RunSearch(remaining[game.White])
			black.Update(moves[0])
			black.Update(moves[1])
		} else {
			moves = black.RunSearch(remaining[game.Black])
			white.Update(moves[0])
			white.Update(moves[1])
		}

		remaining[mover] -= time.Since(start).Milliseconds()
		if remaining[mover] < 0 {
			remaining[mover] = 0
		}
	}

	return white.State().Leader(), white.State().MovesPlayed()
}

// PlayMatch runs n games, alternating which config starts as White so
// neither side's search budget is biased by always moving first, and
// tallies the results.
func (a *Arena) PlayMatch(n int, seed uint64) MatchResult {
	var result MatchResult
	for i := 0; i < n; i++ {
		round := *a
		if i%2 == 1 {
			round.white, round.black = a.black, a.white
		}
		winner, moves := round.PlayGame(seed + uint64(i)*2)
		result.Moves += moves

		switch {
		case winner == game.Empty:
			result.Draws++
		case (i%2 == 0 && winner == game.White) || (i%2 == 1 && winner == game.Black):
			result.WhiteWins++
		default:
			result.BlackWins++
		}
	}
	return result
}
