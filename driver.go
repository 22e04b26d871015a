// Package omega wires the game, mast, zobrist and mcts packages into
// the external interface a player - human or automated - drives a
// single Omega game through: construct once per game, Reset between
// games, RunSearch once per round.
package omega

import (
	"math/rand"

	"github.com/omega-mcts/omega/game"
	"github.com/omega-mcts/omega/mast"
	"github.com/omega-mcts/omega/mcts"
	xrand "golang.org/x/exp/rand"
)

// NodeKind selects which MCTS node flavour a Driver searches with.
// The two are dispatched statically, by this tag, rather than through
// a shared interface and a deep class hierarchy: a Driver holds
// exactly one of the two concrete engines below and never needs to
// treat them polymorphically.
type NodeKind int

const (
	UCT NodeKind = iota
	MCRAVE
)

// lenHashCode is the log2 bucket count the transposition tables use;
// 2^16 buckets comfortably spreads the move spaces this engine expects
// to search (boards well under a thousand cells).
const lenHashCode = 16

// setupPlayouts is how many random full games InitialPolicy and the
// MAST table's warm start are seeded from before a game begins.
const setupPlayouts = 2000

// Driver owns one game's worth of search state: the position, the
// MAST default policy over it, and whichever of the two MCTS engines
// NodeKind selected at construction.
type Driver struct {
	kind NodeKind

	state  *game.State
	policy *mast.Policy

	uct  *mcts.UCTEngine
	rave *mcts.RAVEEngine

	scheduler *mcts.Scheduler
}

// NewDriver builds a Driver for a board of the given size. recycling
// selects the transposition table's replacement policy (see
// zobrist.Table); budget bounds live node count and is only consulted
// in recycling mode. Passing an unknown kind is a programming error
// and panics, exactly as an unhandled case in a switch over a closed
// enum should.
func NewDriver(kind NodeKind, boardSize int, recycling bool, budget int, seed uint64) *Driver {
	rng := rand.New(rand.NewSource(int64(seed)))
	state := game.NewState(boardSize, rng)
	policy := mast.New(state, 0, 0, xrand.NewSource(seed))

	d := &Driver{
		kind:      kind,
		state:     state,
		policy:    policy,
		scheduler: mcts.NewScheduler(),
	}
	d.policy.Setup(setupPlayouts)

	ctx := &mcts.Context{State: state, Policy: policy}
	moveNum := state.MoveNum()
	zrng := rand.New(rand.NewSource(int64(seed) + 1))

	switch kind {
	case UCT:
		table := mcts.NewUCTTable(moveNum, lenHashCode, budget, recycling, zrng)
		d.uct = mcts.NewUCTEngine(table, ctx)
	case MCRAVE:
		table := mcts.NewRAVETable(moveNum, lenHashCode, budget, recycling, zrng)
		d.rave = mcts.NewRAVEEngine(table, ctx)
	default:
		panic("omega: unknown NodeKind")
	}

	return d
}

// Reset starts a new game on the same board, rebuilding the
// transposition table and re-warming the MAST policy from scratch.
func (d *Driver) Reset() {
	d.state.Reset()
	d.policy.Setup(setupPlayouts)
	switch d.kind {
	case UCT:
		d.uct.Reset()
	case MCRAVE:
		d.rave.Reset()
	}
}

// State exposes the live game position, for callers that need to
// inspect or render it between moves.
func (d *Driver) State() *game.State { return d.state }

// RunSearch plays out the current player's full round - a White-stone
// placement followed by a Black-stone placement, spec.md's round order
// - and returns both as a pair. Only the first placement is chosen by
// a freshly scheduled search; the round's second stone is read
// straight off the tree that search already built (promoted to the
// new root by the first Commit), with no further playouts, exactly as
// spec.md §4.6 describes: "this loop runs twice" off one search batch.
// Both moves are committed to the game state and the search tree
// before RunSearch returns.
func (d *Driver) RunSearch(remainingMsecs int64) [2]int {
	player := d.state.CurrentPlayer()

	var moves [2]int
	moves[0] = d.search(remainingMsecs)
	d.commit(moves[0])
	for i := 1; d.state.CurrentPlayer() == player; i++ {
		moves[i] = d.rootMove()
		d.commit(moves[i])
	}
	return moves
}

func (d *Driver) search(remainingMsecs int64) int {
	switch d.kind {
	case UCT:
		return d.uct.Search(d.scheduler, remainingMsecs)
	case MCRAVE:
		return d.rave.Search(d.scheduler, remainingMsecs)
	}
	return 0
}

func (d *Driver) rootMove() int {
	switch d.kind {
	case UCT:
		return d.uct.RootMove()
	case MCRAVE:
		return d.rave.RootMove()
	}
	return 0
}

func (d *Driver) commit(moveIdx int) {
	switch d.kind {
	case UCT:
		d.uct.Commit(moveIdx)
	case MCRAVE:
		d.rave.Commit(moveIdx)
	}
}

// Update applies an externally-chosen move (e.g. a human opponent's)
// to both the game state and the search tree, without running a
// search of its own.
func (d *Driver) Update(moveIdx int) {
	d.commit(moveIdx)
}

// NumNodes reports the transposition table's live node count (always
// 0 outside recycling mode, since non-recycling tables never track a
// global budget).
func (d *Driver) NumNodes() int {
	switch d.kind {
	case UCT:
		return d.uct.NumNodes()
	case MCRAVE:
		return d.rave.NumNodes()
	}
	return 0
}

