// Package mcts implements the search: selection/expansion/simulation/
// backpropagation over a Zobrist-hashed transposition table, in two
// interchangeable node flavours (UCT-with-progressive-bias and
// MC-RAVE), driven to a stop by an adaptive time Scheduler.
package mcts

import (
	"github.com/omega-mcts/omega/game"
	"github.com/omega-mcts/omega/mast"
)

// Context bundles the collaborators a search step needs: the live
// position and the MAST default policy over it. Node variants consume
// it by reference rather than reaching into package-level statics, so
// a Node stays plain data and every method that mutates search state
// takes the context holding that state explicitly.
type Context struct {
	State  *game.State
	Policy *mast.Policy
}
