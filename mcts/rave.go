package mcts

import (
	"math"
	"math/rand"

	"github.com/omega-mcts/omega/game"
	"github.com/omega-mcts/omega/zobrist"
)

// raveBiasK controls how quickly a child's value shifts from its AMAF
// (rave) estimate to its direct Monte Carlo estimate as real visits
// accumulate: beta = sqrt(k/(visits+k)) starts near 1 (trust AMAF)
// and falls toward 0 once a child's own direct sample count grows
// past k.
const raveBiasK = 500.0

// raveChild is one legal move's statistics at a RAVENode: a direct
// Monte Carlo mean (visits/wins, exactly as in UCT) plus an
// All-Moves-As-First mean gathered from every occurrence of this move,
// by the same color, anywhere later in the same simulated game -
// not just in this node's own subtree.
type raveChild struct {
	moveIdx int
	visits  int
	wins    float64 // White-perspective

	rCount int
	rWins  float64 // White-perspective
}

// RAVENode is a transposition-table entry for MC-RAVE search.
type RAVENode struct {
	hdr zobrist.Header

	visits int
	wins   float64

	children []raveChild
	expanded bool
}

func newRAVENode(key uint64, depth int) *RAVENode {
	return &RAVENode{hdr: zobrist.Header{Key: key, Depth: depth}}
}

// Hdr satisfies zobrist.Keyed.
func (n *RAVENode) Hdr() *zobrist.Header { return &n.hdr }

func raveVisitCount(n *RAVENode) int { return n.visits }

func (n *RAVENode) expand(ctx *Context) {
	if n.expanded {
		return
	}
	ctx.State.EachValidMove(func(mv int) {
		n.children = append(n.children, raveChild{moveIdx: mv})
	})
	n.expanded = true
}

// selectChild blends each child's direct and AMAF means with Silver's
// RAVE schedule, beta = sqrt(k/(visits+k)): a pure value blend, with
// no additive exploration bonus on top - a child with zero direct
// visits still has a well-defined score from its AMAF evidence alone.
func (n *RAVENode) selectChild(mover game.Color) int {
	best, bestScore := -1, -1.0
	for i := range n.children {
		c := &n.children[i]

		var mcMean float64
		if c.visits > 0 {
			mcMean = c.wins / float64(c.visits)
		} else {
			mcMean = 0.5
		}
		var raveMean float64
		if c.rCount > 0 {
			raveMean = c.rWins / float64(c.rCount)
		} else {
			raveMean = 0.5
		}

		beta := math.Sqrt(raveBiasK / (float64(c.visits) + raveBiasK))
		mean := (1-beta)*mcMean + beta*raveMean

		value := mean
		if mover != game.White {
			value = 1 - value
		}
		if value > bestScore {
			best, bestScore = i, value
		}
	}
	return best
}

// updateLeaf is a no-op for RAVE: unlike UCT's progressive bias, RAVE
// has no node-local counter that needs bumping the instant a child is
// chosen - both its direct and AMAF statistics are only ever folded in
// during backpropagation, once an outcome actually exists.
func (n *RAVENode) updateLeaf(childIdx int) {}

func (n *RAVENode) mostVisited() int {
	best, bestVisits := 0, -1
	for i := range n.children {
		if n.children[i].visits > bestVisits {
			best, bestVisits = i, n.children[i].visits
		}
	}
	return n.children[best].moveIdx
}

// ChildStats reports (moveIdx, visits, value) for every legal move at
// n, value converted to mover's own perspective.
func (n *RAVENode) ChildStats(mover game.Color) []ChildStat {
	out := make([]ChildStat, len(n.children))
	for i, c := range n.children {
		mean := 0.5
		if c.visits > 0 {
			mean = c.wins / float64(c.visits)
		} else if c.rCount > 0 {
			mean = c.rWins / float64(c.rCount)
		}
		if mover != game.White {
			mean = 1 - mean
		}
		out[i] = ChildStat{MoveIdx: c.moveIdx, Visits: c.visits, Value: mean}
	}
	return out
}

// Visits is the node's own accumulated visit count.
func (n *RAVENode) Visits() int { return n.visits }

// stateScore reports this node's own accumulated value, White's
// perspective, falling back to an even 0.5 before its first backprop.
// A simulation rollout that wanders back into a stored node uses this
// in place of playing all the way to a true terminal.
func (n *RAVENode) stateScore() float64 {
	if n.visits == 0 {
		return 0.5
	}
	return n.wins / float64(n.visits)
}

// RAVEEngine runs the same four-phase loop as UCTEngine, but threads an
// AMAF scratch buffer through simulation and backpropagation so every
// ancestor's children can credit moves played anywhere later in the
// game, not just inside their own subtree.
type RAVEEngine struct {
	table *zobrist.Table[*RAVENode]
	ctx   *Context

	path     []*RAVENode
	colors   []game.Color // piece color about to be placed at each ply
	players  []game.Color // round owner placing it, distinct from colors
	childIdx []int
	simMoves []int

	cellNum int

	// takenMoves[player][color] accumulates every cell index of that
	// color placed by that player, still pending AMAF credit: first
	// populated by simulate's rollout, then grown again, cell by cell,
	// as backprop ascends the tree path and undoes it. The player
	// dimension keeps credit from conflating two different players'
	// choices of the same piece color - spec's takenMoves[player][piece].
	// touched[player][color] records which indices were set this step
	// so the buffer can be cleared in O(len(touched)) rather than
	// O(cellNum) between steps.
	takenMoves [2][2][]bool
	touched    [2][2][]int
}

// NewRAVEEngine builds an engine over an already-constructed table and
// context.
func NewRAVEEngine(table *zobrist.Table[*RAVENode], ctx *Context) *RAVEEngine {
	cellNum := ctx.State.CellNum()
	e := &RAVEEngine{table: table, ctx: ctx, cellNum: cellNum}
	for player := 0; player < 2; player++ {
		for color := 0; color < 2; color++ {
			e.takenMoves[player][color] = make([]bool, cellNum)
		}
	}
	return e
}

// NewRAVETable builds the transposition table a RAVEEngine searches
// over. See zobrist.New for the meaning of moveNum, lenHashCode,
// budget, recycling and rng.
func NewRAVETable(moveNum, lenHashCode, budget int, recycling bool, rng *rand.Rand) *zobrist.Table[*RAVENode] {
	return zobrist.New(moveNum, lenHashCode, budget, recycling, rng, newRAVENode, raveVisitCount)
}

// Reset drops every stored node and starts a fresh search tree.
func (e *RAVEEngine) Reset() { e.table.Reset() }

// NumNodes reports the transposition table's live node count.
func (e *RAVEEngine) NumNodes() int { return e.table.NumNodes() }

func (e *RAVEEngine) mark(player, color game.Color, moveIdx int) {
	cellIdx := moveIdx % e.cellNum
	if e.takenMoves[player][color][cellIdx] {
		return
	}
	e.takenMoves[player][color][cellIdx] = true
	e.touched[player][color] = append(e.touched[player][color], cellIdx)
}

func (e *RAVEEngine) clearTaken() {
	for player := range e.touched {
		for color := range e.touched[player] {
			for _, cellIdx := range e.touched[player][color] {
				e.takenMoves[player][color][cellIdx] = false
			}
			e.touched[player][color] = e.touched[player][color][:0]
		}
	}
}

// Step runs exactly one MCTS iteration, exactly as UCTEngine.Step does,
// except it also folds AMAF credit into every ancestor during
// backpropagation.
func (e *RAVEEngine) Step() {
	e.path = e.path[:0]
	e.colors = e.colors[:0]
	e.players = e.players[:0]
	e.childIdx = e.childIdx[:0]
	e.clearTaken()

	node := e.table.Root()
	depth := e.ctx.State.MovesPlayed()
	for {
		e.path = append(e.path, node)
		if e.ctx.State.End() {
			break
		}
		node.expand(e.ctx)
		if len(node.children) == 0 {
			break
		}
		color := e.ctx.State.CurrentColor()
		player := e.ctx.State.CurrentPlayer()
		e.colors = append(e.colors, color)
		e.players = append(e.players, player)
		ci := node.selectChild(player)
		node.updateLeaf(ci)
		e.childIdx = append(e.childIdx, ci)
		mv := node.children[ci].moveIdx
		e.ctx.State.Update(mv)
		e.table.Update(mv)
		depth++

		if next, ok := e.table.Load(); ok {
			node = next
			continue
		}
		node = e.table.Store(depth)
		e.path = append(e.path, node)
		break
	}

	outcome := e.simulate()
	e.backprop(outcome)
	e.table.ManageMemory()
}

// simulate plays the current (non-terminal) position out with the MAST
// default policy, marking every move played (by player and color) into
// the AMAF scratch buffer. It stops either at a true terminal or the
// moment the rollout wanders back into an already-stored node, reusing
// that node's own accumulated value instead of continuing to play it
// out, then restores the game and table position to where it started.
func (e *RAVEEngine) simulate() float64 {
	moves := e.simMoves[:0]
	hitScore, hitNode := 0.0, false

	for !e.ctx.State.End() {
		player := e.ctx.State.CurrentPlayer()
		color := e.ctx.State.CurrentColor()
		mv, _ := e.ctx.Policy.Select()
		e.ctx.Policy.AddMove(player, mv)
		e.mark(player, color, mv)
		e.ctx.State.Update(mv)
		e.table.Update(mv)
		moves = append(moves, mv)

		if n, ok := e.table.Load(); ok {
			hitScore = n.stateScore()
			hitNode = true
			break
		}
	}

	outcome := e.ctx.State.Score()
	if hitNode {
		outcome = hitScore
	}

	for i := len(moves) - 1; i >= 0; i-- {
		e.ctx.State.Undo()
		e.table.Update(moves[i])
	}
	e.simMoves = moves[:0]

	e.ctx.Policy.Update(outcome)
	return outcome
}

// backprop ascends the path taken during selection. At each node it
// adds outcome to the node's own totals, then credits every child
// whose move index appears anywhere in the AMAF buffer for that
// child's color - not only the child actually chosen - before undoing
// the tree edge and marking that edge's own move into the buffer for
// the still-higher ancestors waiting above it.
func (e *RAVEEngine) backprop(outcome float64) {
	for i := len(e.path) - 1; i >= 0; i-- {
		node := e.path[i]
		node.wins += outcome
		node.visits++

		if i < len(e.players) {
			taken := e.takenMoves[e.players[i]][e.colors[i]]
			for ci := range node.children {
				c := &node.children[ci]
				cellIdx := c.moveIdx % e.cellNum
				if taken[cellIdx] {
					c.rCount++
					c.rWins += outcome
				}
			}
		}

		e.table.Touch(node)
		if i > 0 {
			ci := e.childIdx[i-1]
			mv := e.path[i-1].children[ci].moveIdx
			e.ctx.State.Undo()
			e.table.Update(mv)
			e.mark(e.players[i-1], e.colors[i-1], mv)
			e.path[i-1].children[ci].visits++
			e.path[i-1].children[ci].wins += outcome
		}
	}
}

// Root exposes the current root node.
func (e *RAVEEngine) Root() *RAVENode { return e.table.Root() }

// Visits and ChildStats implement RootProbe over the current root.
func (e *RAVEEngine) Visits() int { return e.table.Root().Visits() }
func (e *RAVEEngine) ChildStats() []ChildStat {
	return e.table.Root().ChildStats(e.ctx.State.CurrentPlayer())
}

// Commit advances both the game state and the table root by moveIdx.
func (e *RAVEEngine) Commit(moveIdx int) {
	e.ctx.State.Update(moveIdx)
	e.table.UpdateRoot(moveIdx, e.ctx.State.MovesPlayed())
}

// RootMove expands the current root if Commit just promoted a node the
// search never actually reached, then returns its most-visited child.
// It runs no further playouts: it is how a round's second stone is
// chosen off the same search batch that picked its first, per the
// driver's per-round commit loop.
func (e *RAVEEngine) RootMove() int {
	root := e.table.Root()
	root.expand(e.ctx)
	return root.mostVisited()
}

// Search schedules a per-move time budget against remaining (the time
// left on the game clock) and runs Step in a loop until the scheduler
// calls it, then returns the move index backed by the most selections
// at the root.
func (e *RAVEEngine) Search(scheduler *Scheduler, remaining int64) int {
	s := e.ctx.State
	scheduler.Schedule(s.NumExpectedMoves(), durationFromMillis(remaining))
	for {
		e.Step()
		scheduler.Tick()
		if scheduler.Finish(e) {
			break
		}
	}
	return e.table.Root().mostVisited()
}
