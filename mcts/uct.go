package mcts

import (
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/omega-mcts/omega/game"
	"github.com/omega-mcts/omega/zobrist"
)

// uctExploreC is the UCB1 exploration constant. The literature default
// of sqrt(2) undersearches on boards this small; the reference engine
// this package is ported from uses 2.0, and that is what tuning here
// keeps.
const uctExploreC = 2.0

// uctChild is one legal move's statistics at a UCTNode: an
// exploitation mean plus a MAST-seeded progressive bias that stands in
// for the mean until the move's first real visit.
type uctChild struct {
	moveIdx int
	visits  int
	wins    float64 // White-perspective outcome sum
	prior   float64 // White-perspective MAST seed, fixed at expansion
}

// UCTNode is a transposition-table entry for UCT-with-progressive-bias
// search: a node visit count, an accumulated outcome, and one uctChild
// per legal move at this position.
type UCTNode struct {
	hdr zobrist.Header

	visits int
	wins   float64

	children []uctChild
	expanded bool
}

func newUCTNode(key uint64, depth int) *UCTNode {
	return &UCTNode{hdr: zobrist.Header{Key: key, Depth: depth}}
}

// Hdr satisfies zobrist.Keyed.
func (n *UCTNode) Hdr() *zobrist.Header { return &n.hdr }

func uctVisitCount(n *UCTNode) int { return n.visits }

// whitePrior converts a MAST score, which is already phrased in terms
// of the mover's own favour, into a White-perspective value so node
// statistics can be accumulated in one consistent frame regardless of
// which color is to move at a given depth.
func whitePrior(policy moveScorer, moveIdx int, mover game.Color) float64 {
	if mover == game.White {
		return policy.Score(moveIdx, game.White)
	}
	return 1 - policy.Score(moveIdx, game.Black)
}

// moveScorer is the slice of mast.Policy that node expansion needs;
// kept narrow so tests can stub it without building a full Policy.
type moveScorer interface {
	Score(moveIdx int, player game.Color) float64
}

func (n *UCTNode) expand(ctx *Context) {
	if n.expanded {
		return
	}
	mover := ctx.State.CurrentPlayer()
	ctx.State.EachValidMove(func(mv int) {
		n.children = append(n.children, uctChild{
			moveIdx: mv,
			prior:   whitePrior(ctx.Policy, mv, mover),
		})
	})
	// vCount starts at one per legal child, not zero, so the very first
	// selection at a freshly expanded node still has a positive
	// log(vCount+1) exploration term instead of a vanishing one. The
	// seed is added to, not written over, any visits a backprop already
	// recorded while the node was still an unexpanded leaf.
	n.visits += len(n.children)
	n.expanded = true
}

// selectChild returns the index, within n.children, of the move UCB1
// with progressive bias ranks highest for the player about to move.
// Every child carries a prior, so there is no separate "unvisited
// child gets infinite priority" branch: an unvisited child's value is
// exactly its MAST seed. The prior is only ever an initial seed for
// mean - it plays no further role once a child accumulates real
// visits.
func (n *UCTNode) selectChild(mover game.Color) int {
	best, bestScore := -1, math32.Inf(-1)
	logParent := math32.Log(float32(n.visits + 1))
	for i := range n.children {
		c := &n.children[i]
		var mean float32
		if c.visits > 0 {
			mean = float32(c.wins / float64(c.visits))
		} else {
			mean = float32(c.prior)
		}
		value := mean
		if mover != game.White {
			value = 1 - value
		}
		explore := uctExploreC * math32.Sqrt(logParent/float32(c.visits+1))
		score := value + explore
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}

// updateLeaf records that childIdx was just chosen during selection,
// before the recursive descent into it runs. UCT bumps the child's
// visit count here rather than waiting for backpropagation, so a
// selection pass that revisits the same node later in the same tree
// walk (possible via transpositions) sees an up-to-date denominator.
// backprop below therefore only ever adds to a child entry's wins,
// never to its visits.
func (n *UCTNode) updateLeaf(childIdx int) {
	n.children[childIdx].visits++
}

// mostVisited returns the move index backed by the most selections,
// the move Search returns once the search budget runs out.
func (n *UCTNode) mostVisited() int {
	best, bestVisits := 0, -1
	for i := range n.children {
		if n.children[i].visits > bestVisits {
			best, bestVisits = i, n.children[i].visits
		}
	}
	return n.children[best].moveIdx
}

// ChildStats reports (moveIdx, visits, value) for every legal move at
// n, value converted to mover's own perspective, for RootProbe and for
// diagnostics.
func (n *UCTNode) ChildStats(mover game.Color) []ChildStat {
	out := make([]ChildStat, len(n.children))
	for i, c := range n.children {
		mean := c.prior
		if c.visits > 0 {
			mean = c.wins / float64(c.visits)
		}
		if mover != game.White {
			mean = 1 - mean
		}
		out[i] = ChildStat{MoveIdx: c.moveIdx, Visits: c.visits, Value: mean}
	}
	return out
}

// Visits is the node's own accumulated visit count.
func (n *UCTNode) Visits() int { return n.visits }

// stateScore reports this node's own accumulated value, White's
// perspective, falling back to an even 0.5 before its first backprop.
// The one-per-child seed expand adds to visits is not counted.
// A simulation rollout that wanders back into a stored node uses this
// in place of playing all the way to a true terminal.
func (n *UCTNode) stateScore() float64 {
	visits := n.visits
	if n.expanded {
		visits -= len(n.children)
	}
	if visits <= 0 {
		return 0.5
	}
	return n.wins / float64(visits)
}

// ChildStat is one legal move's search statistics at the root, value
// already phrased in terms of the player about to move there, for
// scheduling and for move selection.
type ChildStat struct {
	MoveIdx int
	Visits  int
	Value   float64
}

// UCTEngine runs the selection/expansion/simulation/backpropagation
// loop over a zobrist.Table[*UCTNode].
type UCTEngine struct {
	table *zobrist.Table[*UCTNode]
	ctx   *Context

	path     []*UCTNode
	childIdx []int
	simMoves []int
}

// NewUCTEngine builds an engine over an already-constructed table and
// context; table and ctx must agree on MoveNum/budget sizing (the
// caller, normally Driver, is responsible for that).
func NewUCTEngine(table *zobrist.Table[*UCTNode], ctx *Context) *UCTEngine {
	return &UCTEngine{table: table, ctx: ctx}
}

// NewUCTTable builds the transposition table a UCTEngine searches
// over. See zobrist.New for the meaning of moveNum, lenHashCode,
// budget, recycling and rng.
func NewUCTTable(moveNum, lenHashCode, budget int, recycling bool, rng *rand.Rand) *zobrist.Table[*UCTNode] {
	return zobrist.New(moveNum, lenHashCode, budget, recycling, rng, newUCTNode, uctVisitCount)
}

// Reset drops every stored node and starts a fresh search tree.
func (e *UCTEngine) Reset() { e.table.Reset() }

// NumNodes reports the transposition table's live node count.
func (e *UCTEngine) NumNodes() int { return e.table.NumNodes() }

// Step runs exactly one MCTS iteration: select down to an unexpanded
// or terminal node, expand it, simulate with the MAST default policy
// (to a terminal, or to the first stored node the rollout reaches), and
// backpropagate the result up the path taken.
// It leaves the game state exactly as it found it.
func (e *UCTEngine) Step() {
	e.path = e.path[:0]
	e.childIdx = e.childIdx[:0]

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
		mover := e.ctx.State.CurrentPlayer()
		ci := node.selectChild(mover)
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
		node = e.backward(e.table.Store(depth), depth)
		e.path = append(e.path, node)
		break
	}

	outcome := e.simulate()
	e.backprop(outcome)
	e.table.ManageMemory()
}

// backward is called once selection reaches a freshly created node: it
// hands the node straight back, since unlike RAVE's AMAF bookkeeping
// UCT has no per-node state that depends on the path walked to reach
// it. RAVEEngine's Step has no counterpart call.
func (e *UCTEngine) backward(n *UCTNode, depth int) *UCTNode { return n }

// simulate plays out the current (non-terminal) position with the
// MAST default policy, logging every move played so Policy's own
// moving-average table can be updated once the outcome is known. It
// stops either at a true terminal or the moment the rollout wanders
// back into an already-stored node - reusing that node's own
// accumulated value instead of continuing to play it out. It restores
// the game and table position to where simulate found them before
// returning.
func (e *UCTEngine) simulate() float64 {
	moves := e.simMoves[:0]
	hitScore, hitNode := 0.0, false

	for !e.ctx.State.End() {
		player := e.ctx.State.CurrentPlayer()
		mv, _ := e.ctx.Policy.Select()
		e.ctx.Policy.AddMove(player, mv)
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

// backprop adds outcome to every node on the path just walked (most
// recent first), restoring the game and table position as it ascends,
// then touches each surviving node so the recycling FIFO reflects the
// traversal. A child's wins field is a cache of its own node's wins as
// seen from the parent, so each step also mirrors the just-updated
// node's outcome into the parent's entry for the edge taken into it -
// visits were already bumped there by updateLeaf at selection time.
func (e *UCTEngine) backprop(outcome float64) {
	for i := len(e.path) - 1; i >= 0; i-- {
		node := e.path[i]
		node.wins += outcome
		node.visits++
		e.table.Touch(node)
		if i > 0 {
			ci := e.childIdx[i-1]
			mv := e.path[i-1].children[ci].moveIdx
			e.ctx.State.Undo()
			e.table.Update(mv)
			e.path[i-1].children[ci].wins += outcome
		}
	}
}

// Root exposes the current root node, for diagnostics and move commit.
func (e *UCTEngine) Root() *UCTNode { return e.table.Root() }

// Visits and ChildStats implement RootProbe over the current root, so
// a Scheduler can be handed the engine itself.
func (e *UCTEngine) Visits() int { return e.table.Root().Visits() }
func (e *UCTEngine) ChildStats() []ChildStat {
	return e.table.Root().ChildStats(e.ctx.State.CurrentPlayer())
}

// Commit advances both the game state and the table root by moveIdx,
// the step the driver takes once a search settles on a move.
func (e *UCTEngine) Commit(moveIdx int) {
	e.ctx.State.Update(moveIdx)
	e.table.UpdateRoot(moveIdx, e.ctx.State.MovesPlayed())
}

// RootMove expands the current root if Commit just promoted a node the
// search never actually reached (possible in recycling mode, or simply
// because the prior search batch never sampled that branch), then
// returns its most-visited child. It runs no further playouts: it is
// how a round's second stone is chosen off the same search batch that
// picked its first, per the driver's per-round commit loop.
func (e *UCTEngine) RootMove() int {
	root := e.table.Root()
	root.expand(e.ctx)
	return root.mostVisited()
}

// Search schedules a per-move time budget against remaining (the time
// left on the game clock) and runs Step in a loop until the scheduler
// calls it, then returns the move index backed by the most selections
// at the root. The caller is expected to pass the move on to Commit.
func (e *UCTEngine) Search(scheduler *Scheduler, remaining int64) int {
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
