// Package mast implements the Move-Average Sampling Technique: a
// default simulation policy that samples legal moves softmax-weighted
// by a per-(color, move) running average of past outcomes.
package mast

import (
	"math"

	"github.com/omega-mcts/omega/game"
	xrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

const (
	defaultTemp = 5
	defaultW    = 0.98
)

type loggedMove struct {
	player  game.Color
	moveIdx int
}

// Policy is the MAST simulation policy for one GameState. It is not
// safe for concurrent use.
type Policy struct {
	state *game.State
	src   xrand.Source

	scores        [2][]float64
	initialScores [2][]float64
	pending       []loggedMove

	temp, w float64
}

// New builds a MAST policy over state. A temp or w of zero selects the
// default (temp=5, w=0.98).
func New(state *game.State, temp, w float64, src xrand.Source) *Policy {
	if temp == 0 {
		temp = defaultTemp
	}
	if w == 0 {
		w = defaultW
	}
	p := &Policy{state: state, src: src, temp: temp, w: w}
	p.Reset()
	return p
}

// Reset clears the moving-average table back to a flat prior, dropping
// any warmed-up initial policy. Use Setup to warm it back up.
func (p *Policy) Reset() {
	n := p.state.MoveNum()
	p.scores = [2][]float64{make([]float64, n), make([]float64, n)}
	for i := 0; i < n; i++ {
		p.scores[game.White][i] = 1
		p.scores[game.Black][i] = 1
	}
	p.pending = p.pending[:0]
}

// Setup warms the table from playouts random full playouts of the
// underlying (expected empty) GameState, caching the result so a later
// Reset followed by Setup does not re-run the playouts.
func (p *Policy) Setup(playouts int) {
	if p.initialScores[game.White] == nil || p.initialScores[game.Black] == nil {
		p.initialScores = p.state.InitialPolicy(playouts)
	}
	p.scores = [2][]float64{
		append([]float64(nil), p.initialScores[game.White]...),
		append([]float64(nil), p.initialScores[game.Black]...),
	}
	p.pending = p.pending[:0]
}

// Select draws one legal move, softmax-weighted by the current
// player's score table at temperature temp. childIdx is the move's
// position within legal-move iteration order, the index UCT needs to
// address its per-child virtual-count slots.
func (p *Policy) Select() (moveIdx, childIdx int) {
	player := p.state.CurrentPlayer()
	table := p.scores[player]

	var idxMap []int
	var weights []float64
	p.state.EachValidMove(func(mv int) {
		idxMap = append(idxMap, mv)
		weights = append(weights, math.Exp(table[mv]/p.temp)+1e-8)
	})

	w := sampleuv.NewWeighted(weights, p.src)
	idx, ok := w.Take()
	if !ok {
		// weights summed to zero or the legal-move list was empty; both
		// are programming errors (Select must only be called on a
		// non-terminal position).
		panic("mast: Select called with no legal moves")
	}
	return idxMap[idx], idx
}

// AddMove logs that player placed a stone at moveIdx during the current
// simulation, for Update to fold into the moving average once the
// simulation's outcome is known.
func (p *Policy) AddMove(player game.Color, moveIdx int) {
	p.pending = append(p.pending, loggedMove{player, moveIdx})
}

// Update folds outcome (1.0 = White win) into every move logged since
// the last Update, then clears the log.
func (p *Policy) Update(outcome float64) {
	for _, m := range p.pending {
		val := outcome + float64(m.player)*(1-2*outcome)
		s := &p.scores[m.player][m.moveIdx]
		*s = p.w*(*s) + (1-p.w)*val
	}
	p.pending = p.pending[:0]
}

// Score returns the current table value for one (moveIdx, player) pair.
func (p *Policy) Score(moveIdx int, player game.Color) float64 {
	return p.scores[player][moveIdx]
}

// Scores returns the full per-move table for one player. The returned
// slice is shared; callers must not mutate it.
func (p *Policy) Scores(player game.Color) []float64 {
	return p.scores[player]
}
