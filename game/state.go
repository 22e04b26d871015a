package game

import "math/rand"

// State is the full, mutable position of an Omega game: the board, the
// two colors' groups, the scores they imply, and enough history to undo
// back to the start. It supports incremental update/undo so a search
// can walk deep into the tree and back without re-deriving the board
// from scratch at every node.
type State struct {
	boardSize int
	cellNum   int
	numSteps  int

	cells []cell

	groups [2][]*group

	playerScores [2]int

	currentColor   Color
	currentPlayer  Color
	previousPlayer Color

	moveIdxs []int

	valid *validMoves

	rng *rand.Rand
}

// NewState builds a fresh Omega position on a hexagonal board of the
// given radius (boardSize cells from center to edge along an axis).
func NewState(boardSize int, rng *rand.Rand) *State {
	s := &State{boardSize: boardSize, rng: rng}
	s.Reset()
	return s
}

// Reset returns the state to an empty board of the same size, with a
// freshly randomised free-cell order.
func (s *State) Reset() {
	s.cellNum = 1 + 3*s.boardSize*(s.boardSize-1)
	s.numSteps = s.cellNum - s.cellNum%4
	s.currentColor = White
	s.currentPlayer = White
	s.previousPlayer = White
	s.playerScores = [2]int{}
	s.moveIdxs = s.moveIdxs[:0]
	s.groups[White] = nil
	s.groups[Black] = nil
	s.initCells()
	s.valid = newValidMoves(s.cellNum, s.rng)
}

func (s *State) initCells() {
	n := s.boardSize
	s.cells = make([]cell, 0, s.cellNum)
	index := make(map[axKey]int, s.cellNum)
	idx := 0
	for q := -n + 1; q < n; q++ {
		for r := -n + 1; r < n; r++ {
			if isValidAx(n, q, r) {
				s.cells = append(s.cells, cell{q: q, r: r, idx: idx, color: Empty, groupID: -1})
				index[axKey{q, r}] = idx
				idx++
			}
		}
	}
	for i := range s.cells {
		s.setNeighbours(&s.cells[i], index)
	}
}

func (s *State) setNeighbours(c *cell, index map[axKey]int) {
	n := s.boardSize
	for _, o := range neighbourOrder(n, c.q, c.r) {
		off := neighbourOffsets[o]
		q, r := c.q+off[0], c.r+off[1]
		if isValidAx(n, q, r) {
			c.neighbours = append(c.neighbours, index[axKey{q, r}])
		}
	}
}

// BoardSize returns the hex radius the state was constructed with.
func (s *State) BoardSize() int { return s.boardSize }

// CellNum returns the number of playable cells on the board.
func (s *State) CellNum() int { return s.cellNum }

// MoveNum returns the size of the move-index space: one slot per cell
// per color.
func (s *State) MoveNum() int { return s.cellNum * 2 }

// CurrentColor is the piece color about to be placed next.
func (s *State) CurrentColor() Color { return s.currentColor }

// CurrentPlayer is the player whose round is in progress: it stays the
// same across both placements of a round and flips once the round
// completes.
func (s *State) CurrentPlayer() Color { return s.currentPlayer }

// PreviousPlayer is the player who made the most recent full-round move.
func (s *State) PreviousPlayer() Color { return s.previousPlayer }

// End reports whether every expected move has been played.
func (s *State) End() bool { return s.numSteps == 0 }

// PlayerScore returns the product of group sizes accumulated by color.
func (s *State) PlayerScore(color Color) int { return s.playerScores[color] }

// Leader returns the color currently ahead on score, or Empty on a tie.
func (s *State) Leader() Color {
	switch {
	case s.playerScores[White] > s.playerScores[Black]:
		return White
	case s.playerScores[White] < s.playerScores[Black]:
		return Black
	default:
		return Empty
	}
}

// Score returns 1 if White leads, 0 if Black leads, 0.5 on a tie - the
// outcome backpropagated through a finished playout.
func (s *State) Score() float64 {
	switch {
	case s.playerScores[White] > s.playerScores[Black]:
		return 1
	case s.playerScores[White] < s.playerScores[Black]:
		return 0
	default:
		return 0.5
	}
}

// NumExpectedMoves is how many more rounds the current player gets
// before the board fills, counting the one in progress: a player's
// rounds come around once every 4 moves of the budget numSteps tracks.
func (s *State) NumExpectedMoves() int { return (s.numSteps + 2) / 4 }

// ToMoveIdx encodes a cell index and a piece index (0=white, 1=black)
// into the flat move-index space.
func (s *State) ToMoveIdx(cellIdx, pieceIdx int) int { return cellIdx + pieceIdx*s.cellNum }

// LastTakenCellIdx decodes the cell index of the most recently applied
// move. Calling it with no applied moves is a programming error.
func (s *State) LastTakenCellIdx() int {
	return s.moveIdxs[len(s.moveIdxs)-1] % s.cellNum
}

// LastMoveIdx returns the raw move index (cell and piece color both
// encoded) of the most recently applied move. Calling it with no
// applied moves is a programming error.
func (s *State) LastMoveIdx() int {
	return s.moveIdxs[len(s.moveIdxs)-1]
}

// MovesPlayed is the number of moves applied since the last Reset. It
// doubles as the search depth of whatever tree node sits at the
// current position, since every descent into the tree corresponds to
// exactly one Update and every backprop step to exactly one Undo.
func (s *State) MovesPlayed() int { return len(s.moveIdxs) }

// ValidMoveCount is the number of cells still free to play.
func (s *State) ValidMoveCount() int { return s.valid.size }

// RandomMove returns the next free cell, as a move index for the color
// about to be placed, in the state's fixed random free-cell order.
func (s *State) RandomMove() int { return s.valid.randomMove() }

// EachValidMove visits every currently legal move index, each encoding a
// free cell plus the color about to be placed there.
func (s *State) EachValidMove(fn func(moveIdx int)) { s.valid.each(fn) }

// WhiteCell returns the cell index of the most recent move White made.
// Calling it before White has moved is a programming error.
func (s *State) WhiteCell() int {
	i := len(s.moveIdxs) - 1
	if len(s.moveIdxs)%2 == 0 {
		i--
	}
	return s.moveIdxs[i]
}

// BlackCell returns the cell index of the most recent move Black made.
// Calling it before Black has moved is a programming error.
func (s *State) BlackCell() int {
	i := len(s.moveIdxs) - 1
	if len(s.moveIdxs)%2 == 1 {
		i--
	}
	return s.moveIdxs[i] - s.cellNum
}

// Update applies a legal move index: it places the stone, merges
// groups, advances the color/player, and pushes the move onto the undo
// stack.
func (s *State) Update(moveIdx int) {
	s.moveIdxs = append(s.moveIdxs, moveIdx)
	cellIdx := s.LastTakenCellIdx()
	s.valid.remove(cellIdx)
	c := &s.cells[cellIdx]
	c.color = s.currentColor
	s.mergeGroups(c)
	s.numSteps--
	s.updateColors()
}

// Undo reverses the most recently applied move. Calling it with no
// applied moves is a programming error.
func (s *State) Undo() {
	c := &s.cells[s.LastTakenCellIdx()]
	s.decomposeGroup(c)
	s.numSteps++
	s.undoColors()
	s.valid.undo()
	s.moveIdxs = s.moveIdxs[:len(s.moveIdxs)-1]
}

func (s *State) updateColors() {
	if s.currentColor == White {
		s.currentColor = Black
		if s.previousPlayer == White {
			s.previousPlayer = Black
		} else {
			s.previousPlayer = White
		}
		return
	}
	s.previousPlayer = s.currentPlayer
	if s.currentPlayer == White {
		s.currentPlayer = Black
	} else {
		s.currentPlayer = White
	}
	s.currentColor = White
}

func (s *State) undoColors() {
	if s.currentColor == White {
		s.currentColor = Black
		if s.currentPlayer == White {
			s.currentPlayer = Black
		} else {
			s.currentPlayer = White
		}
		return
	}
	s.currentColor = White
}

func (s *State) mergeGroups(c *cell) {
	color := c.color
	if len(s.groups[color]) == 0 {
		s.playerScores[color] = 1
		s.newSingletonGroup(c, color)
		return
	}

	neighbourIDs := s.neighbourGroupIDs(c, color)
	if len(neighbourIDs) == 0 {
		s.newSingletonGroup(c, color)
		return
	}

	moveGroupID := neighbourIDs[0]
	c.groupID = moveGroupID
	newSize := 1
	for _, id := range neighbourIDs {
		g := s.groups[color][id]
		newSize += g.size
		s.playerScores[color] /= g.size
		g.id = moveGroupID
	}

	survivor := s.groups[color][moveGroupID]
	survivor.merges = append(survivor.merges, append([]int(nil), neighbourIDs[1:]...))
	survivor.size = newSize
	s.playerScores[color] *= newSize
}

func (s *State) newSingletonGroup(c *cell, color Color) {
	id := len(s.groups[color])
	c.groupID = id
	s.groups[color] = append(s.groups[color], &group{id: id, size: 1})
}

func (s *State) decomposeGroup(c *cell) {
	color := c.color
	c.color = Empty
	groupID := c.groupID
	g := s.groups[color][groupID]

	if g.size == 1 {
		s.groups[color] = s.groups[color][:len(s.groups[color])-1]
		if len(s.groups[color]) == 0 {
			// the last stone of this color just came off the board; a
			// lingering non-zero score here would misreport the leader
			// until the next placement of this color resets it anyway.
			s.playerScores[color] = 0
		}
		return
	}

	s.playerScores[color] /= g.size
	g.size--

	absorbed := g.merges[len(g.merges)-1]
	for _, id := range absorbed {
		component := s.groups[color][id]
		s.playerScores[color] *= component.size
		g.size -= component.size
		component.id = id
	}
	s.playerScores[color] *= g.size
	g.merges = g.merges[:len(g.merges)-1]
}

// InitialPolicy estimates, for every move index, the probability that
// a game in which it is played is won by White (table [White]) or by
// Black (table [Black]), by running n full random playouts
// from the current (expected to be empty) position and averaging
// outcomes. It must be called on a fresh state: it plays and undoes its
// own random games and expects every cell to still be free to draw
// from.
func (s *State) InitialPolicy(n int) [2][]float64 {
	moveNum := s.MoveNum()
	scores := [2][]float64{make([]float64, moveNum), make([]float64, moveNum)}
	for i := 0; i < moveNum; i++ {
		scores[White][i] = 0.5
		scores[Black][i] = 0.5
	}
	counts := make([]float64, moveNum)
	for i := range counts {
		counts[i] = 1
	}

	cellIdxs := make([]int, s.cellNum)
	for i := range cellIdxs {
		cellIdxs[i] = i
	}
	played := make([]int, 0, s.cellNum)

	for i := 0; i < n; i++ {
		s.rng.Shuffle(len(cellIdxs), func(a, b int) { cellIdxs[a], cellIdxs[b] = cellIdxs[b], cellIdxs[a] })
		played = played[:0]
		idx := 0
		for s.numSteps > 0 {
			mv := cellIdxs[idx] + s.cellNum*int(s.currentColor)
			played = append(played, mv)
			s.Update(mv)
			idx++
		}
		outcome := s.Score()
		for j := len(played) - 1; j >= 0; j-- {
			s.Undo()
			mv := played[j]
			scores[White][mv] = (scores[White][mv]*counts[mv] + outcome) / (counts[mv] + 1)
			scores[Black][mv] = (scores[Black][mv]*counts[mv] + 1 - outcome) / (counts[mv] + 1)
			counts[mv]++
		}
	}
	return scores
}
