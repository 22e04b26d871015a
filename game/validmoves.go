package game

import "math/rand"

// freeCell is one slot of the free-list arena. prev/next chain the
// currently-free cells together; removed cells stay in the arena (their
// pointers just drop out of the chain) so undo can splice them back in.
type freeCell struct {
	idx        int
	prev, next *freeCell
}

// validMoves tracks which cells are still free to play, in a fixed
// random order established at construction. It is the O(1)
// remove/restore collaborator behind GameState.update/undo.
type validMoves struct {
	arena   []freeCell
	lookup  []*freeCell
	first   *freeCell
	taken   []int
	size    int
	cellNum int
	// color flips on every remove/undo call; it tracks which piece
	// color is about to be placed next, so iteration and getRandomMove
	// can report the move index (not just the cell index) for the
	// upcoming placement.
	color int
}

func newValidMoves(cellNum int, rng *rand.Rand) *validMoves {
	order := rng.Perm(cellNum)
	v := &validMoves{
		arena:   make([]freeCell, cellNum),
		lookup:  make([]*freeCell, cellNum),
		size:    cellNum,
		cellNum: cellNum,
	}
	for i, idx := range order {
		v.arena[i].idx = idx
		v.lookup[idx] = &v.arena[i]
	}
	for i := range v.arena {
		if i > 0 {
			v.arena[i].prev = &v.arena[i-1]
		}
		if i < cellNum-1 {
			v.arena[i].next = &v.arena[i+1]
		}
	}
	if cellNum > 0 {
		v.first = &v.arena[0]
	}
	return v
}

func (v *validMoves) remove(cellIdx int) {
	v.color ^= 1
	fc := v.lookup[cellIdx]
	if fc.prev != nil {
		fc.prev.next = fc.next
	} else {
		v.first = fc.next
	}
	if fc.next != nil {
		fc.next.prev = fc.prev
	}
	v.taken = append(v.taken, cellIdx)
	v.size--
}

func (v *validMoves) undo() {
	v.color ^= 1
	cellIdx := v.taken[len(v.taken)-1]
	v.taken = v.taken[:len(v.taken)-1]
	fc := v.lookup[cellIdx]
	if v.first == nil {
		v.first = fc
		v.size++
		return
	}
	switch {
	case fc.prev == nil:
		v.first.prev = fc
		v.first = fc
	case fc.next == nil:
		fc.prev.next = fc
	default:
		fc.prev.next = fc
		fc.next.prev = fc
	}
	v.size++
}

// randomMove returns the next free cell in randomised order, encoded as
// a move index for the piece color about to be placed.
func (v *validMoves) randomMove() int {
	return v.first.idx + v.cellNum*v.color
}

// each visits every currently-free cell's move index, in randomised
// free-list order, each adjusted by the piece color about to be placed.
func (v *validMoves) each(fn func(moveIdx int)) {
	for fc := v.first; fc != nil; fc = fc.next {
		fn(fc.idx + v.cellNum*v.color)
	}
}
