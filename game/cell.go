package game

// axKey addresses a cell by its axial coordinates during board setup; it
// is discarded once neighbour lists are resolved to flat indices.
type axKey struct{ q, r int }

// cell is one board field. Neighbours are stored as indices into the
// owning State's cell arena rather than pointers, so the arena stays a
// single contiguous, relocatable slice.
type cell struct {
	q, r       int
	idx        int
	color      Color
	groupID    int
	neighbours []int
}

// neighbourOffsets gives the six axial offsets in clockwise order
// starting from the upper-left neighbour.
var neighbourOffsets = [6][2]int{
	{-1, 1}, {-1, 0}, {0, -1}, {1, -1}, {1, 0}, {0, 1},
}

// Per-sector rotations of neighbourOffsets so that, once invalid
// (off-board) neighbours are filtered out, the remaining ones stay in
// clockwise order and consecutive entries stay mutually adjacent, which
// also fixes the order in which merges meet neighbouring groups.
var (
	topEdgeOrder         = [6]int{2, 3, 4, 5, 0, 1}
	topRightEdgeOrder    = [6]int{1, 2, 3, 4, 5, 0}
	bottomRightEdgeOrder = [6]int{0, 1, 2, 3, 4, 5}
	bottomEdgeOrder      = [6]int{5, 0, 1, 2, 3, 4}
	bottomLeftEdgeOrder  = [6]int{4, 5, 0, 1, 2, 3}
	interiorOrder        = [6]int{3, 4, 5, 0, 1, 2}
)

func neighbourOrder(boardSize, q, r int) [6]int {
	switch {
	case q == -boardSize+1 && r > 0:
		return topEdgeOrder
	case r == boardSize-1 && q > -boardSize+1:
		return topRightEdgeOrder
	case r >= 0 && q > 0:
		return bottomRightEdgeOrder
	case q == boardSize-1 && r < 0:
		return bottomEdgeOrder
	case r == -boardSize+1 && q > 0:
		return bottomLeftEdgeOrder
	default:
		return interiorOrder
	}
}

func isValidAx(boardSize, q, r int) bool {
	return abs(q) <= boardSize-1 && abs(r) <= boardSize-1 && abs(q+r) <= boardSize-1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
