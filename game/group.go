package game

// group is a connected region of same-colored stones. Groups are never
// destroyed once created: when a move connects several groups, the
// absorbed groups stay in the arena with their id field overwritten to
// point at the survivor, and the merge is recorded so undo can restore
// them exactly. This is the per-color union-find-like record that
// scoring and undo rely on.
type group struct {
	id   int
	size int
	// merges is a LIFO stack of the non-survivor group ids absorbed by
	// this group on each merge that involved it, most recent last.
	merges [][]int
}

// find resolves a possibly-stale group id to its current root by
// following id chains left behind by earlier merges. No path
// compression: groups are cheap and chains are shallow in practice.
func (s *State) find(color Color, id int) int {
	g := s.groups[color][id]
	for g.id != id {
		id = g.id
		g = s.groups[color][id]
	}
	return id
}

// neighbourGroupIDs collects the distinct same-color group ids among a
// cell's neighbours, resolved to their current roots, in the order the
// neighbours are encountered.
func (s *State) neighbourGroupIDs(c *cell, color Color) []int {
	var ids []int
	seen := make(map[int]bool, len(c.neighbours))
	for _, nIdx := range c.neighbours {
		n := &s.cells[nIdx]
		if n.color != color {
			continue
		}
		id := s.find(color, n.groupID)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
