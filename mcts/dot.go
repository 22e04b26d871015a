package mcts

import (
	"fmt"

	"github.com/awalterschulze/gographviz"
)

// DotGraph renders the root and its immediate children as a Graphviz
// DOT graph, labelling each child with its visit count and value. It
// is a one-ply diagnostic snapshot, not a full tree dump: the tree
// itself lives in a zobrist.Table keyed by position, not by parent
// pointers, so walking more than one ply would mean re-playing moves
// against the live game state rather than just reading node fields.
func DotGraph(name string, root RootProbe) string {
	g := gographviz.NewGraph()
	g.SetName(name)
	g.SetDir(true)

	rootName := "root"
	g.AddNode(name, rootName, map[string]string{
		"label": fmt.Sprintf("\"visits=%d\"", root.Visits()),
	})

	for _, c := range root.ChildStats() {
		childName := fmt.Sprintf("move%d", c.MoveIdx)
		g.AddNode(name, childName, map[string]string{
			"label": fmt.Sprintf("\"move=%d\\nvisits=%d\\nvalue=%.3f\"", c.MoveIdx, c.Visits, c.Value),
		})
		g.AddEdge(rootName, childName, true, nil)
	}

	return g.String()
}
