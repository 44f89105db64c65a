package transform

import "github.com/pdjsoneditor/jsongraph/pkg/dag"

// BreakCycles makes the graph acyclic by reversing back edges.
//
// A depth-first search runs from every source first and then from any node
// left unvisited (nodes that only sit on cycles). Each edge that points to a
// node still on the DFS stack is removed and re-added in the opposite
// direction, merging into an existing reverse edge when there is one.
//
// Reversing instead of deleting keeps every document edge in the layout, so
// the two endpoints still end up in different ranks.
//
// BreakCycles returns the original (pre-reversal) back edges in discovery
// order. Self-loops are dropped and reported as well.
func BreakCycles(g *dag.DAG) []dag.Edge {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, g.NodeCount())
	var backEdges [][2]string

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, child := range g.Children(node) {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]string{node, child})
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	reversed := make([]dag.Edge, 0, len(backEdges))
	for _, be := range backEdges {
		e, ok := g.Edge(be[0], be[1])
		if !ok {
			continue
		}
		g.RemoveEdge(e.From, e.To)
		reversed = append(reversed, e)
		if e.From == e.To {
			continue
		}
		_ = g.MergeEdge(dag.Edge{From: e.To, To: e.From, Weight: e.Weight, MinLen: e.MinLen, Meta: e.Meta})
	}
	return reversed
}
