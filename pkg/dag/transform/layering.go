package transform

import "github.com/pdjsoneditor/jsongraph/pkg/dag"

// AssignLayers assigns nodes to rows with a longest-path ranking.
//
// Each node is placed at the maximum over its incoming edges of
// parent.Row + edge.MinLen, so that:
//   - Source nodes (no incoming edges) are at row 0
//   - Every edge spans at least its MinLen rows
//   - Each node is pushed as deep as necessary to satisfy all parents
//
// Existing row assignments in the DAG are overwritten.
//
// # Algorithm
//
// AssignLayers performs a topological traversal (Kahn's algorithm):
//  1. Initialize all source nodes (in-degree 0) at row 0 and add to queue
//  2. Process queue: for each node, push children to row + MinLen
//  3. Decrement in-degree counters; add newly zero-degree nodes to queue
//  4. Repeat until queue is empty
//
// # Cycles
//
// AssignLayers assumes the graph is acyclic. Nodes on a cycle never reach
// zero in-degree and stay at row 0. Run [BreakCycles] first.
//
// # Performance
//
// Time complexity is O(V + E).
func AssignLayers(g *dag.DAG) {
	g.SetRows(longestPath(g))
}

func longestPath(g *dag.DAG) map[string]int {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	rows := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	out := make(map[string][]dag.Edge, len(nodes))
	for _, e := range g.Edges() {
		out[e.From] = append(out[e.From], e)
	}

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		rows[n.ID] = 0
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, e := range out[curr] {
			if row := rows[curr] + e.MinLen; row > rows[e.To] {
				rows[e.To] = row
			}
			inDegree[e.To]--
			if inDegree[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}
	return rows
}
