package transform

import "github.com/pdjsoneditor/jsongraph/pkg/dag"

// Components returns the weakly connected components of g. Components are
// listed in order of their first node, and node IDs inside a component follow
// breadth-first discovery from that node.
func Components(g *dag.DAG) [][]string {
	seen := make(map[string]bool, g.NodeCount())
	var comps [][]string
	for _, n := range g.Nodes() {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		comp := []string{n.ID}
		for i := 0; i < len(comp); i++ {
			for _, next := range g.Neighbors(comp[i]) {
				if !seen[next] {
					seen[next] = true
					comp = append(comp, next)
				}
			}
		}
		comps = append(comps, comp)
	}
	return comps
}
