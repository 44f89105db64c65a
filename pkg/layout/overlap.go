package layout

import (
	"cmp"
	"math"
	"slices"

	"github.com/pdjsoneditor/jsongraph/pkg/graph"
)

// ResolveOverlaps pushes nodes down inside visual columns until consecutive
// boxes are at least MinSpacing apart. heights[i] is the box height of
// nodes[i]; positions are box centers and are updated in place.
//
// Columns are formed greedily: a node joins the first existing column whose
// key x lies within XTolerance, otherwise it opens a new column keyed by its
// own x. Keys never move, so the grouping depends on input order. Nodes only
// ever move down and never leave their column.
func ResolveOverlaps(nodes []graph.Node, heights []float64, o Overlap) {
	type column struct {
		key     float64
		members []int
	}
	var columns []*column
	for i, n := range nodes {
		var found *column
		for _, c := range columns {
			if math.Abs(n.Position.X-c.key) <= o.XTolerance {
				found = c
				break
			}
		}
		if found == nil {
			found = &column{key: n.Position.X}
			columns = append(columns, found)
		}
		found.members = append(found.members, i)
	}

	for _, c := range columns {
		if len(c.members) < 2 {
			continue
		}
		m := c.members
		slices.SortStableFunc(m, func(a, b int) int {
			return cmp.Compare(nodes[a].Position.Y, nodes[b].Position.Y)
		})
		for i := 1; i < len(m); i++ {
			prev, curr := m[i-1], m[i]
			prevBottom := nodes[prev].Position.Y + heights[prev]/2
			currTop := nodes[curr].Position.Y - heights[curr]/2
			if currTop >= prevBottom+o.MinSpacing {
				continue
			}
			adj := prevBottom + o.MinSpacing - currTop
			for _, j := range m[i:] {
				nodes[j].Position.Y += adj
			}
		}
	}
}
