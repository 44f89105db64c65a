package transform

import (
	"fmt"

	"github.com/pdjsoneditor/jsongraph/pkg/dag"
)

// Subdivide breaks edges that span multiple rows into sequences of single-row
// edges connected by synthetic dummy nodes.
//
// After Subdivide every edge connects consecutive rows
// (parent.Row + 1 == child.Row). For example:
//
//	Before: root (row 0) → leaf (row 3)
//	After:  root → _d_root_1 → _d_root_2 → leaf
//
// Dummies are zero-sized, carry the edge source as MasterID and inherit the
// edge weight on every segment so crossing minimization treats the chain like
// the original edge. Edge metadata is kept on the final segment only.
//
// # Node IDs
//
// Dummy IDs have the form "_d_master_row". On collision a numeric suffix is
// appended ("_d_root_1__2").
//
// Subdivide returns the IDs of the inserted dummies.
func Subdivide(g *dag.DAG) []string {
	gen := newIDGen(g.Nodes())
	var dummies []string
	var toRemove []dag.Edge
	for _, e := range g.Edges() {
		src, srcOK := g.Node(e.From)
		dst, dstOK := g.Node(e.To)
		if !srcOK || !dstOK || dst.Row <= src.Row+1 {
			continue
		}

		toRemove = append(toRemove, e)
		prevID := src.ID
		for row := src.Row + 1; row < dst.Row; row++ {
			prevID = addDummy(g, gen, prevID, src.ID, row, e.Weight)
			dummies = append(dummies, prevID)
		}
		if err := g.AddEdge(dag.Edge{From: prevID, To: dst.ID, Weight: e.Weight, Meta: e.Meta}); err != nil {
			panic(err)
		}
	}

	for _, e := range toRemove {
		g.RemoveEdge(e.From, e.To)
	}
	return dummies
}

func addDummy(g *dag.DAG, gen *idGen, from, master string, row, weight int) string {
	id := gen.next(master, row)
	if err := g.AddNode(dag.Node{
		ID:       id,
		Row:      row,
		Kind:     dag.NodeKindDummy,
		MasterID: master,
	}); err != nil {
		panic(err)
	}
	if err := g.AddEdge(dag.Edge{From: from, To: id, Weight: weight}); err != nil {
		panic(err)
	}
	return id
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(base string, row int) string {
	prefix := fmt.Sprintf("_d_%s_%d", base, row)
	id := prefix
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s__%d", prefix, i)
	}
}
