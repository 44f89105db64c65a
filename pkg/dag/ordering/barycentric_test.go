package ordering

import (
	"context"
	"fmt"
	"slices"
	"testing"

	"github.com/pdjsoneditor/jsongraph/pkg/dag"
)

func layeredGraph(rows map[string]int, edges [][2]string) *dag.DAG {
	g := dag.New(nil)
	ids := make([]string, 0, len(rows))
	for id := range rows {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		_ = g.AddNode(dag.Node{ID: id, Row: rows[id]})
	}
	for _, e := range edges {
		_ = g.AddEdge(dag.Edge{From: e[0], To: e[1]})
	}
	return g
}

func TestBarycentric_KeepsAllNodes(t *testing.T) {
	g := layeredGraph(
		map[string]int{"r": 0, "a": 1, "b": 1, "c": 1, "x": 2, "y": 2, "z": 2},
		[][2]string{{"r", "a"}, {"r", "b"}, {"r", "c"}, {"a", "z"}, {"c", "x"}, {"b", "y"}},
	)
	orders := Barycentric{}.OrderRows(g)

	for _, row := range g.RowIDs() {
		want := dag.NodeIDs(g.NodesInRow(row))
		got := slices.Clone(orders[row])
		slices.Sort(want)
		slices.Sort(got)
		if !slices.Equal(got, want) {
			t.Errorf("row %d = %v, want permutation of %v", row, orders[row], want)
		}
	}
	if cc := dag.CountCrossings(g, orders); cc != 0 {
		t.Errorf("crossings = %d, want 0", cc)
	}
}

func TestBarycentric_NeverWorseThanInitial(t *testing.T) {
	for n := 0; n < 8; n++ {
		rows := map[string]int{}
		var edges [][2]string
		for i := 0; i < 6; i++ {
			rows[fmt.Sprintf("u%d", i)] = 0
			rows[fmt.Sprintf("l%d", i)] = 1
		}
		for i := 0; i < 6; i++ {
			edges = append(edges, [2]string{fmt.Sprintf("u%d", i), fmt.Sprintf("l%d", (i*(n+2)+n)%6)})
			edges = append(edges, [2]string{fmt.Sprintf("u%d", i), fmt.Sprintf("l%d", (i+n)%6)})
		}
		g := layeredGraph(rows, edges)

		initial := dag.CountCrossings(g, initOrder(g, g.RowIDs()))
		got := dag.CountCrossings(g, Barycentric{}.OrderRows(g))
		if got > initial {
			t.Errorf("case %d: crossings %d > initial %d", n, got, initial)
		}
	}
}

func TestBarycentric_Cancelled(t *testing.T) {
	g := layeredGraph(map[string]int{"a": 0, "b": 0, "x": 1, "y": 1}, [][2]string{{"a", "y"}, {"b", "x"}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orders := Barycentric{}.OrderRowsContext(ctx, g)
	if len(orders[0]) != 2 || len(orders[1]) != 2 {
		t.Errorf("cancelled ordering lost nodes: %v", orders)
	}
}

func TestSortRow_Unsortable(t *testing.T) {
	fixed := map[string]int{"p": 0, "q": 1}
	nbrs := map[string][]string{"a": {"q"}, "c": {"p"}}
	got := sortRow([]string{"a", "b", "c"}, fixed,
		func(id string) []string { return nbrs[id] },
		func(string, string) int { return 1 }, false)

	// b has no neighbor and keeps index 1.
	want := []string{"c", "b", "a"}
	if !slices.Equal(got, want) {
		t.Errorf("sortRow() = %v, want %v", got, want)
	}
}

func TestApply_SetsOrder(t *testing.T) {
	g := layeredGraph(map[string]int{"a": 0, "b": 0, "x": 1, "y": 1}, [][2]string{{"a", "y"}, {"b", "x"}})
	Apply(context.Background(), g, Barycentric{})

	if cc := dag.CountCrossings(g, map[int][]string{
		0: dag.NodeIDs(g.NodesInRow(0)),
		1: dag.NodeIDs(g.NodesInRow(1)),
	}); cc != 0 {
		t.Errorf("crossings after Apply = %d", cc)
	}
	for _, n := range g.Nodes() {
		if g.NodesInRow(n.Row)[n.Order] != n {
			t.Errorf("node %s Order %d does not match row index", n.ID, n.Order)
		}
	}
}
