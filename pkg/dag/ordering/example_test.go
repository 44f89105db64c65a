package ordering_test

import (
	"fmt"

	"github.com/pdjsoneditor/jsongraph/pkg/dag"
	"github.com/pdjsoneditor/jsongraph/pkg/dag/ordering"
)

func ExampleBarycentric() {
	// X pattern: a→y and b→x cross in insertion order
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a", Row: 0})
	_ = g.AddNode(dag.Node{ID: "b", Row: 0})
	_ = g.AddNode(dag.Node{ID: "x", Row: 1})
	_ = g.AddNode(dag.Node{ID: "y", Row: 1})
	_ = g.AddEdge(dag.Edge{From: "a", To: "y"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "x"})

	fmt.Println("Initial crossings:", dag.CountLayerCrossings(g, []string{"a", "b"}, []string{"x", "y"}))

	orders := ordering.Barycentric{}.OrderRows(g)
	fmt.Println("After ordering:", dag.CountCrossings(g, orders))
	// Output:
	// Initial crossings: 1
	// After ordering: 0
}
