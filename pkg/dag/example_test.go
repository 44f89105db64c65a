package dag_test

import (
	"fmt"

	"github.com/pdjsoneditor/jsongraph/pkg/dag"
)

func ExampleDAG_basic() {
	// root → root.users → root.users[0]
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "root", Row: 0})
	_ = g.AddNode(dag.Node{ID: "root.users", Row: 1})
	_ = g.AddNode(dag.Node{ID: "root.users[0]", Row: 2})
	_ = g.AddEdge(dag.Edge{From: "root", To: "root.users"})
	_ = g.AddEdge(dag.Edge{From: "root.users", To: "root.users[0]"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Rows:", g.RowCount())
	// Output:
	// Nodes: 3
	// Edges: 2
	// Rows: 3
}

func ExampleDAG_traversal() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "root"})
	_ = g.AddNode(dag.Node{ID: "meta"})
	_ = g.AddNode(dag.Node{ID: "data"})
	_ = g.AddEdge(dag.Edge{From: "root", To: "meta"})
	_ = g.AddEdge(dag.Edge{From: "root", To: "data"})

	fmt.Println("Children of root:", g.Children("root"))
	fmt.Println("Parents of meta:", g.Parents("meta"))
	fmt.Println("Out-degree of root:", g.OutDegree("root"))
	// Output:
	// Children of root: [meta data]
	// Parents of meta: [root]
	// Out-degree of root: 2
}

func ExampleDAG_MergeEdge() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a"})
	_ = g.AddNode(dag.Node{ID: "b"})
	_ = g.MergeEdge(dag.Edge{From: "a", To: "b"})
	_ = g.MergeEdge(dag.Edge{From: "a", To: "b", MinLen: 2})

	e, _ := g.Edge("a", "b")
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Weight:", e.Weight)
	fmt.Println("MinLen:", e.MinLen)
	// Output:
	// Edges: 1
	// Weight: 2
	// MinLen: 2
}

func ExampleNode_dummy() {
	regular := dag.Node{ID: "users", Kind: dag.NodeKindRegular}
	dummy := dag.Node{ID: "_d_users_2", Kind: dag.NodeKindDummy, MasterID: "users"}

	fmt.Println("Regular is dummy:", regular.IsDummy())
	fmt.Println("Dummy is dummy:", dummy.IsDummy())
	fmt.Println("Dummy effective ID:", dummy.EffectiveID())
	// Output:
	// Regular is dummy: false
	// Dummy is dummy: true
	// Dummy effective ID: users
}

func ExampleCountLayerCrossings() {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "a", Row: 0})
	_ = g.AddNode(dag.Node{ID: "b", Row: 0})
	_ = g.AddNode(dag.Node{ID: "x", Row: 1})
	_ = g.AddNode(dag.Node{ID: "y", Row: 1})

	// a→y and b→x cross when a is left of b
	_ = g.AddEdge(dag.Edge{From: "a", To: "y"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "x"})

	upper := []string{"a", "b"}
	lower := []string{"x", "y"}
	fmt.Println("Crossings:", dag.CountLayerCrossings(g, upper, lower))

	upper = []string{"b", "a"}
	fmt.Println("After reorder:", dag.CountLayerCrossings(g, upper, lower))
	// Output:
	// Crossings: 1
	// After reorder: 0
}
