package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestAddNode_Errors(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a) = %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(a) twice = %v, want ErrDuplicateNodeID", err)
	}
}

func TestAddEdge_Errors(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})

	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"unknown source", Edge{From: "x", To: "a"}, ErrUnknownSourceNode},
		{"unknown target", Edge{From: "a", To: "x"}, ErrUnknownTargetNode},
		{"self loop", Edge{From: "a", To: "a"}, ErrSelfLoop},
		{"valid", Edge{From: "a", To: "b"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := g.AddEdge(tt.edge); !errors.Is(err, tt.want) {
				t.Errorf("AddEdge() = %v, want %v", err, tt.want)
			}
		})
	}

	e, ok := g.Edge("a", "b")
	if !ok {
		t.Fatal("Edge(a, b) not found")
	}
	if e.Weight != 1 || e.MinLen != 1 {
		t.Errorf("defaults = (%d, %d), want (1, 1)", e.Weight, e.MinLen)
	}
}

func TestNodes_InsertionOrder(t *testing.T) {
	g := New(nil)
	ids := []string{"z", "m", "a", "q"}
	for _, id := range ids {
		_ = g.AddNode(Node{ID: id})
	}
	if got := NodeIDs(g.Nodes()); !slices.Equal(got, ids) {
		t.Errorf("Nodes() = %v, want %v", got, ids)
	}
}

func TestSetRowsAndOrders(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"a", "b", "c"} {
		_ = g.AddNode(Node{ID: id})
	}
	g.SetRows(map[string]int{"a": 0, "b": 1, "c": 1})
	if got := NodeIDs(g.NodesInRow(1)); !slices.Equal(got, []string{"b", "c"}) {
		t.Fatalf("NodesInRow(1) = %v", got)
	}

	g.SetOrders(map[int][]string{1: {"c", "b"}})
	if got := NodeIDs(g.NodesInRow(1)); !slices.Equal(got, []string{"c", "b"}) {
		t.Errorf("NodesInRow(1) after SetOrders = %v", got)
	}
	b, _ := g.Node("b")
	if b.Order != 1 {
		t.Errorf("b.Order = %d, want 1", b.Order)
	}
}

func TestLayers_Dense(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a", Row: 0})
	_ = g.AddNode(Node{ID: "b", Row: 2})

	layers := g.Layers()
	if len(layers) != 3 {
		t.Fatalf("len(Layers()) = %d, want 3", len(layers))
	}
	if layers[1] != nil {
		t.Errorf("Layers()[1] = %v, want nil", layers[1])
	}
	if New(nil).Layers() != nil {
		t.Error("Layers() of empty graph should be nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		build func(g *DAG)
		want  error
	}{
		{
			name: "consecutive",
			build: func(g *DAG) {
				_ = g.AddNode(Node{ID: "a", Row: 0})
				_ = g.AddNode(Node{ID: "b", Row: 1})
				_ = g.AddEdge(Edge{From: "a", To: "b"})
			},
		},
		{
			name: "long edge",
			build: func(g *DAG) {
				_ = g.AddNode(Node{ID: "a", Row: 0})
				_ = g.AddNode(Node{ID: "b", Row: 2})
				_ = g.AddEdge(Edge{From: "a", To: "b"})
			},
			want: ErrNonConsecutiveRows,
		},
		{
			name: "back edge",
			build: func(g *DAG) {
				_ = g.AddNode(Node{ID: "a", Row: 0})
				_ = g.AddNode(Node{ID: "b", Row: 1})
				_ = g.AddEdge(Edge{From: "a", To: "b"})
				_ = g.AddEdge(Edge{From: "b", To: "a"})
			},
			want: ErrNonConsecutiveRows,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(nil)
			tt.build(g)
			if err := g.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRemoveEdge(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})

	g.RemoveEdge("a", "b")
	if g.EdgeCount() != 0 || g.OutDegree("a") != 0 || g.InDegree("b") != 0 {
		t.Errorf("edges remain after RemoveEdge: count=%d", g.EdgeCount())
	}
}

func TestCountCrossings_Weighted(t *testing.T) {
	g := New(nil)
	for _, n := range []Node{{ID: "a"}, {ID: "b"}, {ID: "x", Row: 1}, {ID: "y", Row: 1}} {
		_ = g.AddNode(n)
	}
	_ = g.AddEdge(Edge{From: "a", To: "y", Weight: 3})
	_ = g.AddEdge(Edge{From: "b", To: "x", Weight: 2})

	got := CountCrossings(g, map[int][]string{0: {"a", "b"}, 1: {"x", "y"}})
	if got != 6 {
		t.Errorf("CountCrossings() = %d, want 6", got)
	}
}
