package layout

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/goccy/go-graphviz"

	"github.com/pdjsoneditor/jsongraph/pkg/dag"
)

func TestToDOT(t *testing.T) {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: `odd "id"`, Width: 144, Height: 36})
	_ = g.AddNode(dag.Node{ID: "b", Width: 72, Height: 72})
	_ = g.AddEdge(dag.Edge{From: `odd "id"`, To: "b", Weight: 2})

	dot := toDOT(g, Default())
	for _, want := range []string{
		"rankdir=LR;",
		"nodesep=1.1111;",
		"n0 [width=2.0000, height=0.5000];",
		"n1 [width=1.0000, height=1.0000];",
		"n0 -> n1 [weight=2, minlen=1];",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "odd") {
		t.Error("node IDs must not appear in DOT")
	}
}

func TestParseCoords(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		out     []float64
		wantErr bool
	}{
		{"27,90", 2, []float64{27, 90}, false},
		{"0,0,54,108", 4, []float64{0, 0, 54, 108}, false},
		{"125.5, 16", 2, []float64{125.5, 16}, false},
		{"", 2, nil, true},
		{"27", 2, nil, true},
		{"a,b", 2, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseCoords(tt.in, tt.want)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCoords(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			for i := range tt.out {
				if got[i] != tt.out[i] {
					t.Errorf("parseCoords(%q) = %v, want %v", tt.in, got, tt.out)
					break
				}
			}
		})
	}
}

func TestReadLayout(t *testing.T) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		t.Skipf("graphviz unavailable: %v", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte("digraph G { n0 [shape=box]; n1 [shape=box]; n0 -> n1; }"))
	if err != nil {
		t.Fatal(err)
	}
	defer parsed.Close()
	if err := gv.Render(ctx, parsed, graphviz.XDOT, io.Discard); err != nil {
		t.Fatal(err)
	}

	centers, height, err := readLayout(parsed)
	if err != nil {
		t.Fatal(err)
	}
	if len(centers) != 2 {
		t.Fatalf("centers = %v, want 2 nodes", centers)
	}
	if height <= 0 {
		t.Errorf("height = %v, want > 0", height)
	}
	// y grows upward in Graphviz output.
	if centers["n0"][1] <= centers["n1"][1] {
		t.Errorf("n0 should sit above n1: %v", centers)
	}
}

func TestGraphvizEngine_Chain(t *testing.T) {
	g := dag.New(nil)
	for _, id := range []string{"a", "b", "c"} {
		_ = g.AddNode(dag.Node{ID: id, Width: 250, Height: 32})
	}
	_ = g.AddEdge(dag.Edge{From: "a", To: "b"})
	_ = g.AddEdge(dag.Edge{From: "b", To: "c"})

	cfg := Default()
	cfg.Dagre.RankDir = RankDirTB
	if err := (GraphvizEngine{}).Place(context.Background(), g, cfg); err != nil {
		t.Skipf("graphviz unavailable: %v", err)
	}
	a, _ := g.Node("a")
	b, _ := g.Node("b")
	c, _ := g.Node("c")
	if !(a.Y < b.Y && b.Y < c.Y) {
		t.Errorf("chain not top to bottom: a=%v b=%v c=%v", a.Y, b.Y, c.Y)
	}
	if got := a.Y - a.Height/2; got < cfg.Dagre.MarginY-0.5 || got > cfg.Dagre.MarginY+0.5 {
		t.Errorf("top edge = %v, want margin %v", got, cfg.Dagre.MarginY)
	}
}
