package render

import (
	"strings"
	"testing"

	"github.com/pdjsoneditor/jsongraph/pkg/graph"
	"github.com/pdjsoneditor/jsongraph/pkg/layout"
)

func testNodes() ([]graph.Node, []graph.Edge) {
	items := make([]graph.Item, 25)
	for i := range items {
		items[i] = graph.Item{Key: "k", Value: "v", Kind: graph.KindString}
	}
	nodes := []graph.Node{
		{ID: "root", Data: graph.NodeData{Label: "root", IsExpanded: true, Items: items[:2]}, Position: graph.Position{X: 145, Y: 100}},
		{ID: "root.list", Data: graph.NodeData{Label: "list <a&b>", IsExpanded: true, IsArray: true, Items: items}, Position: graph.Position{X: 545, Y: 350}},
	}
	edges := []graph.Edge{
		{ID: "e1", Source: "root", Target: "root.list"},
		{ID: "e2", Source: "root", Target: "missing"},
	}
	return nodes, edges
}

func TestSVG(t *testing.T) {
	nodes, edges := testNodes()
	svg := string(SVG(nodes, edges))

	if !strings.HasPrefix(svg, "<svg") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatalf("not an SVG document:\n%s", svg)
	}
	tests := []struct {
		name string
		want string
		n    int
	}{
		{"one group per node", "<g id=\"node-", 2},
		{"one edge, dangling skipped", "class=\"edge\"", 1},
		{"label escaped", "list &lt;a&amp;b&gt;", 1},
		{"items capped at MAX_DISPLAY_ITEMS", "class=\"key\"", 2 + 20},
		{"more indicator", ">5 more<", 1},
	}
	for _, tt := range tests {
		if got := strings.Count(svg, tt.want); got != tt.n {
			t.Errorf("%s: %q appears %d times, want %d", tt.name, tt.want, got, tt.n)
		}
	}
}

func TestSVG_Frame(t *testing.T) {
	nodes, edges := testNodes()
	svg := string(SVG(nodes, edges, WithHeights(map[string]float64{"root.list": 100})))
	// root.list: x 545+125, y 350+50, plus margins 20.
	if !strings.Contains(svg, `viewBox="0 0 690.0 420.0"`) {
		t.Errorf("unexpected frame:\n%s", svg[:strings.Index(svg, "\n")])
	}
}

func TestSVG_ShowAllAndNoEdges(t *testing.T) {
	nodes, edges := testNodes()
	svg := string(SVG(nodes, edges, WithShowAll(map[string]bool{"root.list": true}), WithoutEdges()))
	if got := strings.Count(svg, `class="key"`); got != 27 {
		t.Errorf("key rows = %d, want 27", got)
	}
	if strings.Contains(svg, "more<") {
		t.Error("show-all node should not have a more indicator")
	}
	if strings.Contains(svg, `class="edge"`) {
		t.Error("edges should be omitted")
	}
}

func TestAnchors(t *testing.T) {
	src := box{x: 0, y: 0, w: 100, h: 40}
	dst := box{x: 300, y: 0, w: 100, h: 40}
	tests := []struct {
		dir            layout.RankDir
		x1, y1, x2, y2 float64
	}{
		{layout.RankDirLR, 100, 20, 300, 20},
		{layout.RankDirRL, 0, 20, 400, 20},
		{layout.RankDirTB, 50, 40, 350, 0},
		{layout.RankDirBT, 50, 0, 350, 40},
	}
	for _, tt := range tests {
		cfg := layout.Default()
		cfg.Dagre.RankDir = tt.dir
		r := newRenderer(WithConfig(cfg))
		x1, y1, x2, y2 := r.anchors(src, dst)
		if x1 != tt.x1 || y1 != tt.y1 || x2 != tt.x2 || y2 != tt.y2 {
			t.Errorf("%s: got (%v,%v)->(%v,%v)", tt.dir, x1, y1, x2, y2)
		}
	}
}

func TestDOT(t *testing.T) {
	nodes, edges := testNodes()
	dot := DOT(nodes, edges)

	for _, want := range []string{
		"digraph G {",
		"rankdir=LR;",
		`"root" [label="root\nk: v\nk: v", width=3.4722`,
		`pos="145.00,-100.00!"`,
		`(5 more)`,
		`"root" -> "root.list";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "missing") {
		t.Error("dangling edge should be skipped")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate short = %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("truncate long = %q", got)
	}
}
