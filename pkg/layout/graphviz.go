package layout

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/pdjsoneditor/jsongraph/pkg/dag"
)

const pointsPerInch = 72.0

// GraphvizEngine delegates placement to Graphviz dot. Boxes are passed as
// fixed-size nodes, rank direction and separations map to the matching graph
// attributes. The ranker and alignment settings have no dot equivalent and
// are ignored.
type GraphvizEngine struct{}

// Name implements [Engine].
func (GraphvizEngine) Name() string { return EngineGraphviz }

// Place implements [Engine].
func (GraphvizEngine) Place(ctx context.Context, g *dag.DAG, cfg Config) error {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return nil
	}
	dot := toDOT(g, cfg)

	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	// Rendering runs the layout and leaves pos and bb on the parsed graph.
	if err := gv.Render(ctx, parsed, graphviz.XDOT, io.Discard); err != nil {
		return fmt.Errorf("render: %w", err)
	}

	centers, height, err := readLayout(parsed)
	if err != nil {
		return err
	}
	for i, n := range nodes {
		c, ok := centers[dotName(i)]
		if !ok {
			return fmt.Errorf("graphviz dropped node %q", n.ID)
		}
		n.X = c[0]
		n.Y = height - c[1]
	}
	translate(g, cfg.Dagre.MarginX, cfg.Dagre.MarginY)
	return nil
}

// dotName is the DOT identifier of the i-th node. Node IDs are arbitrary
// strings, so they never reach Graphviz.
func dotName(i int) string { return "n" + strconv.Itoa(i) }

func toDOT(g *dag.DAG, cfg Config) string {
	var b strings.Builder
	b.WriteString("digraph G {\n")
	fmt.Fprintf(&b, "  rankdir=%s;\n", cfg.Dagre.RankDir)
	fmt.Fprintf(&b, "  nodesep=%s;\n", inches(cfg.Dagre.NodeSep))
	fmt.Fprintf(&b, "  ranksep=%s;\n", inches(cfg.Dagre.RankSep))
	b.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")

	index := make(map[string]int, g.NodeCount())
	for i, n := range g.Nodes() {
		index[n.ID] = i
		fmt.Fprintf(&b, "  %s [width=%s, height=%s];\n", dotName(i), inches(n.Width), inches(n.Height))
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "  %s -> %s [weight=%d, minlen=%d];\n",
			dotName(index[e.From]), dotName(index[e.To]), e.Weight, e.MinLen)
	}
	b.WriteString("}\n")
	return b.String()
}

func inches(px float64) string {
	return strconv.FormatFloat(px/pointsPerInch, 'f', 4, 64)
}

// readLayout collects node centers (in points, y up) and the drawing height
// from a graph Graphviz has laid out.
func readLayout(g *cgraph.Graph) (map[string][2]float64, float64, error) {
	bb, err := parseCoords(g.GetStr("bb"), 4)
	if err != nil {
		return nil, 0, fmt.Errorf("bounding box: %w", err)
	}

	centers := make(map[string][2]float64)
	n, err := g.FirstNode()
	for ; err == nil && n != nil; n, err = g.NextNode(n) {
		name, err := n.Name()
		if err != nil {
			return nil, 0, fmt.Errorf("node name: %w", err)
		}
		pos, err := parseCoords(n.GetStr("pos"), 2)
		if err != nil {
			return nil, 0, fmt.Errorf("position of %s: %w", name, err)
		}
		centers[name] = [2]float64{pos[0], pos[1]}
	}
	if err != nil {
		return nil, 0, fmt.Errorf("walk nodes: %w", err)
	}
	return centers, bb[3], nil
}

// parseCoords splits a Graphviz point or box attribute such as "27,90" or
// "0,0,54,108" into want numbers.
func parseCoords(s string, want int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != want {
		return nil, fmt.Errorf("want %d coordinates, got %q", want, s)
	}
	out := make([]float64, want)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad coordinate %q: %w", p, err)
		}
		out[i] = v
	}
	return out, nil
}
