package render

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/pdjsoneditor/jsongraph/pkg/graph"
)

const pointsPerInch = 72.0

// DOT writes the positioned graph as Graphviz DOT. Every node is pinned
// ("pos=x,y!") so that `neato -n2` reproduces the layout; y is negated because
// DOT's y axis points up.
func DOT(nodes []graph.Node, edges []graph.Edge, opts ...Option) string {
	r := newRenderer(opts...)
	boxes := r.boxes(nodes)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", r.cfg.Dagre.RankDir)
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true, fontsize=12];\n")
	buf.WriteString("\n")

	known := make(map[string]bool, len(boxes))
	for _, b := range boxes {
		known[b.node.ID] = true
		fmt.Fprintf(&buf, "  %q [label=%q, width=%s, height=%s, pos=\"%s,%s!\"];\n",
			b.node.ID, dotLabel(b),
			inches(b.w), inches(b.h),
			ftoa(b.node.Position.X), ftoa(-b.node.Position.Y))
	}

	if r.edges {
		buf.WriteString("\n")
		for _, e := range edges {
			if !known[e.Source] || !known[e.Target] {
				continue
			}
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.Source, e.Target)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func dotLabel(b box) string {
	label := b.node.Data.Label
	for _, it := range b.rows {
		label += "\n" + it.Key + ": " + truncate(it.Value, maxValueRunes)
	}
	if b.hidden > 0 {
		label += fmt.Sprintf("\n(%d more)", b.hidden)
	}
	return label
}

func inches(px float64) string { return strconv.FormatFloat(px/pointsPerInch, 'f', 4, 64) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
