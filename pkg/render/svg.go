package render

import (
	"bytes"
	"fmt"
	"html"

	"github.com/pdjsoneditor/jsongraph/pkg/graph"
)

const svgCSS = `
    .node { fill: #ffffff; stroke: #94a3b8; stroke-width: 1; }
    .node.array { fill: #f8fafc; }
    .label { font: 600 13px sans-serif; fill: #0f172a; }
    .key { font: 12px monospace; fill: #475569; }
    .value { font: 12px monospace; }
    .value.string { fill: #15803d; }
    .value.number { fill: #1d4ed8; }
    .value.boolean { fill: #b45309; }
    .value.null, .value.undefined { fill: #64748b; }
    .value.reference { fill: #7c3aed; }
    .more { font: italic 12px sans-serif; fill: #64748b; }
    .edge { fill: none; stroke: #94a3b8; stroke-width: 1.5; marker-end: url(#arrow); }`

// maxValueRunes is where long values are cut in the snapshot.
const maxValueRunes = 32

// SVG draws the nodes and edges as a standalone SVG document. Nodes must
// already be positioned. Edges with an unknown endpoint are skipped.
func SVG(nodes []graph.Node, edges []graph.Edge, opts ...Option) []byte {
	r := newRenderer(opts...)
	boxes := r.boxes(nodes)
	width, height := r.frame(boxes)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	buf.WriteString(`  <defs><marker id="arrow" viewBox="0 0 10 10" refX="10" refY="5" markerWidth="8" markerHeight="8" orient="auto-start-reverse"><path d="M 0 0 L 10 5 L 0 10 z" fill="#94a3b8"/></marker></defs>` + "\n")
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", svgCSS)

	if r.edges {
		r.renderEdges(&buf, boxes, edges)
	}
	for _, b := range boxes {
		r.renderBox(&buf, b)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func (r renderer) renderEdges(buf *bytes.Buffer, boxes []box, edges []graph.Edge) {
	index := make(map[string]int, len(boxes))
	for i, b := range boxes {
		index[b.node.ID] = i
	}
	for _, e := range edges {
		si, okS := index[e.Source]
		ti, okT := index[e.Target]
		if !okS || !okT || e.Source == e.Target {
			continue
		}
		x1, y1, x2, y2 := r.anchors(boxes[si], boxes[ti])
		var c1x, c1y, c2x, c2y float64
		if r.cfg.Dagre.RankDir.Horizontal() {
			mx := (x1 + x2) / 2
			c1x, c1y, c2x, c2y = mx, y1, mx, y2
		} else {
			my := (y1 + y2) / 2
			c1x, c1y, c2x, c2y = x1, my, x2, my
		}
		fmt.Fprintf(buf, `  <path class="edge" id="edge-%s" d="M %.1f %.1f C %.1f %.1f, %.1f %.1f, %.1f %.1f"/>`+"\n",
			html.EscapeString(e.ID), x1, y1, c1x, c1y, c2x, c2y, x2, y2)
	}
}

func (r renderer) renderBox(buf *bytes.Buffer, b box) {
	m := r.cfg.Metrics
	class := "node"
	if b.node.Data.IsArray {
		class += " array"
	}
	fmt.Fprintf(buf, `  <g id="node-%s">`+"\n", html.EscapeString(b.node.ID))
	fmt.Fprintf(buf, `    <rect class="%s" x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="6"/>`+"\n",
		class, b.x, b.y, b.w, b.h)

	top := b.y + m.NodeBorderY/2 + m.NodePaddingY/2
	fmt.Fprintf(buf, `    <text class="label" x="%.1f" y="%.1f" dominant-baseline="middle">%s</text>`+"\n",
		b.x+12, top+m.HeaderHeight/2, html.EscapeString(b.node.Data.Label))

	row := top + m.HeaderHeight + m.ItemsTopMargin
	for _, it := range b.rows {
		cy := row + m.ItemRowHeight/2
		fmt.Fprintf(buf, `    <text class="key" x="%.1f" y="%.1f" dominant-baseline="middle">%s</text>`+"\n",
			b.x+12, cy, html.EscapeString(it.Key))
		fmt.Fprintf(buf, `    <text class="value %s" x="%.1f" y="%.1f" text-anchor="end" dominant-baseline="middle">%s</text>`+"\n",
			it.Kind, b.x+b.w-12, cy, html.EscapeString(truncate(it.Value, maxValueRunes)))
		row += m.ItemRowHeight
	}
	if b.hidden > 0 {
		fmt.Fprintf(buf, `    <text class="more" x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle">%d more</text>`+"\n",
			b.x+b.w/2, row+m.MoreButtonHeight/2, b.hidden)
	}
	buf.WriteString("  </g>\n")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
