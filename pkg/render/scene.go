package render

import (
	"github.com/pdjsoneditor/jsongraph/pkg/graph"
	"github.com/pdjsoneditor/jsongraph/pkg/layout"
)

// Option configures a rendering.
type Option func(*renderer)

type renderer struct {
	cfg      layout.Config
	measured map[string]float64
	showAll  map[string]bool
	edges    bool
}

// WithConfig sets the layout configuration used to size boxes. The default is
// [layout.Default].
func WithConfig(cfg layout.Config) Option { return func(r *renderer) { r.cfg = cfg.Normalized() } }

// WithHeights overrides the estimated height of the listed nodes.
func WithHeights(h map[string]float64) Option { return func(r *renderer) { r.measured = h } }

// WithShowAll lists nodes whose items are drawn without the cap.
func WithShowAll(ids map[string]bool) Option { return func(r *renderer) { r.showAll = ids } }

// WithoutEdges omits edges.
func WithoutEdges() Option { return func(r *renderer) { r.edges = false } }

func newRenderer(opts ...Option) renderer {
	r := renderer{cfg: layout.Default(), edges: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// box is a node with its size; x and y are the top-left corner.
type box struct {
	node   graph.Node
	x, y   float64
	w, h   float64
	rows   []graph.Item
	hidden int
}

func (r renderer) boxes(nodes []graph.Node) []box {
	out := make([]box, len(nodes))
	for i, n := range nodes {
		showAll := r.showAll[n.ID]
		h, ok := r.measured[n.ID]
		if !ok {
			h = layout.EstimateNodeHeight(n, r.cfg, showAll)
		}
		b := box{
			node: n,
			w:    r.cfg.NodeWidth,
			h:    h,
			x:    n.Position.X - r.cfg.NodeWidth/2,
			y:    n.Position.Y - h/2,
		}
		if n.Data.IsExpanded {
			b.rows = n.Data.Items
			if !showAll && len(b.rows) > r.cfg.MaxDisplayItems {
				b.hidden = len(b.rows) - r.cfg.MaxDisplayItems
				b.rows = b.rows[:r.cfg.MaxDisplayItems]
			}
		}
		out[i] = b
	}
	return out
}

// frame returns the drawing size: the far edge of every box plus the margins.
func (r renderer) frame(boxes []box) (float64, float64) {
	w, h := 0.0, 0.0
	for _, b := range boxes {
		w = max(w, b.x+b.w)
		h = max(h, b.y+b.h)
	}
	return w + r.cfg.Dagre.MarginX, h + r.cfg.Dagre.MarginY
}

// anchors returns where an edge leaves its source and enters its target,
// on the box sides facing the rank direction.
func (r renderer) anchors(src, dst box) (x1, y1, x2, y2 float64) {
	switch r.cfg.Dagre.RankDir {
	case layout.RankDirLR:
		return src.x + src.w, src.y + src.h/2, dst.x, dst.y + dst.h/2
	case layout.RankDirRL:
		return src.x, src.y + src.h/2, dst.x + dst.w, dst.y + dst.h/2
	case layout.RankDirBT:
		return src.x + src.w/2, src.y, dst.x + dst.w/2, dst.y + dst.h
	default:
		return src.x + src.w/2, src.y + src.h, dst.x + dst.w/2, dst.y
	}
}
