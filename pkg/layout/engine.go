package layout

import (
	"context"
	"fmt"
	"math"

	"github.com/pdjsoneditor/jsongraph/pkg/dag"
)

// Engine computes node centers for a graph of sized boxes.
//
// On entry every node of g carries Width and Height; edges point from parent
// to child and may form cycles. On success every node present on entry has
// X and Y set to the center of its box, with the drawing translated so that
// its top-left corner sits at the configured margins. Engines may add
// synthetic nodes to g.
type Engine interface {
	Name() string
	Place(ctx context.Context, g *dag.DAG, cfg Config) error
}

// NewEngine returns the engine named by cfg.
func NewEngine(cfg Config) (Engine, error) {
	switch cfg.EngineName() {
	case EngineDagre:
		return DagreEngine{}, nil
	case EngineGraphviz:
		return GraphvizEngine{}, nil
	}
	return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
}

// translate shifts all nodes so the bounding box of their boxes starts at
// (marginX, marginY).
func translate(g *dag.DAG, marginX, marginY float64) {
	nodes := g.Nodes()
	if len(nodes) == 0 {
		return
	}
	minX, minY := math.Inf(1), math.Inf(1)
	for _, n := range nodes {
		minX = min(minX, n.X-n.Width/2)
		minY = min(minY, n.Y-n.Height/2)
	}
	dx, dy := marginX-minX, marginY-minY
	for _, n := range nodes {
		n.X += dx
		n.Y += dy
	}
}
