package layout

import (
	"context"

	"github.com/pdjsoneditor/jsongraph/pkg/dag"
	"github.com/pdjsoneditor/jsongraph/pkg/dag/ordering"
	"github.com/pdjsoneditor/jsongraph/pkg/dag/position"
	"github.com/pdjsoneditor/jsongraph/pkg/dag/transform"
)

// DagreEngine is the native layered layout:
//
//  1. reverse back edges (depth-first)
//  2. rank nodes with the configured ranker
//  3. split long edges with dummy nodes
//  4. order ranks by barycentric sweeps
//  5. assign coordinates (Brandes-Köpf for x, stacked ranks for y)
//  6. rotate for the rank direction and apply margins
//
// Ranking and coordinates work in a top-to-bottom frame. For LR and RL the
// boxes are rotated first so that a node's extent along the rank axis is its
// width.
type DagreEngine struct{}

// Name implements [Engine].
func (DagreEngine) Name() string { return EngineDagre }

// Place implements [Engine].
func (DagreEngine) Place(ctx context.Context, g *dag.DAG, cfg Config) error {
	d := cfg.Dagre
	if d.RankDir.Horizontal() {
		swapWidthHeight(g)
	}

	transform.BreakCycles(g)
	if err := transform.AssignRanks(g, d.Ranker); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	transform.Subdivide(g)
	ordering.Apply(ctx, g, ordering.Barycentric{})
	if err := ctx.Err(); err != nil {
		return err
	}

	position.Assign(g, position.Options{
		NodeSep: d.NodeSep,
		EdgeSep: d.EdgeSep,
		RankSep: d.RankSep,
		Align:   d.Align,
	})

	if d.RankDir == RankDirBT || d.RankDir == RankDirRL {
		for _, n := range g.Nodes() {
			n.Y = -n.Y
		}
	}
	if d.RankDir.Horizontal() {
		for _, n := range g.Nodes() {
			n.X, n.Y = n.Y, n.X
		}
		swapWidthHeight(g)
	}
	translate(g, d.MarginX, d.MarginY)
	return nil
}

func swapWidthHeight(g *dag.DAG) {
	for _, n := range g.Nodes() {
		n.Width, n.Height = n.Height, n.Width
	}
}
