// Package layout positions the nodes of a document graph.
//
// A pass has four steps: every node gets a box (NODE_WIDTH by its measured or
// estimated height), a layered engine places the boxes, [ResolveOverlaps]
// spreads boxes that ended up stacked in the same visual column, and the
// positions are copied onto fresh copies of the input nodes.
//
// # Usage
//
//	l := layout.New(nil)
//	nodes, err := l.Layout(ctx, layout.Request{
//	    Nodes:  g.Nodes,
//	    Edges:  g.Edges,
//	    Config: layout.Default(),
//	}, func(p layout.Progress) {
//	    fmt.Println(p.Phase, p.Value)
//	})
package layout

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdjsoneditor/jsongraph/pkg/dag"
	"github.com/pdjsoneditor/jsongraph/pkg/errors"
	"github.com/pdjsoneditor/jsongraph/pkg/graph"
	"github.com/pdjsoneditor/jsongraph/pkg/observability"
)

// progressEvery is the number of nodes between two build progress reports.
const progressEvery = 200

// Phase names a stage of a layout pass.
type Phase string

const (
	PhaseBuild  Phase = "build"
	PhaseLayout Phase = "layout"
)

// Progress is one progress report. Value is in [0, 1].
type Progress struct {
	Phase Phase
	Value float64
}

// ProgressFunc receives progress reports in order. It may be nil.
type ProgressFunc func(Progress)

// Request is the input of one layout pass.
type Request struct {
	Nodes []graph.Node
	Edges []graph.Edge
	// MeasuredHeights overrides the estimated height of the listed nodes.
	MeasuredHeights map[string]float64
	// ShowAll lists the nodes whose item list is shown without the cap.
	ShowAll map[string]bool
	Config  Config
}

// Layouter runs layout passes. It holds no state between passes and is safe
// for concurrent use.
type Layouter struct {
	Logger *log.Logger
}

// New returns a Layouter logging to logger, or to the default logger if nil.
func New(logger *log.Logger) *Layouter {
	if logger == nil {
		logger = log.Default()
	}
	return &Layouter{Logger: logger}
}

// Layout positions req.Nodes and returns copies of them, in input order, with
// Position set to the center of each box. The input is not modified.
//
// Edges with an unknown endpoint and self-loops are skipped. Engine failures
// are returned with code LAYOUT_FAILED. A cancelled context stops the pass at
// the next phase boundary.
func (l *Layouter) Layout(ctx context.Context, req Request, progress ProgressFunc) ([]graph.Node, error) {
	report := func(phase Phase, v float64) {
		if progress != nil {
			progress(Progress{Phase: phase, Value: v})
		}
	}
	cfg := req.Config.Normalized()
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout config")
	}
	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout config")
	}

	hooks := observability.Layout()
	start := time.Now()
	hooks.OnLayoutStart(ctx, engine.Name(), len(req.Nodes), len(req.Edges))

	g, heights := l.build(req, cfg, report)
	if err := ctx.Err(); err != nil {
		hooks.OnLayoutComplete(ctx, engine.Name(), time.Since(start), err)
		return nil, err
	}

	report(PhaseLayout, 0)
	if err := engine.Place(ctx, g, cfg); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		} else {
			err = errors.Wrap(errors.ErrCodeLayoutFailed, err, "%s layout", engine.Name())
		}
		hooks.OnLayoutComplete(ctx, engine.Name(), time.Since(start), err)
		return nil, err
	}
	report(PhaseLayout, 1)

	out := make([]graph.Node, len(req.Nodes))
	for i, n := range req.Nodes {
		out[i] = n.Clone()
		if placed, ok := g.Node(n.ID); ok {
			out[i].Position = graph.Position{X: placed.X, Y: placed.Y}
		}
	}
	ResolveOverlaps(out, heights, cfg.Overlap)

	hooks.OnLayoutComplete(ctx, engine.Name(), time.Since(start), nil)
	l.Logger.Debug("layout complete",
		"engine", engine.Name(),
		"nodes", len(req.Nodes),
		"edges", g.EdgeCount(),
		"duration", time.Since(start))
	return out, nil
}

// build creates the layout graph. heights[i] is the box height of
// req.Nodes[i].
func (l *Layouter) build(req Request, cfg Config, report func(Phase, float64)) (*dag.DAG, []float64) {
	g := dag.New(nil)
	heights := make([]float64, len(req.Nodes))
	total := len(req.Nodes)

	for i, n := range req.Nodes {
		h, ok := req.MeasuredHeights[n.ID]
		if !ok {
			h = EstimateNodeHeight(n, cfg, req.ShowAll[n.ID])
		}
		heights[i] = h
		if err := g.AddNode(dag.Node{ID: n.ID, Width: cfg.NodeWidth, Height: h}); err != nil {
			l.Logger.Warn("skipping node", "id", n.ID, "error", err)
		}
		if processed := i + 1; processed%progressEvery == 0 {
			report(PhaseBuild, min(0.9, float64(processed)/float64(max(1, total))))
		}
	}

	for _, e := range req.Edges {
		if err := g.MergeEdge(dag.Edge{From: e.Source, To: e.Target}); err != nil {
			l.Logger.Debug("skipping edge", "id", e.ID, "source", e.Source, "target", e.Target, "error", err)
		}
	}
	report(PhaseBuild, 1)
	return g, heights
}
