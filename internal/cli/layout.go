package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdjsoneditor/jsongraph/pkg/dag/position"
	"github.com/pdjsoneditor/jsongraph/pkg/dag/transform"
	"github.com/pdjsoneditor/jsongraph/pkg/graph"
	"github.com/pdjsoneditor/jsongraph/pkg/host"
	"github.com/pdjsoneditor/jsongraph/pkg/layout"
	"github.com/pdjsoneditor/jsongraph/pkg/pipeline"
	"github.com/pdjsoneditor/jsongraph/pkg/worker"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	output    string
	formats   string
	fromGraph bool
	noCache   bool
	refresh   bool
	heights   string
	showAll   []string
	build     buildFlags

	engine    string
	rankDir   string
	ranker    string
	align     string
	nodeWidth float64
	maxItems  int
	nodeSep   float64
	rankSep   float64
}

// layoutCommand creates the layout command for positioning and rendering a
// document graph.
func (c *CLI) layoutCommand() *cobra.Command {
	var opts layoutOpts
	def := layout.Default()

	cmd := &cobra.Command{
		Use:   "layout [document.json|graph.json|-]",
		Short: "Lay out a JSON document and render it",
		Long: `Lay out a JSON document and render it as SVG, DOT or positioned JSON.

The input is a JSON document, or with --from-graph a graph.json produced by
'graph'. Nodes are placed by the layered dagre engine (default) or by
Graphviz dot (--engine graphviz), then nodes stacked in the same column are
spread apart.

Layout defaults come from the config file; flags override them. Results are
cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.layoutConfig(cmd, c.Config.Layout)
			if err != nil {
				return err
			}
			return c.runLayout(cmd.Context(), args[0], cfg, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (default: derived from input, - for stdout)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), dot, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.fromGraph, "from-graph", false, "input is a graph.json instead of a JSON document")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().StringVar(&opts.heights, "heights", "", "JSON file of measured [id, height] pairs")
	cmd.Flags().StringSliceVar(&opts.showAll, "show-all", nil, "node IDs whose items are shown without the cap")
	opts.build.register(cmd)

	cmd.Flags().StringVar(&opts.engine, "engine", "", "layout engine: dagre (default), graphviz")
	cmd.Flags().StringVar(&opts.rankDir, "rank-dir", "", "rank direction: TB, BT, LR, RL")
	cmd.Flags().StringVar(&opts.ranker, "ranker", "", "ranking: network-simplex, tight-tree, longest-path")
	cmd.Flags().StringVar(&opts.align, "align", "", "coordinate alignment: UL, UR, DL, DR (default: balanced)")
	cmd.Flags().Float64Var(&opts.nodeWidth, "node-width", def.NodeWidth, "node width in pixels")
	cmd.Flags().IntVar(&opts.maxItems, "max-items", def.MaxDisplayItems, "items shown per node before \"more\"")
	cmd.Flags().Float64Var(&opts.nodeSep, "node-sep", def.Dagre.NodeSep, "gap between nodes of one rank")
	cmd.Flags().Float64Var(&opts.rankSep, "rank-sep", def.Dagre.RankSep, "gap between ranks")
	registerLayoutCompletions(cmd)

	return cmd
}

// layoutConfig applies the flags that were set on top of base.
func (o *layoutOpts) layoutConfig(cmd *cobra.Command, base layout.Config) (layout.Config, error) {
	cfg := base
	changed := cmd.Flags().Changed
	if changed("engine") {
		cfg.Engine = o.engine
	}
	if changed("rank-dir") {
		cfg.Dagre.RankDir = layout.RankDir(strings.ToUpper(o.rankDir))
	}
	if changed("ranker") {
		cfg.Dagre.Ranker = transform.Ranker(o.ranker)
	}
	if changed("align") {
		cfg.Dagre.Align = position.Alignment(o.align)
	}
	if changed("node-width") {
		cfg.NodeWidth = o.nodeWidth
	}
	if changed("max-items") {
		cfg.MaxDisplayItems = o.maxItems
	}
	if changed("node-sep") {
		cfg.Dagre.NodeSep = o.nodeSep
	}
	if changed("rank-sep") {
		cfg.Dagre.RankSep = o.rankSep
	}
	cfg = cfg.Normalized()
	if err := cfg.Validate(); err != nil {
		return layout.Config{}, err
	}
	return cfg, nil
}

// runLayout loads the input, computes the layout, renders and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, cfg layout.Config, o *layoutOpts) error {
	formats := parseFormats(o.formats)
	if err := pipeline.ValidateFormats(formats); err != nil {
		return err
	}
	heights, err := readHeights(o.heights)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, o.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := pipeline.Options{
		ExpandAll:       o.build.expandAll,
		Expanded:        o.build.expand,
		MaxDepth:        o.build.maxDepth,
		Config:          cfg,
		MeasuredHeights: heights,
		ShowAll:         o.showAll,
		Formats:         formats,
		Refresh:         o.refresh,
		Logger:          c.Logger,
	}

	var (
		nodes     []graph.Node
		edges     []graph.Edge
		artifacts map[string][]byte
		cached    bool
	)
	watch := startStopwatch(c.Logger)
	title := fmt.Sprintf("Laying out %s (%s)", input, cfg.EngineName())

	if o.fromGraph {
		g, err := graph.ReadGraphFile(input)
		if err != nil {
			return fmt.Errorf("load graph %s: %w", input, err)
		}
		snap := host.Snapshot{
			Nodes:           g.Nodes,
			Edges:           g.Edges,
			MeasuredHeights: heights,
			ShowAll:         o.showAll,
			Config:          cfg,
		}
		err = runWithProgress(ctx, title, func(ctx context.Context, progress layout.ProgressFunc) error {
			var lerr error
			nodes, cached, lerr = c.relayout(ctx, runner, snap, progress)
			return lerr
		})
		if err != nil {
			return fmt.Errorf("compute layout: %w", err)
		}
		edges = g.Edges
		if artifacts, err = pipeline.Render(nodes, edges, opts); err != nil {
			return err
		}
	} else {
		if opts.Document, err = readDocument(input); err != nil {
			return err
		}
		var result *pipeline.Result
		err = runWithProgress(ctx, title, func(ctx context.Context, progress layout.ProgressFunc) error {
			var rerr error
			result, rerr = runner.Execute(ctx, opts, progress)
			return rerr
		})
		if err != nil {
			return fmt.Errorf("compute layout: %w", err)
		}
		nodes, edges, artifacts = result.Nodes, result.Graph.Edges, result.Artifacts
		cached = result.CacheInfo.LayoutHit
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	watch.done(fmt.Sprintf("Laid out %d nodes", len(nodes)))

	output := o.output
	if input == stdinArg && output == "" && len(formats) == 1 {
		output = stdinArg
	}
	written, err := writeArtifacts(artifacts, outputPaths(output, input, formats))
	if err != nil {
		return err
	}
	if len(written) == 0 {
		return nil
	}

	printSuccess("Layout complete")
	for _, path := range written {
		printFile(path)
	}
	printStats(len(nodes), len(edges), cached)
	return nil
}

// cacheAwareLayouter records whether the last layout was served from the
// runner's cache.
type cacheAwareLayouter struct {
	runner *pipeline.Runner
	hit    bool
}

func (l *cacheAwareLayouter) Layout(ctx context.Context, req layout.Request, progress layout.ProgressFunc) ([]graph.Node, error) {
	nodes, hit, err := l.runner.LayoutWithCacheInfo(ctx, req, progress)
	l.hit = hit
	return nodes, err
}

// relayout lays out a saved graph through a worker connection and a host,
// the path an editor session takes. Host loading states drive progress.
func (c *CLI) relayout(ctx context.Context, runner *pipeline.Runner, snap host.Snapshot, progress layout.ProgressFunc) ([]graph.Node, bool, error) {
	layouter := &cacheAwareLayouter{runner: runner}
	conn := worker.New(layouter, c.Logger).Start(ctx)
	defer conn.Close()

	h := host.New(conn, c.Logger)
	h.OnLoadingChange(func(l host.Loading) {
		switch l.Phase {
		case host.PhaseBuild, host.PhaseLayout:
			progress(layout.Progress{Phase: layout.Phase(l.Phase), Value: l.Progress})
		}
	})
	nodes, err := h.Relayout(ctx, snap)
	if err != nil {
		return nil, false, err
	}
	// The done event is sent after Layout returns, so hit is settled here.
	return nodes, layouter.hit, nil
}

// readHeights loads measured heights written as [id, height] pairs.
func readHeights(path string) (map[string]float64, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read heights: %w", err)
	}
	var h worker.MeasuredHeights
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parse heights %s: %w", path, err)
	}
	return h, nil
}
