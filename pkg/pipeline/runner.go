package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdjsoneditor/jsongraph/pkg/cache"
	"github.com/pdjsoneditor/jsongraph/pkg/errors"
	"github.com/pdjsoneditor/jsongraph/pkg/graph"
	"github.com/pdjsoneditor/jsongraph/pkg/layout"
	"github.com/pdjsoneditor/jsongraph/pkg/model"
	"github.com/pdjsoneditor/jsongraph/pkg/observability"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeGraph  = "graph"
	keyTypeLayout = "layout"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger: it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Layouter *layout.Layouter
	Logger   *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Layouter: layout.New(logger),
		Logger:   logger,
	}
}

// Execute runs the complete build → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options, progress layout.ProgressFunc) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	result := &Result{}

	// Stage 1: Build
	buildStart := time.Now()
	g, graphHit, err := r.buildGraph(ctx, opts.Document, opts.ModelOptions(), opts.Refresh)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats.BuildTime = time.Since(buildStart)
	result.Stats.NodeCount = len(g.Nodes)
	result.Stats.EdgeCount = len(g.Edges)
	result.CacheInfo.GraphHit = graphHit
	if h, err := cache.HashJSON(g); err == nil {
		result.GraphHash = h
	}

	r.Logger.Info("built graph",
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"cached", graphHit,
		"duration", result.Stats.BuildTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	nodes, layoutHit, err := r.layout(ctx, opts.LayoutRequest(g), progress, opts.Refresh)
	if err != nil {
		return nil, err
	}
	result.Nodes = nodes
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"engine", opts.Config.EngineName(),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, err := Render(nodes, g.Edges, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Debug("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// BuildGraphWithCacheInfo builds the graph of a JSON document with caching and
// returns whether the result came from the cache. Invalid JSON is reported
// with code INVALID_JSON.
func (r *Runner) BuildGraphWithCacheInfo(ctx context.Context, data []byte, opts model.Options) (graph.Graph, bool, error) {
	return r.buildGraph(ctx, data, opts, false)
}

// BuildGraph is a convenience wrapper that discards the cache hit info.
func (r *Runner) BuildGraph(ctx context.Context, data []byte, opts model.Options) (graph.Graph, error) {
	g, _, err := r.buildGraph(ctx, data, opts, false)
	return g, err
}

func (r *Runner) buildGraph(ctx context.Context, data []byte, opts model.Options, refresh bool) (graph.Graph, bool, error) {
	cacheKey := r.Keyer.GraphKey(cache.Hash(data), graphKeyOpts(opts))
	hooks := observability.Cache()

	if !refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if g, err := graph.UnmarshalGraph(cached); err == nil {
				hooks.OnCacheHit(ctx, keyTypeGraph)
				return g, true, nil
			}
			// Undecodable entry: fall through and rebuild
		} else if err != nil {
			r.Logger.Warn("graph cache read failed", "error", err)
		}
		hooks.OnCacheMiss(ctx, keyTypeGraph)
	}

	g, err := model.Build(data, opts)
	if err != nil {
		return graph.Graph{}, false, errors.Wrap(errors.ErrCodeInvalidJSON, err, "build graph")
	}

	if encoded, err := graph.MarshalGraph(g); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, encoded, cache.TTLGraph); err != nil {
			r.Logger.Warn("graph cache write failed", "error", err)
		} else {
			hooks.OnCacheSet(ctx, keyTypeGraph, len(encoded))
		}
	}
	return g, false, nil
}

// LayoutWithCacheInfo positions req.Nodes with caching and returns whether
// the positions came from the cache. A cache hit reports build 1.0, then
// layout 0.0 and 1.0, so observers see the layout phase start and finish.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, req layout.Request, progress layout.ProgressFunc) ([]graph.Node, bool, error) {
	return r.layout(ctx, req, progress, false)
}

// Layout is a convenience wrapper that discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, req layout.Request, progress layout.ProgressFunc) ([]graph.Node, error) {
	nodes, _, err := r.layout(ctx, req, progress, false)
	return nodes, err
}

func (r *Runner) layout(ctx context.Context, req layout.Request, progress layout.ProgressFunc, refresh bool) ([]graph.Node, bool, error) {
	cacheKey, err := r.layoutKey(req)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "layout cache key")
	}
	hooks := observability.Cache()

	if !refresh {
		if cached, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if nodes, ok := applyPositions(req.Nodes, cached); ok {
				hooks.OnCacheHit(ctx, keyTypeLayout)
				if progress != nil {
					progress(layout.Progress{Phase: layout.PhaseBuild, Value: 1})
					progress(layout.Progress{Phase: layout.PhaseLayout, Value: 0})
					progress(layout.Progress{Phase: layout.PhaseLayout, Value: 1})
				}
				return nodes, true, nil
			}
		} else if err != nil {
			r.Logger.Warn("layout cache read failed", "error", err)
		}
		hooks.OnCacheMiss(ctx, keyTypeLayout)
	}

	nodes, err := r.Layouter.Layout(ctx, req, progress)
	if err != nil {
		return nil, false, err
	}

	positions := make([]graph.Position, len(nodes))
	for i, n := range nodes {
		positions[i] = n.Position
	}
	if encoded, err := json.Marshal(positions); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, encoded, cache.TTLLayout); err != nil {
			r.Logger.Warn("layout cache write failed", "error", err)
		} else {
			hooks.OnCacheSet(ctx, keyTypeLayout, len(encoded))
		}
	}
	return nodes, false, nil
}

// layoutKey hashes everything that can change the positions: the graph, the
// normalized config, the measured heights and the show-all set.
func (r *Runner) layoutKey(req layout.Request) (string, error) {
	graphHash, err := cache.HashJSON(graph.Graph{Nodes: req.Nodes, Edges: req.Edges})
	if err != nil {
		return "", fmt.Errorf("hash graph: %w", err)
	}
	configHash, err := cache.HashJSON(req.Config.Normalized())
	if err != nil {
		return "", fmt.Errorf("hash config: %w", err)
	}
	return r.Keyer.LayoutKey(graphHash, cache.LayoutKeyOpts{
		ConfigHash:      configHash,
		MeasuredHeights: req.MeasuredHeights,
		ShowAll:         fromSet(req.ShowAll),
	}), nil
}

// applyPositions copies cached positions onto clones of nodes. It reports
// false if the entry does not match the node count.
func applyPositions(nodes []graph.Node, cached []byte) ([]graph.Node, bool) {
	var positions []graph.Position
	if err := json.Unmarshal(cached, &positions); err != nil || len(positions) != len(nodes) {
		return nil, false
	}
	out := make([]graph.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
		out[i].Position = positions[i]
	}
	return out, true
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
