// Package pipeline runs the document → graph → layout → render pipeline with
// caching.
//
// The CLI, the HTTP API and the worker share one [Runner] so that every entry
// point builds graphs and layouts the same way and hits the same cache
// entries.
//
// # Stages
//
//  1. Build: decode the JSON document into nodes and edges ([model.Build])
//  2. Layout: position the nodes ([layout.Layouter])
//  3. Render: produce the requested artifacts (JSON, SVG, DOT)
//
// Build and layout results are cached under keys derived from a SHA-256 of
// their inputs; rendering is cheap and never cached.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Document: data,
//	    Config:   layout.Default(),
//	    Formats:  []string{pipeline.FormatSVG},
//	}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
//
// Run individual stages:
//
//	g, err := runner.BuildGraph(ctx, data, model.Options{ExpandAll: true})
//	nodes, err := runner.Layout(ctx, layout.Request{Nodes: g.Nodes, Edges: g.Edges, Config: cfg}, nil)
package pipeline

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdjsoneditor/jsongraph/pkg/cache"
	"github.com/pdjsoneditor/jsongraph/pkg/graph"
	"github.com/pdjsoneditor/jsongraph/pkg/layout"
	"github.com/pdjsoneditor/jsongraph/pkg/model"
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatDOT:  true,
}

// Options contains all configuration for one pipeline run.
type Options struct {
	// Document is the raw JSON text.
	Document []byte `json:"-"`

	// Build options
	ExpandAll bool     `json:"expand_all,omitempty"`
	Expanded  []string `json:"expanded,omitempty"`
	MaxDepth  int      `json:"max_depth,omitempty"`

	// Layout options
	Config          layout.Config      `json:"config"`
	MeasuredHeights map[string]float64 `json:"measured_heights,omitempty"`
	ShowAll         []string           `json:"show_all,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`

	// Refresh bypasses cached results. Fresh results are still stored.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the built document graph, without positions.
	Graph graph.Graph

	// GraphHash is the content hash of Graph.
	GraphHash string

	// Nodes are the positioned nodes, in the order of Graph.Nodes.
	Nodes []graph.Node

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GraphHit  bool
	LayoutHit bool
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: json, svg, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if len(o.Document) == 0 {
		return fmt.Errorf("document is required")
	}
	if o.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative")
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.Config = o.Config.Normalized()
	if err := o.Config.Validate(); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// ModelOptions returns the graph build options.
func (o *Options) ModelOptions() model.Options {
	return model.Options{
		ExpandAll: o.ExpandAll,
		Expanded:  toSet(o.Expanded),
		MaxDepth:  o.MaxDepth,
	}
}

// LayoutRequest returns the layout request for the nodes and edges of g.
func (o *Options) LayoutRequest(g graph.Graph) layout.Request {
	return layout.Request{
		Nodes:           g.Nodes,
		Edges:           g.Edges,
		MeasuredHeights: o.MeasuredHeights,
		ShowAll:         toSet(o.ShowAll),
		Config:          o.Config,
	}
}

// graphKeyOpts returns cache key options for graph building.
func graphKeyOpts(opts model.Options) cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		ExpandAll: opts.ExpandAll,
		Expanded:  fromSet(opts.Expanded),
		MaxDepth:  opts.MaxDepth,
	}
}

func toSet(ids []string) map[string]bool {
	if len(ids) == 0 {
		return nil
	}
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}

// fromSet returns the members of m in sorted order.
func fromSet(m map[string]bool) []string {
	var out []string
	for _, id := range slices.Sorted(maps.Keys(m)) {
		if m[id] {
			out = append(out, id)
		}
	}
	return out
}
