package pipeline

import (
	"fmt"

	"github.com/pdjsoneditor/jsongraph/pkg/graph"
	"github.com/pdjsoneditor/jsongraph/pkg/render"
)

// Render generates output artifacts in the requested formats from positioned
// nodes.
func Render(nodes []graph.Node, edges []graph.Edge, opts Options) (map[string][]byte, error) {
	renderOpts := []render.Option{
		render.WithConfig(opts.Config),
		render.WithHeights(opts.MeasuredHeights),
		render.WithShowAll(toSet(opts.ShowAll)),
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			data, err = graph.MarshalGraph(graph.Graph{Nodes: nodes, Edges: edges})
		case FormatSVG:
			data = render.SVG(nodes, edges, renderOpts...)
		case FormatDOT:
			data = []byte(render.DOT(nodes, edges, renderOpts...))
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
