// Package render draws positioned document graphs.
//
// Two outputs are supported:
//
//   - [SVG]: a static snapshot of the boxes, their item rows and the edges,
//     sized with the same metrics the height estimator uses
//   - [DOT]: a Graphviz file with pinned positions, for neato -n or any
//     other DOT tool
//
// Both take the nodes returned by [layout.Layouter.Layout]; positions are box
// centers.
//
//	nodes, _ := layouter.Layout(ctx, req, nil)
//	svg := render.SVG(nodes, req.Edges, render.WithConfig(req.Config))
//	dot := render.DOT(nodes, req.Edges, render.WithConfig(req.Config))
package render
