// Package dag provides a directed graph optimized for rank-based layered
// layouts of JSON document graphs.
//
// # Overview
//
// jsongraph draws every object and array of a JSON document as a box and
// connects parents to their nested containers. The boxes are placed with a
// Sugiyama-style layered algorithm: nodes are assigned to ranks (rows),
// ordered inside each rank to reduce edge crossings, and finally given
// coordinates. This package holds the graph that flows through those phases.
//
// # Basic Usage
//
// Create a new graph with [New], add nodes with [DAG.AddNode], and edges with
// [DAG.AddEdge] or [DAG.MergeEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "root", Width: 250, Height: 120})
//	g.AddNode(dag.Node{ID: "root.items", Width: 250, Height: 80})
//	g.AddEdge(dag.Edge{From: "root", To: "root.items"})
//
// Nodes keep insertion order, which makes every layout phase deterministic
// for a given input.
//
// # Node Types
//
//   - [NodeKindRegular]: boxes coming from the document graph
//   - [NodeKindDummy]: zero-sized nodes that break long edges into
//     rank-to-rank segments
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] use a Fenwick tree (binary
// indexed tree) to count inversions in O(E log V) time. Crossing minimization
// evaluates every sweep with them and keeps the best ordering.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use. A layout pass owns its graph
// for the whole run.
//
// # Related Packages
//
// The [transform] subpackage removes cycles, assigns ranks and subdivides
// long edges. The [ordering] subpackage orders nodes within ranks and the
// [position] subpackage assigns coordinates.
//
// [transform]: github.com/pdjsoneditor/jsongraph/pkg/dag/transform
// [ordering]: github.com/pdjsoneditor/jsongraph/pkg/dag/ordering
// [position]: github.com/pdjsoneditor/jsongraph/pkg/dag/position
package dag
