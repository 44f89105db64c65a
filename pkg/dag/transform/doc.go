// Package transform provides the graph transformations that run before
// ordering and positioning in the layered layout.
//
// # Overview
//
// A JSON document graph is a tree most of the time, but reference items and
// merged documents can add extra edges and even cycles. Layered drawing needs
// an acyclic graph whose edges connect consecutive ranks, so the layout runs:
//
//  1. [BreakCycles]: reverse back edges found by depth-first search
//  2. [AssignRanks]: give every node a rank with the configured [Ranker]
//  3. [Subdivide]: replace edges spanning several ranks with dummy chains
//
// # Ranking
//
// Three rankers are available:
//
//   - [RankerLongestPath]: every node sits one MinLen below its deepest
//     parent ([AssignLayers]). Fast, but tends to produce long edges.
//   - [RankerTightTree]: starts from the longest-path ranking and grows a
//     spanning tree of tight edges, pulling loose subtrees closer.
//   - [RankerNetworkSimplex]: improves the tight tree until the total
//     weighted edge length is minimal.
//
// Tight-tree and network-simplex rank each weakly connected component
// ([Components]) on its own and normalize it to start at rank 0.
//
// # Usage
//
//	transform.BreakCycles(g)
//	if err := transform.AssignRanks(g, transform.RankerNetworkSimplex); err != nil {
//	    return err
//	}
//	transform.Subdivide(g)
package transform
