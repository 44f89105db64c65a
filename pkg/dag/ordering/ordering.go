// Package ordering orders the nodes inside each rank of a layered graph to
// reduce edge crossings.
package ordering

import (
	"context"

	"github.com/pdjsoneditor/jsongraph/pkg/dag"
)

// Orderer is an interface for horizontal row ordering algorithms.
// An orderer determines the left-to-right sequence of nodes in each row
// to minimize edge crossings.
type Orderer interface {
	OrderRows(g *dag.DAG) map[int][]string
}

// ContextOrderer is an Orderer that supports cancellation via a context.
// On cancellation it returns the best ordering found so far.
type ContextOrderer interface {
	Orderer
	OrderRowsContext(ctx context.Context, g *dag.DAG) map[int][]string
}

// Apply orders g with o and stores the result on the graph, see
// [dag.DAG.SetOrders].
func Apply(ctx context.Context, g *dag.DAG, o Orderer) {
	var orders map[int][]string
	if co, ok := o.(ContextOrderer); ok {
		orders = co.OrderRowsContext(ctx, g)
	} else {
		orders = o.OrderRows(g)
	}
	g.SetOrders(orders)
}
