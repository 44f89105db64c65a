package ordering

import (
	"cmp"
	"context"
	"slices"

	"github.com/pdjsoneditor/jsongraph/pkg/dag"
)

// DefaultMaxStale is the number of consecutive sweeps without improvement
// after which [Barycentric] stops.
const DefaultMaxStale = 4

// Barycentric orders rows with alternating layer-by-layer barycenter sweeps.
//
// The initial order comes from a depth-first walk of the graph in rank
// order. Sweeps then alternate upward (ordering each row by the mean position
// of its children) and downward (by the mean position of its parents). Every
// second pair of sweeps breaks ties to the right instead of the left. After
// each sweep the weighted crossing count is evaluated and the best ordering
// seen is kept. The loop ends after MaxStale sweeps without improvement.
//
// Nodes without neighbors in the fixed row keep their relative slot.
type Barycentric struct {
	MaxStale int
}

// OrderRows implements [Orderer].
func (b Barycentric) OrderRows(g *dag.DAG) map[int][]string {
	return b.OrderRowsContext(context.Background(), g)
}

// OrderRowsContext implements [ContextOrderer].
func (b Barycentric) OrderRowsContext(ctx context.Context, g *dag.DAG) map[int][]string {
	maxStale := b.MaxStale
	if maxStale <= 0 {
		maxStale = DefaultMaxStale
	}

	rows := g.RowIDs()
	orders := initOrder(g, rows)
	if len(rows) < 2 {
		return orders
	}

	weights := make(map[[2]string]int, g.EdgeCount())
	for _, e := range g.Edges() {
		weights[[2]string{e.From, e.To}] += e.Weight
	}

	best := cloneOrders(orders)
	bestCC := dag.CountCrossings(g, orders)

	for i, stale := 0, 0; stale < maxStale && bestCC > 0; i, stale = i+1, stale+1 {
		if ctx.Err() != nil {
			break
		}
		biasRight := i%4 >= 2
		if i%2 == 1 {
			for k := 1; k < len(rows); k++ {
				fixed := dag.PosMap(orders[rows[k-1]])
				orders[rows[k]] = sortRow(orders[rows[k]], fixed, g.Parents, func(nb, v string) int {
					return weights[[2]string{nb, v}]
				}, biasRight)
			}
		} else {
			for k := len(rows) - 2; k >= 0; k-- {
				fixed := dag.PosMap(orders[rows[k+1]])
				orders[rows[k]] = sortRow(orders[rows[k]], fixed, g.Children, func(nb, v string) int {
					return weights[[2]string{v, nb}]
				}, biasRight)
			}
		}

		if cc := dag.CountCrossings(g, orders); cc < bestCC {
			stale = -1
			bestCC = cc
			best = cloneOrders(orders)
		}
	}
	return best
}

// initOrder walks the graph depth-first, starting from nodes sorted by rank,
// and appends each node to its row on first visit.
func initOrder(g *dag.DAG, rows []int) map[int][]string {
	orders := make(map[int][]string, len(rows))
	for _, r := range rows {
		orders[r] = nil
	}

	nodes := g.Nodes()
	slices.SortStableFunc(nodes, func(a, b *dag.Node) int { return cmp.Compare(a.Row, b.Row) })

	visited := make(map[string]bool, len(nodes))
	var dfs func(id string)
	dfs = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		n, _ := g.Node(id)
		orders[n.Row] = append(orders[n.Row], id)
		for _, child := range g.Children(id) {
			dfs(child)
		}
	}
	for _, n := range nodes {
		dfs(n.ID)
	}
	return orders
}

type entry struct {
	id         string
	index      int
	barycenter float64
}

// sortRow reorders row by the weighted barycenter of each node's neighbors in
// the fixed row. Unsortable nodes (no neighbors there) are re-inserted at
// their original index once enough sortable nodes precede them.
func sortRow(row []string, fixed map[string]int, neighbors func(string) []string, weight func(nb, v string) int, biasRight bool) []string {
	var sortable, unsortable []entry
	for i, v := range row {
		sum, total := 0, 0
		for _, nb := range neighbors(v) {
			pos, ok := fixed[nb]
			if !ok {
				continue
			}
			w := weight(nb, v)
			sum += pos * w
			total += w
		}
		if total == 0 {
			unsortable = append(unsortable, entry{id: v, index: i})
			continue
		}
		sortable = append(sortable, entry{id: v, index: i, barycenter: float64(sum) / float64(total)})
	}

	slices.SortStableFunc(sortable, func(a, b entry) int {
		if c := cmp.Compare(a.barycenter, b.barycenter); c != 0 {
			return c
		}
		if biasRight {
			return b.index - a.index
		}
		return a.index - b.index
	})

	out := make([]string, 0, len(row))
	next := 0
	consume := func() {
		for next < len(unsortable) && unsortable[next].index <= len(out) {
			out = append(out, unsortable[next].id)
			next++
		}
	}
	consume()
	for _, e := range sortable {
		out = append(out, e.id)
		consume()
	}
	for ; next < len(unsortable); next++ {
		out = append(out, unsortable[next].id)
	}
	return out
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for r, ids := range orders {
		out[r] = slices.Clone(ids)
	}
	return out
}
