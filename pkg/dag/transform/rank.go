package transform

import (
	"fmt"
	"math"

	"github.com/pdjsoneditor/jsongraph/pkg/dag"
)

// Ranker selects the rank assignment heuristic used by [AssignRanks].
type Ranker string

const (
	// RankerNetworkSimplex minimizes the total weighted edge length.
	RankerNetworkSimplex Ranker = "network-simplex"
	// RankerTightTree tightens a longest-path ranking along a spanning tree.
	RankerTightTree Ranker = "tight-tree"
	// RankerLongestPath places every node right below its deepest parent.
	RankerLongestPath Ranker = "longest-path"
)

// Valid reports whether r names a known ranker.
func (r Ranker) Valid() bool {
	switch r {
	case RankerNetworkSimplex, RankerTightTree, RankerLongestPath:
		return true
	}
	return false
}

// AssignRanks assigns rows to every node with the given heuristic.
//
// Ranking runs independently on each weakly connected component and every
// component is normalized so that its topmost rank is 0. The graph must be
// acyclic; run [BreakCycles] first.
func AssignRanks(g *dag.DAG, r Ranker) error {
	switch r {
	case RankerLongestPath:
		AssignLayers(g)
		return nil
	case RankerTightTree, RankerNetworkSimplex:
	default:
		return fmt.Errorf("unknown ranker %q", r)
	}

	initial := longestPath(g)
	rows := make(map[string]int, len(initial))
	for _, comp := range Components(g) {
		rg := newRankGraph(g, comp, initial)
		t := feasibleTree(rg)
		if r == RankerNetworkSimplex {
			networkSimplex(rg, t)
		}
		rg.normalize()
		for i, id := range rg.ids {
			rows[id] = rg.rank[i]
		}
	}
	g.SetRows(rows)
	return nil
}

// =============================================================================
// Rank graph
// =============================================================================

type rankEdge struct {
	v, w   int
	weight int
	minlen int
}

// rankGraph is an index-based copy of one component with parallel edges
// collapsed.
type rankGraph struct {
	ids   []string
	edges []rankEdge
	adj   [][]int // node -> incident edge indices
	rank  []int
}

func newRankGraph(g *dag.DAG, comp []string, rows map[string]int) *rankGraph {
	index := dag.PosMap(comp)
	rg := &rankGraph{
		ids:  comp,
		adj:  make([][]int, len(comp)),
		rank: make([]int, len(comp)),
	}
	for i, id := range comp {
		rg.rank[i] = rows[id]
	}

	pair := make(map[[2]int]int)
	for _, e := range g.Edges() {
		v, okV := index[e.From]
		w, okW := index[e.To]
		if !okV || !okW {
			continue
		}
		if i, ok := pair[[2]int{v, w}]; ok {
			rg.edges[i].weight += e.Weight
			rg.edges[i].minlen = max(rg.edges[i].minlen, e.MinLen)
			continue
		}
		pair[[2]int{v, w}] = len(rg.edges)
		rg.adj[v] = append(rg.adj[v], len(rg.edges))
		rg.adj[w] = append(rg.adj[w], len(rg.edges))
		rg.edges = append(rg.edges, rankEdge{v: v, w: w, weight: e.Weight, minlen: e.MinLen})
	}
	return rg
}

func (rg *rankGraph) slack(e int) int {
	edge := rg.edges[e]
	return rg.rank[edge.w] - rg.rank[edge.v] - edge.minlen
}

func (rg *rankGraph) other(e, v int) int {
	if rg.edges[e].v == v {
		return rg.edges[e].w
	}
	return rg.edges[e].v
}

func (rg *rankGraph) normalize() {
	if len(rg.rank) == 0 {
		return
	}
	low := math.MaxInt
	for _, r := range rg.rank {
		low = min(low, r)
	}
	for i := range rg.rank {
		rg.rank[i] -= low
	}
}

// =============================================================================
// Spanning tree
// =============================================================================

type spanningTree struct {
	inTree     []bool
	isTree     []bool  // per graph edge
	treeAdj    [][]int // node -> incident tree edge indices
	parent     []int   // -1 for the root
	parentEdge []int
	low, lim   []int
	cut        []int // cut value of the edge (v, parent[v])
	preorder   []int
	postorder  []int
}

// feasibleTree grows a tree of tight edges (slack 0) from node 0, shifting
// the ranks of the tree whenever no tight edge leaves it.
func feasibleTree(rg *rankGraph) *spanningTree {
	n := len(rg.ids)
	t := &spanningTree{
		inTree: make([]bool, n),
		isTree: make([]bool, len(rg.edges)),
	}
	if n == 0 {
		return t
	}
	t.inTree[0] = true
	size := 1

	var grow func(v int)
	grow = func(v int) {
		for _, e := range rg.adj[v] {
			w := rg.other(e, v)
			if !t.inTree[w] && rg.slack(e) == 0 {
				t.inTree[w] = true
				t.isTree[e] = true
				size++
				grow(w)
			}
		}
	}

	for {
		for v := 0; v < n; v++ {
			if t.inTree[v] {
				grow(v)
			}
		}
		if size >= n {
			break
		}

		best, bestSlack := -1, math.MaxInt
		for e, edge := range rg.edges {
			if t.inTree[edge.v] == t.inTree[edge.w] {
				continue
			}
			if s := rg.slack(e); s < bestSlack {
				best, bestSlack = e, s
			}
		}
		if best < 0 {
			break
		}
		delta := bestSlack
		if !t.inTree[rg.edges[best].v] {
			delta = -delta
		}
		for v := 0; v < n; v++ {
			if t.inTree[v] {
				rg.rank[v] += delta
			}
		}
	}

	t.rebuild(rg)
	return t
}

// rebuild recomputes adjacency, parents, low/lim numbers and traversal
// orders of the tree rooted at node 0.
func (t *spanningTree) rebuild(rg *rankGraph) {
	n := len(rg.ids)
	t.treeAdj = make([][]int, n)
	for e, ok := range t.isTree {
		if ok {
			edge := rg.edges[e]
			t.treeAdj[edge.v] = append(t.treeAdj[edge.v], e)
			t.treeAdj[edge.w] = append(t.treeAdj[edge.w], e)
		}
	}
	t.parent = make([]int, n)
	t.parentEdge = make([]int, n)
	t.low = make([]int, n)
	t.lim = make([]int, n)
	t.preorder = t.preorder[:0]
	t.postorder = t.postorder[:0]
	if n == 0 {
		return
	}

	visited := make([]bool, n)
	next := 1
	var dfs func(v, parent, parentEdge int)
	dfs = func(v, parent, parentEdge int) {
		visited[v] = true
		low := next
		t.preorder = append(t.preorder, v)
		for _, e := range t.treeAdj[v] {
			if w := rg.other(e, v); !visited[w] {
				dfs(w, v, e)
			}
		}
		t.low[v] = low
		t.lim[v] = next
		next++
		t.parent[v] = parent
		t.parentEdge[v] = parentEdge
		t.postorder = append(t.postorder, v)
	}
	dfs(0, -1, -1)
}

func (t *spanningTree) isDescendant(v, root int) bool {
	return t.low[root] <= t.lim[v] && t.lim[v] <= t.lim[root]
}

// initCutValues computes the cut value of every tree edge bottom-up.
func (t *spanningTree) initCutValues(rg *rankGraph) {
	t.cut = make([]int, len(rg.ids))
	for _, v := range t.postorder {
		if t.parent[v] >= 0 {
			t.cut[v] = t.calcCutValue(rg, v)
		}
	}
}

func (t *spanningTree) calcCutValue(rg *rankGraph, child int) int {
	parent := t.parent[child]
	pe := rg.edges[t.parentEdge[child]]
	childIsTail := pe.v == child

	cut := pe.weight
	for _, e := range rg.adj[child] {
		edge := rg.edges[e]
		isOut := edge.v == child
		other := edge.w
		if !isOut {
			other = edge.v
		}
		if other == parent {
			continue
		}
		pointsToHead := isOut == childIsTail
		if pointsToHead {
			cut += edge.weight
		} else {
			cut -= edge.weight
		}
		if t.isTree[e] {
			if pointsToHead {
				cut -= t.cut[other]
			} else {
				cut += t.cut[other]
			}
		}
	}
	return cut
}

// =============================================================================
// Network simplex
// =============================================================================

// networkSimplex repeatedly swaps a tree edge with negative cut value for the
// non-tree edge of minimum slack crossing the same cut, until every cut value
// is non-negative.
func networkSimplex(rg *rankGraph, t *spanningTree) {
	t.initCutValues(rg)
	limit := max(1000, 10*len(rg.edges))
	for i := 0; i < limit; i++ {
		leave := t.leaveEdge()
		if leave < 0 {
			return
		}
		enter := t.enterEdge(rg, leave)
		if enter < 0 {
			return
		}
		t.isTree[leave] = false
		t.isTree[enter] = true
		t.rebuild(rg)
		t.initCutValues(rg)
		t.updateRanks(rg)
	}
}

func (t *spanningTree) leaveEdge() int {
	for v, p := range t.parent {
		if p >= 0 && t.cut[v] < 0 {
			return t.parentEdge[v]
		}
	}
	return -1
}

func (t *spanningTree) enterEdge(rg *rankGraph, leave int) int {
	v, w := rg.edges[leave].v, rg.edges[leave].w

	tail, flip := v, false
	if t.lim[v] > t.lim[w] {
		tail, flip = w, true
	}

	best, bestSlack := -1, math.MaxInt
	for e, edge := range rg.edges {
		if flip != t.isDescendant(edge.v, tail) || flip == t.isDescendant(edge.w, tail) {
			continue
		}
		if s := rg.slack(e); s < bestSlack {
			best, bestSlack = e, s
		}
	}
	return best
}

func (t *spanningTree) updateRanks(rg *rankGraph) {
	for _, v := range t.preorder {
		p := t.parent[v]
		if p < 0 {
			continue
		}
		edge := rg.edges[t.parentEdge[v]]
		if edge.v == v {
			rg.rank[v] = rg.rank[p] - edge.minlen
		} else {
			rg.rank[v] = rg.rank[p] + edge.minlen
		}
	}
}
