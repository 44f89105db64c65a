package position

import (
	"slices"

	"github.com/pdjsoneditor/jsongraph/pkg/dag"
)

// conflicts records type-1 conflicts: pairs (u, v) whose edge crosses an
// inner segment (an edge between two dummies). Keys are stored with the
// smaller ID first.
type conflicts map[[2]string]struct{}

func (c conflicts) add(v, w string) {
	if v > w {
		v, w = w, v
	}
	c[[2]string{v, w}] = struct{}{}
}

func (c conflicts) has(v, w string) bool {
	if v > w {
		v, w = w, v
	}
	_, ok := c[[2]string{v, w}]
	return ok
}

// PositionX computes the horizontal center of every node in layering.
func PositionX(g *dag.DAG, layering [][]*dag.Node, opts Options) map[string]float64 {
	if len(layering) == 0 {
		return map[string]float64{}
	}
	conf := findType1Conflicts(g, layering)

	type candidate struct {
		name Alignment
		xs   map[string]float64
	}
	var cands []candidate
	for _, vert := range []string{"U", "D"} {
		adjusted := layering
		if vert == "D" {
			adjusted = reversed(layering)
		}
		neighbors := g.Parents
		if vert == "D" {
			neighbors = g.Children
		}
		for _, horiz := range []string{"L", "R"} {
			if horiz == "R" {
				inner := make([][]*dag.Node, len(adjusted))
				for i, layer := range adjusted {
					inner[i] = reversed(layer)
				}
				adjusted = inner
			}
			root, align := verticalAlignment(adjusted, conf, neighbors)
			xs := horizontalCompaction(g, adjusted, root, align, opts)
			if horiz == "R" {
				for id, x := range xs {
					xs[id] = -x
				}
			}
			cands = append(cands, candidate{Alignment(vert + horiz), xs})
		}
	}

	all := make(map[Alignment]map[string]float64, len(cands))
	smallest := cands[0]
	smallestWidth := width(smallest.xs, g)
	for _, c := range cands {
		all[c.name] = c.xs
		if w := width(c.xs, g); w < smallestWidth {
			smallest, smallestWidth = c, w
		}
	}
	alignCoordinates(all, smallest.name)
	return balance(all, opts.Align)
}

// findType1Conflicts marks non-inner segments that cross an inner segment
// between each pair of consecutive layers.
func findType1Conflicts(g *dag.DAG, layering [][]*dag.Node) conflicts {
	conf := conflicts{}
	for l := 1; l < len(layering); l++ {
		prev, layer := layering[l-1], layering[l]
		k0, scanPos := 0, 0
		last := layer[len(layer)-1]
		for i, v := range layer {
			w := otherInnerSegmentNode(g, v)
			k1 := len(prev)
			if w != nil {
				k1 = w.Order
			}
			if w == nil && v != last {
				continue
			}
			for _, scan := range layer[scanPos : i+1] {
				for _, uID := range g.Parents(scan.ID) {
					u, ok := g.Node(uID)
					if !ok {
						continue
					}
					if (u.Order < k0 || k1 < u.Order) && !(u.IsDummy() && scan.IsDummy()) {
						conf.add(u.ID, scan.ID)
					}
				}
			}
			scanPos = i + 1
			k0 = k1
		}
	}
	return conf
}

func otherInnerSegmentNode(g *dag.DAG, v *dag.Node) *dag.Node {
	if !v.IsDummy() {
		return nil
	}
	for _, id := range g.Parents(v.ID) {
		if u, ok := g.Node(id); ok && u.IsDummy() {
			return u
		}
	}
	return nil
}

// verticalAlignment groups nodes into blocks by aligning each node with its
// median neighbor(s) in the previous layer, skipping conflicted pairs and
// alignments that would cross an earlier one.
func verticalAlignment(layering [][]*dag.Node, conf conflicts, neighbors func(string) []string) (root, align map[string]string) {
	root = make(map[string]string)
	align = make(map[string]string)
	pos := make(map[string]int)
	for _, layer := range layering {
		for order, v := range layer {
			root[v.ID] = v.ID
			align[v.ID] = v.ID
			pos[v.ID] = order
		}
	}

	for _, layer := range layering {
		prevIdx := -1
		for _, v := range layer {
			ws := slices.Clone(neighbors(v.ID))
			if len(ws) == 0 {
				continue
			}
			slices.SortStableFunc(ws, func(a, b string) int { return pos[a] - pos[b] })
			for i := (len(ws) - 1) / 2; i <= len(ws)/2; i++ {
				w := ws[i]
				if align[v.ID] == v.ID && prevIdx < pos[w] && !conf.has(v.ID, w) {
					align[w] = v.ID
					root[v.ID] = root[w]
					align[v.ID] = root[v.ID]
					prevIdx = pos[w]
				}
			}
		}
	}
	return root, align
}

type blockEdge struct {
	to  string
	sep float64
}

// horizontalCompaction places blocks as far left as the separation allows,
// then pulls every block right towards its successors where there is room.
func horizontalCompaction(g *dag.DAG, layering [][]*dag.Node, root, align map[string]string, opts Options) map[string]float64 {
	var blocks []string
	seen := make(map[string]bool)
	out := make(map[string][]blockEdge)
	in := make(map[string][]blockEdge)
	sepIdx := make(map[[2]string]int)

	for _, layer := range layering {
		var u *dag.Node
		for _, v := range layer {
			vRoot := root[v.ID]
			if !seen[vRoot] {
				seen[vRoot] = true
				blocks = append(blocks, vRoot)
			}
			if u != nil {
				uRoot := root[u.ID]
				s := separation(v, u, opts)
				key := [2]string{uRoot, vRoot}
				if i, ok := sepIdx[key]; ok {
					out[uRoot][i].sep = max(out[uRoot][i].sep, s)
				} else {
					sepIdx[key] = len(out[uRoot])
					out[uRoot] = append(out[uRoot], blockEdge{to: vRoot, sep: s})
				}
			}
			u = v
		}
	}
	for _, from := range blocks {
		for _, e := range out[from] {
			in[e.to] = append(in[e.to], blockEdge{to: from, sep: e.sep})
		}
	}

	order := topoOrder(blocks, out, in)
	xs := make(map[string]float64, len(root))
	for _, b := range order {
		x := 0.0
		for _, e := range in[b] {
			x = max(x, xs[e.to]+e.sep)
		}
		xs[b] = x
	}
	for i := len(order) - 1; i >= 0; i-- {
		b := order[i]
		if len(out[b]) == 0 {
			continue
		}
		lim := xs[out[b][0].to] - out[b][0].sep
		for _, e := range out[b][1:] {
			lim = min(lim, xs[e.to]-e.sep)
		}
		xs[b] = max(xs[b], lim)
	}

	for v := range align {
		xs[v] = xs[root[v]]
	}
	return xs
}

func separation(v, w *dag.Node, opts Options) float64 {
	sum := v.Width / 2
	if v.IsDummy() {
		sum += opts.EdgeSep / 2
	} else {
		sum += opts.NodeSep / 2
	}
	if w.IsDummy() {
		sum += opts.EdgeSep / 2
	} else {
		sum += opts.NodeSep / 2
	}
	return sum + w.Width/2
}

// topoOrder sorts the block graph with Kahn's algorithm. Blocks left over
// by a cycle are appended in discovery order.
func topoOrder(blocks []string, out, in map[string][]blockEdge) []string {
	indeg := make(map[string]int, len(blocks))
	for _, b := range blocks {
		indeg[b] = len(in[b])
	}
	queue := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if indeg[b] == 0 {
			queue = append(queue, b)
		}
	}
	order := make([]string, 0, len(blocks))
	done := make(map[string]bool, len(blocks))
	for len(queue) > 0 {
		b := queue[0]
		queue = queue[1:]
		order = append(order, b)
		done[b] = true
		for _, e := range out[b] {
			indeg[e.to]--
			if indeg[e.to] == 0 {
				queue = append(queue, e.to)
			}
		}
	}
	for _, b := range blocks {
		if !done[b] {
			order = append(order, b)
		}
	}
	return order
}

// alignCoordinates shifts every placement so that left-compacted ones share
// the minimum and right-compacted ones share the maximum of the narrowest
// placement.
func alignCoordinates(all map[Alignment]map[string]float64, to Alignment) {
	target := all[to]
	toMin, toMax := extent(target)
	for _, name := range []Alignment{AlignUpLeft, AlignUpRight, AlignDownLeft, AlignDownRight} {
		if name == to {
			continue
		}
		xs := all[name]
		lo, hi := extent(xs)
		delta := toMax - hi
		if name == AlignUpLeft || name == AlignDownLeft {
			delta = toMin - lo
		}
		if delta == 0 {
			continue
		}
		for id := range xs {
			xs[id] += delta
		}
	}
}

// balance picks the requested placement, or averages the two median
// candidates of each node.
func balance(all map[Alignment]map[string]float64, align Alignment) map[string]float64 {
	if align != AlignNone {
		return all[align]
	}
	ul := all[AlignUpLeft]
	out := make(map[string]float64, len(ul))
	for id := range ul {
		vals := []float64{ul[id], all[AlignUpRight][id], all[AlignDownLeft][id], all[AlignDownRight][id]}
		slices.Sort(vals)
		out[id] = (vals[1] + vals[2]) / 2
	}
	return out
}
