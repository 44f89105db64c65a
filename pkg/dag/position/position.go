// Package position assigns coordinates to the nodes of a ranked and ordered
// layered graph.
//
// X coordinates follow Brandes and Köpf, "Fast and Simple Horizontal
// Coordinate Assignment": four candidate placements are computed (aligned
// to upper/lower neighbors, compacted to the left/right) and then either one
// is picked or all four are balanced. Y coordinates stack the ranks, each
// rank as tall as its tallest node, separated by RankSep.
//
// Coordinates are box centers in a top-to-bottom frame. Rank direction and
// margins are applied by the caller.
package position

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/pdjsoneditor/jsongraph/pkg/dag"
)

// Alignment selects one of the four Brandes-Köpf placements. The empty
// alignment balances all four.
type Alignment string

const (
	AlignNone      Alignment = ""
	AlignUpLeft    Alignment = "UL"
	AlignUpRight   Alignment = "UR"
	AlignDownLeft  Alignment = "DL"
	AlignDownRight Alignment = "DR"
)

// ParseAlignment accepts the alignment names in any letter case.
func ParseAlignment(s string) (Alignment, error) {
	a := Alignment(strings.ToUpper(s))
	switch a {
	case AlignNone, AlignUpLeft, AlignUpRight, AlignDownLeft, AlignDownRight:
		return a, nil
	}
	return "", fmt.Errorf("unknown alignment %q", s)
}

// Options controls node spacing.
type Options struct {
	// NodeSep is the horizontal gap between adjacent regular nodes.
	NodeSep float64
	// EdgeSep is the gap contributed by dummy nodes (edge segments).
	EdgeSep float64
	// RankSep is the vertical gap between ranks.
	RankSep float64
	// Align picks a single placement instead of balancing.
	Align Alignment
}

// Assign sets X and Y on every node of g. The graph must be subdivided (all
// edges between consecutive rows) and ordered.
func Assign(g *dag.DAG, opts Options) {
	layering := layers(g)
	xs := PositionX(g, layering, opts)
	for id, x := range xs {
		if n, ok := g.Node(id); ok {
			n.X = x
		}
	}
	PositionY(layering, opts.RankSep)
}

// PositionY places every rank below the previous one. Nodes are centered on
// their rank's midline.
func PositionY(layering [][]*dag.Node, rankSep float64) {
	prevY := 0.0
	for _, layer := range layering {
		maxHeight := 0.0
		for _, n := range layer {
			maxHeight = max(maxHeight, n.Height)
		}
		for _, n := range layer {
			n.Y = prevY + maxHeight/2
		}
		prevY += maxHeight + rankSep
	}
}

// layers returns the non-empty rows of g in rank order and refreshes each
// node's Order to its index in the row.
func layers(g *dag.DAG) [][]*dag.Node {
	var out [][]*dag.Node
	for _, layer := range g.Layers() {
		if len(layer) == 0 {
			continue
		}
		for i, n := range layer {
			n.Order = i
		}
		out = append(out, layer)
	}
	return out
}

func reversed[T any](s []T) []T {
	out := slices.Clone(s)
	slices.Reverse(out)
	return out
}

func width(xs map[string]float64, g *dag.DAG) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for id, x := range xs {
		n, _ := g.Node(id)
		lo = min(lo, x-n.Width/2)
		hi = max(hi, x+n.Width/2)
	}
	return hi - lo
}

func extent(xs map[string]float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	return lo, hi
}
