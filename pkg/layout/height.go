package layout

import "github.com/pdjsoneditor/jsongraph/pkg/graph"

// MinNodeHeight is the smallest height ever estimated for a node.
const MinNodeHeight = 32.0

// EstimateNodeHeight predicts the rendered height of a node before the host
// has measured it. A collapsed node is just its header. An expanded node adds
// one row per displayed item, capped at MaxDisplayItems unless showAll is set,
// and a "more" button when items were cut off.
func EstimateNodeHeight(n graph.Node, cfg Config, showAll bool) float64 {
	m := cfg.Metrics
	h := m.NodePaddingY + m.NodeBorderY + m.HeaderHeight
	if n.Data.IsExpanded {
		count := displayItemCount(n, cfg, showAll)
		more := 0.0
		if hasMoreButton(n, cfg, showAll) {
			more = m.MoreButtonHeight
		}
		h += m.ItemsTopMargin + float64(count)*m.ItemRowHeight + more
	}
	return max(h, MinNodeHeight)
}

func displayItemCount(n graph.Node, cfg Config, showAll bool) int {
	if !n.Data.IsExpanded {
		return 0
	}
	total := len(n.Data.Items)
	if showAll {
		return total
	}
	return min(total, cfg.MaxDisplayItems)
}

func hasMoreButton(n graph.Node, cfg Config, showAll bool) bool {
	return n.Data.IsExpanded && !showAll && len(n.Data.Items) > cfg.MaxDisplayItems
}
