package layout

import (
	"fmt"

	"github.com/pdjsoneditor/jsongraph/pkg/dag/position"
	"github.com/pdjsoneditor/jsongraph/pkg/dag/transform"
)

// RankDir is the direction in which ranks advance.
type RankDir string

const (
	RankDirTB RankDir = "TB"
	RankDirBT RankDir = "BT"
	RankDirLR RankDir = "LR"
	RankDirRL RankDir = "RL"
)

// Valid reports whether d is one of the four directions.
func (d RankDir) Valid() bool {
	switch d {
	case RankDirTB, RankDirBT, RankDirLR, RankDirRL:
		return true
	}
	return false
}

// Horizontal reports whether ranks advance along the x axis.
func (d RankDir) Horizontal() bool { return d == RankDirLR || d == RankDirRL }

// Engine names accepted by [Config.Engine].
const (
	EngineDagre    = "dagre"
	EngineGraphviz = "graphviz"
)

// Metrics are the pixel sizes used by [EstimateNodeHeight].
type Metrics struct {
	NodePaddingY     float64 `json:"NODE_PADDING_Y" toml:"node_padding_y"`
	NodeBorderY      float64 `json:"NODE_BORDER_Y" toml:"node_border_y"`
	HeaderHeight     float64 `json:"HEADER_HEIGHT" toml:"header_height"`
	ItemsTopMargin   float64 `json:"ITEMS_TOP_MARGIN" toml:"items_top_margin"`
	ItemRowHeight    float64 `json:"ITEM_ROW_HEIGHT" toml:"item_row_height"`
	MoreButtonHeight float64 `json:"MORE_BUTTON_HEIGHT" toml:"more_button_height"`
}

// Dagre holds the layered layout parameters.
type Dagre struct {
	RankDir RankDir            `json:"RANK_DIR" toml:"rank_dir"`
	NodeSep float64            `json:"NODE_SEP" toml:"node_sep"`
	RankSep float64            `json:"RANK_SEP" toml:"rank_sep"`
	EdgeSep float64            `json:"EDGE_SEP" toml:"edge_sep"`
	Ranker  transform.Ranker   `json:"RANKER" toml:"ranker"`
	Align   position.Alignment `json:"ALIGN,omitempty" toml:"align"`
	MarginX float64            `json:"MARGIN_X" toml:"margin_x"`
	MarginY float64            `json:"MARGIN_Y" toml:"margin_y"`
}

// Overlap holds the parameters of [ResolveOverlaps].
type Overlap struct {
	MinSpacing float64 `json:"MIN_SPACING" toml:"min_spacing"`
	XTolerance float64 `json:"X_TOLERANCE" toml:"x_tolerance"`
}

// Config is the full layout configuration. It is read-only during a pass.
type Config struct {
	NodeWidth       float64 `json:"NODE_WIDTH" toml:"node_width"`
	MaxDisplayItems int     `json:"MAX_DISPLAY_ITEMS" toml:"max_display_items"`
	Metrics         Metrics `json:"METRICS" toml:"metrics"`
	Dagre           Dagre   `json:"DAGRE" toml:"dagre"`
	Overlap         Overlap `json:"OVERLAP" toml:"overlap"`
	Engine          string  `json:"ENGINE,omitempty" toml:"engine"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		NodeWidth:       250,
		MaxDisplayItems: 20,
		Metrics: Metrics{
			NodePaddingY:     16,
			NodeBorderY:      2,
			HeaderHeight:     28,
			ItemsTopMargin:   8,
			ItemRowHeight:    24,
			MoreButtonHeight: 32,
		},
		Dagre: Dagre{
			RankDir: RankDirLR,
			NodeSep: 80,
			RankSep: 150,
			EdgeSep: 20,
			Ranker:  transform.RankerNetworkSimplex,
			MarginX: 20,
			MarginY: 20,
		},
		Overlap: Overlap{
			MinSpacing: 20,
			XTolerance: 30,
		},
		Engine: EngineDagre,
	}
}

// EngineName returns the configured engine, defaulting to dagre.
func (c Config) EngineName() string {
	if c.Engine == "" {
		return EngineDagre
	}
	return c.Engine
}

// Normalized fills empty enum fields the way dagre does (ranks advance top
// to bottom, network simplex ranks the nodes) and upper-cases ALIGN.
func (c Config) Normalized() Config {
	if c.Dagre.RankDir == "" {
		c.Dagre.RankDir = RankDirTB
	}
	if c.Dagre.Ranker == "" {
		c.Dagre.Ranker = transform.RankerNetworkSimplex
	}
	if c.Engine == "" {
		c.Engine = EngineDagre
	}
	if a, err := position.ParseAlignment(string(c.Dagre.Align)); err == nil {
		c.Dagre.Align = a
	}
	return c
}

// Validate rejects unknown enum values and negative sizes.
func (c Config) Validate() error {
	if !c.Dagre.RankDir.Valid() {
		return fmt.Errorf("invalid RANK_DIR: %q (must be one of: TB, BT, LR, RL)", c.Dagre.RankDir)
	}
	if !c.Dagre.Ranker.Valid() {
		return fmt.Errorf("invalid RANKER: %q (must be one of: network-simplex, tight-tree, longest-path)", c.Dagre.Ranker)
	}
	if _, err := position.ParseAlignment(string(c.Dagre.Align)); err != nil {
		return fmt.Errorf("invalid ALIGN: %w", err)
	}
	switch c.EngineName() {
	case EngineDagre, EngineGraphviz:
	default:
		return fmt.Errorf("invalid ENGINE: %q (must be one of: dagre, graphviz)", c.Engine)
	}
	if c.NodeWidth < 0 || c.MaxDisplayItems < 0 {
		return fmt.Errorf("NODE_WIDTH and MAX_DISPLAY_ITEMS must not be negative")
	}
	if c.Dagre.NodeSep < 0 || c.Dagre.RankSep < 0 || c.Dagre.EdgeSep < 0 {
		return fmt.Errorf("separations must not be negative")
	}
	return nil
}
