package graph

import (
	"encoding/json"
	"errors"
	"fmt"
)

// =============================================================================
// Item kinds
// =============================================================================

// Kind classifies the value shown in one row of a node.
type Kind string

const (
	KindString    Kind = "string"
	KindNumber    Kind = "number"
	KindBoolean   Kind = "boolean"
	KindNull      Kind = "null"
	KindReference Kind = "reference" // nested object/array drawn as its own node
	KindUndefined Kind = "undefined"
	KindKey       Kind = "key"
)

// ErrUnknownKind is returned by [NewItem] and [Item.UnmarshalJSON] for a kind
// outside the fixed set.
var ErrUnknownKind = errors.New("unknown item kind")

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindString, KindNumber, KindBoolean, KindNull, KindReference, KindUndefined, KindKey:
		return true
	}
	return false
}

// =============================================================================
// Item - one row of a node
// =============================================================================

// Item is one key/value row displayed inside a node. Value is always the
// display string, never the raw JSON value.
type Item struct {
	Key                 string `json:"key" bson:"key"`
	Value               string `json:"value" bson:"value"`
	Kind                Kind   `json:"type" bson:"type"`
	Path                string `json:"path,omitempty" bson:"path,omitempty"`
	TargetNodeID        string `json:"targetNodeId,omitempty" bson:"targetNodeId,omitempty"`
	IsReferenceExpanded bool   `json:"isReferenceExpanded,omitempty" bson:"isReferenceExpanded,omitempty"`
}

// NewItem builds an item and rejects unknown kinds.
func NewItem(key, value string, kind Kind) (Item, error) {
	if !kind.Valid() {
		return Item{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return Item{Key: key, Value: value, Kind: kind}, nil
}

// UnmarshalJSON decodes an item and validates its kind.
func (it *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if !p.Kind.Valid() {
		return fmt.Errorf("item %q: %w: %q", p.Key, ErrUnknownKind, p.Kind)
	}
	*it = Item(p)
	return nil
}

// =============================================================================
// Node
// =============================================================================

// NodeData is the display payload of a node. Layout never modifies it.
type NodeData struct {
	Label      string `json:"label" bson:"label"`
	Items      []Item `json:"items,omitempty" bson:"items,omitempty"`
	AllItems   []Item `json:"allItems,omitempty" bson:"allItems,omitempty"`
	IsExpanded bool   `json:"isExpanded,omitempty" bson:"isExpanded,omitempty"`
	IsArray    bool   `json:"isArray,omitempty" bson:"isArray,omitempty"`
	NodeID     string `json:"nodeId,omitempty" bson:"nodeId,omitempty"`
}

// Clone returns a deep copy of the payload.
func (d NodeData) Clone() NodeData {
	if d.Items != nil {
		d.Items = append([]Item(nil), d.Items...)
	}
	if d.AllItems != nil {
		d.AllItems = append([]Item(nil), d.AllItems...)
	}
	return d
}

// Position is the center of a node box.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Node is one box of the document graph: one per JSON object or array.
type Node struct {
	ID       string   `json:"id" bson:"id"`
	Data     NodeData `json:"data" bson:"data"`
	Position Position `json:"position" bson:"position"`
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	n.Data = n.Data.Clone()
	return n
}

// =============================================================================
// Edge
// =============================================================================

// Edge connects a parent container to a nested container. Multiple edges
// between the same pair are allowed.
type Edge struct {
	ID     string `json:"id" bson:"id"`
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
}

// =============================================================================
// Graph
// =============================================================================

// Graph is the node/edge serialization used by files, the HTTP API and the
// tab store.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// NodeIndex maps node IDs to their index in Nodes.
func (g Graph) NodeIndex() map[string]int {
	m := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		m[n.ID] = i
	}
	return m
}

// DanglingEdges returns the edges whose source or target is not a node of g.
func (g Graph) DanglingEdges() []Edge {
	idx := g.NodeIndex()
	var out []Edge
	for _, e := range g.Edges {
		_, okS := idx[e.Source]
		_, okT := idx[e.Target]
		if !okS || !okT {
			out = append(out, e)
		}
	}
	return out
}
