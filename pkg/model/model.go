// Package model turns a JSON document into the node/edge graph that the
// layout engine positions.
//
// Every object and array becomes a [graph.Node]. Scalar members are shown as
// items of their container; nested containers are shown as reference items
// pointing at their own node, with an edge from parent to child. Node IDs are
// document paths ("root", "root.users", "root.users[0]") so they stay stable
// across edits that do not move a value.
package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/pdjsoneditor/jsongraph/pkg/graph"
)

// RootID is the ID of the node built for the document root.
const RootID = "root"

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Options controls which nodes are expanded and how deep the walk goes.
type Options struct {
	// ExpandAll marks every node expanded. Otherwise only IDs in Expanded are.
	ExpandAll bool
	Expanded  map[string]bool
	// MaxDepth stops emitting nested nodes below this depth (root is depth 0).
	// Containers past the limit stay as reference items that are not
	// expanded. Zero means unlimited.
	MaxDepth int
}

func (o Options) expanded(id string) bool {
	return o.ExpandAll || o.Expanded[id]
}

// Build parses a JSON document and returns its graph. A scalar root yields a
// single node with one item.
func Build(data []byte, opts Options) (graph.Graph, error) {
	v, err := decode(data)
	if err != nil {
		return graph.Graph{}, fmt.Errorf("parse json: %w", err)
	}
	b := &builder{opts: opts}
	b.container(RootID, RootID, "$", v, 0)
	return graph.Graph{Nodes: b.nodes, Edges: b.edges}, nil
}

type builder struct {
	opts  Options
	nodes []graph.Node
	edges []graph.Edge
}

// container emits the node for v and recurses into nested containers.
func (b *builder) container(id, label, path string, v any, depth int) {
	node := graph.Node{
		ID: id,
		Data: graph.NodeData{
			Label:      label,
			IsExpanded: b.opts.expanded(id),
			NodeID:     id,
		},
	}
	idx := len(b.nodes)
	b.nodes = append(b.nodes, node)

	var items []graph.Item
	switch t := v.(type) {
	case object:
		for _, m := range t {
			items = append(items, b.member(id, memberRef(id, m.Key), m.Key, memberRef(path, m.Key), m.Value, depth))
		}
	case []any:
		b.nodes[idx].Data.IsArray = true
		for i, elem := range t {
			key := strconv.Itoa(i)
			items = append(items, b.member(id, fmt.Sprintf("%s[%d]", id, i), key, fmt.Sprintf("%s[%d]", path, i), elem, depth))
		}
	default:
		items = append(items, scalarItem("value", path, v))
	}
	b.nodes[idx].Data.Items = items
}

func (b *builder) member(parentID, childID, key, path string, v any, depth int) graph.Item {
	switch t := v.(type) {
	case object, []any:
		item := graph.Item{
			Key:          key,
			Value:        summary(t),
			Kind:         graph.KindReference,
			Path:         path,
			TargetNodeID: childID,
		}
		if b.opts.MaxDepth > 0 && depth+1 > b.opts.MaxDepth {
			return item
		}
		item.IsReferenceExpanded = true
		b.edges = append(b.edges, graph.Edge{
			ID:     parentID + "->" + childID,
			Source: parentID,
			Target: childID,
		})
		b.container(childID, key, path, t, depth+1)
		return item
	default:
		return scalarItem(key, path, v)
	}
}

func scalarItem(key, path string, v any) graph.Item {
	item := graph.Item{Key: key, Path: path}
	switch t := v.(type) {
	case nil:
		item.Kind, item.Value = graph.KindNull, "null"
	case bool:
		item.Kind, item.Value = graph.KindBoolean, strconv.FormatBool(t)
	case json.Number:
		item.Kind, item.Value = graph.KindNumber, t.String()
	case string:
		item.Kind, item.Value = graph.KindString, strconv.Quote(t)
	default:
		item.Kind, item.Value = graph.KindUndefined, "undefined"
	}
	return item
}

func summary(v any) string {
	switch t := v.(type) {
	case object:
		return fmt.Sprintf("{%d}", len(t))
	case []any:
		return fmt.Sprintf("[%d]", len(t))
	}
	return ""
}

// memberRef appends an object key to a node ID or path, using bracket
// notation for keys that are not identifiers.
func memberRef(parent, key string) string {
	if identifier.MatchString(key) {
		return parent + "." + key
	}
	return parent + "[" + strconv.Quote(key) + "]"
}
