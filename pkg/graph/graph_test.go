package graph

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewItem(t *testing.T) {
	tests := []struct {
		kind    Kind
		wantErr bool
	}{
		{KindString, false},
		{KindNumber, false},
		{KindBoolean, false},
		{KindNull, false},
		{KindReference, false},
		{KindUndefined, false},
		{KindKey, false},
		{Kind("object"), true},
		{Kind(""), true},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			_, err := NewItem("k", "v", tt.kind)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewItem(%q) error = %v, wantErr %v", tt.kind, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrUnknownKind) {
				t.Errorf("error %v does not wrap ErrUnknownKind", err)
			}
		})
	}
}

func TestReadGraph(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantNodes int
		wantEdges int
		wantErr   bool
	}{
		{
			name:  "Empty",
			input: `{"nodes": [], "edges": []}`,
		},
		{
			name: "NodesAndEdges",
			input: `{
				"nodes": [
					{"id": "root", "data": {"label": "root", "isExpanded": true,
						"items": [{"key": "a", "value": "1", "type": "number"}]}},
					{"id": "root.b", "data": {"label": "b"}}
				],
				"edges": [{"id": "e1", "source": "root", "target": "root.b"}]
			}`,
			wantNodes: 2,
			wantEdges: 1,
		},
		{
			name:    "UnknownKind",
			input:   `{"nodes": [{"id": "x", "data": {"label": "x", "items": [{"key": "a", "value": "1", "type": "bigint"}]}}]}`,
			wantErr: true,
		},
		{
			name:    "InvalidJSON",
			input:   `{"nodes": [`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ReadGraph(strings.NewReader(tt.input))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReadGraph() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(g.Nodes) != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", len(g.Nodes), tt.wantNodes)
			}
			if len(g.Edges) != tt.wantEdges {
				t.Errorf("edges = %d, want %d", len(g.Edges), tt.wantEdges)
			}
		})
	}
}

func TestGraphFileRoundTrip(t *testing.T) {
	g := Graph{
		Nodes: []Node{
			{ID: "root", Data: NodeData{Label: "root", IsExpanded: true, Items: []Item{{Key: "n", Value: "1", Kind: KindNumber}}}},
			{ID: "root.list", Data: NodeData{Label: "list", IsArray: true}, Position: Position{X: 10, Y: 20}},
		},
		Edges: []Edge{{ID: "root->root.list", Source: "root", Target: "root.list"}},
	}
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}

	got, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if len(got.Nodes) != 2 || got.Nodes[1].Position != (Position{X: 10, Y: 20}) {
		t.Errorf("round trip lost data: %+v", got)
	}
	if got.Nodes[0].Data.Items[0].Kind != KindNumber {
		t.Errorf("item kind = %q", got.Nodes[0].Data.Items[0].Kind)
	}
}

func TestReadGraphFileNotFound(t *testing.T) {
	if _, err := ReadGraphFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadGraphFile(missing) error = %v, want ErrNotExist", err)
	}
}

func TestWriteGraph_EmptyArrays(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGraph(Graph{}, &buf); err != nil {
		t.Fatalf("WriteGraph: %v", err)
	}
	if !strings.Contains(buf.String(), `"nodes": []`) {
		t.Errorf("empty graph should encode nodes as [], got %s", buf.String())
	}
}

func TestNodeClone(t *testing.T) {
	n := Node{ID: "a", Data: NodeData{Items: []Item{{Key: "k", Value: "v", Kind: KindString}}}}
	c := n.Clone()
	c.Data.Items[0].Value = "changed"
	if n.Data.Items[0].Value != "v" {
		t.Error("Clone shares the items slice")
	}
}

func TestDanglingEdges(t *testing.T) {
	g := Graph{
		Nodes: []Node{{ID: "a"}, {ID: "b"}},
		Edges: []Edge{
			{ID: "1", Source: "a", Target: "b"},
			{ID: "2", Source: "a", Target: "ghost"},
		},
	}
	got := g.DanglingEdges()
	if len(got) != 1 || got[0].ID != "2" {
		t.Errorf("DanglingEdges() = %v", got)
	}
}
