package graph_test

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pdjsoneditor/jsongraph/pkg/graph"
)

func ExampleNewItem() {
	item, err := graph.NewItem("age", "42", graph.KindNumber)
	fmt.Println(item.Key, item.Kind, err)

	_, err = graph.NewItem("age", "42", graph.Kind("int"))
	fmt.Println(err)
	// Output:
	// age number <nil>
	// unknown item kind: "int"
}

func ExampleWriteGraph() {
	g := graph.Graph{
		Nodes: []graph.Node{{ID: "root", Data: graph.NodeData{Label: "root"}}},
	}

	var buf bytes.Buffer
	if err := graph.WriteGraph(g, &buf); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Print(buf.String())
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "id": "root",
	//       "data": {
	//         "label": "root"
	//       },
	//       "position": {
	//         "x": 0,
	//         "y": 0
	//       }
	//     }
	//   ],
	//   "edges": []
	// }
}

func ExampleReadGraph() {
	input := `{
		"nodes": [
			{"id": "root", "data": {"label": "root"}},
			{"id": "root.items", "data": {"label": "items", "isArray": true}}
		],
		"edges": [{"id": "e", "source": "root", "target": "root.items"}]
	}`

	g, err := graph.ReadGraph(strings.NewReader(input))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Nodes:", len(g.Nodes))
	fmt.Println("Edges:", len(g.Edges))
	fmt.Println("Array:", g.Nodes[1].Data.IsArray)
	// Output:
	// Nodes: 2
	// Edges: 1
	// Array: true
}
