// Package graph provides the wire types of the JSON document graph.
//
// A document is drawn as one [Node] per JSON object or array. Each node shows
// its scalar members as [Item] rows and links to nested containers with
// reference items and [Edge]s:
//
//	{
//	  "nodes": [
//	    {"id": "root", "data": {"label": "root", "items": [
//	      {"key": "name", "value": "\"ada\"", "type": "string"},
//	      {"key": "tags", "value": "[2]", "type": "reference", "targetNodeId": "root.tags"}
//	    ]}, "position": {"x": 0, "y": 0}},
//	    {"id": "root.tags", "data": {"label": "tags", "isArray": true}, "position": {"x": 0, "y": 0}}
//	  ],
//	  "edges": [{"id": "root->root.tags", "source": "root", "target": "root.tags"}]
//	}
//
// The same types travel through the layout worker protocol, the HTTP API and
// the tab store, so they carry both json and bson tags.
//
// # Item kinds
//
// [Kind] is a closed set. [NewItem] and JSON decoding reject anything else,
// which keeps renderers and height estimation free of type switches on
// arbitrary payloads.
//
// # Files
//
//	g, _ := graph.ReadGraphFile("doc.graph.json")
//	graph.WriteGraphFile(g, "out.json")
package graph
