package worker

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/pdjsoneditor/jsongraph/pkg/graph"
	"github.com/pdjsoneditor/jsongraph/pkg/layout"
)

// MessageType tags every message crossing the worker boundary.
type MessageType string

const (
	TypeLayout   MessageType = "layout"
	TypeProgress MessageType = "progress"
	TypeDone     MessageType = "done"
	TypeError    MessageType = "error"
)

// MeasuredHeights maps node IDs to heights measured by the host. On the wire
// it is an array of [id, height] pairs.
type MeasuredHeights map[string]float64

// MarshalJSON writes the pairs sorted by ID.
func (m MeasuredHeights) MarshalJSON() ([]byte, error) {
	pairs := make([][2]any, 0, len(m))
	for _, id := range slices.Sorted(maps.Keys(m)) {
		pairs = append(pairs, [2]any{id, m[id]})
	}
	return json.Marshal(pairs)
}

// UnmarshalJSON reads an array of [id, height] pairs. Later pairs win.
func (m *MeasuredHeights) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}
	var pairs [][]json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("measuredHeights: %w", err)
	}
	out := make(MeasuredHeights, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 {
			return fmt.Errorf("measuredHeights[%d]: want [id, height], got %d elements", i, len(p))
		}
		var id string
		var h float64
		if err := json.Unmarshal(p[0], &id); err != nil {
			return fmt.Errorf("measuredHeights[%d] id: %w", i, err)
		}
		if err := json.Unmarshal(p[1], &h); err != nil {
			return fmt.Errorf("measuredHeights[%d] height: %w", i, err)
		}
		out[id] = h
	}
	*m = out
	return nil
}

// Request asks the worker for a layout.
type Request struct {
	Type MessageType `json:"type"`
	// ID is echoed on every event of the request. Optional.
	ID                  string          `json:"id,omitempty"`
	Nodes               []graph.Node    `json:"nodes"`
	Edges               []graph.Edge    `json:"edges"`
	MeasuredHeights     MeasuredHeights `json:"measuredHeights,omitempty"`
	ShowAllItemsNodeIDs []string        `json:"showAllItemsNodeIds,omitempty"`
	// Config defaults to [layout.Default] when absent.
	Config *layout.Config `json:"config,omitempty"`
}

// LayoutRequest converts the message into a layout request.
func (r Request) LayoutRequest() layout.Request {
	cfg := layout.Default()
	if r.Config != nil {
		cfg = *r.Config
	}
	var showAll map[string]bool
	if len(r.ShowAllItemsNodeIDs) > 0 {
		showAll = make(map[string]bool, len(r.ShowAllItemsNodeIDs))
		for _, id := range r.ShowAllItemsNodeIDs {
			showAll[id] = true
		}
	}
	return layout.Request{
		Nodes:           r.Nodes,
		Edges:           r.Edges,
		MeasuredHeights: r.MeasuredHeights,
		ShowAll:         showAll,
		Config:          cfg,
	}
}

// HasGraph reports whether both nodes and edges were sent. A JSON array
// decodes to a non-nil slice even when empty; a missing or null field stays
// nil.
func (r Request) HasGraph() bool {
	return r.Nodes != nil && r.Edges != nil
}

// DecodeRequest parses a raw message. It reports false for malformed JSON,
// for any type other than "layout" and for a layout without nodes or edges;
// such messages are to be ignored.
func DecodeRequest(data []byte) (Request, bool) {
	var head struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil || head.Type != TypeLayout {
		return Request{}, false
	}
	var req Request
	if err := json.Unmarshal(data, &req); err != nil || !req.HasGraph() {
		return Request{}, false
	}
	return req, true
}

// Event is a message from the worker. Which fields are set depends on Type.
type Event struct {
	Type MessageType
	ID   string

	// progress
	Phase    layout.Phase
	Progress float64

	// done
	Nodes []graph.Node

	// error
	Error string
	Code  string
}

// ProgressEvent returns a progress event.
func ProgressEvent(id string, p layout.Progress) Event {
	return Event{Type: TypeProgress, ID: id, Phase: p.Phase, Progress: p.Value}
}

// DoneEvent returns a done event.
func DoneEvent(id string, nodes []graph.Node) Event {
	if nodes == nil {
		nodes = []graph.Node{}
	}
	return Event{Type: TypeDone, ID: id, Nodes: nodes}
}

// ErrorEvent returns an error event.
func ErrorEvent(id string, msg, code string) Event {
	return Event{Type: TypeError, ID: id, Error: msg, Code: code}
}

// Terminal reports whether e ends its request.
func (e Event) Terminal() bool { return e.Type == TypeDone || e.Type == TypeError }

type progressWire struct {
	Type     MessageType  `json:"type"`
	ID       string       `json:"id,omitempty"`
	Phase    layout.Phase `json:"phase"`
	Progress float64      `json:"progress"`
}

type doneWire struct {
	Type  MessageType  `json:"type"`
	ID    string       `json:"id,omitempty"`
	Nodes []graph.Node `json:"nodes"`
}

type errorWire struct {
	Type  MessageType `json:"type"`
	ID    string      `json:"id,omitempty"`
	Error string      `json:"error"`
	Code  string      `json:"code,omitempty"`
}

// MarshalJSON writes only the fields of the event's type.
func (e Event) MarshalJSON() ([]byte, error) {
	switch e.Type {
	case TypeProgress:
		return json.Marshal(progressWire{e.Type, e.ID, e.Phase, e.Progress})
	case TypeDone:
		nodes := e.Nodes
		if nodes == nil {
			nodes = []graph.Node{}
		}
		return json.Marshal(doneWire{e.Type, e.ID, nodes})
	case TypeError:
		return json.Marshal(errorWire{e.Type, e.ID, e.Error, e.Code})
	}
	return nil, fmt.Errorf("unknown event type %q", e.Type)
}

// UnmarshalJSON reads any of the three event shapes.
func (e *Event) UnmarshalJSON(data []byte) error {
	var w struct {
		Type     MessageType  `json:"type"`
		ID       string       `json:"id"`
		Phase    layout.Phase `json:"phase"`
		Progress float64      `json:"progress"`
		Nodes    []graph.Node `json:"nodes"`
		Error    string       `json:"error"`
		Code     string       `json:"code"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case TypeProgress, TypeDone, TypeError:
	default:
		return fmt.Errorf("unknown event type %q", w.Type)
	}
	*e = Event(w)
	return nil
}
