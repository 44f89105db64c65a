package tabs

import (
	"slices"
	"time"
)

// DefaultRequestURL and DefaultRequestMethod seed the request settings of new
// tabs.
const (
	DefaultRequestURL    = "https://jsonplaceholder.typicode.com/todos/1"
	DefaultRequestMethod = "GET"
)

// Content sources recorded in [Metadata].
const (
	SourceFile   = "file"
	SourceURL    = "url"
	SourcePaste  = "paste"
	SourceManual = "manual"
)

// Tab is one open document.
type Tab struct {
	ID          string `json:"id" bson:"id"`
	Name        string `json:"name" bson:"name"`
	JSONContent string `json:"jsonContent" bson:"jsonContent"`
	// ParseError is set when JSONContent is not valid JSON.
	ParseError      string          `json:"parseError,omitempty" bson:"parseError,omitempty"`
	EditorState     EditorState     `json:"editorState" bson:"editorState"`
	GraphState      GraphState      `json:"graphState" bson:"graphState"`
	Metadata        Metadata        `json:"metadata" bson:"metadata"`
	RequestSettings RequestSettings `json:"requestSettings" bson:"requestSettings"`
}

// EditorState is the editor view of a tab. Nil fields are unknown; in an
// update they mean "unchanged".
type EditorState struct {
	CursorPosition *int       `json:"cursorPosition,omitempty" bson:"cursorPosition,omitempty"`
	Selection      *Selection `json:"selection,omitempty" bson:"selection,omitempty"`
	ScrollPosition *float64   `json:"scrollPosition,omitempty" bson:"scrollPosition,omitempty"`
}

// Selection is a text range in the editor.
type Selection struct {
	From int `json:"from" bson:"from"`
	To   int `json:"to" bson:"to"`
}

// GraphState is the graph view of a tab. The node sets are kept sorted and
// free of duplicates. In an update a nil slice or pointer means "unchanged"
// and an empty slice clears the set.
type GraphState struct {
	ExpandedNodes     []string `json:"expandedNodes" bson:"expandedNodes"`
	ShowAllItemsNodes []string `json:"showAllItemsNodes" bson:"showAllItemsNodes"`
	Zoom              *float64 `json:"zoom,omitempty" bson:"zoom,omitempty"`
	Pan               *Pan     `json:"pan,omitempty" bson:"pan,omitempty"`
}

// Pan is the viewport offset.
type Pan struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Metadata records where the content came from.
type Metadata struct {
	Source       string     `json:"source,omitempty" bson:"source,omitempty"`
	LastModified *time.Time `json:"lastModified,omitempty" bson:"lastModified,omitempty"`
}

// Header is one request header.
type Header struct {
	Key   string `json:"key" bson:"key"`
	Value string `json:"value" bson:"value"`
}

// RequestSettings configure the HTTP request that can fill a tab.
type RequestSettings struct {
	URL              string   `json:"url" bson:"url"`
	Method           string   `json:"method" bson:"method"`
	Headers          []Header `json:"headers" bson:"headers"`
	Body             string   `json:"body" bson:"body"`
	SendAsRawText    bool     `json:"sendAsRawText" bson:"sendAsRawText"`
	UseEditorContent bool     `json:"useEditorContent" bson:"useEditorContent"`
}

// RequestSettingsPatch is a partial update of [RequestSettings]. Nil fields
// are left unchanged.
type RequestSettingsPatch struct {
	URL              *string  `json:"url,omitempty"`
	Method           *string  `json:"method,omitempty"`
	Headers          []Header `json:"headers,omitempty"`
	Body             *string  `json:"body,omitempty"`
	SendAsRawText    *bool    `json:"sendAsRawText,omitempty"`
	UseEditorContent *bool    `json:"useEditorContent,omitempty"`
}

// DefaultRequestSettings returns the settings of a new tab.
func DefaultRequestSettings() RequestSettings {
	return RequestSettings{
		URL:     DefaultRequestURL,
		Method:  DefaultRequestMethod,
		Headers: []Header{},
	}
}

// Snapshot is the persisted form of a [State].
type Snapshot struct {
	Tabs        []Tab  `json:"tabs" bson:"tabs"`
	ActiveTabID string `json:"activeTabId" bson:"activeTabId"`
}

// Clone returns a deep copy of the tab.
func (t Tab) Clone() Tab {
	t.EditorState = t.EditorState.clone()
	t.GraphState = t.GraphState.clone()
	if t.Metadata.LastModified != nil {
		lm := *t.Metadata.LastModified
		t.Metadata.LastModified = &lm
	}
	t.RequestSettings.Headers = slices.Clone(t.RequestSettings.Headers)
	if t.RequestSettings.Headers == nil {
		t.RequestSettings.Headers = []Header{}
	}
	return t
}

func (e EditorState) clone() EditorState {
	if e.CursorPosition != nil {
		v := *e.CursorPosition
		e.CursorPosition = &v
	}
	if e.Selection != nil {
		v := *e.Selection
		e.Selection = &v
	}
	if e.ScrollPosition != nil {
		v := *e.ScrollPosition
		e.ScrollPosition = &v
	}
	return e
}

// merge overlays the non-nil fields of u.
func (e EditorState) merge(u EditorState) EditorState {
	u = u.clone()
	if u.CursorPosition != nil {
		e.CursorPosition = u.CursorPosition
	}
	if u.Selection != nil {
		e.Selection = u.Selection
	}
	if u.ScrollPosition != nil {
		e.ScrollPosition = u.ScrollPosition
	}
	return e
}

func (g GraphState) clone() GraphState {
	g.ExpandedNodes = normalizeSet(g.ExpandedNodes)
	g.ShowAllItemsNodes = normalizeSet(g.ShowAllItemsNodes)
	if g.Zoom != nil {
		v := *g.Zoom
		g.Zoom = &v
	}
	if g.Pan != nil {
		v := *g.Pan
		g.Pan = &v
	}
	return g
}

// merge overlays the non-nil fields of u.
func (g GraphState) merge(u GraphState) GraphState {
	if u.ExpandedNodes != nil {
		g.ExpandedNodes = normalizeSet(u.ExpandedNodes)
	}
	if u.ShowAllItemsNodes != nil {
		g.ShowAllItemsNodes = normalizeSet(u.ShowAllItemsNodes)
	}
	if u.Zoom != nil {
		v := *u.Zoom
		g.Zoom = &v
	}
	if u.Pan != nil {
		v := *u.Pan
		g.Pan = &v
	}
	return g
}

// Expanded returns ExpandedNodes as a set.
func (g GraphState) Expanded() map[string]bool { return toSet(g.ExpandedNodes) }

// ShowAll returns ShowAllItemsNodes as a set.
func (g GraphState) ShowAll() map[string]bool { return toSet(g.ShowAllItemsNodes) }

func (r RequestSettings) apply(p RequestSettingsPatch) RequestSettings {
	if p.URL != nil {
		r.URL = *p.URL
	}
	if p.Method != nil {
		r.Method = *p.Method
	}
	if p.Headers != nil {
		r.Headers = slices.Clone(p.Headers)
	}
	if p.Body != nil {
		r.Body = *p.Body
	}
	if p.SendAsRawText != nil {
		r.SendAsRawText = *p.SendAsRawText
	}
	if p.UseEditorContent != nil {
		r.UseEditorContent = *p.UseEditorContent
	}
	return r
}

// normalizeSet returns a sorted copy of ids without duplicates. It never
// returns nil, so sets always serialize as arrays.
func normalizeSet(ids []string) []string {
	out := slices.Clone(ids)
	slices.Sort(out)
	out = slices.Compact(out)
	if out == nil {
		out = []string{}
	}
	return out
}

func toSet(ids []string) map[string]bool {
	m := make(map[string]bool, len(ids))
	for _, id := range ids {
		m[id] = true
	}
	return m
}
