// Package tabs holds the open documents of an editing session.
//
// A [State] owns the tabs, the active tab and the per-tab view state. Every
// mutation schedules a debounced save through the injected [Store]; several
// stores are provided:
//   - [MemoryStore]: in-process, for tests and ephemeral servers
//   - [FileStore]: one JSON file, for the CLI
//   - [RedisStore]: shared state for multi-instance servers
//   - [MongoStore]: document database deployments
//
// # Usage
//
//	store, _ := tabs.NewFileStore("")
//	state := tabs.NewState(store, tabs.WithLogger(logger))
//	if err := state.Load(ctx); err != nil {
//	    return err
//	}
//	defer state.Close(ctx)
//
//	id, _ := state.AddTab("users", `{"users":[]}`)
//	state.OnChange(func(c tabs.Change) { relayout(c.TabID) })
package tabs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	jgerrors "github.com/pdjsoneditor/jsongraph/pkg/errors"
)

// DefaultDebounce is the delay between the last change and the save.
const DefaultDebounce = time.Second

// DefaultContent is the document of tabs created without content.
const DefaultContent = `{
  "id": 1,
  "name": "Leanne Graham",
  "email": "leanne@example.com",
  "address": {
    "street": "Kulas Light",
    "city": "Gwenborough",
    "geo": { "lat": "-37.3159", "lng": "81.1496" }
  },
  "tags": ["admin", "editor"],
  "active": true,
  "manager": null
}`

// Sentinel errors for tab operations.
var (
	// ErrNotFound is returned for an unknown tab ID.
	ErrNotFound = errors.New("tab not found")

	// ErrLastTab is returned when closing the only tab.
	ErrLastTab = errors.New("cannot close the last tab")
)

// ChangeKind says why the displayed graph must be refreshed.
type ChangeKind string

const (
	ChangeAdded      ChangeKind = "added"
	ChangeSwitched   ChangeKind = "switched"
	ChangeClosed     ChangeKind = "closed"
	ChangeDuplicated ChangeKind = "duplicated"
	ChangeReset      ChangeKind = "reset"
	ChangeLoaded     ChangeKind = "loaded"
)

// Change is delivered to listeners when the active tab changes.
type Change struct {
	Kind ChangeKind
	// TabID is the new active tab.
	TabID string
}

// Option configures a [State].
type Option func(*State)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option { return func(s *State) { s.logger = l } }

// WithDebounce sets the save delay. Zero or negative saves synchronously on
// every change.
func WithDebounce(d time.Duration) Option { return func(s *State) { s.debounce = d } }

// WithDefaultContent sets the document of tabs created without content.
func WithDefaultContent(content string) Option {
	return func(s *State) { s.defaultContent = content }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option { return func(s *State) { s.now = now } }

// State is the tab set of one session. It is safe for concurrent use.
type State struct {
	store          Store
	logger         *log.Logger
	debounce       time.Duration
	defaultContent string
	now            func() time.Time

	// saveMu orders store writes: a snapshot taken later is written later.
	saveMu sync.Mutex

	mu        sync.Mutex
	tabs      []Tab
	active    string
	timer     *time.Timer
	dirty     bool
	listeners []func(Change)
}

// NewState returns a state holding one default tab. A nil store keeps the
// tabs in memory only.
func NewState(store Store, opts ...Option) *State {
	if store == nil {
		store = NewMemoryStore()
	}
	s := &State{
		store:          store,
		logger:         log.Default(),
		debounce:       DefaultDebounce,
		defaultContent: DefaultContent,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tabs = []Tab{s.newTab("Tab 1", "")}
	s.active = s.tabs[0].ID
	return s
}

// OnChange registers a listener for active-tab changes. Listeners run after
// the state lock is released, on the goroutine that made the change.
func (s *State) OnChange(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Tabs returns copies of all tabs in display order.
func (s *State) Tabs() []Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Tab, len(s.tabs))
	for i, t := range s.tabs {
		out[i] = t.Clone()
	}
	return out
}

// Tab returns a copy of the tab with the given ID.
func (s *State) Tab(id string) (Tab, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(id)
	if i < 0 {
		return Tab{}, notFound(id)
	}
	return s.tabs[i].Clone(), nil
}

// Active returns a copy of the active tab.
func (s *State) Active() Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabs[s.activeIndex()].Clone()
}

// ActiveID returns the ID of the active tab.
func (s *State) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// AddTab appends a tab, makes it active and returns its ID. An empty name
// becomes "Tab N"; empty content becomes the default document.
func (s *State) AddTab(name, content string) (string, error) {
	if name != "" {
		if err := jgerrors.ValidateTabName(name); err != nil {
			return "", err
		}
	}
	s.mu.Lock()
	if name == "" {
		name = fmt.Sprintf("Tab %d", len(s.tabs)+1)
	}
	t := s.newTab(name, content)
	s.tabs = append(s.tabs, t)
	s.active = t.ID
	s.logger.Debug("added tab", "name", t.Name, "id", t.ID)
	return t.ID, s.commit(Change{Kind: ChangeAdded, TabID: t.ID})
}

// SwitchTab makes id the active tab.
func (s *State) SwitchTab(id string) error {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Warn("tab not found", "id", id)
		return notFound(id)
	}
	s.active = id
	s.logger.Debug("switched tab", "name", s.tabs[i].Name, "id", id)
	return s.commit(Change{Kind: ChangeSwitched, TabID: id})
}

// CloseTab removes a tab. The last tab cannot be closed. Closing the active
// tab activates the tab that took its place, or the new last tab.
func (s *State) CloseTab(id string) error {
	s.mu.Lock()
	i := s.index(id)
	switch {
	case i < 0:
		s.mu.Unlock()
		return notFound(id)
	case len(s.tabs) == 1:
		s.mu.Unlock()
		s.logger.Warn("cannot close the last tab")
		return jgerrors.Wrap(jgerrors.ErrCodeInvalidInput, ErrLastTab, "close tab %q", id)
	}
	name := s.tabs[i].Name
	s.tabs = slices.Delete(s.tabs, i, i+1)
	s.logger.Debug("closed tab", "name", name, "id", id)

	if s.active != id {
		return s.commit(Change{})
	}
	s.active = s.tabs[min(i, len(s.tabs)-1)].ID
	return s.commit(Change{Kind: ChangeClosed, TabID: s.active})
}

// RenameTab changes a tab's name.
func (s *State) RenameTab(id, name string) error {
	if err := jgerrors.ValidateTabName(name); err != nil {
		return err
	}
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return notFound(id)
	}
	s.logger.Debug("renamed tab", "from", s.tabs[i].Name, "to", name, "id", id)
	s.tabs[i].Name = name
	return s.commit(Change{})
}

// DuplicateTab appends a deep copy of a tab named "<name> (copy)", makes it
// active and returns its ID.
func (s *State) DuplicateTab(id string) (string, error) {
	s.mu.Lock()
	i := s.index(id)
	if i < 0 {
		s.mu.Unlock()
		return "", notFound(id)
	}
	t := s.tabs[i].Clone()
	t.ID = uuid.NewString()
	t.Name = s.tabs[i].Name + " (copy)"
	s.tabs = append(s.tabs, t)
	s.active = t.ID
	s.logger.Debug("duplicated tab", "from", s.tabs[i].Name, "id", t.ID)
	return t.ID, s.commit(Change{Kind: ChangeDuplicated, TabID: t.ID})
}

// UpdateActiveContent replaces the document of the active tab, re-checks that
// it parses and stamps the modification time.
func (s *State) UpdateActiveContent(content, source string) error {
	s.mu.Lock()
	t := &s.tabs[s.activeIndex()]
	t.JSONContent = content
	t.ParseError = parseError(content)
	now := s.now()
	t.Metadata.LastModified = &now
	if source != "" {
		t.Metadata.Source = source
	}
	return s.commit(Change{})
}

// UpdateActiveGraphState merges u into the active tab's graph state.
func (s *State) UpdateActiveGraphState(u GraphState) error {
	s.mu.Lock()
	t := &s.tabs[s.activeIndex()]
	t.GraphState = t.GraphState.merge(u)
	return s.commit(Change{})
}

// UpdateActiveEditorState merges u into the active tab's editor state.
func (s *State) UpdateActiveEditorState(u EditorState) error {
	s.mu.Lock()
	t := &s.tabs[s.activeIndex()]
	t.EditorState = t.EditorState.merge(u)
	return s.commit(Change{})
}

// UpdateActiveRequestSettings applies p to the active tab's request settings.
// The method and a non-empty URL are validated.
func (s *State) UpdateActiveRequestSettings(p RequestSettingsPatch) error {
	if p.Method != nil {
		if err := jgerrors.ValidateHTTPMethod(*p.Method); err != nil {
			return err
		}
	}
	if p.URL != nil && *p.URL != "" {
		if err := jgerrors.ValidateURL(*p.URL); err != nil {
			return err
		}
	}
	s.mu.Lock()
	t := &s.tabs[s.activeIndex()]
	t.RequestSettings = t.RequestSettings.apply(p)
	return s.commit(Change{})
}

// Reset drops every tab and starts over with one default tab.
func (s *State) Reset() error {
	s.mu.Lock()
	t := s.newTab("Tab 1", "")
	s.tabs = []Tab{t}
	s.active = t.ID
	s.logger.Debug("reset tabs")
	return s.commit(Change{Kind: ChangeReset, TabID: t.ID})
}

// Snapshot returns a copy of the state in its persisted form.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Load replaces the tabs with the stored snapshot. Nothing stored leaves the
// state unchanged. An unknown active ID falls back to the first tab, and an
// empty snapshot yields one default tab.
func (s *State) Load(ctx context.Context) error {
	snap, err := s.store.Load(ctx)
	if err != nil {
		return jgerrors.Wrap(jgerrors.ErrCodeStorage, err, "load tabs")
	}
	if snap == nil {
		return nil
	}

	s.mu.Lock()
	s.tabs = s.tabs[:0]
	for _, t := range snap.Tabs {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		t = t.Clone()
		t.ParseError = parseError(t.JSONContent)
		s.tabs = append(s.tabs, t)
	}
	if len(s.tabs) == 0 {
		s.tabs = append(s.tabs, s.newTab("Tab 1", ""))
	}
	s.active = snap.ActiveTabID
	if s.index(s.active) < 0 {
		s.active = s.tabs[0].ID
	}
	change := Change{Kind: ChangeLoaded, TabID: s.active}
	listeners := slices.Clone(s.listeners)
	s.logger.Debug("loaded tabs", "count", len(s.tabs))
	s.mu.Unlock()

	notify(listeners, change)
	return nil
}

// Save writes the state to the store now and cancels any pending debounced
// save.
func (s *State) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	snap := s.snapshotLocked()
	s.dirty = false
	s.mu.Unlock()

	if err := s.store.Save(ctx, snap); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return jgerrors.Wrap(jgerrors.ErrCodeStorage, err, "save tabs")
	}
	s.logger.Debug("saved tabs", "count", len(snap.Tabs))
	return nil
}

// Close flushes a pending save and closes the store.
func (s *State) Close(ctx context.Context) error {
	s.mu.Lock()
	dirty := s.dirty
	s.mu.Unlock()

	var saveErr error
	if dirty {
		saveErr = s.Save(ctx)
	}
	return errors.Join(saveErr, s.store.Close())
}

// commit finishes a mutation: it schedules the save, releases the lock and
// notifies listeners if the active tab changed. It must be called with s.mu
// held.
func (s *State) commit(c Change) error {
	s.dirty = true
	immediate := s.debounce <= 0
	if !immediate {
		if s.timer != nil {
			s.timer.Stop()
		}
		s.timer = time.AfterFunc(s.debounce, s.flush)
	}
	var listeners []func(Change)
	if c.Kind != "" {
		listeners = slices.Clone(s.listeners)
	}
	s.mu.Unlock()

	notify(listeners, c)
	if immediate {
		return s.Save(context.Background())
	}
	return nil
}

// flush is the debounced save.
func (s *State) flush() {
	if err := s.Save(context.Background()); err != nil {
		s.logger.Error("failed to save tabs", "error", err)
	}
}

func (s *State) snapshotLocked() Snapshot {
	snap := Snapshot{Tabs: make([]Tab, len(s.tabs)), ActiveTabID: s.active}
	for i, t := range s.tabs {
		snap.Tabs[i] = t.Clone()
	}
	return snap
}

func (s *State) newTab(name, content string) Tab {
	if content == "" {
		content = s.defaultContent
	}
	return Tab{
		ID:          uuid.NewString(),
		Name:        name,
		JSONContent: content,
		ParseError:  parseError(content),
		GraphState: GraphState{
			ExpandedNodes:     []string{},
			ShowAllItemsNodes: []string{},
		},
		RequestSettings: DefaultRequestSettings(),
	}
}

func (s *State) index(id string) int {
	return slices.IndexFunc(s.tabs, func(t Tab) bool { return t.ID == id })
}

// activeIndex returns the index of the active tab. The state always holds at
// least one tab and a valid active ID.
func (s *State) activeIndex() int {
	if i := s.index(s.active); i >= 0 {
		return i
	}
	s.active = s.tabs[0].ID
	return 0
}

func notify(listeners []func(Change), c Change) {
	for _, fn := range listeners {
		fn(c)
	}
}

func notFound(id string) error {
	return jgerrors.Wrap(jgerrors.ErrCodeTabNotFound, ErrNotFound, "tab %q", id)
}

func parseError(content string) string {
	var v any
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return err.Error()
	}
	return ""
}
