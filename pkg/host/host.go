// Package host is the render-side counterpart of the worker. It posts layout
// requests, mirrors their progress into a loading state and keeps the last
// good positions.
package host

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/pdjsoneditor/jsongraph/pkg/errors"
	"github.com/pdjsoneditor/jsongraph/pkg/graph"
	"github.com/pdjsoneditor/jsongraph/pkg/layout"
	"github.com/pdjsoneditor/jsongraph/pkg/worker"
)

// Phase is the loading phase shown to the user.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseBuild    Phase = "build"
	PhaseLayout   Phase = "layout"
	PhaseFinalize Phase = "finalize"
)

// Loading is the current loading state. Progress is in [0, 1].
type Loading struct {
	Phase    Phase   `json:"phase"`
	Progress float64 `json:"progress"`
}

// Conn is the worker side of the boundary; *worker.Conn implements it.
type Conn interface {
	Post(ctx context.Context, req worker.Request) (string, error)
	Events() <-chan worker.Event
}

// Snapshot is the graph state a relayout starts from.
type Snapshot struct {
	Nodes           []graph.Node
	Edges           []graph.Edge
	MeasuredHeights map[string]float64
	ShowAll         []string
	Config          layout.Config
}

// Host tracks one displayed graph.
type Host struct {
	conn   Conn
	logger *log.Logger

	// relayout serializes Relayout calls; they share the event stream.
	relayout sync.Mutex

	mu       sync.Mutex
	nodes    []graph.Node
	edges    []graph.Edge
	loading  Loading
	err      error
	onChange func(Loading)
}

// New returns a host talking to conn.
func New(conn Conn, logger *log.Logger) *Host {
	if logger == nil {
		logger = log.Default()
	}
	return &Host{conn: conn, logger: logger, loading: Loading{Phase: PhaseIdle}}
}

// OnLoadingChange registers fn to be called after every loading state change.
// fn runs on the goroutine calling Relayout and must not call back into the
// host.
func (h *Host) OnLoadingChange(fn func(Loading)) {
	h.mu.Lock()
	h.onChange = fn
	h.mu.Unlock()
}

// Loading returns the current loading state.
func (h *Host) Loading() Loading {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loading
}

// Nodes returns the positioned nodes of the last successful relayout.
func (h *Host) Nodes() []graph.Node {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]graph.Node, len(h.nodes))
	for i, n := range h.nodes {
		out[i] = n.Clone()
	}
	return out
}

// Edges returns the edges of the last successful relayout.
func (h *Host) Edges() []graph.Edge {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]graph.Edge(nil), h.edges...)
}

// Err returns the error of the last relayout, or nil if it succeeded.
func (h *Host) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Relayout lays out snap and applies the result. On failure the previous
// positions are kept and the error is returned and recorded. The loading state
// is idle again when Relayout returns.
func (h *Host) Relayout(ctx context.Context, snap Snapshot) ([]graph.Node, error) {
	h.relayout.Lock()
	defer h.relayout.Unlock()

	// An empty graph is still a graph; nil would make the worker ignore it.
	if snap.Nodes == nil {
		snap.Nodes = []graph.Node{}
	}
	if snap.Edges == nil {
		snap.Edges = []graph.Edge{}
	}
	cfg := snap.Config
	id, err := h.conn.Post(ctx, worker.Request{
		Type:                worker.TypeLayout,
		Nodes:               snap.Nodes,
		Edges:               snap.Edges,
		MeasuredHeights:     snap.MeasuredHeights,
		ShowAllItemsNodeIDs: snap.ShowAll,
		Config:              &cfg,
	})
	if err != nil {
		return nil, h.fail(err)
	}
	h.setLoading(Loading{Phase: PhaseBuild})

	for {
		select {
		case <-ctx.Done():
			return nil, h.fail(ctx.Err())
		case ev, ok := <-h.conn.Events():
			if !ok {
				return nil, h.fail(worker.ErrClosed)
			}
			if ev.ID != id {
				h.logger.Debug("dropping stale event", "id", ev.ID, "type", ev.Type)
				continue
			}
			switch ev.Type {
			case worker.TypeProgress:
				h.setLoading(Loading{Phase: Phase(ev.Phase), Progress: ev.Progress})
			case worker.TypeDone:
				h.setLoading(Loading{Phase: PhaseFinalize, Progress: 1})
				h.mu.Lock()
				h.nodes = ev.Nodes
				h.edges = append([]graph.Edge(nil), snap.Edges...)
				h.err = nil
				h.mu.Unlock()
				h.setLoading(Loading{Phase: PhaseIdle})
				return h.Nodes(), nil
			case worker.TypeError:
				code := errors.Code(ev.Code)
				if code == "" {
					code = errors.ErrCodeInternal
				}
				return nil, h.fail(errors.New(code, "%s", ev.Error))
			}
		}
	}
}

func (h *Host) fail(err error) error {
	h.logger.Warn("relayout failed, keeping previous positions", "error", err)
	h.mu.Lock()
	h.err = err
	h.mu.Unlock()
	h.setLoading(Loading{Phase: PhaseIdle})
	return err
}

func (h *Host) setLoading(l Loading) {
	h.mu.Lock()
	h.loading = l
	fn := h.onChange
	h.mu.Unlock()
	if fn != nil {
		fn(l)
	}
}
