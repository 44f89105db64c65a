// Package worker runs layout passes behind a typed message boundary.
//
// Hosts post [Request] messages and receive [Event] messages: zero or more
// progress events followed by exactly one done or error event per accepted
// request. Requests are processed one at a time in arrival order, and the
// events of one request are never interleaved with another's.
//
// Unknown or malformed messages are ignored without a reply.
//
// # Usage
//
//	w := worker.New(runner, logger)
//	conn := w.Start(ctx)
//	defer conn.Close()
//
//	id, _ := conn.Post(ctx, worker.Request{Type: worker.TypeLayout, Nodes: nodes, Edges: edges})
//	for ev := range conn.Events() {
//	    if ev.ID == id && ev.Terminal() {
//	        break
//	    }
//	}
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	jgerrors "github.com/pdjsoneditor/jsongraph/pkg/errors"
	"github.com/pdjsoneditor/jsongraph/pkg/graph"
	"github.com/pdjsoneditor/jsongraph/pkg/layout"
	"github.com/pdjsoneditor/jsongraph/pkg/observability"
)

// ErrClosed is returned by [Conn.Post] after the connection was closed.
var ErrClosed = errors.New("worker closed")

// Layouter computes positions. Both *layout.Layouter and the cached
// *pipeline.Runner implement it.
type Layouter interface {
	Layout(ctx context.Context, req layout.Request, progress layout.ProgressFunc) ([]graph.Node, error)
}

// Worker turns requests into events.
type Worker struct {
	layouter Layouter
	logger   *log.Logger
}

// New returns a worker using l, logging to logger (or the default logger).
func New(l Layouter, logger *log.Logger) *Worker {
	if logger == nil {
		logger = log.Default()
	}
	if l == nil {
		l = layout.New(logger)
	}
	return &Worker{layouter: l, logger: logger}
}

// HandleMessage decodes a raw message and handles it. It reports false if the
// message was ignored.
func (w *Worker) HandleMessage(ctx context.Context, data []byte, emit func(Event)) bool {
	req, ok := DecodeRequest(data)
	if !ok {
		w.logger.Debug("ignoring message", "bytes", len(data))
		return false
	}
	w.Handle(ctx, req, emit)
	return true
}

// Handle runs one request and emits its events in order. Requests of an
// unknown type are ignored.
func (w *Worker) Handle(ctx context.Context, req Request, emit func(Event)) {
	if req.Type != TypeLayout {
		w.logger.Debug("ignoring message", "type", req.Type)
		return
	}
	hooks := observability.Worker()
	hooks.OnJobStart(ctx, req.ID, len(req.Nodes))
	start := time.Now()

	nodes, err := w.layouter.Layout(ctx, req.LayoutRequest(), func(p layout.Progress) {
		emit(ProgressEvent(req.ID, p))
	})
	if err != nil {
		code := jgerrors.GetCode(err)
		if code == "" {
			code = jgerrors.ErrCodeInternal
		}
		w.logger.Warn("layout failed", "id", req.ID, "code", code, "error", err)
		hooks.OnJobDone(ctx, req.ID, time.Since(start), string(code))
		emit(ErrorEvent(req.ID, err.Error(), string(code)))
		return
	}
	hooks.OnJobDone(ctx, req.ID, time.Since(start), "")
	emit(DoneEvent(req.ID, nodes))
}

// Run handles requests from in until in is closed or ctx is done, sending
// events to out. It does not close out.
func (w *Worker) Run(ctx context.Context, in <-chan Request, out chan<- Event) error {
	emit := func(e Event) {
		select {
		case out <- e:
		case <-ctx.Done():
		}
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req, ok := <-in:
			if !ok {
				return nil
			}
			w.Handle(ctx, req, emit)
		}
	}
}

// Conn is a running worker goroutine.
type Conn struct {
	in     chan Request
	out    chan Event
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Start runs the worker in a new goroutine until ctx is done or the
// connection is closed.
func (w *Worker) Start(ctx context.Context) *Conn {
	ctx, cancel := context.WithCancel(ctx)
	c := &Conn{
		in:     make(chan Request, 16),
		out:    make(chan Event, 64),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(c.done)
		defer close(c.out)
		if err := w.Run(ctx, c.in, c.out); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Debug("worker stopped", "error", err)
		}
	}()
	return c
}

// Post queues a request and returns its ID, generating one if req.ID is
// empty.
func (c *Conn) Post(ctx context.Context, req Request) (string, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	select {
	case <-c.done:
		return "", ErrClosed
	default:
	}
	select {
	case c.in <- req:
		return req.ID, nil
	case <-c.done:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Events returns the event stream. It is closed when the worker stops.
func (c *Conn) Events() <-chan Event { return c.out }

// Close stops the worker and waits for it to exit. Pending requests are
// dropped.
func (c *Conn) Close() error {
	c.once.Do(c.cancel)
	<-c.done
	return nil
}
