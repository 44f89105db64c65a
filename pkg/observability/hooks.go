// Package observability lets a binary observe layout passes, cache traffic,
// worker jobs and HTTP requests without the library packages depending on a
// metrics or tracing framework.
//
// Libraries emit events through the registered hooks:
//
//	hooks := observability.Layout()
//	hooks.OnLayoutStart(ctx, "dagre", len(nodes), len(edges))
//	// ... run the pass ...
//	hooks.OnLayoutComplete(ctx, "dagre", time.Since(start), err)
//
// Binaries register implementations once at startup, before any work runs.
// Until then every hook is a no-op. [LogHooks] implements all of them on top
// of a charmbracelet/log logger, except HTTP which the server logs itself:
//
//	observability.SetAll(observability.LogHooks{Logger: logger})
package observability

import (
	"context"
	"sync"
	"time"
)

// LayoutHooks receives events from layout passes.
type LayoutHooks interface {
	OnLayoutStart(ctx context.Context, engine string, nodeCount, edgeCount int)
	OnLayoutComplete(ctx context.Context, engine string, duration time.Duration, err error)
}

// CacheHooks receives cache lookups and writes. keyType is "graph" or
// "layout".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// WorkerHooks receives the lifecycle of worker requests. code is empty for
// requests that ended with a done event.
type WorkerHooks interface {
	OnJobStart(ctx context.Context, id string, nodeCount int)
	OnJobDone(ctx context.Context, id string, duration time.Duration, code string)
}

// HTTPHooks receives requests handled by the HTTP server. OnRequest gets the
// raw URL path; OnResponse gets the matched route pattern.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// Noop implements every hook interface and does nothing.
type Noop struct{}

func (Noop) OnLayoutStart(context.Context, string, int, int)                {}
func (Noop) OnLayoutComplete(context.Context, string, time.Duration, error) {}
func (Noop) OnCacheHit(context.Context, string)                             {}
func (Noop) OnCacheMiss(context.Context, string)                            {}
func (Noop) OnCacheSet(context.Context, string, int)                        {}
func (Noop) OnJobStart(context.Context, string, int)                        {}
func (Noop) OnJobDone(context.Context, string, time.Duration, string)       {}
func (Noop) OnRequest(context.Context, string, string)                      {}
func (Noop) OnResponse(context.Context, string, string, int, time.Duration) {}

// registry holds one registered hook implementation.
type registry[T any] struct {
	mu sync.RWMutex
	h  T
}

func (r *registry[T]) get() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.h
}

func (r *registry[T]) set(h T) {
	r.mu.Lock()
	r.h = h
	r.mu.Unlock()
}

var (
	layoutHooks = &registry[LayoutHooks]{h: Noop{}}
	cacheHooks  = &registry[CacheHooks]{h: Noop{}}
	workerHooks = &registry[WorkerHooks]{h: Noop{}}
	httpHooks   = &registry[HTTPHooks]{h: Noop{}}
)

// SetLayoutHooks registers h. A nil h is ignored.
func SetLayoutHooks(h LayoutHooks) {
	if h != nil {
		layoutHooks.set(h)
	}
}

// SetCacheHooks registers h. A nil h is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		cacheHooks.set(h)
	}
}

// SetWorkerHooks registers h. A nil h is ignored.
func SetWorkerHooks(h WorkerHooks) {
	if h != nil {
		workerHooks.set(h)
	}
}

// SetHTTPHooks registers h. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		httpHooks.set(h)
	}
}

// All is satisfied by types implementing every hook interface.
type All interface {
	LayoutHooks
	CacheHooks
	WorkerHooks
	HTTPHooks
}

// SetAll registers h for every event category.
func SetAll(h All) {
	SetLayoutHooks(h)
	SetCacheHooks(h)
	SetWorkerHooks(h)
	SetHTTPHooks(h)
}

func Layout() LayoutHooks { return layoutHooks.get() }
func Cache() CacheHooks   { return cacheHooks.get() }
func Worker() WorkerHooks { return workerHooks.get() }
func HTTP() HTTPHooks     { return httpHooks.get() }

// Reset restores the no-op hooks.
func Reset() { SetAll(Noop{}) }
