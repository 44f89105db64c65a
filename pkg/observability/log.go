package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports layout, cache and worker events as debug lines on
// Logger. HTTP events are no-ops since the server logs its requests itself.
type LogHooks struct {
	Noop
	Logger *log.Logger
}

var _ All = LogHooks{}

func (h LogHooks) OnLayoutStart(_ context.Context, engine string, nodeCount, edgeCount int) {
	h.Logger.Debug("layout start", "engine", engine, "nodes", nodeCount, "edges", edgeCount)
}

func (h LogHooks) OnLayoutComplete(_ context.Context, engine string, d time.Duration, err error) {
	if err != nil {
		h.Logger.Debug("layout failed", "engine", engine, "duration", d, "error", err)
		return
	}
	h.Logger.Debug("layout complete", "engine", engine, "duration", d)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnJobStart(_ context.Context, id string, nodeCount int) {
	h.Logger.Debug("job start", "id", id, "nodes", nodeCount)
}

func (h LogHooks) OnJobDone(_ context.Context, id string, d time.Duration, code string) {
	if code != "" {
		h.Logger.Debug("job failed", "id", id, "duration", d, "code", code)
		return
	}
	h.Logger.Debug("job done", "id", id, "duration", d)
}
