package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type recorder struct {
	Noop
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.events = append(r.events, s)
	r.mu.Unlock()
}

func (r *recorder) OnCacheHit(_ context.Context, keyType string) { r.add("hit:" + keyType) }
func (r *recorder) OnJobDone(_ context.Context, id string, _ time.Duration, code string) {
	r.add("done:" + id + ":" + code)
}

func TestRegistry(t *testing.T) {
	t.Cleanup(Reset)
	ctx := context.Background()

	if _, ok := Cache().(Noop); !ok {
		t.Fatalf("default cache hooks = %T, want Noop", Cache())
	}

	r := &recorder{}
	SetAll(r)
	Cache().OnCacheHit(ctx, "layout")
	Worker().OnJobDone(ctx, "r1", time.Millisecond, "")
	Layout().OnLayoutStart(ctx, "dagre", 3, 2)

	want := []string{"hit:layout", "done:r1:"}
	if strings.Join(r.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", r.events, want)
	}

	SetCacheHooks(nil)
	if Cache() != CacheHooks(r) {
		t.Error("a nil registration should keep the current hooks")
	}

	Reset()
	if _, ok := Worker().(Noop); !ok {
		t.Errorf("after Reset worker hooks = %T, want Noop", Worker())
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	t.Cleanup(Reset)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetHTTPHooks(Noop{})
		}()
		go func() {
			defer wg.Done()
			HTTP().OnRequest(context.Background(), "GET", "/healthz")
		}()
	}
	wg.Wait()
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	h := LogHooks{Logger: log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})}
	ctx := context.Background()

	h.OnLayoutComplete(ctx, "dagre", time.Second, errors.New("cycle"))
	h.OnJobDone(ctx, "r7", time.Millisecond, "LAYOUT_FAILED")

	out := buf.String()
	for _, want := range []string{"layout failed", "job failed", "r7", "LAYOUT_FAILED"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	quiet := LogHooks{Logger: log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})}
	quiet.OnCacheMiss(ctx, "graph")
	if buf.Len() != 0 {
		t.Errorf("hooks should log at debug level only, got %q", buf.String())
	}
}
