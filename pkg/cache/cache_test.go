package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var errPermanent = errors.New("permanent")

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "graph:abc", []byte(`{"nodes":[]}`), TTLGraph); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if data, hit, err := c.Get(ctx, "graph:abc"); hit || data != nil || err != nil {
		t.Errorf("Get after Set = %q, %v, %v; want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "graph:abc"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if _, ok := c.(Clearer); ok {
		t.Error("NullCache has nothing to clear")
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	gk1 := k.GraphKey("abc", GraphKeyOpts{MaxDepth: 10})
	gk2 := k.GraphKey("abc", GraphKeyOpts{MaxDepth: 20})
	if gk1 == gk2 {
		t.Error("Different GraphKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(gk1, "graph:") {
		t.Errorf("GraphKey should start with graph: got %s", gk1)
	}
	if gk1 != k.GraphKey("abc", GraphKeyOpts{MaxDepth: 10}) {
		t.Error("GraphKey should be deterministic")
	}

	lk1 := k.LayoutKey("hash123", LayoutKeyOpts{ConfigHash: "c1"})
	lk2 := k.LayoutKey("hash123", LayoutKeyOpts{ConfigHash: "c2"})
	if lk1 == lk2 {
		t.Error("Different config hashes should produce different keys")
	}
	lk3 := k.LayoutKey("hash123", LayoutKeyOpts{
		ConfigHash:      "c1",
		MeasuredHeights: map[string]float64{"root": 120},
	})
	if lk1 == lk3 {
		t.Error("Measured heights should change the layout key")
	}
	if !strings.HasPrefix(lk1, "layout:") {
		t.Errorf("LayoutKey should start with layout: got %s", lk1)
	}
}

func TestDefaultKeyer_MapOrder(t *testing.T) {
	k := NewDefaultKeyer()
	a := map[string]float64{}
	b := map[string]float64{}
	ids := []string{"root", "root.a", "root.b", "root.c"}
	for i, id := range ids {
		a[id] = float64(i)
		b[ids[len(ids)-1-i]] = float64(len(ids) - 1 - i)
	}
	ka := k.LayoutKey("g", LayoutKeyOpts{ConfigHash: "c", MeasuredHeights: a})
	kb := k.LayoutKey("g", LayoutKeyOpts{ConfigHash: "c", MeasuredHeights: b})
	if ka != kb {
		t.Errorf("keys differ for equal maps: %s vs %s", ka, kb)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "user:123:")

	graphKey := scoped.GraphKey("abc", GraphKeyOpts{})
	if graphKey != "user:123:"+inner.GraphKey("abc", GraphKeyOpts{}) {
		t.Errorf("ScopedKeyer GraphKey should be prefixed: %s", graphKey)
	}
	layoutKey := scoped.LayoutKey("abc", LayoutKeyOpts{ConfigHash: "c"})
	if !strings.HasPrefix(layoutKey, "user:123:layout:") {
		t.Errorf("ScopedKeyer LayoutKey should be prefixed: %s", layoutKey)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.GraphKey("abc", GraphKeyOpts{})
	if key != "prefix:"+NewDefaultKeyer().GraphKey("abc", GraphKeyOpts{}) {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestHashJSON(t *testing.T) {
	h1, err := HashJSON(map[string]int{"a": 1, "b": 2})
	if err != nil {
		t.Fatalf("HashJSON: %v", err)
	}
	h2, _ := HashJSON(map[string]int{"b": 2, "a": 1})
	if h1 != h2 {
		t.Error("HashJSON should not depend on map order")
	}
	if _, err := HashJSON(func() {}); err == nil {
		t.Error("HashJSON should fail on unsupported values")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit {
		t.Fatalf("Get(key) = hit %v, err %v", hit, err)
	}
	if string(data) != "value" {
		t.Errorf("Get(key) = %q, want value", data)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("entry should be gone after Delete")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "graph:short", []byte("x"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "layout:forever", []byte("x"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "graph:short"); !hit {
		t.Error("entry should live until its TTL")
	}

	now = now.Add(2 * time.Hour)
	if _, hit, _ := c.Get(ctx, "graph:short"); hit {
		t.Error("expired entry should be a miss")
	}
	if _, err := os.Stat(c.path("graph:short")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
	if _, hit, _ := c.Get(ctx, "layout:forever"); !hit {
		t.Error("entry without TTL should not expire")
	}
}

func TestFileCache_NoTempFilesLeft(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := c.Set(ctx, "layout:k", []byte{byte(i)}, 0); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(c.path("layout:k")), ".tmp-*"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
	data, hit, _ := c.Get(ctx, "layout:k")
	if !hit || len(data) != 1 || data[0] != 4 {
		t.Errorf("Get = %v, %v; want the last write", data, hit)
	}
}

func TestFileCache_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCache_Clear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, err := NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	n, err := c.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d entries, want 3", n)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("cache dir should survive Clear: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir has %d leftover entries", len(entries))
	}
	if c.Dir() != dir {
		t.Errorf("Dir() = %s, want %s", c.Dir(), dir)
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("JSONGRAPH_TEST_REDIS_URL")
	if url == "" {
		t.Skip("JSONGRAPH_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, RedisConfig{URL: url, Prefix: "jsongraph-test:"})
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	defer c.Close()
	if _, err := c.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Fatalf("Get on empty cache: hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	n, err := c.Clear(ctx)
	if err != nil || n != 1 {
		t.Errorf("Clear = %d, %v; want 1, nil", n, err)
	}
}

func TestRedisCache_ClearNeedsPrefix(t *testing.T) {
	c := NewRedisCacheFromClient(nil, "")
	if _, err := c.Clear(context.Background()); err == nil {
		t.Error("Clear without prefix should fail")
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("Retryable(ErrNetwork) = %v, should be retryable and wrap ErrNetwork", err)
	}
	if IsRetryable(errPermanent) {
		t.Error("plain errors are not retryable")
	}
}

func TestBackoff(t *testing.T) {
	fast := Backoff{Attempts: 3, Delay: time.Millisecond}
	transient := Retryable(ErrNetwork)

	tests := []struct {
		name      string
		failures  []error
		wantErr   error
		wantCalls int
	}{
		{"success", nil, nil, 1},
		{"permanent failure", []error{errPermanent}, errPermanent, 1},
		{"recovers", []error{transient}, nil, 2},
		{"gives up", []error{transient, transient, transient, transient}, ErrNetwork, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := fast.Do(context.Background(), func() error {
				calls++
				if calls <= len(tt.failures) {
					return tt.failures[calls-1]
				}
				return nil
			})
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Backoff{Attempts: 5, Delay: time.Hour}.Do(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
