package tabs

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// storeRoundTrip saves a snapshot and loads it back.
func storeRoundTrip(t *testing.T, store Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s := newTestState(store)
	s.AddTab("remote", `{"ok":true}`)
	s.UpdateActiveGraphState(GraphState{ExpandedNodes: []string{"root"}})
	want := s.Snapshot()

	snap, err := store.Load(ctx)
	if err != nil || snap == nil {
		t.Fatalf("Load = %v, %v", snap, err)
	}
	if snap.ActiveTabID != want.ActiveTabID || len(snap.Tabs) != 2 || snap.Tabs[1].Name != "remote" {
		t.Errorf("loaded %+v, want %+v", snap, want)
	}
}

func TestRedisStore(t *testing.T) {
	url := os.Getenv("JSONGRAPH_TEST_REDIS_URL")
	if url == "" {
		t.Skip("JSONGRAPH_TEST_REDIS_URL not set")
	}
	store, err := NewRedisStore(context.Background(), url, "jsongraph-test:tabs:"+uuid.NewString())
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer store.Close()

	if snap, err := store.Load(context.Background()); snap != nil || err != nil {
		t.Fatalf("fresh key: %v, %v", snap, err)
	}
	storeRoundTrip(t, store)
	store.client.Del(context.Background(), store.key)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("JSONGRAPH_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("JSONGRAPH_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	store, err := NewMongoStore(ctx, MongoConfig{URI: uri, Database: "jsongraph_test", DocumentID: uuid.NewString()})
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer store.Close()
	defer store.coll.Drop(ctx)

	if snap, err := store.Load(ctx); snap != nil || err != nil {
		t.Fatalf("fresh document: %v, %v", snap, err)
	}
	storeRoundTrip(t, store)
}

func TestNewRedisStore_BadURL(t *testing.T) {
	if _, err := NewRedisStore(context.Background(), "not-a-url", ""); err == nil {
		t.Error("bad URL should fail")
	}
}
