package tabs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store persists snapshots.
type Store interface {
	// Load returns the stored snapshot, or nil, nil if nothing is stored.
	Load(ctx context.Context) (*Snapshot, error)

	// Save replaces the stored snapshot.
	Save(ctx context.Context, snap Snapshot) error

	// Close releases resources held by the store.
	Close() error
}

// =============================================================================
// Memory
// =============================================================================

// MemoryStore keeps the snapshot in memory.
type MemoryStore struct {
	mu    sync.Mutex
	snap  *Snapshot
	saves int
}

// NewMemoryStore returns an empty memory store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Load implements [Store].
func (m *MemoryStore) Load(context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.snap == nil {
		return nil, nil
	}
	c := cloneSnapshot(*m.snap)
	return &c, nil
}

// Save implements [Store].
func (m *MemoryStore) Save(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := cloneSnapshot(snap)
	m.snap = &c
	m.saves++
	return nil
}

// Saves returns how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Close implements [Store].
func (m *MemoryStore) Close() error { return nil }

// =============================================================================
// File
// =============================================================================

// FileStore keeps the snapshot in one JSON file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store writing to path. If path is empty it defaults
// to ~/.config/jsongraph/tabs.json. The parent directory is created.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("get config dir: %w", err)
		}
		path = filepath.Join(dir, "jsongraph", "tabs.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create tabs dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Load implements [Store].
func (f *FileStore) Load(context.Context) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read tabs file: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse tabs file: %w", err)
	}
	return &snap, nil
}

// Save implements [Store]. The file is replaced atomically.
func (f *FileStore) Save(_ context.Context, snap Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tabs: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write tabs file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace tabs file: %w", err)
	}
	return nil
}

// Path returns the file the store writes to.
func (f *FileStore) Path() string { return f.path }

// Close implements [Store].
func (f *FileStore) Close() error { return nil }

func cloneSnapshot(s Snapshot) Snapshot {
	out := Snapshot{ActiveTabID: s.ActiveTabID, Tabs: make([]Tab, len(s.Tabs))}
	for i, t := range s.Tabs {
		out.Tabs[i] = t.Clone()
	}
	return out
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
)
