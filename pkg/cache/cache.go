// Package cache provides the byte caches used to memoize document graphs and
// layout results.
//
// Three backends implement [Cache]:
//   - [NullCache]: caching disabled
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for server deployments
//
// Keys are produced by a [Keyer] so that every backend stores the same entry
// under the same name.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional TTL.
type Cache interface {
	// Get returns the value and true on a hit, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Default entry lifetimes.
const (
	// TTLGraph is how long a document graph built from JSON is kept.
	TTLGraph = 24 * time.Hour

	// TTLLayout is how long a layout result is kept.
	TTLLayout = 7 * 24 * time.Hour
)

// Keyer names cache entries.
type Keyer interface {
	// GraphKey names the graph built from a JSON document.
	GraphKey(contentHash string, opts GraphKeyOpts) string

	// LayoutKey names the positions computed for a graph.
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
}

// GraphKeyOpts are the build options that change the resulting graph.
type GraphKeyOpts struct {
	ExpandAll bool     `json:"expand_all,omitempty"`
	Expanded  []string `json:"expanded,omitempty"`
	MaxDepth  int      `json:"max_depth,omitempty"`
}

// LayoutKeyOpts are the layout inputs besides the graph itself.
type LayoutKeyOpts struct {
	// ConfigHash is the hash of the serialized layout configuration.
	ConfigHash      string             `json:"config_hash"`
	MeasuredHeights map[string]float64 `json:"measured_heights,omitempty"`
	ShowAll         []string           `json:"show_all,omitempty"`
}

// DefaultKeyer produces "graph:<sha256>" and "layout:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// GraphKey implements [Keyer].
func (DefaultKeyer) GraphKey(contentHash string, opts GraphKeyOpts) string {
	return hashKey("graph", contentHash, opts)
}

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}
