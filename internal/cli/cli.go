package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pdjsoneditor/jsongraph/pkg/buildinfo"
	"github.com/pdjsoneditor/jsongraph/pkg/cache"
	"github.com/pdjsoneditor/jsongraph/pkg/config"
	"github.com/pdjsoneditor/jsongraph/pkg/pipeline"
	"github.com/pdjsoneditor/jsongraph/pkg/tabs"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "jsongraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any command runs.
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "jsongraph lays out JSON documents as node graphs",
		Long: `jsongraph turns a JSON document into a graph with one node per object or
array, lays it out with a layered (dagre-style) or Graphviz engine and renders
it as SVG, DOT or positioned JSON. It can also serve the layout worker over
HTTP and WebSocket.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	c.registerPersistentFlags(root)

	root.AddCommand(c.graphCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.tabsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	// Entries written by another release may encode layouts differently.
	keyer := cache.NewScopedKeyer(nil, buildinfo.Version+":")
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

// newCache opens the configured cache backend.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{URL: cfg.RedisURL, Prefix: cfg.Prefix})
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return rc, nil
	default:
		fc, err := cache.NewFileCache(cfg.Dir)
		if err != nil {
			c.Logger.Warn("cache disabled", "dir", cfg.Dir, "error", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	}
}

// openTabStore opens the configured tab store.
func (c *CLI) openTabStore(ctx context.Context) (tabs.Store, error) {
	cfg := c.Config.Tabs
	switch cfg.Store {
	case config.StoreMemory:
		return tabs.NewMemoryStore(), nil
	case config.StoreRedis:
		return tabs.NewRedisStore(ctx, cfg.RedisURL, cfg.RedisKey)
	case config.StoreMongo:
		return tabs.NewMongoStore(ctx, tabs.MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
			DocumentID: cfg.MongoDocument,
		})
	default:
		return tabs.NewFileStore(cfg.File)
	}
}

// openTabs loads the persisted tab state.
func (c *CLI) openTabs(ctx context.Context) (*tabs.State, error) {
	store, err := c.openTabStore(ctx)
	if err != nil {
		return nil, fmt.Errorf("open tab store: %w", err)
	}
	state := tabs.NewState(store,
		tabs.WithLogger(c.Logger),
		tabs.WithDebounce(c.Config.Tabs.Debounce.Duration))
	if err := state.Load(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load tabs: %w", err)
	}
	return state, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return parts
}
