// Package config loads jsongraph settings from a TOML file and the
// environment.
//
// Resolution order, later wins:
//
//  1. [Default]
//  2. the TOML file ($XDG_CONFIG_HOME/jsongraph/config.toml unless a path is given)
//  3. JSONGRAPH_* environment variables
//
// A missing default file is not an error; a missing explicit file is.
// Unknown keys in the file are rejected so typos do not go unnoticed.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/pdjsoneditor/jsongraph/pkg/layout"
)

const appName = "jsongraph"

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Tab store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreMongo  = "mongo"
)

// Config is the full application configuration.
type Config struct {
	Log    Log           `toml:"log"`
	Server Server        `toml:"server"`
	Cache  Cache         `toml:"cache"`
	Tabs   Tabs          `toml:"tabs"`
	Layout layout.Config `toml:"layout"`
}

// Log configures the logger.
type Log struct {
	Level string `toml:"level"`
	// Format is text, json or logfmt.
	Format string `toml:"format"`
}

// Log formats.
const (
	LogText   = "text"
	LogJSON   = "json"
	LogLogfmt = "logfmt"
)

// Server configures the HTTP server.
type Server struct {
	Addr         string   `toml:"addr"`
	MaxBodyBytes int64    `toml:"max_body_bytes"`
	ReadTimeout  Duration `toml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout"`
}

// Cache selects and configures the pipeline cache.
type Cache struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// Tabs selects and configures where tab state is persisted.
type Tabs struct {
	Store           string   `toml:"store"`
	File            string   `toml:"file"`
	RedisURL        string   `toml:"redis_url"`
	RedisKey        string   `toml:"redis_key"`
	MongoURI        string   `toml:"mongo_uri"`
	MongoDatabase   string   `toml:"mongo_database"`
	MongoCollection string   `toml:"mongo_collection"`
	MongoDocument   string   `toml:"mongo_document"`
	Debounce        Duration `toml:"debounce"`
}

// Duration is a time.Duration written as a string ("1s", "250ms") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: Log{Level: "info", Format: LogText},
		Server: Server{
			Addr:         "127.0.0.1:8080",
			MaxBodyBytes: 16 << 20,
			ReadTimeout:  Duration{30 * time.Second},
			WriteTimeout: Duration{2 * time.Minute},
		},
		Cache: Cache{
			Backend: CacheFile,
			Dir:     DefaultCacheDir(),
			Prefix:  appName + ":",
		},
		Tabs: Tabs{
			Store:           StoreFile,
			File:            DefaultTabsFile(),
			RedisKey:        "jsongraph:tabs",
			MongoDatabase:   "jsongraph",
			MongoCollection: "tabs",
			MongoDocument:   "default",
			Debounce:        Duration{time.Second},
		},
		Layout: layout.Default(),
	}
}

// Load reads the configuration. An empty path means [DefaultPath], which may
// be absent.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes TOML data on top of the defaults without reading the
// environment.
func Parse(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := undecoded(md); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return undecoded(md)
}

func undecoded(md toml.MetaData) error {
	keys := md.Undecoded()
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = k.String()
	}
	return fmt.Errorf("unknown config keys: %s", strings.Join(names, ", "))
}

// ApplyEnv overrides fields from JSONGRAPH_* variables looked up with lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	str("JSONGRAPH_LOG_LEVEL", &c.Log.Level)
	str("JSONGRAPH_LOG_FORMAT", &c.Log.Format)
	str("JSONGRAPH_ADDR", &c.Server.Addr)
	str("JSONGRAPH_CACHE", &c.Cache.Backend)
	str("JSONGRAPH_CACHE_DIR", &c.Cache.Dir)
	str("JSONGRAPH_CACHE_PREFIX", &c.Cache.Prefix)
	str("JSONGRAPH_TABS_STORE", &c.Tabs.Store)
	str("JSONGRAPH_TABS_FILE", &c.Tabs.File)
	str("JSONGRAPH_MONGO_URI", &c.Tabs.MongoURI)
	str("JSONGRAPH_ENGINE", &c.Layout.Engine)

	if v, ok := lookup("JSONGRAPH_REDIS_URL"); ok && v != "" {
		c.Cache.RedisURL = v
		c.Tabs.RedisURL = v
	}
	if v, ok := lookup("JSONGRAPH_RANK_DIR"); ok && v != "" {
		c.Layout.Dagre.RankDir = layout.RankDir(strings.ToUpper(v))
	}
	if v, ok := lookup("JSONGRAPH_MAX_DISPLAY_ITEMS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("JSONGRAPH_MAX_DISPLAY_ITEMS: %w", err)
		}
		c.Layout.MaxDisplayItems = n
	}
	return nil
}

// Validate rejects unknown backends and an invalid layout section.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", LogText, LogJSON, LogLogfmt:
	default:
		return fmt.Errorf("invalid log format: %q (must be one of: text, json, logfmt)", c.Log.Format)
	}
	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache backend redis needs cache.redis_url")
		}
	default:
		return fmt.Errorf("invalid cache backend: %q (must be one of: none, file, redis)", c.Cache.Backend)
	}
	switch c.Tabs.Store {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if c.Tabs.RedisURL == "" {
			return fmt.Errorf("tabs store redis needs tabs.redis_url")
		}
	case StoreMongo:
		if c.Tabs.MongoURI == "" {
			return fmt.Errorf("tabs store mongo needs tabs.mongo_uri")
		}
	default:
		return fmt.Errorf("invalid tabs store: %q (must be one of: memory, file, redis, mongo)", c.Tabs.Store)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes must be positive")
	}
	if err := c.Layout.Normalized().Validate(); err != nil {
		return fmt.Errorf("layout: %w", err)
	}
	return nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// ParseLevel maps a level name to a log level. The empty string is info.
func ParseLevel(s string) (log.Level, error) {
	if s == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(strings.ToLower(s))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log level: %q", s)
	}
	return lvl, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/jsongraph/config.toml, falling back
// to the platform config directory. It is empty if neither is known.
func DefaultPath() string {
	dir := configDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.toml")
}

// DefaultTabsFile returns the default location of the tab state file.
func DefaultTabsFile() string {
	dir := configDir()
	if dir == "" {
		return "tabs.json"
	}
	return filepath.Join(dir, "tabs.json")
}

// DefaultCacheDir returns $XDG_CACHE_HOME/jsongraph or ~/.cache/jsongraph.
func DefaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".cache", appName)
	}
	return filepath.Join(os.TempDir(), appName)
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appName)
	}
	return ""
}
