package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdjsoneditor/jsongraph/pkg/layout"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[log]
level = "debug"

[server]
addr = ":9000"
read_timeout = "5s"

[cache]
backend = "none"

[layout]
node_width = 300
max_display_items = 5

[layout.dagre]
rank_dir = "TB"
align = "ul"
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.ReadTimeout.Duration != 5*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Cache.Backend != CacheNone {
		t.Errorf("Cache.Backend = %q", cfg.Cache.Backend)
	}
	if cfg.Layout.NodeWidth != 300 || cfg.Layout.MaxDisplayItems != 5 {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if cfg.Layout.Dagre.RankDir != layout.RankDirTB {
		t.Errorf("RankDir = %q", cfg.Layout.Dagre.RankDir)
	}
	// untouched keys keep their defaults
	if cfg.Layout.Dagre.RankSep != layout.Default().Dagre.RankSep {
		t.Errorf("RankSep = %v, want default", cfg.Layout.Dagre.RankSep)
	}
	if cfg.Server.WriteTimeout != Default().Server.WriteTimeout {
		t.Errorf("WriteTimeout = %v, want default", cfg.Server.WriteTimeout)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"unknown key", "[server]\nport = 1\n", "unknown config keys"},
		{"syntax", "[server\n", "parse config"},
		{"bad duration", "[server]\nread_timeout = \"soon\"\n", "parse config"},
		{"bad level", "[log]\nlevel = \"loud\"\n", "invalid log level"},
		{"bad log format", "[log]\nformat = \"xml\"\n", "invalid log format"},
		{"bad cache", "[cache]\nbackend = \"memcached\"\n", "invalid cache backend"},
		{"redis without url", "[cache]\nbackend = \"redis\"\n", "redis_url"},
		{"mongo without uri", "[tabs]\nstore = \"mongo\"\n", "mongo_uri"},
		{"bad store", "[tabs]\nstore = \"s3\"\n", "invalid tabs store"},
		{"bad rank dir", "[layout.dagre]\nrank_dir = \"XY\"\n", "RANK_DIR"},
		{"bad engine", "[layout]\nengine = \"elk\"\n", "ENGINE"},
		{"zero body", "[server]\nmax_body_bytes = 0\n", "max_body_bytes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"JSONGRAPH_LOG_LEVEL":         "warn",
		"JSONGRAPH_LOG_FORMAT":        "json",
		"JSONGRAPH_ADDR":              ":1234",
		"JSONGRAPH_CACHE":             "redis",
		"JSONGRAPH_REDIS_URL":         "redis://localhost:6379/1",
		"JSONGRAPH_TABS_STORE":        "memory",
		"JSONGRAPH_RANK_DIR":          "bt",
		"JSONGRAPH_ENGINE":            "graphviz",
		"JSONGRAPH_MAX_DISPLAY_ITEMS": "3",
		"JSONGRAPH_CACHE_DIR":         "",
	}
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Log.Level != "warn" || cfg.Log.Format != LogJSON || cfg.Server.Addr != ":1234" {
		t.Errorf("got log %+v addr %q", cfg.Log, cfg.Server.Addr)
	}
	if cfg.Cache.Backend != CacheRedis || cfg.Cache.RedisURL != env["JSONGRAPH_REDIS_URL"] {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.Tabs.RedisURL != env["JSONGRAPH_REDIS_URL"] || cfg.Tabs.Store != StoreMemory {
		t.Errorf("Tabs = %+v", cfg.Tabs)
	}
	if cfg.Layout.Dagre.RankDir != layout.RankDirBT || cfg.Layout.Engine != layout.EngineGraphviz {
		t.Errorf("Layout = %+v", cfg.Layout.Dagre)
	}
	if cfg.Layout.MaxDisplayItems != 3 {
		t.Errorf("MaxDisplayItems = %d", cfg.Layout.MaxDisplayItems)
	}
	if cfg.Cache.Dir != Default().Cache.Dir {
		t.Errorf("empty JSONGRAPH_CACHE_DIR overrode Cache.Dir: %q", cfg.Cache.Dir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestApplyEnvBadNumber(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(func(k string) (string, bool) {
		if k == "JSONGRAPH_MAX_DISPLAY_ITEMS" {
			return "many", true
		}
		return "", false
	})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("JSONGRAPH_ADDR", "")

	t.Run("missing default file", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Server.Addr != Default().Server.Addr {
			t.Errorf("Addr = %q", cfg.Server.Addr)
		}
	})

	t.Run("missing explicit file", func(t *testing.T) {
		if _, err := Load(filepath.Join(dir, "nope.toml")); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("default file", func(t *testing.T) {
		path := DefaultPath()
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("[server]\naddr = \":7000\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Server.Addr != ":7000" {
			t.Errorf("Addr = %q, want :7000", cfg.Server.Addr)
		}
	})

	t.Run("env wins over file", func(t *testing.T) {
		t.Setenv("JSONGRAPH_ADDR", ":7100")
		cfg, err := Load("")
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Server.Addr != ":7100" {
			t.Errorf("Addr = %q, want :7100", cfg.Server.Addr)
		}
	})
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_CACHE_HOME", "/xdg/cache")

	if got, want := DefaultPath(), filepath.Join("/xdg/config", "jsongraph", "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
	if got, want := DefaultTabsFile(), filepath.Join("/xdg/config", "jsongraph", "tabs.json"); got != want {
		t.Errorf("DefaultTabsFile() = %q, want %q", got, want)
	}
	if got, want := DefaultCacheDir(), filepath.Join("/xdg/cache", "jsongraph"); got != want {
		t.Errorf("DefaultCacheDir() = %q, want %q", got, want)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = ":9999"
	var buf bytes.Buffer
	if err := cfg.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Parse(buf.String())
	if err != nil {
		t.Fatalf("Parse(Encode()): %v\n%s", err, buf.String())
	}
	if got.Server.Addr != ":9999" || got.Tabs.Debounce != cfg.Tabs.Debounce {
		t.Errorf("round trip lost fields: %+v", got.Server)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{"", log.InfoLevel, false},
		{"debug", log.DebugLevel, false},
		{"WARN", log.WarnLevel, false},
		{"error", log.ErrorLevel, false},
		{"chatty", log.InfoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
