package cli

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pdjsoneditor/jsongraph/pkg/config"
	"github.com/pdjsoneditor/jsongraph/pkg/observability"
)

func TestLoggerHonoursConfiguredLevel(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantError bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"", false, true, true},
		{"error", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := config.ParseLevel(tt.level)
			if err != nil {
				t.Fatal(err)
			}
			for _, c := range []struct {
				emit func(*log.Logger)
				want bool
			}{
				{func(l *log.Logger) { l.Debug("x") }, tt.wantDebug},
				{func(l *log.Logger) { l.Info("x") }, tt.wantInfo},
				{func(l *log.Logger) { l.Error("x") }, tt.wantError},
			} {
				var buf bytes.Buffer
				c.emit(newLogger(&buf, level))
				if got := buf.Len() > 0; got != c.want {
					t.Errorf("level %q: wrote = %v, want %v", tt.level, got, c.want)
				}
			}
		})
	}
}

func TestStopwatchDone(t *testing.T) {
	var buf bytes.Buffer
	startStopwatch(newLogger(&buf, log.InfoLevel)).done("Laid out 3 nodes")

	if !regexp.MustCompile(`Laid out 3 nodes \(\d+(\.\d+)?m?s\)`).Match(buf.Bytes()) {
		t.Errorf("progress output = %q", buf.String())
	}
}

func TestConfigureLogging(t *testing.T) {
	t.Cleanup(observability.Reset)

	tests := []struct {
		name      string
		cfg       config.Log
		verbose   bool
		wantLevel log.Level
		wantOut   []string
	}{
		{"text", config.Log{Level: "info", Format: config.LogText}, false, log.InfoLevel, []string{"hello", "n=1"}},
		{"json", config.Log{Level: "warn", Format: config.LogJSON}, false, log.WarnLevel, []string{`"msg":"hello"`, `"n":1`}},
		{"logfmt", config.Log{Level: "info", Format: config.LogLogfmt}, false, log.InfoLevel, []string{"msg=hello", "n=1"}},
		{"verbose wins", config.Log{Level: "error"}, true, log.DebugLevel, []string{"hello"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			c := New(&buf, log.InfoLevel)
			if got := c.configureLogging(tt.cfg, tt.verbose); got != tt.wantLevel {
				t.Errorf("level = %v, want %v", got, tt.wantLevel)
			}
			c.Logger.Warn("hello", "n", 1)
			for _, want := range tt.wantOut {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output %q does not contain %q", buf.String(), want)
				}
			}
		})
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("a bare context should yield the default logger")
	}

	custom := newLogger(&bytes.Buffer{}, log.InfoLevel)
	if loggerFromContext(withLogger(context.Background(), custom)) != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestSetupAttachesLogger(t *testing.T) {
	testEnv(t)

	c := New(&bytes.Buffer{}, log.InfoLevel)
	var got *log.Logger
	root := c.RootCommand()
	root.AddCommand(&cobra.Command{
		Use: "whoami",
		RunE: func(cmd *cobra.Command, args []string) error {
			got = loggerFromContext(cmd.Context())
			return nil
		},
	})
	root.SetArgs([]string{"whoami"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if got != c.Logger {
		t.Error("commands should see the CLI logger in their context")
	}
}
