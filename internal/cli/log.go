// Package cli implements the jsongraph command-line interface.
//
// The commands build document graphs, lay them out, render them, serve the
// layout worker over HTTP and manage persisted tabs, the layout cache and
// the configuration. Commands are cobra commands; output goes through
// charmbracelet/log and lipgloss.
//
// # Commands
//
//   - graph: Convert a JSON document into nodes and edges
//   - layout: Position the graph and render SVG, DOT or positioned JSON
//   - serve: Run the HTTP and WebSocket API
//   - tabs: List and edit the persisted tabs
//   - cache: Manage the layout cache
//   - config: Show the effective configuration
//
// # Logging
//
// The level and format come from the [log] section of the config file or
// from JSONGRAPH_LOG_LEVEL and JSONGRAPH_LOG_FORMAT; --verbose forces debug.
// At debug level the layout, cache, worker and HTTP hooks log as well.
//
//	JSONGRAPH_LOG_FORMAT=json jsongraph layout doc.json
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pdjsoneditor/jsongraph/pkg/config"
	"github.com/pdjsoneditor/jsongraph/pkg/observability"
)

const logTimeFormat = "15:04:05.00"

var logFormatters = map[string]log.Formatter{
	"":               log.TextFormatter,
	config.LogText:   log.TextFormatter,
	config.LogJSON:   log.JSONFormatter,
	config.LogLogfmt: log.LogfmtFormatter,
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      logTimeFormat,
		Level:           level,
	})
}

// configureLogging applies the [log] section to the CLI logger. verbose
// overrides the configured level. The config is validated before this runs,
// so an unknown level or format falls back to info text.
func (c *CLI) configureLogging(cfg config.Log, verbose bool) log.Level {
	level, _ := config.ParseLevel(cfg.Level)
	if verbose {
		level = LogDebug
	}
	c.Logger.SetLevel(level)
	c.Logger.SetFormatter(logFormatters[cfg.Format])

	if level <= LogDebug {
		observability.SetAll(observability.LogHooks{Logger: c.Logger})
	}
	return level
}

// stopwatch logs how long a command step took.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
}

func startStopwatch(l *log.Logger) stopwatch {
	return stopwatch{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Laid out 42 nodes (1.234s)".
func (s stopwatch) done(msg string) {
	s.logger.Infof("%s (%s)", msg, time.Since(s.start).Round(time.Millisecond))
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
