package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdjsoneditor/jsongraph/internal/server"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		origins []string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout worker over HTTP and WebSocket",
		Long: `Serve the layout worker over HTTP and WebSocket.

The server exposes POST /api/layout (newline-delimited worker events),
POST /api/graph, POST /api/render, POST /api/estimate, the tab state under
/api/tabs and the worker protocol on /ws. Tabs are persisted to the
configured store; layouts are cached in the configured cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				c.Config.Server.Addr = addr
			}
			return c.runServe(cmd.Context(), origins, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config: 127.0.0.1:8080)")
	cmd.Flags().StringSliceVar(&origins, "allow-origin", nil, "origin prefixes allowed to open WebSockets (* for any)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, origins []string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	state, err := c.openTabs(ctx)
	if err != nil {
		return err
	}
	defer func() {
		// ctx is already cancelled on shutdown; the final save needs its own.
		if err := state.Close(context.WithoutCancel(ctx)); err != nil {
			c.Logger.Warn("saving tabs failed", "error", err)
		}
	}()

	cfg := c.Config.Server
	srv := server.New(server.Config{
		Addr:           cfg.Addr,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		ReadTimeout:    cfg.ReadTimeout.Duration,
		WriteTimeout:   cfg.WriteTimeout.Duration,
		AllowedOrigins: origins,
	}, runner, state, c.Logger)

	printInfo("Serving on %s", StyleLink.Render("http://"+cfg.Addr))
	printDetail("cache: %s, tabs: %s", c.Config.Cache.Backend, c.Config.Tabs.Store)
	return srv.ListenAndServe(ctx)
}
