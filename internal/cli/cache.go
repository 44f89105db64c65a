package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdjsoneditor/jsongraph/pkg/cache"
	"github.com/pdjsoneditor/jsongraph/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the graph and layout cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all cached graphs and layouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if c.Config.Cache.Backend == config.CacheNone {
				printWarning("Caching is disabled")
				return nil
			}

			spinner := newSpinnerWithContext(ctx, "Clearing cache...")
			spinner.Start()
			store, err := c.newCache(ctx, false)
			if err != nil {
				spinner.StopWithError("Cache unavailable")
				return err
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				spinner.Stop()
				printInfo("Cache is empty")
				return nil
			}
			count, err := clearer.Clear(ctx)
			if err != nil {
				spinner.StopWithError("Clearing failed")
				return fmt.Errorf("clear cache: %w", err)
			}
			spinner.StopWithSuccess(fmt.Sprintf("Cleared %d cached entries", count))
			printDetail("Location: %s", cacheLocation(c.Config.Cache))
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the cache lives",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), cacheLocation(c.Config.Cache))
			return nil
		},
	}
}

// cacheLocation describes the configured cache: a directory, a Redis URL
// with its key prefix, or "disabled".
func cacheLocation(cfg config.Cache) string {
	switch cfg.Backend {
	case config.CacheNone:
		return "disabled"
	case config.CacheRedis:
		return cfg.RedisURL + " (prefix " + cfg.Prefix + ")"
	}
	return cfg.Dir
}
