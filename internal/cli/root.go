package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pdjsoneditor/jsongraph/pkg/config"
)

// registerPersistentFlags adds the flags shared by every command.
func (c *CLI) registerPersistentFlags(root *cobra.Command) {
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/jsongraph/config.toml)")
}

// setup loads the configuration and configures logging before a command
// runs.
//
// The logger is attached to the command context and accessible to all
// commands via loggerFromContext.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	c.configureLogging(cfg.Log, c.verbose)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}
