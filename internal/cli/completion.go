package cli

import (
	"github.com/spf13/cobra"

	"github.com/pdjsoneditor/jsongraph/pkg/dag/position"
	"github.com/pdjsoneditor/jsongraph/pkg/dag/transform"
	"github.com/pdjsoneditor/jsongraph/pkg/layout"
	"github.com/pdjsoneditor/jsongraph/pkg/tabs"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for jsongraph.

Bash:
  $ source <(jsongraph completion bash)

Zsh:
  $ jsongraph completion zsh > "${fpath[1]}/_jsongraph"

Fish:
  $ jsongraph completion fish > ~/.config/fish/completions/jsongraph.fish

PowerShell:
  PS> jsongraph completion powershell | Out-String | Invoke-Expression

Tab IDs and layout flag values complete too; tab IDs are read from the
configured tab store.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

// completeTabIDs completes the first argument with the IDs of the persisted
// tabs, described by their names.
func (c *CLI) completeTabIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	// Completion runs without PersistentPreRunE.
	if err := c.setup(cmd, args); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var ids []string
	err := c.withTabs(cmd.Context(), func(s *tabs.State) error {
		for _, t := range s.Tabs() {
			ids = append(ids, t.ID+"\t"+t.Name)
		}
		return nil
	})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}

// registerLayoutCompletions completes the enum-valued layout flags.
func registerLayoutCompletions(cmd *cobra.Command) {
	values := map[string][]string{
		"format": {"svg", "dot", "json"},
		"engine": {layout.EngineDagre, layout.EngineGraphviz},
		"rank-dir": {
			string(layout.RankDirTB), string(layout.RankDirBT),
			string(layout.RankDirLR), string(layout.RankDirRL),
		},
		"ranker": {
			string(transform.RankerNetworkSimplex),
			string(transform.RankerTightTree),
			string(transform.RankerLongestPath),
		},
		"align": {
			string(position.AlignUpLeft), string(position.AlignUpRight),
			string(position.AlignDownLeft), string(position.AlignDownRight),
		},
	}
	for flag, choices := range values {
		_ = cmd.RegisterFlagCompletionFunc(flag, cobra.FixedCompletions(choices, cobra.ShellCompDirectiveNoFileComp))
	}
}
