package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdjsoneditor/jsongraph/pkg/tabs"
)

// tabsCommand creates the tabs command for inspecting and editing the
// persisted tab state shared with the server.
func (c *CLI) tabsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tabs",
		Short: "List and edit the persisted tabs",
	}

	cmd.AddCommand(c.tabsListCommand())
	cmd.AddCommand(c.tabsAddCommand())
	cmd.AddCommand(c.tabsShowCommand())
	cmd.AddCommand(c.tabsRenameCommand())
	cmd.AddCommand(c.tabsCloseCommand())
	cmd.AddCommand(c.tabsSwitchCommand())
	cmd.AddCommand(c.tabsDuplicateCommand())

	return cmd
}

// withTabs opens the tab state, runs fn and saves on the way out.
func (c *CLI) withTabs(ctx context.Context, fn func(*tabs.State) error) error {
	state, err := c.openTabs(ctx)
	if err != nil {
		return err
	}
	err = fn(state)
	if cerr := state.Close(ctx); cerr != nil && err == nil {
		err = fmt.Errorf("save tabs: %w", cerr)
	}
	return err
}

func (c *CLI) tabsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tabs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTabs(cmd.Context(), func(s *tabs.State) error {
				fmt.Fprintln(cmd.OutOrStdout(), tabsTable(s.Tabs(), s.ActiveID()))
				return nil
			})
		},
	}
}

func tabsTable(list []tabs.Tab, activeID string) string {
	rows := make([][]string, len(list))
	highlight := -1
	for i, t := range list {
		marker := ""
		if t.ID == activeID {
			marker = "▸"
			highlight = i
		}
		status := "ok"
		if t.ParseError != "" {
			status = "invalid JSON"
		}
		modified := "—"
		if t.Metadata.LastModified != nil {
			modified = t.Metadata.LastModified.Format("2006-01-02 15:04")
		}
		rows[i] = []string{marker, t.ID, t.Name, strconv.Itoa(len(t.JSONContent)), status, modified}
	}
	return renderTable([]string{"", "ID", "Name", "Bytes", "JSON", "Modified"}, rows, highlight)
}

func (c *CLI) tabsAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME [document.json|-]",
		Short: "Add a tab and make it active",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, source := "", tabs.SourceManual
			if len(args) == 2 {
				data, err := readDocument(args[1])
				if err != nil {
					return err
				}
				content, source = string(data), tabs.SourceFile
				if args[1] == stdinArg {
					source = tabs.SourcePaste
				}
			}
			return c.withTabs(cmd.Context(), func(s *tabs.State) error {
				id, err := s.AddTab(args[0], content)
				if err != nil {
					return err
				}
				if content != "" {
					if err := s.UpdateActiveContent(content, source); err != nil {
						return err
					}
				}
				printSuccess("Added tab %s", StyleHighlight.Render(args[0]))
				printDetail("id: %s", id)
				return nil
			})
		},
	}
}

func (c *CLI) tabsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "show [ID]",
		ValidArgsFunction: c.completeTabIDs,
		Short:             "Print a tab's document (default: the active tab)",
		Args:              cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTabs(cmd.Context(), func(s *tabs.State) error {
				t := s.Active()
				if len(args) == 1 {
					var err error
					if t, err = s.Tab(args[0]); err != nil {
						return err
					}
				}
				_, err := io.WriteString(cmd.OutOrStdout(), t.JSONContent+"\n")
				return err
			})
		},
	}
}

func (c *CLI) tabsRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "rename ID NAME",
		ValidArgsFunction: c.completeTabIDs,
		Short:             "Rename a tab",
		Args:              cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTabs(cmd.Context(), func(s *tabs.State) error {
				if err := s.RenameTab(args[0], args[1]); err != nil {
					return err
				}
				printSuccess("Renamed tab to %s", StyleHighlight.Render(args[1]))
				return nil
			})
		},
	}
}

func (c *CLI) tabsCloseCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "close ID",
		ValidArgsFunction: c.completeTabIDs,
		Short:             "Close a tab (the last tab cannot be closed)",
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTabs(cmd.Context(), func(s *tabs.State) error {
				if err := s.CloseTab(args[0]); err != nil {
					return err
				}
				printSuccess("Closed tab")
				printDetail("active: %s", s.Active().Name)
				return nil
			})
		},
	}
}

func (c *CLI) tabsSwitchCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "switch ID",
		ValidArgsFunction: c.completeTabIDs,
		Short:             "Make a tab active",
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTabs(cmd.Context(), func(s *tabs.State) error {
				if err := s.SwitchTab(args[0]); err != nil {
					return err
				}
				printSuccess("Switched to %s", StyleHighlight.Render(s.Active().Name))
				return nil
			})
		},
	}
}

func (c *CLI) tabsDuplicateCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "duplicate ID",
		ValidArgsFunction: c.completeTabIDs,
		Short:             "Copy a tab and make the copy active",
		Args:              cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTabs(cmd.Context(), func(s *tabs.State) error {
				id, err := s.DuplicateTab(args[0])
				if err != nil {
					return err
				}
				printSuccess("Duplicated as %s", StyleHighlight.Render(s.Active().Name))
				printDetail("id: %s", id)
				return nil
			})
		},
	}
}
