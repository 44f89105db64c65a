package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdjsoneditor/jsongraph/pkg/graph"
	"github.com/pdjsoneditor/jsongraph/pkg/model"
)

// buildFlags are the graph construction flags shared by graph and layout.
type buildFlags struct {
	expandAll bool
	expand    []string
	maxDepth  int
}

func (f *buildFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.expandAll, "expand-all", true, "expand every container node")
	cmd.Flags().StringSliceVar(&f.expand, "expand", nil, "node IDs to expand when --expand-all=false (e.g. root.owner)")
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", 0, "stop descending below this depth (0 = unlimited)")
}

func (f *buildFlags) options() model.Options {
	expanded := make(map[string]bool, len(f.expand))
	for _, id := range f.expand {
		expanded[id] = true
	}
	return model.Options{ExpandAll: f.expandAll, Expanded: expanded, MaxDepth: f.maxDepth}
}

// graphCommand creates the graph command for converting JSON into nodes and
// edges.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output  string
		noCache bool
		flags   buildFlags
	)

	cmd := &cobra.Command{
		Use:   "graph [document.json|-]",
		Short: "Convert a JSON document into nodes and edges",
		Long: `Convert a JSON document into a graph with one node per object or array.

Scalar members become items of their container node; nested containers become
nodes of their own, linked by an edge from the parent. The output is a
graph.json file that 'layout --from-graph' accepts.

Use - to read the document from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), args[0], output, noCache, flags.options())
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.graph.json, stdout for -)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

// runGraph builds the graph and writes it.
func (c *CLI) runGraph(ctx context.Context, input, output string, noCache bool, opts model.Options) error {
	if opts.MaxDepth < 0 {
		return fmt.Errorf("--max-depth must not be negative")
	}
	data, err := readDocument(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	watch := startStopwatch(c.Logger)
	g, cached, err := runner.BuildGraphWithCacheInfo(ctx, data, opts)
	if err != nil {
		return err
	}
	watch.done(fmt.Sprintf("Built graph with %d nodes", len(g.Nodes)))

	if output == "" {
		if input == stdinArg {
			output = stdinArg
		} else {
			output = basePath("", input) + ".graph.json"
		}
	}
	encoded, err := graph.MarshalGraph(g)
	if err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	if err := writeOutput(output, encoded); err != nil {
		return err
	}
	if output == stdinArg {
		return nil
	}

	printSuccess("Graph built")
	printFile(output)
	printStats(len(g.Nodes), len(g.Edges), cached)
	printNewline()
	printNextStep("Lay out", appName+" layout --from-graph "+output)
	return nil
}
