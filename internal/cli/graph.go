package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackrun/pkg/errors"
	"github.com/matzehuels/stackrun/pkg/graph"
	"github.com/matzehuels/stackrun/pkg/render/nodelink"
)

// Output formats of the graph command.
const (
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

// graphOpts holds the command-line flags for the graph command.
type graphOpts struct {
	filterOpts
	format   string // json, dot or svg
	output   string // output file path (stdout if empty)
	detailed bool   // versions and rows in DOT labels
}

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	opts := graphOpts{format: formatDOT}

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Export the package dependency graph",
		Long: `Export the local dependency graph of the repository.

Collapsed dependency cycles are listed in JSON output and highlighted in
DOT and SVG output.

Examples:
  stackrun graph --format svg -o deps.svg
  stackrun graph --format json --scope '@acme/*' --include-dependencies`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, json or svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include version and run row in node labels")

	return cmd
}

func (c *CLI) runGraph(ctx context.Context, opts *graphOpts) error {
	switch opts.format {
	case formatJSON, formatDOT, formatSVG:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q, want dot, json or svg", opts.format)
	}

	p, err := c.loadProject(ctx, &opts.filterOpts, "")
	if err != nil {
		return err
	}
	g, err := graph.Build(p.pkgs, p.queryOptions(ctx))
	if err != nil {
		return err
	}

	if opts.format == formatJSON {
		if opts.output == "" {
			return graph.WriteGraph(g, c.Out)
		}
		if err := graph.WriteGraphFile(g, opts.output); err != nil {
			return err
		}
		return c.reportGraph(g, opts.output)
	}

	data := []byte(nodelink.ToDOT(g, nodelink.Options{Detailed: opts.detailed}))
	if opts.format == formatSVG {
		if data, err = nodelink.RenderSVG(ctx, string(data)); err != nil {
			return err
		}
	}
	if opts.output == "" {
		_, err := c.Out.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return err
	}
	return c.reportGraph(g, opts.output)
}

func (c *CLI) reportGraph(g graph.Graph, path string) error {
	printSuccess(c.Out, "Graph with %d packages", len(g.Nodes))
	if len(g.Cycles) > 0 {
		printWarning(c.Out, "%d dependency cycles", len(g.Cycles))
	}
	printFile(c.Out, path)
	return nil
}
