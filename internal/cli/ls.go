package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackrun/pkg/dag"
	"github.com/matzehuels/stackrun/pkg/graph"
	"github.com/matzehuels/stackrun/pkg/manifest"
)

// lsOpts holds the command-line flags for the ls command.
type lsOpts struct {
	filterOpts
	all      bool // include private packages
	long     bool // table with version and location
	json     bool // JSON array
	graph    bool // name -> local dependencies
	toposort bool // dependency order
}

// lsEntry is one package in `ls --json` output.
type lsEntry struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Private  bool   `json:"private"`
	Location string `json:"location"`
}

// lsCommand creates the ls command.
func (c *CLI) lsCommand() *cobra.Command {
	var opts lsOpts

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List the packages of the repository",
		Long: `List the packages of the repository.

Private packages are hidden unless --all is given.

Examples:
  stackrun ls --long
  stackrun ls --toposort --scope '@acme/*'
  stackrun ls --graph --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLs(cmd.Context(), &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "show private packages")
	cmd.Flags().BoolVarP(&opts.long, "long", "l", false, "show version and location")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print JSON")
	cmd.Flags().BoolVar(&opts.graph, "graph", false, "print local dependencies of each package as JSON")
	cmd.Flags().BoolVar(&opts.toposort, "toposort", false, "sort packages in dependency order")

	return cmd
}

func (c *CLI) runLs(ctx context.Context, opts *lsOpts) error {
	filters := opts.filterOpts
	if !opts.all {
		filters.noPrivate = true
	}
	p, err := c.loadProject(ctx, &filters, "")
	if err != nil {
		return err
	}

	pkgs := p.pkgs
	if opts.toposort {
		if pkgs, err = dag.Sort(pkgs, p.queryOptions(ctx)); err != nil {
			return err
		}
	}

	switch {
	case opts.graph:
		g, err := graph.Build(pkgs, p.queryOptions(ctx))
		if err != nil {
			return err
		}
		return writeJSON(c, g.Adjacency())
	case opts.json:
		entries := make([]lsEntry, len(pkgs))
		for i, pkg := range pkgs {
			entries[i] = lsEntry{Name: pkg.Name, Version: pkg.Version, Private: pkg.Private, Location: pkg.Location}
		}
		return writeJSON(c, entries)
	case opts.long:
		c.printTable(p.cfg.Root, pkgs)
	default:
		for _, pkg := range pkgs {
			fmt.Fprintln(c.Out, pkg.Name)
		}
	}
	return nil
}

// printTable renders `ls --long`.
func (c *CLI) printTable(root string, pkgs []*manifest.Package) {
	t := table.NewWriter()
	t.SetOutputMirror(c.Out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Package", "Version", "Location", ""})
	for _, pkg := range pkgs {
		version := pkg.Version
		if version == "" {
			version = "-"
		}
		var private string
		if pkg.Private {
			private = "(private)"
		}
		t.AppendRow(table.Row{StyleHighlight.Render(pkg.Name), version, relPath(root, pkg.Location), StyleDim.Render(private)})
	}
	t.Render()
}

func writeJSON(c *CLI, v any) error {
	enc := json.NewEncoder(c.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func relPath(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return rel
	}
	return path
}
