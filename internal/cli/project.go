package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackrun/pkg/config"
	"github.com/matzehuels/stackrun/pkg/dag"
	"github.com/matzehuels/stackrun/pkg/manifest"
	"github.com/matzehuels/stackrun/pkg/workspace"
)

// filterOpts holds the package filter flags shared by every command.
type filterOpts struct {
	scope               []string // name globs to include
	ignore              []string // name globs to exclude
	noPrivate           bool     // drop private packages
	includeDependencies bool     // add transitive local dependencies
	includeDependents   bool     // add transitive local dependents
}

// register adds the filter flags to cmd.
func (o *filterOpts) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringSliceVar(&o.scope, "scope", nil, "include only packages with names matching the glob (repeatable)")
	flags.StringSliceVar(&o.ignore, "ignore", nil, "exclude packages with names matching the glob (repeatable)")
	flags.BoolVar(&o.noPrivate, "no-private", false, "exclude private packages")
	flags.BoolVar(&o.includeDependencies, "include-dependencies", false, "include all local dependencies of the selected packages")
	flags.BoolVar(&o.includeDependents, "include-dependents", false, "include all local dependents of the selected packages")
}

func (o *filterOpts) options(script string) workspace.FilterOptions {
	return workspace.FilterOptions{
		Scope:               o.scope,
		Ignore:              o.ignore,
		NoPrivate:           o.noPrivate,
		IncludeDependencies: o.includeDependencies,
		IncludeDependents:   o.includeDependents,
		Script:              script,
	}
}

// project is a loaded repository narrowed down by the filter flags.
type project struct {
	cfg  *config.Config
	all  []*manifest.Package // Every discovered package
	pkgs []*manifest.Package // After filtering
}

// loadProject reads the configuration and packages under the --cwd root and
// applies the filters. script, when set, keeps only packages defining it.
func (c *CLI) loadProject(ctx context.Context, filters *filterOpts, script string) (*project, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	cfg, all, err := workspace.Load(ctx, c.dir)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		logger.Debugf("Loaded config from %s", cfg.Path)
	}

	var graph *dag.PackageGraph
	if filters.includeDependencies || filters.includeDependents {
		graph, err = dag.New(all, dag.Options{
			GraphType:  dag.GraphType(cfg.GraphType),
			ForceLocal: cfg.ForceLocal.Graph(),
		})
		if err != nil {
			return nil, err
		}
	}

	pkgs, err := workspace.Filter(all, graph, filters.options(script))
	if err != nil {
		return nil, err
	}
	if len(pkgs) == len(all) {
		prog.done(fmt.Sprintf("Found %d packages", len(all)))
	} else {
		prog.done(fmt.Sprintf("Selected %d of %d packages", len(pkgs), len(all)))
	}
	return &project{cfg: cfg, all: all, pkgs: pkgs}, nil
}

// queryOptions returns the graph settings of the repository. Cycle warnings
// go to the logger.
func (p *project) queryOptions(ctx context.Context) dag.QueryOptions {
	logger := loggerFromContext(ctx)
	return dag.QueryOptions{
		GraphType:    dag.GraphType(p.cfg.GraphType),
		ForceLocal:   p.cfg.ForceLocal.Graph(),
		RejectCycles: p.cfg.RejectCycles,
		Warn:         func(format string, args ...any) { logger.Warnf(format, args...) },
	}
}
