package cli

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackrun/pkg/dag"
	"github.com/matzehuels/stackrun/pkg/errors"
	"github.com/matzehuels/stackrun/pkg/manifest"
	"github.com/matzehuels/stackrun/pkg/npmclient"
	"github.com/matzehuels/stackrun/pkg/runner"
)

// runOpts holds the scheduling flags shared by run and exec.
type runOpts struct {
	filterOpts
	stream       bool   // prefix output lines live instead of buffering
	parallel     bool   // ignore dependencies and concurrency
	noSort       bool   // ignore dependencies, keep concurrency
	noBail       bool   // keep going after a package fails
	npmClient    string // overrides npmClient from the config
	concurrency  int    // overrides concurrency from the config
	rejectCycles bool
	graphType    string
}

func (o *runOpts) registerRun(cmd *cobra.Command) {
	o.register(cmd)
	flags := cmd.Flags()
	flags.BoolVar(&o.stream, "stream", false, "stream output with lines prefixed by package name")
	flags.BoolVar(&o.parallel, "parallel", false, "run in all packages at once, ignoring dependencies (implies --stream)")
	flags.BoolVar(&o.noSort, "no-sort", false, "do not wait for dependencies, only limit concurrency")
	flags.BoolVar(&o.noBail, "no-bail", false, "continue when a package fails and report all failures at the end")
	flags.StringVar(&o.npmClient, "npm-client", "", "client running scripts: npm, yarn or pnpm")
	flags.IntVar(&o.concurrency, "concurrency", 0, "maximum packages processed at once (default: number of CPUs)")
	flags.BoolVar(&o.rejectCycles, "reject-cycles", false, "fail if the dependency graph has cycles")
	flags.StringVar(&o.graphType, "graph-type", "", "dependencies forming edges: dependencies or allDependencies")
}

// packageAction is the work run and exec perform in one package.
type packageAction func(ctx context.Context, npm *npmclient.Client, pkg *manifest.Package) error

// runCommand creates the run command.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "run <script> [-- <args>...]",
		Short: "Run an npm script in every package that defines it",
		Long: `Run an npm script in every package that defines it.

Packages start only after their local dependencies have finished, with at
most --concurrency scripts running at a time. Arguments after -- are
passed to the script.

Examples:
  stackrun run build
  stackrun run test --scope '@acme/*' --no-bail
  stackrun run dev --parallel`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, extra := args[0], args[1:]
			if err := errors.ValidateScriptName(script); err != nil {
				return err
			}
			return c.execute(cmd.Context(), &opts, script, "Ran npm script "+strconv.Quote(script),
				func(ctx context.Context, npm *npmclient.Client, pkg *manifest.Package) error {
					return npm.RunScript(ctx, pkg, script, extra)
				})
		},
	}

	opts.registerRun(cmd)
	return cmd
}

// execCommand creates the exec command.
func (c *CLI) execCommand() *cobra.Command {
	var opts runOpts

	cmd := &cobra.Command{
		Use:   "exec [flags] -- <command> [args...]",
		Short: "Run a command in every package",
		Long: `Run an arbitrary command in the directory of every package.

LERNA_PACKAGE_NAME and LERNA_ROOT_PATH are set for the command, along with
the variables of the configured env file.

Examples:
  stackrun exec -- rm -rf dist
  stackrun exec --no-sort -- sh -c 'echo $LERNA_PACKAGE_NAME'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, rest := args[0], args[1:]
			return c.execute(cmd.Context(), &opts, "", "Executed command "+strconv.Quote(strings.Join(args, " ")),
				func(ctx context.Context, npm *npmclient.Client, pkg *manifest.Package) error {
					return npm.Exec(ctx, pkg, name, rest)
				})
		},
	}

	opts.registerRun(cmd)
	cmd.Flags().SetInterspersed(false)
	return cmd
}

// execute loads the project and runs action in every selected package,
// topologically unless --parallel or --no-sort is set.
func (c *CLI) execute(ctx context.Context, opts *runOpts, script, summary string, action packageAction) error {
	logger := loggerFromContext(ctx)

	p, err := c.loadProject(ctx, &opts.filterOpts, script)
	if err != nil {
		return err
	}
	if len(p.pkgs) == 0 {
		if script != "" {
			printWarning(c.Err, "No packages with a %q script", script)
		} else {
			printWarning(c.Err, "No packages selected")
		}
		return nil
	}

	npm, err := c.npmClient(p, opts)
	if err != nil {
		return err
	}

	var (
		mu     sync.Mutex
		failed []*errors.TaskError
	)
	task := func(ctx context.Context, pkg *manifest.Package) (string, error) {
		logger.Debugf("Starting %s", pkg.Name)
		err := action(ctx, npm, pkg)
		if err != nil && opts.noBail {
			mu.Lock()
			failed = append(failed, &errors.TaskError{Package: pkg.Name, Err: err})
			mu.Unlock()
			return pkg.Name, nil
		}
		return pkg.Name, err
	}

	concurrency := opts.concurrency
	if concurrency <= 0 {
		concurrency = p.cfg.Concurrency
	}

	prog := newProgress(logger)
	var done []string
	switch {
	case opts.parallel:
		done, err = runner.RunParallel(ctx, p.pkgs, task, 0)
	case opts.noSort:
		if concurrency <= 0 {
			concurrency = runner.DefaultConcurrency()
		}
		done, err = runner.RunParallel(ctx, p.pkgs, task, concurrency)
	default:
		graphType := opts.graphType
		if graphType == "" {
			graphType = p.cfg.GraphType
		}
		gt, perr := dag.ParseGraphType(graphType)
		if perr != nil {
			return perr
		}
		done, err = runner.RunTopologically(ctx, p.pkgs, task, runner.Options{
			Concurrency:  concurrency,
			GraphType:    gt,
			RejectCycles: opts.rejectCycles || p.cfg.RejectCycles,
			ForceLocal:   p.cfg.ForceLocal.Graph(),
			Logger:       logger.Warnf,
		})
	}
	if err != nil {
		return err
	}

	if len(failed) > 0 {
		slices.SortFunc(failed, func(a, b *errors.TaskError) int { return strings.Compare(a.Package, b.Package) })
		for _, f := range failed {
			printError(c.Err, "%s", f.Package)
			printDetail(c.Err, "%s", errors.UserMessage(f.Err))
		}
		return errors.New(errors.ErrCodeTaskFailed, "%d of %d packages failed", len(failed), len(done))
	}

	prog.done(summary)
	printSuccess(c.Err, "%s in %d packages", summary, len(done))
	return nil
}

// npmClient configures the process runner for p.
func (c *CLI) npmClient(p *project, opts *runOpts) (*npmclient.Client, error) {
	name := opts.npmClient
	if name == "" {
		name = p.cfg.NpmClient
	}
	npm := npmclient.New(name, p.cfg.Root)
	npm.Stdout, npm.Stderr = c.Out, c.Err
	npm.Stream = opts.stream || opts.parallel

	index := make(map[string]int, len(p.pkgs))
	for i, pkg := range p.pkgs {
		index[pkg.Name] = i
	}
	npm.Prefix = func(name string) string { return streamPrefix(index[name], name) }

	if path := p.cfg.EnvFilePath(); path != "" {
		if err := npm.LoadEnvFile(path); err != nil {
			return nil, err
		}
	}
	return npm, nil
}
