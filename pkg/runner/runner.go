package runner

import (
	"context"
	"runtime"

	"github.com/matzehuels/stackrun/pkg/dag"
	"github.com/matzehuels/stackrun/pkg/manifest"
)

// Task is the work performed for one package. Its result is collected in
// completion order.
type Task[T any] func(ctx context.Context, pkg *manifest.Package) (T, error)

// Options configures a run.
type Options struct {
	Concurrency  int            // Max tasks in flight; <= 0 means DefaultConcurrency()
	GraphType    dag.GraphType  // Which dependency maps form edges
	RejectCycles bool           // Fail on cycles instead of collapsing them
	ForceLocal   dag.ForceLocal // Siblings linked regardless of range

	Logger func(string, ...any) // Warning callback (optional)
}

// DefaultConcurrency returns the number of logical CPUs, at least 1.
func DefaultConcurrency() int {
	return max(runtime.NumCPU(), 1)
}

// WithDefaults returns a copy of Options with zero values replaced by defaults.
func (o Options) WithDefaults() Options {
	opts := o
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency()
	}
	if opts.GraphType == "" {
		opts.GraphType = dag.GraphAllDependencies
	}
	if opts.Logger == nil {
		opts.Logger = func(string, ...any) {}
	}
	return opts
}

// RunTopologically runs task for every package in pkgs, starting a package
// only after all of its local dependencies have finished. At most
// opts.Concurrency tasks run at a time, and the pool is refilled as soon as
// any task completes.
//
// Members of a dependency cycle are started together once everything the
// cycle depends on is done; with opts.RejectCycles the run fails before any
// task starts. The first task error aborts the run: it is returned as an
// [errors.TaskError] naming the package, no further tasks are started, and
// tasks already in flight are left to finish on their own.
//
// Results are returned in completion order.
func RunTopologically[T any](ctx context.Context, pkgs []*manifest.Package, task Task[T], opts Options) ([]T, error) {
	opts = opts.WithDefaults()

	runID := newRunID()
	q, err := dag.NewQueryGraph(pkgs, dag.QueryOptions{
		GraphType:    opts.GraphType,
		ForceLocal:   opts.ForceLocal,
		RejectCycles: opts.RejectCycles,
		Warn:         opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	notifyCycles(ctx, runID, q.Cycles())

	return newPool(ctx, runID, task, opts.Concurrency, &graphSource{q: q}).run(len(pkgs))
}

// RunParallel runs task for every package without regard to dependencies,
// with at most concurrency tasks in flight. A concurrency <= 0 starts every
// package at once. Error handling matches [RunTopologically].
func RunParallel[T any](ctx context.Context, pkgs []*manifest.Package, task Task[T], concurrency int) ([]T, error) {
	if concurrency <= 0 {
		concurrency = max(len(pkgs), 1)
	}
	return newPool(ctx, newRunID(), task, concurrency, &listSource{pkgs: pkgs}).run(len(pkgs))
}
