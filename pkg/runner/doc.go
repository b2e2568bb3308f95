// Package runner executes a task for every package of a monorepo with
// bounded concurrency.
//
// [RunTopologically] respects local dependency edges: a package starts only
// after everything it depends on has finished, and the worker pool is kept
// saturated by refilling it whenever any task completes rather than waiting
// for a whole batch. Dependency cycles are either rejected up front or run
// as a group once their outside dependencies are satisfied.
//
// [RunParallel] ignores edges and only bounds concurrency.
//
//	results, err := runner.RunTopologically(ctx, pkgs,
//	    func(ctx context.Context, pkg *manifest.Package) (string, error) {
//	        return pkg.Name, build(ctx, pkg)
//	    },
//	    runner.Options{Concurrency: 4},
//	)
//
// A single goroutine owns the dependency graph during a run; tasks execute
// on worker goroutines and report back over a channel. The first failing
// task ends the run with an error naming the package. Tasks still running
// at that point are not cancelled by the runner; cancel ctx for that.
//
// Runs emit [observability.RunnerHooks] events tagged with a unique run ID.
package runner
