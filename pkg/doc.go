// Package pkg provides the core libraries for Stackrun, a task runner for
// JavaScript monorepos.
//
// # Overview
//
// Stackrun finds the packages of a repository, links them into a local
// dependency graph and runs work across them so that no package starts before
// the packages it depends on have finished. The pkg directory is organized
// into four main areas:
//
//  1. Repository model ([manifest], [config], [workspace])
//  2. Scheduling ([dag], [runner])
//  3. Execution and integrations ([npmclient], [integrations], [cache])
//  4. Output ([graph], [render/nodelink])
//
// # Architecture
//
// The typical data flow through Stackrun:
//
//	lerna.json / stackrun.toml + package.json files
//	         ↓
//	    [workspace] package (discover and filter packages)
//	         ↓
//	    [dag] package (local edges, cycle collapsing, QueryGraph)
//	         ↓
//	    [runner] package (bounded concurrency, topological order)
//	         ↓
//	    [npmclient] package (npm scripts and commands per package)
//
// # Quick Start
//
// Run a build in dependency order:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/stackrun/pkg/npmclient"
//	    "github.com/matzehuels/stackrun/pkg/runner"
//	    "github.com/matzehuels/stackrun/pkg/workspace"
//	)
//
//	cfg, pkgs, _ := workspace.Load(ctx, ".")
//	npm := npmclient.New(cfg.NpmClient, cfg.Root)
//
//	_, err := runner.RunTopologically(ctx, pkgs,
//	    func(ctx context.Context, pkg *manifest.Package) (string, error) {
//	        return pkg.Name, npm.RunScript(ctx, pkg, "build", nil)
//	    },
//	    runner.Options{Concurrency: 4})
//
// # Main Packages
//
// [manifest] - package.json parsing and the dependency maps of each graph type.
//
// [config] - Repository settings from lerna.json or stackrun.toml, with
// extends chains and STACKRUN_ environment overrides.
//
// [workspace] - Package discovery from workspace globs and the --scope,
// --ignore and include-dependencies filters.
//
// [dag] - The package graph. Sibling dependencies become local edges when the
// declared range resolves to the sibling. Cycles are collapsed into a single
// node so that [dag.QueryGraph] can hand out ready packages one batch at a
// time.
//
// [runner] - Generic worker pool running a task per package, either
// topologically or in plain parallel.
//
// [npmclient] - Child process execution with prefixed streaming, env files
// and the LERNA_* variables.
//
// [integrations] - HTTP client with retries and caching, and the npm registry
// client used by `stackrun published`.
//
// [cache] - File, memory, Redis and tiered caches.
//
// [graph] - JSON node-link form of the package graph.
//
// [render/nodelink] - Graphviz DOT and SVG output of the package graph.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/dag/...                # Specific package
//	go test -run Example                 # Examples only
//
// Set STACKRUN_TEST_REDIS_URL to include the Redis cache tests.
//
// [manifest]: https://pkg.go.dev/github.com/matzehuels/stackrun/pkg/manifest
// [config]: https://pkg.go.dev/github.com/matzehuels/stackrun/pkg/config
// [workspace]: https://pkg.go.dev/github.com/matzehuels/stackrun/pkg/workspace
// [dag]: https://pkg.go.dev/github.com/matzehuels/stackrun/pkg/dag
// [dag.QueryGraph]: https://pkg.go.dev/github.com/matzehuels/stackrun/pkg/dag#QueryGraph
// [runner]: https://pkg.go.dev/github.com/matzehuels/stackrun/pkg/runner
// [npmclient]: https://pkg.go.dev/github.com/matzehuels/stackrun/pkg/npmclient
// [integrations]: https://pkg.go.dev/github.com/matzehuels/stackrun/pkg/integrations
// [cache]: https://pkg.go.dev/github.com/matzehuels/stackrun/pkg/cache
// [graph]: https://pkg.go.dev/github.com/matzehuels/stackrun/pkg/graph
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/stackrun/pkg/render/nodelink
package pkg
