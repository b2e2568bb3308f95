// Package dag models the dependency graph between the packages of a
// monorepo and answers scheduling queries over it.
//
// # Overview
//
// A [PackageGraph] is built from a list of package records. Every declared
// dependency that names a sibling package, and whose version range the
// sibling satisfies, becomes a local edge. Everything else is an external
// dependency and is only recorded:
//
//	g, err := dag.New(pkgs, dag.Options{GraphType: dag.GraphAllDependencies})
//	node := g.Get("@acme/app")
//	node.LocalDependencies.Values() // ["@acme/core"]
//
// Nodes are keyed by package name and iterate in the order the packages
// were supplied, so every query below is deterministic.
//
// # Locality
//
// [Resolves] decides whether a declaration points at a sibling. Semver
// ranges are checked with [github.com/Masterminds/semver/v3]. The workspace
// protocol ("workspace:*", "workspace:^1.0.0"), file: and link: paths, and
// npm: aliases are understood. [ForceLocal] overrides the check for all
// packages or for a named set.
//
// # Cycles
//
// Real monorepos contain cycles. [CollapseCycles] finds every strongly
// connected group with Tarjan's algorithm and folds it into a [CyclicNode]
// whose edges are the union of its members' external edges. Cycles are
// either rejected with a CYCLE_DETECTED error or reported as warnings:
//
//	a -> b -> c -> a
//
// # Scheduling
//
// [QueryGraph] layers a take/done protocol over the graph. Plain nodes with
// no remaining dependencies are available first; a collapsed cycle is only
// offered once no plain node is available and all of the cycle's external
// dependencies are done. [Batches] drives the protocol to completion and
// returns the resulting rounds.
//
// # Concurrency
//
// None of the types in this package are safe for concurrent mutation. The
// runner package owns a QueryGraph from a single goroutine.
package dag
