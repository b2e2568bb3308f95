// Package manifest provides the package record consumed by the graph and the
// runner, along with parsing of package.json files.
//
// # Overview
//
// A [Package] is a read-only view over one package.json: its name, version,
// location on disk, scripts and the four dependency maps npm knows about.
// Records are constructed once during discovery and never mutated afterwards;
// the graph and the scheduler only ever read them.
//
// # Parsing
//
// Parse a manifest from disk with [ParseFile]:
//
//	pkg, err := manifest.ParseFile("packages/core/package.json")
//	fmt.Println(pkg.Name, pkg.Version, pkg.Location)
//
// Or from bytes with [Parse], giving the directory that should be recorded as
// the package location.
//
// # Dependency Selection
//
// [Package.DependenciesFor] returns the dependency map that the graph should
// consider for a given graph type. "dependencies" covers runtime and optional
// dependencies; "allDependencies" adds dev and peer dependencies.
package manifest
