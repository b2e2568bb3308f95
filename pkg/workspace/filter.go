package workspace

import (
	"github.com/bmatcuk/doublestar"

	"github.com/matzehuels/stackrun/pkg/dag"
	"github.com/matzehuels/stackrun/pkg/errors"
	"github.com/matzehuels/stackrun/pkg/manifest"
)

// FilterOptions selects a subset of packages.
type FilterOptions struct {
	Scope     []string // Name globs to include; empty includes all
	Ignore    []string // Name globs to exclude
	NoPrivate bool     // Drop packages marked private

	IncludeDependencies bool // Add transitive local dependencies of the selection
	IncludeDependents   bool // Add transitive local dependents of the selection

	Script string // Keep only packages defining this script, applied last
}

// Filter applies opts to pkgs, preserving input order. graph is only needed
// for the include options and must have been built from pkgs.
func Filter(pkgs []*manifest.Package, graph *dag.PackageGraph, opts FilterOptions) ([]*manifest.Package, error) {
	var selected []*manifest.Package
	for _, p := range pkgs {
		if len(opts.Scope) > 0 {
			ok, err := matchAny(opts.Scope, p.Name)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		ignored, err := matchAny(opts.Ignore, p.Name)
		if err != nil {
			return nil, err
		}
		if ignored || (opts.NoPrivate && p.Private) {
			continue
		}
		selected = append(selected, p)
	}

	if graph != nil && (opts.IncludeDependencies || opts.IncludeDependents) {
		expanded := selected
		if opts.IncludeDependencies {
			expanded = graph.AddDependencies(expanded)
		}
		if opts.IncludeDependents {
			expanded = graph.AddDependents(expanded)
		}
		selected = inOrder(pkgs, expanded)
	}

	if opts.Script != "" {
		withScript := selected[:0:0]
		for _, p := range selected {
			if p.HasScript(opts.Script) {
				withScript = append(withScript, p)
			}
		}
		selected = withScript
	}
	return selected, nil
}

func matchAny(globs []string, name string) (bool, error) {
	for _, g := range globs {
		ok, err := doublestar.Match(g, name)
		if err != nil {
			return false, errors.Wrap(errors.ErrCodeInvalidInput, err, "bad package glob %q", g)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// inOrder returns the members of subset in the order they appear in all.
func inOrder(all, subset []*manifest.Package) []*manifest.Package {
	keep := make(map[string]bool, len(subset))
	for _, p := range subset {
		keep[p.Name] = true
	}
	out := make([]*manifest.Package, 0, len(subset))
	for _, p := range all {
		if keep[p.Name] {
			out = append(out, p)
		}
	}
	return out
}
