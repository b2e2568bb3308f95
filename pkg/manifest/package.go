package manifest

import (
	"maps"
	"slices"
)

// Graph types select which dependency maps produce graph edges.
const (
	// GraphDependencies counts only dependencies and optionalDependencies.
	GraphDependencies = "dependencies"
	// GraphAllDependencies also counts devDependencies and peerDependencies.
	GraphAllDependencies = "allDependencies"
)

// Package is the in-memory record of one package.json.
//
// The zero value is not useful; construct records with [Parse] or [ParseFile],
// or directly in tests. Records are treated as immutable once handed to the
// graph.
type Package struct {
	Name     string            // Unique package name (graph key)
	Version  string            // Semver version, may be empty
	Location string            // Directory containing package.json
	Private  bool              // "private": true, never published
	Scripts  map[string]string // npm lifecycle scripts

	Dependencies         map[string]string // name -> version range
	DevDependencies      map[string]string
	PeerDependencies     map[string]string
	OptionalDependencies map[string]string
}

// String returns "name@version", or just the name for unversioned packages.
func (p *Package) String() string {
	if p.Version == "" {
		return p.Name
	}
	return p.Name + "@" + p.Version
}

// HasScript reports whether the package defines the named npm script.
func (p *Package) HasScript(name string) bool {
	_, ok := p.Scripts[name]
	return ok
}

// AllDependencies merges every dependency map into one.
// When a name appears in several maps, the first of dependencies, optional,
// peer and dev wins.
func (p *Package) AllDependencies() map[string]string {
	return merge(p.Dependencies, p.OptionalDependencies, p.PeerDependencies, p.DevDependencies)
}

// DependenciesFor returns the dependency map relevant for graphType.
// Unknown graph types behave like [GraphAllDependencies].
func (p *Package) DependenciesFor(graphType string) map[string]string {
	if graphType == GraphDependencies {
		return merge(p.Dependencies, p.OptionalDependencies)
	}
	return p.AllDependencies()
}

// DependencyNames returns the sorted names from DependenciesFor(graphType).
func (p *Package) DependencyNames(graphType string) []string {
	return slices.Sorted(maps.Keys(p.DependenciesFor(graphType)))
}

func merge(sources ...map[string]string) map[string]string {
	out := make(map[string]string)
	for _, src := range sources {
		for name, spec := range src {
			if _, exists := out[name]; !exists {
				out[name] = spec
			}
		}
	}
	return out
}
