package dag

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/matzehuels/stackrun/pkg/errors"
	"github.com/matzehuels/stackrun/pkg/manifest"
)

// GraphType selects which dependency maps contribute edges.
type GraphType string

const (
	// GraphDependencies uses dependencies and optionalDependencies only.
	GraphDependencies GraphType = manifest.GraphDependencies
	// GraphAllDependencies also uses devDependencies and peerDependencies.
	GraphAllDependencies GraphType = manifest.GraphAllDependencies
)

// ParseGraphType validates a graph type name. The empty string selects
// [GraphAllDependencies].
func ParseGraphType(s string) (GraphType, error) {
	switch GraphType(s) {
	case "":
		return GraphAllDependencies, nil
	case GraphDependencies, GraphAllDependencies:
		return GraphType(s), nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput,
		"unknown graph type %q (want %q or %q)", s, GraphDependencies, GraphAllDependencies)
}

// ForceLocal forces sibling dependencies to become local edges regardless of
// their version range. The zero value forces nothing.
type ForceLocal struct {
	All   bool                // Every sibling dependency is local
	Names map[string]struct{} // Only these sibling names are local
}

// ForceLocalNames returns a ForceLocal that applies to the given names.
func ForceLocalNames(names ...string) ForceLocal {
	f := ForceLocal{Names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		f.Names[n] = struct{}{}
	}
	return f
}

// Has reports whether name is forced local.
func (f ForceLocal) Has(name string) bool {
	if f.All {
		return true
	}
	_, ok := f.Names[name]
	return ok
}

// Options configures graph construction.
type Options struct {
	GraphType  GraphType  // Empty means GraphAllDependencies
	ForceLocal ForceLocal // Siblings linked regardless of range
}

// PackageGraph is the dependency graph of a set of sibling packages.
//
// Nodes are keyed by package name and iterate in the order their packages
// were supplied. Edges only connect packages of the set; everything else
// is recorded per node as an external dependency.
//
// A PackageGraph is not safe for concurrent mutation.
type PackageGraph struct {
	nodes     map[string]*Node
	order     []string
	graphType GraphType
}

// New builds the graph for pkgs.
//
// Duplicate names are rejected before any edge is computed. For every
// declared dependency naming a sibling, a local edge is created when the
// declaration resolves to that sibling; see [Resolves] for the rules.
func New(pkgs []*manifest.Package, opts Options) (*PackageGraph, error) {
	graphType := opts.GraphType
	if graphType == "" {
		graphType = GraphAllDependencies
	}

	g := &PackageGraph{
		nodes:     make(map[string]*Node, len(pkgs)),
		order:     make([]string, 0, len(pkgs)),
		graphType: graphType,
	}

	for _, pkg := range pkgs {
		if pkg == nil || pkg.Name == "" {
			return nil, errors.New(errors.ErrCodeInvalidPackage, "package record without a name")
		}
		if existing, ok := g.nodes[pkg.Name]; ok {
			return nil, errors.New(errors.ErrCodeDuplicatePackage,
				"package name %q used in multiple packages:\n\t%s\n\t%s",
				pkg.Name, existing.Pkg.Location, pkg.Location)
		}
		g.nodes[pkg.Name] = newNode(pkg)
		g.order = append(g.order, pkg.Name)
	}

	for _, name := range g.order {
		node := g.nodes[name]
		deps := node.Pkg.DependenciesFor(string(graphType))
		for _, depName := range node.Pkg.DependencyNames(string(graphType)) {
			spec := deps[depName]
			sibling, ok := g.nodes[depName]
			if !ok || sibling == node || !Resolves(spec, node.Pkg, sibling.Pkg, opts.ForceLocal) {
				node.ExternalDependencies[depName] = spec
				continue
			}
			node.LocalDependencies.Add(depName)
			sibling.LocalDependents.Add(name)
		}
	}

	return g, nil
}

// Resolves reports whether the dependency spec declared by from should be
// satisfied by the sibling package to.
//
// The sibling matches when it is forced local, when spec is a bare
// workspace protocol ("workspace:*", "workspace:^", "workspace:~"), when a
// file:, link: or portal: spec points at the sibling's directory, or when the
// sibling's version satisfies the semver range (after stripping "workspace:").
func Resolves(spec string, from, to *manifest.Package, force ForceLocal) bool {
	if force.Has(to.Name) {
		return true
	}
	spec = strings.TrimSpace(spec)

	if rest, ok := strings.CutPrefix(spec, "workspace:"); ok {
		switch rest {
		case "", "*", "^", "~":
			return true
		}
		spec = rest
	}

	for _, proto := range []string{"file:", "link:", "portal:"} {
		if target, ok := strings.CutPrefix(spec, proto); ok {
			if !filepath.IsAbs(target) {
				target = filepath.Join(from.Location, target)
			}
			return filepath.Clean(target) == filepath.Clean(to.Location)
		}
	}

	if alias, ok := strings.CutPrefix(spec, "npm:"); ok {
		name, rng := splitAlias(alias)
		if name != to.Name {
			return false
		}
		spec = rng
	}

	if to.Version == "" {
		return false
	}
	version, err := semver.NewVersion(to.Version)
	if err != nil {
		return false
	}
	switch spec {
	case "", "*", "x", "X":
		return true
	}
	constraint, err := semver.NewConstraint(spec)
	if err != nil {
		return false
	}
	return constraint.Check(version)
}

// splitAlias splits "name@range" where name may be scoped ("@scope/name").
func splitAlias(s string) (name, rng string) {
	at := strings.LastIndex(s, "@")
	if at <= 0 {
		return s, ""
	}
	return s[:at], s[at+1:]
}

// GraphType returns the graph type the edges were computed for.
func (g *PackageGraph) GraphType() GraphType { return g.graphType }

// Get returns the node for name, or nil.
func (g *PackageGraph) Get(name string) *Node { return g.nodes[name] }

// Has reports whether a node named name exists.
func (g *PackageGraph) Has(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Len returns the number of nodes.
func (g *PackageGraph) Len() int { return len(g.nodes) }

// Names returns node names in insertion order.
func (g *PackageGraph) Names() []string { return slices.Clone(g.order) }

// Values returns the nodes in insertion order.
func (g *PackageGraph) Values() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.nodes[name])
	}
	return out
}

// Packages returns the package records in insertion order.
func (g *PackageGraph) Packages() []*manifest.Package {
	out := make([]*manifest.Package, 0, len(g.order))
	for _, name := range g.order {
		out = append(out, g.nodes[name].Pkg)
	}
	return out
}

// Delete removes the node named name and scrubs it from every other node's
// edge sets. It reports whether the node existed.
func (g *PackageGraph) Delete(name string) bool {
	node, ok := g.nodes[name]
	if !ok {
		return false
	}
	delete(g.nodes, name)
	g.order = slices.DeleteFunc(g.order, func(n string) bool { return n == name })

	for _, dep := range node.LocalDependencies.Values() {
		if other := g.nodes[dep]; other != nil {
			other.LocalDependents.Delete(name)
		}
	}
	for _, dependent := range node.LocalDependents.Values() {
		if other := g.nodes[dependent]; other != nil {
			other.LocalDependencies.Delete(name)
		}
	}
	return true
}

// Remove is Delete for a node value.
func (g *PackageGraph) Remove(node *Node) bool {
	if node == nil {
		return false
	}
	return g.Delete(node.Name)
}

// Edge is a local dependency edge: From depends on To.
type Edge struct {
	From string
	To   string
}

// Edges returns all local edges, ordered by source node then insertion.
func (g *PackageGraph) Edges() []Edge {
	var edges []Edge
	for _, name := range g.order {
		for _, dep := range g.nodes[name].LocalDependencies.Values() {
			edges = append(edges, Edge{From: name, To: dep})
		}
	}
	return edges
}

// AddDependencies extends pkgs with every package they transitively depend
// on locally. Input packages come first, followed by discoveries in
// breadth-first order. Packages unknown to the graph are dropped.
func (g *PackageGraph) AddDependencies(pkgs []*manifest.Package) []*manifest.Package {
	return g.extend(pkgs, func(n *Node) *NameSet { return n.LocalDependencies })
}

// AddDependents extends pkgs with every package that transitively depends on
// them locally.
func (g *PackageGraph) AddDependents(pkgs []*manifest.Package) []*manifest.Package {
	return g.extend(pkgs, func(n *Node) *NameSet { return n.LocalDependents })
}

func (g *PackageGraph) extend(pkgs []*manifest.Package, edges func(*Node) *NameSet) []*manifest.Package {
	seen := make(map[string]bool, len(pkgs))
	var queue []*Node
	for _, pkg := range pkgs {
		node := g.nodes[pkg.Name]
		if node == nil || seen[node.Name] {
			continue
		}
		seen[node.Name] = true
		queue = append(queue, node)
	}

	out := make([]*manifest.Package, 0, len(queue))
	for i := 0; i < len(queue); i++ {
		node := queue[i]
		out = append(out, node.Pkg)
		for _, name := range edges(node).Values() {
			if !seen[name] {
				seen[name] = true
				queue = append(queue, g.nodes[name])
			}
		}
	}
	return out
}
