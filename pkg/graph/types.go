package graph

import (
	"slices"

	"github.com/matzehuels/stackrun/pkg/dag"
	"github.com/matzehuels/stackrun/pkg/manifest"
)

// Graph is the serialization format of a package graph.
//
// Nodes keep workspace order. Row is the batch a node would run in;
// packages sharing a row have no dependencies on one another. Cycles lists
// the members of every collapsed cycle, and Node.Cycle points into it
// (1-based, 0 for packages outside any cycle).
type Graph struct {
	Nodes  []Node     `json:"nodes"`
	Edges  []Edge     `json:"edges"`
	Cycles [][]string `json:"cycles,omitempty"`
}

// Node is one workspace package.
type Node struct {
	ID       string            `json:"id"`
	Version  string            `json:"version,omitempty"`
	Location string            `json:"location,omitempty"`
	Private  bool              `json:"private,omitempty"`
	Row      int               `json:"row"`
	Cycle    int               `json:"cycle,omitempty"`
	External map[string]string `json:"external,omitempty"` // Non-local dependency specs
}

// Edge points from a package to a local dependency.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// InCycle reports whether the node belongs to a collapsed cycle.
func (n *Node) InCycle() bool { return n.Cycle > 0 }

// Build computes the graph of pkgs. Cycles are collapsed according to
// opts; with opts.RejectCycles set a cycle fails the build. Warnings go to
// opts.Warn once.
func Build(pkgs []*manifest.Package, opts dag.QueryOptions) (Graph, error) {
	g, err := dag.New(pkgs, dag.Options{GraphType: opts.GraphType, ForceLocal: opts.ForceLocal})
	if err != nil {
		return Graph{}, err
	}
	cycles, err := dag.CollapseCycles(g, opts.RejectCycles, opts.Warn)
	if err != nil {
		return Graph{}, err
	}

	quiet := opts
	quiet.Warn = nil
	batches, err := dag.Batches(pkgs, quiet)
	if err != nil {
		return Graph{}, err
	}
	rows := make(map[string]int, len(pkgs))
	for i, batch := range batches {
		for _, p := range batch {
			rows[p.Name] = i
		}
	}

	return FromPackageGraph(g, cycles, rows), nil
}

// FromPackageGraph converts g. rows may be nil, leaving every Row at 0.
func FromPackageGraph(g *dag.PackageGraph, cycles []*dag.CyclicNode, rows map[string]int) Graph {
	cycleIndex := make(map[string]int)
	out := Graph{
		Nodes: make([]Node, 0, g.Len()),
		Edges: []Edge{},
	}
	for i, c := range cycles {
		names := c.Names()
		out.Cycles = append(out.Cycles, names)
		for _, name := range names {
			cycleIndex[name] = i + 1
		}
	}

	for _, n := range g.Values() {
		node := Node{
			ID:       n.Name,
			Version:  n.Pkg.Version,
			Location: n.Pkg.Location,
			Private:  n.Pkg.Private,
			Row:      rows[n.Name],
			Cycle:    cycleIndex[n.Name],
		}
		if len(n.ExternalDependencies) > 0 {
			node.External = n.ExternalDependencies
		}
		out.Nodes = append(out.Nodes, node)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{From: e.From, To: e.To})
	}
	return out
}

// Adjacency maps every node to its local dependencies, sorted by name.
func (g Graph) Adjacency() map[string][]string {
	out := make(map[string][]string, len(g.Nodes))
	for _, n := range g.Nodes {
		out[n.ID] = []string{}
	}
	for _, e := range g.Edges {
		out[e.From] = append(out[e.From], e.To)
	}
	for _, deps := range out {
		slices.Sort(deps)
	}
	return out
}

// Node returns the node with id, or nil.
func (g Graph) Node(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}
