package dag

import (
	"slices"

	"github.com/matzehuels/stackrun/pkg/manifest"
)

// QueryOptions configures a [QueryGraph].
type QueryOptions struct {
	GraphType    GraphType
	ForceLocal   ForceLocal
	RejectCycles bool

	// Warn receives cycle warnings when RejectCycles is false. May be nil.
	Warn func(format string, args ...any)
}

// QueryGraph answers "what can run next?" while packages are being
// processed in dependency order.
//
// The protocol is: call [QueryGraph.AvailablePackages], mark each returned
// node with [QueryGraph.MarkAsTaken], and call [QueryGraph.MarkAsDone] when
// its work finishes. A QueryGraph is not safe for concurrent use; callers
// serialize access.
type QueryGraph struct {
	graph  *PackageGraph
	cycles []*CyclicNode // Not yet handed out
	taken  map[string]bool
}

// NewQueryGraph builds the package graph for pkgs and collapses its cycles.
func NewQueryGraph(pkgs []*manifest.Package, opts QueryOptions) (*QueryGraph, error) {
	g, err := New(pkgs, Options{GraphType: opts.GraphType, ForceLocal: opts.ForceLocal})
	if err != nil {
		return nil, err
	}
	cycles, err := CollapseCycles(g, opts.RejectCycles, opts.Warn)
	if err != nil {
		return nil, err
	}
	return &QueryGraph{
		graph:  g,
		cycles: cycles,
		taken:  make(map[string]bool),
	}, nil
}

// Graph returns the underlying package graph. Nodes disappear from it as
// they are marked done.
func (q *QueryGraph) Graph() *PackageGraph { return q.graph }

// AvailablePackages returns the nodes whose dependencies are all done.
//
// Plain nodes that are neither taken nor part of a pending cycle are
// returned in insertion order. Only when there are none does the first
// ready cycle get returned, as its flattened members; that cycle is then
// released for good and will not be returned again. An empty result means
// nothing can start until in-flight work completes.
func (q *QueryGraph) AvailablePackages() []*Node {
	var ready []*Node
	for _, node := range q.graph.Values() {
		if q.taken[node.Name] || node.cycle != nil {
			continue
		}
		if node.LocalDependencies.Len() == 0 {
			ready = append(ready, node)
		}
	}
	if len(ready) > 0 {
		return ready
	}

	for i, c := range q.cycles {
		if c.LocalDependencies.Len() > 0 {
			continue
		}
		q.cycles = slices.Delete(q.cycles, i, i+1)
		for _, m := range c.Members {
			m.cycle = nil
		}
		return c.Flatten()
	}
	return nil
}

// MarkAsTaken records that name has been handed to a worker so it is not
// returned again. Its edges stay in place: dependents remain blocked until
// the node is marked done.
func (q *QueryGraph) MarkAsTaken(name string) {
	q.taken[name] = true
}

// MarkAsDone removes node from the graph, unblocking its dependents and any
// pending cycle that was waiting on it.
func (q *QueryGraph) MarkAsDone(node *Node) {
	q.graph.Remove(node)
	delete(q.taken, node.Name)
	for _, c := range q.cycles {
		c.Unlink(node.Name)
	}
}

// Pending returns the number of nodes not yet marked done.
func (q *QueryGraph) Pending() int { return q.graph.Len() }

// Cycles returns the cycles not yet handed out.
func (q *QueryGraph) Cycles() []*CyclicNode { return slices.Clone(q.cycles) }
