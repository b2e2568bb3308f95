package dag

import (
	"slices"
	"strings"

	"github.com/matzehuels/stackrun/pkg/errors"
)

// CyclicNode is a strongly connected group of packages scheduled as a unit.
//
// Its LocalDependencies and LocalDependents are the union of its members'
// edges, excluding edges between members. The cycle becomes ready once every
// one of those external dependencies is done.
type CyclicNode struct {
	Members []*Node // In graph insertion order

	LocalDependencies *NameSet
	LocalDependents   *NameSet

	members map[string]bool
	chains  []string
}

func newCyclicNode(members []*Node) *CyclicNode {
	c := &CyclicNode{
		Members:           members,
		LocalDependencies: newNameSet(),
		LocalDependents:   newNameSet(),
		members:           make(map[string]bool, len(members)),
	}
	for _, m := range members {
		c.members[m.Name] = true
	}
	for _, m := range members {
		for _, dep := range m.LocalDependencies.Values() {
			if !c.members[dep] {
				c.LocalDependencies.Add(dep)
			}
		}
		for _, dependent := range m.LocalDependents.Values() {
			if !c.members[dependent] {
				c.LocalDependents.Add(dependent)
			}
		}
	}
	c.chains = c.findChains()
	return c
}

// Has reports whether name is a member of the cycle.
func (c *CyclicNode) Has(name string) bool { return c.members[name] }

// Names returns the member names in order.
func (c *CyclicNode) Names() []string {
	names := make([]string, len(c.Members))
	for i, m := range c.Members {
		names[i] = m.Name
	}
	return names
}

// Flatten returns the member nodes in order.
func (c *CyclicNode) Flatten() []*Node {
	return append([]*Node(nil), c.Members...)
}

// Chains returns the cycle paths through the members, such as
// "a -> b -> c -> a". Every member appears in at least one chain.
func (c *CyclicNode) Chains() []string {
	return append([]string(nil), c.chains...)
}

// String returns the chains joined by ", ".
func (c *CyclicNode) String() string { return strings.Join(c.chains, ", ") }

// Unlink drops name from the cycle's external edges.
func (c *CyclicNode) Unlink(name string) {
	c.LocalDependencies.Delete(name)
	c.LocalDependents.Delete(name)
}

// findChains walks intra-cycle dependency edges to describe the cycle. Each
// chain is the shortest loop through a member not yet covered by an earlier
// chain, so small groups produce a single chain.
func (c *CyclicNode) findChains() []string {
	byName := make(map[string]*Node, len(c.Members))
	for _, m := range c.Members {
		byName[m.Name] = m
	}

	covered := make(map[string]bool, len(c.Members))
	var chains []string
	for _, start := range c.Members {
		if covered[start.Name] {
			continue
		}
		path := c.shortestLoop(start, byName)
		if len(path) == 0 {
			continue
		}
		for _, name := range path {
			covered[name] = true
		}
		chains = append(chains, strings.Join(append(path, start.Name), " -> "))
	}
	return chains
}

// shortestLoop runs a breadth-first search from start over member edges and
// returns the path of the first loop back to start, beginning with start.
func (c *CyclicNode) shortestLoop(start *Node, byName map[string]*Node) []string {
	parent := map[string]string{start.Name: ""}
	queue := []string{start.Name}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, dep := range byName[cur].LocalDependencies.Values() {
			if !c.members[dep] {
				continue
			}
			if dep == start.Name {
				var path []string
				for n := cur; n != ""; n = parent[n] {
					path = append([]string{n}, path...)
				}
				return path
			}
			if _, seen := parent[dep]; !seen {
				parent[dep] = cur
				queue = append(queue, dep)
			}
		}
	}
	return nil
}

// CollapseCycles finds every dependency cycle in g and collapses each one
// into a [CyclicNode]. Cycles are returned ordered by their earliest member.
//
// Members of a collapsed cycle leave the plain node pool (see [Node.Cycle])
// until the cycle is handed out by [QueryGraph.AvailablePackages]. Nodes
// already collapsed are ignored, so calling this twice is harmless.
//
// With reject set, any cycle fails the call with ErrCodeCycleDetected naming
// every chain. Otherwise each chain is reported through warn, which may be
// nil.
func CollapseCycles(g *PackageGraph, reject bool, warn func(format string, args ...any)) ([]*CyclicNode, error) {
	groups := stronglyConnected(g)
	if len(groups) == 0 {
		return nil, nil
	}

	cycles := make([]*CyclicNode, 0, len(groups))
	var chains []string
	for _, members := range groups {
		c := newCyclicNode(members)
		cycles = append(cycles, c)
		chains = append(chains, c.chains...)
	}

	if reject {
		return nil, errors.New(errors.ErrCodeCycleDetected,
			"dependency cycles detected, you should fix these!\n\t%s", strings.Join(chains, "\n\t"))
	}
	if warn != nil {
		warn("dependency cycles detected, you should fix these!")
		for _, chain := range chains {
			warn("cycle: %s", chain)
		}
	}

	for _, c := range cycles {
		for _, m := range c.Members {
			m.cycle = c
		}
	}
	return cycles, nil
}

// stronglyConnected returns every component with more than one member, using
// Tarjan's algorithm. Members are in graph insertion order and components
// are ordered by their first member.
func stronglyConnected(g *PackageGraph) [][]*Node {
	position := make(map[string]int, len(g.order))
	for i, name := range g.order {
		position[name] = i
	}

	var (
		counter  int
		index    = make(map[string]int)
		lowlink  = make(map[string]int)
		onStack  = make(map[string]bool)
		stack    []string
		rawSCCs  [][]string
		visit    func(string)
		eligible = func(name string) bool {
			n := g.nodes[name]
			return n != nil && n.cycle == nil
		}
	)

	visit = func(v string) {
		index[v] = counter
		lowlink[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.nodes[v].LocalDependencies.Values() {
			if !eligible(w) {
				continue
			}
			if _, seen := index[w]; !seen {
				visit(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], index[w])
			}
		}

		if lowlink[v] != index[v] {
			return
		}
		var scc []string
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			scc = append(scc, w)
			if w == v {
				break
			}
		}
		if len(scc) > 1 {
			rawSCCs = append(rawSCCs, scc)
		}
	}

	for _, name := range g.order {
		if _, seen := index[name]; !seen && eligible(name) {
			visit(name)
		}
	}

	groups := make([][]*Node, 0, len(rawSCCs))
	for _, scc := range rawSCCs {
		slices.SortFunc(scc, func(a, b string) int { return position[a] - position[b] })
		members := make([]*Node, len(scc))
		for i, name := range scc {
			members[i] = g.nodes[name]
		}
		groups = append(groups, members)
	}
	slices.SortFunc(groups, func(a, b []*Node) int {
		return position[a[0].Name] - position[b[0].Name]
	})
	return groups
}
