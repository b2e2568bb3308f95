package dag

import "github.com/matzehuels/stackrun/pkg/manifest"

// Node is the graph vertex for one package.
//
// LocalDependencies holds the names of sibling packages this package depends
// on; LocalDependents holds the back-edges. Both only ever reference names
// that were present in the graph when it was built, and the graph keeps them
// consistent: A.LocalDependencies has B iff B.LocalDependents has A.
type Node struct {
	Name string            // Package name, the graph key
	Pkg  *manifest.Package // Referenced, not owned

	LocalDependencies *NameSet
	LocalDependents   *NameSet

	// ExternalDependencies are declared dependencies that did not become
	// local edges (registry packages, or siblings whose range did not match).
	ExternalDependencies map[string]string

	cycle *CyclicNode // set while the node is collapsed into a cycle
}

func newNode(pkg *manifest.Package) *Node {
	return &Node{
		Name:                 pkg.Name,
		Pkg:                  pkg,
		LocalDependencies:    newNameSet(),
		LocalDependents:      newNameSet(),
		ExternalDependencies: make(map[string]string),
	}
}

// Cycle returns the collapsed cycle this node currently belongs to, or nil.
// A node leaves its cycle once the cycle has been handed out for scheduling.
func (n *Node) Cycle() *CyclicNode { return n.cycle }

// String returns the package name.
func (n *Node) String() string { return n.Name }
