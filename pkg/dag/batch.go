package dag

import (
	"github.com/matzehuels/stackrun/pkg/errors"
	"github.com/matzehuels/stackrun/pkg/manifest"
)

// Batches groups pkgs into rounds that could run in sequence, each round
// holding packages that do not depend on one another. A collapsed cycle
// forms a round of its own members.
//
// This is the sequential counterpart of the topological runner and backs
// `ls --toposort`.
func Batches(pkgs []*manifest.Package, opts QueryOptions) ([][]*manifest.Package, error) {
	q, err := NewQueryGraph(pkgs, opts)
	if err != nil {
		return nil, err
	}

	var batches [][]*manifest.Package
	for {
		nodes := q.AvailablePackages()
		if len(nodes) == 0 {
			break
		}
		batch := make([]*manifest.Package, len(nodes))
		for i, n := range nodes {
			q.MarkAsTaken(n.Name)
			batch[i] = n.Pkg
		}
		for _, n := range nodes {
			q.MarkAsDone(n)
		}
		batches = append(batches, batch)
	}

	if q.Pending() > 0 {
		return nil, errors.New(errors.ErrCodeStalled,
			"%d packages could not be ordered", q.Pending())
	}
	return batches, nil
}

// Sort returns pkgs flattened from [Batches].
func Sort(pkgs []*manifest.Package, opts QueryOptions) ([]*manifest.Package, error) {
	batches, err := Batches(pkgs, opts)
	if err != nil {
		return nil, err
	}
	out := make([]*manifest.Package, 0, len(pkgs))
	for _, b := range batches {
		out = append(out, b...)
	}
	return out, nil
}
