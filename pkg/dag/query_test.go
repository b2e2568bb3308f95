package dag

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/stackrun/pkg/errors"
	"github.com/matzehuels/stackrun/pkg/manifest"
)

func nodeNames(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func batchNames(batches [][]*manifest.Package) [][]string {
	out := make([][]string, len(batches))
	for i, b := range batches {
		for _, p := range b {
			out[i] = append(out[i], p.Name)
		}
	}
	return out
}

func TestQueryGraph_TakenStaysBlocking(t *testing.T) {
	q, err := NewQueryGraph([]*manifest.Package{
		pkg("c", "1.0.0"),
		pkg("a", "1.0.0", "c", "^1.0.0"),
		pkg("b", "1.0.0", "c", "^1.0.0"),
	}, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	first := q.AvailablePackages()
	if diff := cmp.Diff([]string{"c"}, nodeNames(first)); diff != "" {
		t.Fatalf("first AvailablePackages() mismatch (-want +got):\n%s", diff)
	}

	q.MarkAsTaken("c")
	if got := q.AvailablePackages(); len(got) != 0 {
		t.Errorf("AvailablePackages() after take = %v, want none while c runs", nodeNames(got))
	}

	q.MarkAsDone(first[0])
	if diff := cmp.Diff([]string{"a", "b"}, nodeNames(q.AvailablePackages())); diff != "" {
		t.Errorf("AvailablePackages() after done mismatch (-want +got):\n%s", diff)
	}
	if q.Pending() != 2 {
		t.Errorf("Pending() = %d, want 2", q.Pending())
	}
}

func TestQueryGraph_RejectCycles(t *testing.T) {
	_, err := NewQueryGraph(triangle(), QueryOptions{RejectCycles: true})
	if !errors.Is(err, errors.ErrCodeCycleDetected) {
		t.Errorf("NewQueryGraph() error = %v, want code %s", err, errors.ErrCodeCycleDetected)
	}
}

func TestQueryGraph_CycleSurfacedOnce(t *testing.T) {
	q, err := NewQueryGraph(triangle(), QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(q.Cycles()) != 1 {
		t.Fatalf("Cycles() = %d, want 1", len(q.Cycles()))
	}

	nodes := q.AvailablePackages()
	if diff := cmp.Diff([]string{"a", "b", "c"}, nodeNames(nodes)); diff != "" {
		t.Fatalf("AvailablePackages() mismatch (-want +got):\n%s", diff)
	}
	if len(q.Cycles()) != 0 {
		t.Error("cycle should be released after it was returned")
	}
	for _, n := range nodes {
		q.MarkAsTaken(n.Name)
	}
	if got := q.AvailablePackages(); len(got) != 0 {
		t.Errorf("AvailablePackages() = %v, want none", nodeNames(got))
	}
	for _, n := range nodes {
		q.MarkAsDone(n)
	}
	if q.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", q.Pending())
	}
}

func TestQueryGraph_PlainNodesBeforeCycles(t *testing.T) {
	q, err := NewQueryGraph([]*manifest.Package{
		pkg("x", "1.0.0", "y", "^1.0.0"),
		pkg("y", "1.0.0", "x", "^1.0.0"),
		pkg("solo", "1.0.0"),
	}, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	first := q.AvailablePackages()
	if diff := cmp.Diff([]string{"solo"}, nodeNames(first)); diff != "" {
		t.Fatalf("AvailablePackages() mismatch (-want +got):\n%s", diff)
	}
	q.MarkAsTaken("solo")
	if diff := cmp.Diff([]string{"x", "y"}, nodeNames(q.AvailablePackages())); diff != "" {
		t.Errorf("cycle should follow once no plain node is available (-want +got):\n%s", diff)
	}
}

func TestBatches(t *testing.T) {
	tests := []struct {
		name string
		pkgs []*manifest.Package
		want [][]string
	}{
		{
			name: "shared dependency",
			pkgs: []*manifest.Package{
				pkg("c", "1.0.0"),
				pkg("a", "1.0.0", "c", "^1.0.0"),
				pkg("b", "1.0.0", "c", "^1.0.0"),
			},
			want: [][]string{{"c"}, {"a", "b"}},
		},
		{
			name: "full cycle",
			pkgs: triangle(),
			want: [][]string{{"a", "b", "c"}},
		},
		{
			name: "chain into cycle",
			pkgs: []*manifest.Package{
				pkg("d", "1.0.0"),
				pkg("e", "1.0.0", "d", "^1.0.0"),
				pkg("f", "1.0.0", "e", "^1.0.0", "g", "^1.0.0"),
				pkg("g", "1.0.0", "f", "^1.0.0"),
			},
			want: [][]string{{"d"}, {"e"}, {"f", "g"}},
		},
		{
			name: "cycle feeding plain node",
			pkgs: []*manifest.Package{
				pkg("app", "1.0.0", "x", "^1.0.0"),
				pkg("x", "1.0.0", "y", "^1.0.0"),
				pkg("y", "1.0.0", "x", "^1.0.0"),
			},
			want: [][]string{{"x", "y"}, {"app"}},
		},
		{
			name: "independent",
			pkgs: []*manifest.Package{pkg("one", "1.0.0"), pkg("two", "1.0.0")},
			want: [][]string{{"one", "two"}},
		},
		{
			name: "empty",
			pkgs: nil,
			want: [][]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Batches(tt.pkgs, QueryOptions{})
			if err != nil {
				t.Fatalf("Batches() error: %v", err)
			}
			if diff := cmp.Diff(tt.want, batchNames(got)); diff != "" {
				t.Errorf("Batches() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBatches_Independence(t *testing.T) {
	pkgs := []*manifest.Package{
		pkg("base", "1.0.0"),
		pkg("util", "1.0.0", "base", "^1.0.0"),
		pkg("log", "1.0.0", "base", "^1.0.0"),
		pkg("core", "1.0.0", "util", "^1.0.0", "log", "^1.0.0"),
		pkg("cli", "1.0.0", "core", "^1.0.0", "util", "^1.0.0"),
		pkg("web", "1.0.0", "core", "^1.0.0"),
	}
	g := mustNew(t, pkgs, Options{})
	batches, err := Batches(pkgs, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}

	round := make(map[string]int)
	for i, b := range batches {
		for _, p := range b {
			round[p.Name] = i
		}
	}
	if len(round) != len(pkgs) {
		t.Fatalf("batched %d packages, want %d", len(round), len(pkgs))
	}
	for _, e := range g.Edges() {
		if round[e.From] <= round[e.To] {
			t.Errorf("%s (round %d) must come after its dependency %s (round %d)",
				e.From, round[e.From], e.To, round[e.To])
		}
	}
}

func TestSort(t *testing.T) {
	got, err := Sort([]*manifest.Package{
		pkg("app", "1.0.0", "lib", "^1.0.0"),
		pkg("lib", "1.0.0"),
	}, QueryOptions{})
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, len(got))
	for i, p := range got {
		names[i] = p.Name
	}
	if diff := cmp.Diff([]string{"lib", "app"}, names); diff != "" {
		t.Errorf("Sort() mismatch (-want +got):\n%s", diff)
	}
}
