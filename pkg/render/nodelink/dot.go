package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/stackrun/pkg/graph"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds version and run row to node labels.
	// When false, only the package name is shown.
	Detailed bool
}

// Cycle members are drawn in this color, and grouped in a cluster.
const cycleColor = "#d9534f"

// ToDOT converts a package graph to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG].
//
// Each collapsed cycle becomes a dashed cluster with red member outlines and
// red edges between members. Private packages have grey text.
func ToDOT(g graph.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for i, members := range g.Cycles {
		fmt.Fprintf(&buf, "  subgraph \"cluster_cycle_%d\" {\n", i+1)
		fmt.Fprintf(&buf, "    label=%q;\n", fmt.Sprintf("cycle %d", i+1))
		fmt.Fprintf(&buf, "    style=dashed;\n    color=%q;\n", cycleColor)
		for _, id := range members {
			fmt.Fprintf(&buf, "    %q;\n", id)
		}
		buf.WriteString("  }\n")
	}

	for _, n := range g.Nodes {
		label := fmtLabel(n, opts.Detailed)
		attrs := fmtAttrs(n, label)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	cycleOf := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		cycleOf[n.ID] = n.Cycle
	}
	for _, e := range g.Edges {
		if c := cycleOf[e.From]; c > 0 && c == cycleOf[e.To] {
			fmt.Fprintf(&buf, "  %q -> %q [color=%q];\n", e.From, e.To, cycleColor)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}
	parts := []string{n.ID}
	if n.Version != "" {
		parts = append(parts, "version: "+n.Version)
	}
	parts = append(parts, fmt.Sprintf("row: %d", n.Row))
	return strings.Join(parts, "\n")
}

func fmtAttrs(n graph.Node, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.InCycle() {
		attrs = append(attrs, fmt.Sprintf("color=%q", cycleColor), "penwidth=2")
	}
	if n.Private {
		attrs = append(attrs, "fontcolor=grey40")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
