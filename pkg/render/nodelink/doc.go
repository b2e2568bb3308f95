// Package nodelink renders package graphs as node-link diagrams.
//
// Packages appear as boxes connected by arrows pointing at their local
// dependencies. Collapsed cycles are drawn as red, dashed clusters so they
// stand out in large workspaces.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools. SVG rendering runs in process through
// [github.com/goccy/go-graphviz].
package nodelink
