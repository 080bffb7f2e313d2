// Package nodelink renders region graphs as node-link diagrams.
//
// Each region becomes a node filled with its label color; touching regions
// are joined by an undirected edge labeled with the best border similarity.
//
//	dot := nodelink.ToDOT(rg, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
package nodelink
