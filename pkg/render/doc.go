// Package render turns a labeled grid into machine-readable artifacts.
//
// # Label Maps
//
// [LabelMap] is the JSON form of a segmentation: grid geometry plus the
// label color of every block. It is what the pipeline caches, so a label map
// can be re-applied to a freshly built grid with [LabelMap.Apply].
//
//	lm := render.NewLabelMap(g)
//	data, err := lm.JSON()
//
// # Region Graphs
//
// [BuildRegionGraph] groups blocks by label color into regions and connects
// regions that touch, weighting each edge with the strongest similarity
// observed across the shared border. The [nodelink] subpackage renders a
// region graph through Graphviz.
//
//	rg, err := render.BuildRegionGraph(g, sims)
//	dot := nodelink.ToDOT(rg, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/blockseg/pkg/render/nodelink
package render
