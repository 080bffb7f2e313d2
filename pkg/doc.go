// Package pkg provides the core libraries for blockseg block-grid segmentation.
//
// # Overview
//
// blockseg cuts an image into a grid of equally sized rectangular blocks,
// scores every block against its 8 neighbors with a similarity oracle, and
// grows regions by propagating label colors from block to block wherever the
// score clears a threshold. The pkg directory is organized into four areas:
//
//  1. Domain logic: [raster], [grid], [similarity], [segment], [compose]
//  2. Input and output: [imageio], [render], [render/nodelink]
//  3. Orchestration: [pipeline], with [cache] and [observability]
//  4. Surfaces: [store], [config], [server], [buildinfo], [errors]
//
// # Architecture
//
// The typical data flow through blockseg:
//
//	Image bytes (PNG, JPEG, GIF, BMP, TIFF, WebP, TGA, PDF page)
//	         ↓
//	    [imageio] package (decode by magic bytes)
//	         ↓
//	    [grid] package (slice into blocks)
//	         ↓
//	    [similarity] package (SSIM or CIEDE2000 per neighbor pair)
//	         ↓
//	    [segment] package (label propagation)
//	         ↓
//	    [compose] / [render] packages (labeled image, label map, region graph)
//
// # Quick Start
//
// Segment an image file with the default options:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/blockseg/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	result, err := runner.Execute(context.Background(), pipeline.Options{
//	    Input:       "photo.png",
//	    BlockHeight: 50,
//	    BlockWidth:  50,
//	    Formats:     []string{"png", "json"},
//	})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(result.Segment.Regions, "regions")
//
// # Main Packages
//
// [raster] - Dense 8-bit pixel buffers with crop, paste and grayscale.
//
// [grid] - Block grid construction, 8-neighborhood enumeration and the
// annotated diagnostic overlay.
//
// [similarity] - The Oracle interface with SSIM and CIEDE2000 metrics, plus a
// parallel precompute engine.
//
// [segment] - Label propagation with optional color shading.
//
// [pipeline] - Load, segment and render stages with result caching, used by
// both the CLI and the HTTP server.
//
// [store] - Run history in JSON files (CLI) or MongoDB (server).
//
// [raster]: https://pkg.go.dev/github.com/matzehuels/blockseg/pkg/raster
// [grid]: https://pkg.go.dev/github.com/matzehuels/blockseg/pkg/grid
// [similarity]: https://pkg.go.dev/github.com/matzehuels/blockseg/pkg/similarity
// [segment]: https://pkg.go.dev/github.com/matzehuels/blockseg/pkg/segment
// [compose]: https://pkg.go.dev/github.com/matzehuels/blockseg/pkg/compose
// [imageio]: https://pkg.go.dev/github.com/matzehuels/blockseg/pkg/imageio
// [render]: https://pkg.go.dev/github.com/matzehuels/blockseg/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/blockseg/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/blockseg/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/blockseg/pkg/cache
// [observability]: https://pkg.go.dev/github.com/matzehuels/blockseg/pkg/observability
// [store]: https://pkg.go.dev/github.com/matzehuels/blockseg/pkg/store
// [config]: https://pkg.go.dev/github.com/matzehuels/blockseg/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/blockseg/pkg/server
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/blockseg/pkg/buildinfo
// [errors]: https://pkg.go.dev/github.com/matzehuels/blockseg/pkg/errors
package pkg
