package pipeline

import (
	"context"
	"fmt"
	"image"

	"github.com/matzehuels/blockseg/pkg/compose"
	"github.com/matzehuels/blockseg/pkg/grid"
	"github.com/matzehuels/blockseg/pkg/imageio"
	"github.com/matzehuels/blockseg/pkg/render"
	"github.com/matzehuels/blockseg/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, src *Source, seg *Segmentation, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var (
		composed image.Image
		dot      string
	)

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch {
		case IsImageFormat(format):
			if composed == nil {
				if composed, err = composeImage(src, seg, opts); err != nil {
					return nil, err
				}
			}
			data, err = imageio.EncodeBytes(composed, imageio.Format(format), imageio.EncodeOptions{Quality: opts.Quality})
		case format == FormatAnnotated:
			data, err = imageio.EncodeBytes(grid.Annotate(src.Image, seg.Grid), imageio.PNG, imageio.EncodeOptions{})
		case format == FormatJSON:
			data, err = seg.Labels.JSON()
		case format == FormatDOT || format == FormatSVG:
			if dot == "" {
				if dot, err = regionDOT(ctx, seg, opts); err != nil {
					return nil, err
				}
			}
			if format == FormatDOT {
				data = []byte(dot)
			} else {
				data, err = nodelink.RenderSVG(ctx, dot)
			}
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// composeImage reassembles the labeled grid and blends it over the source
// when an overlay is requested.
func composeImage(src *Source, seg *Segmentation, opts Options) (image.Image, error) {
	out, err := compose.Compose(seg.Grid, opts.ShouldMaterialize())
	if err != nil {
		return nil, err
	}
	img := out.ToImage()
	if opts.ShouldOverlay() {
		img = compose.Blend(src.Image, img, opts.Overlay)
	}
	return img, nil
}

func regionDOT(ctx context.Context, seg *Segmentation, opts Options) (string, error) {
	sims := seg.Similarities
	if sims == nil {
		table, err := Precompute(ctx, seg.Grid, opts)
		if err != nil {
			return "", err
		}
		sims = table
		seg.Similarities = table
	}
	rg, err := render.BuildRegionGraph(seg.Grid, sims)
	if err != nil {
		return "", err
	}
	return nodelink.ToDOT(rg, nodelink.Options{Detailed: true}), nil
}
