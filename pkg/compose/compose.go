// Package compose reassembles a block grid into a single raster.
package compose

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/blockseg/pkg/errors"
	"github.com/matzehuels/blockseg/pkg/grid"
	"github.com/matzehuels/blockseg/pkg/raster"
)

// DefaultOpacity is the weight of the overlay in Blend.
const DefaultOpacity = 0.5

// Compose stitches the blocks of g back together: blocks are joined
// left to right within a row, rows top to bottom.
//
// With materialize, each labeled block is replaced by a solid 3-channel block
// of its label color; unlabeled blocks keep their pixels. The grid itself is
// never modified. Mismatched block heights within a row, row widths or channel
// counts yield SHAPE_MISMATCH.
//
// Samples stay 8-bit in [0, 255], so the result encodes directly with
// imageio. Callers that need samples scaled to [0, 1] use
// (*raster.Image).Normalized on the result.
func Compose(g *grid.Grid, materialize bool) (*raster.Image, error) {
	if g == nil || g.Len() == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty grid")
	}

	tiles := make([]*raster.Image, g.Len())
	for i, b := range g.Blocks() {
		tiles[i] = b.Pixels
		if materialize && b.Color != nil {
			tiles[i] = raster.Solid(b.Pixels.Width, b.Pixels.Height, b.Color.R, b.Color.G, b.Color.B)
		}
	}

	channels := tiles[0].Channels
	width := 0
	height := 0
	rowHeights := make([]int, g.Rows)
	for r := 0; r < g.Rows; r++ {
		rowWidth := 0
		for c := 0; c < g.Cols; c++ {
			t := tiles[r*g.Cols+c]
			if t.Channels != channels {
				return nil, errors.New(errors.ErrCodeShapeMismatch,
					"block %d-%d has %d channels, expected %d", r, c, t.Channels, channels)
			}
			if c == 0 {
				rowHeights[r] = t.Height
			} else if t.Height != rowHeights[r] {
				return nil, errors.New(errors.ErrCodeShapeMismatch,
					"block %d-%d is %d px tall, row %d is %d px", r, c, t.Height, r, rowHeights[r])
			}
			rowWidth += t.Width
		}
		if r == 0 {
			width = rowWidth
		} else if rowWidth != width {
			return nil, errors.New(errors.ErrCodeShapeMismatch,
				"row %d is %d px wide, expected %d", r, rowWidth, width)
		}
		height += rowHeights[r]
	}

	out, err := raster.New(width, height, channels)
	if err != nil {
		return nil, err
	}
	y := 0
	for r := 0; r < g.Rows; r++ {
		x := 0
		for c := 0; c < g.Cols; c++ {
			t := tiles[r*g.Cols+c]
			if err := out.Paste(t, x, y); err != nil {
				return nil, err
			}
			x += t.Width
		}
		y += rowHeights[r]
	}
	return out, nil
}

// Blend draws overlay over base with the given opacity (0 keeps base, 1 keeps
// overlay). An overlay of a different size is scaled to base first.
func Blend(base, overlay image.Image, opacity float64) image.Image {
	bb := base.Bounds()
	if overlay.Bounds().Size() != bb.Size() {
		overlay = imaging.Resize(overlay, bb.Dx(), bb.Dy(), imaging.NearestNeighbor)
	}
	return imaging.Overlay(base, overlay, bb.Min, opacity)
}
