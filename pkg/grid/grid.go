// Package grid partitions a raster into a uniform grid of rectangular blocks.
//
// A [Grid] owns its blocks: each [Block] holds a private copy of its region of
// the source image plus the mutable label state (Color, LastAccepted) written by
// the segmentation pass. Blocks are addressed by [Pos] and stored row-major.
//
// # Usage
//
//	g, err := grid.Build(img, 50, 50)
//	if errors.Is(err, errors.ErrCodeDimensionMismatch) {
//	    // block size does not divide the image
//	}
//	b, _ := g.At(grid.Pos{Row: 0, Col: 1})
package grid

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/blockseg/pkg/errors"
	"github.com/matzehuels/blockseg/pkg/raster"
)

// Pos is the position of a block in the grid.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String formats the position as "row-col" for display.
func (p Pos) String() string {
	return fmt.Sprintf("%d-%d", p.Row, p.Col)
}

// RGB is a label color.
type RGB struct {
	R, G, B uint8
}

// Hex returns the color as "#rrggbb".
func (c RGB) Hex() string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

// ParseHex parses a "#rrggbb" color.
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse color %q", s)
	}
	r, g, b := c.RGB255()
	return RGB{r, g, b}, nil
}

// Block is one tile of the grid.
type Block struct {
	Pos    Pos
	Pixels *raster.Image

	// Color is the propagated label, nil until assigned.
	Color *RGB

	// LastAccepted is the similarity under which the block was first labeled
	// by a neighbor. Zero for seeds and untouched blocks.
	LastAccepted float64
}

// Grid is a rows×cols arrangement of equally sized blocks.
type Grid struct {
	Rows        int
	Cols        int
	BlockHeight int
	BlockWidth  int
	Channels    int

	blocks []*Block
}

// BuildOption configures Build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	grayscale bool
}

// WithGrayscale converts the source to a single luma channel before slicing.
func WithGrayscale() BuildOption {
	return func(o *buildOptions) { o.grayscale = true }
}

// Build slices img into blocks of blockHeight×blockWidth pixels.
//
// Both image dimensions must be exact multiples of the block dimensions;
// otherwise a DIMENSION_MISMATCH error is returned and no grid is produced.
func Build(img *raster.Image, blockHeight, blockWidth int, opts ...BuildOption) (*Grid, error) {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}

	if err := errors.ValidateBlockSize(blockHeight, blockWidth); err != nil {
		return nil, err
	}
	if img == nil || img.Width == 0 || img.Height == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty image")
	}
	if img.Width%blockWidth != 0 || img.Height%blockHeight != 0 {
		return nil, errors.New(errors.ErrCodeDimensionMismatch,
			"image %dx%d is not divisible into %dx%d blocks", img.Width, img.Height, blockWidth, blockHeight)
	}

	src := img
	if o.grayscale {
		src = img.Grayscale()
	}

	g := &Grid{
		Rows:        src.Height / blockHeight,
		Cols:        src.Width / blockWidth,
		BlockHeight: blockHeight,
		BlockWidth:  blockWidth,
		Channels:    src.Channels,
	}
	g.blocks = make([]*Block, 0, g.Rows*g.Cols)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			px, err := src.Crop(c*blockWidth, r*blockHeight, blockWidth, blockHeight)
			if err != nil {
				return nil, err
			}
			g.blocks = append(g.blocks, &Block{Pos: Pos{Row: r, Col: c}, Pixels: px})
		}
	}
	return g, nil
}

// Width returns the pixel width of the source image.
func (g *Grid) Width() int { return g.Cols * g.BlockWidth }

// Height returns the pixel height of the source image.
func (g *Grid) Height() int { return g.Rows * g.BlockHeight }

// Len returns the number of blocks.
func (g *Grid) Len() int { return len(g.blocks) }

// Contains reports whether p lies inside the grid.
func (g *Grid) Contains(p Pos) bool {
	return p.Row >= 0 && p.Row < g.Rows && p.Col >= 0 && p.Col < g.Cols
}

// At returns the block at p.
func (g *Grid) At(p Pos) (*Block, error) {
	if !g.Contains(p) {
		return nil, errors.New(errors.ErrCodeOutOfRange, "position %s outside %dx%d grid", p, g.Rows, g.Cols)
	}
	return g.blocks[p.Row*g.Cols+p.Col], nil
}

// Blocks returns all blocks in row-major order. The slice is shared with the grid.
func (g *Grid) Blocks() []*Block {
	return g.blocks
}

// Reset clears every block's label state.
func (g *Grid) Reset() {
	for _, b := range g.blocks {
		b.Color = nil
		b.LastAccepted = 0
	}
}

// Colored returns how many blocks carry a label.
func (g *Grid) Colored() int {
	n := 0
	for _, b := range g.blocks {
		if b.Color != nil {
			n++
		}
	}
	return n
}
