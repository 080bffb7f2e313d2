package grid

import (
	"fmt"
	"image"

	"github.com/fogleman/gg"
)

// Annotation style for the diagnostic overlay.
const (
	annotateLineWidth = 2
	annotateR         = 35
	annotateG         = 255
	annotateB         = 100
)

// Annotate draws the block boundaries of g over img and writes the
// "{row}{col}" index at each block centre. The input image is not modified.
func Annotate(img image.Image, g *Grid) image.Image {
	dc := gg.NewContextForImage(img)
	dc.SetRGB255(annotateR, annotateG, annotateB)
	dc.SetLineWidth(annotateLineWidth)

	bw, bh := float64(g.BlockWidth), float64(g.BlockHeight)
	for _, b := range g.blocks {
		x := float64(b.Pos.Col) * bw
		y := float64(b.Pos.Row) * bh
		dc.DrawRectangle(x, y, bw, bh)
		dc.Stroke()
		dc.DrawStringAnchored(fmt.Sprintf("%d%d", b.Pos.Row, b.Pos.Col), x+bw/2, y+bh/2, 0.5, 0.5)
	}
	return dc.Image()
}
