// Package raster holds the 8-bit pixel buffer shared by every stage of blockseg.
//
// An [Image] is a dense Height×Width×Channels array stored row-major with
// interleaved channels. Channels is 1 (grayscale) or 3 (RGB, in that order).
// Alpha is dropped on import.
package raster

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/blockseg/pkg/errors"
)

// Image is an 8-bit pixel array.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8
}

// New allocates a zeroed image. Channels must be 1 or 3.
func New(width, height, channels int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "image size must be positive, got %dx%d", width, height)
	}
	if channels != 1 && channels != 3 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unsupported channel count %d", channels)
	}
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Pix:      make([]uint8, width*height*channels),
	}, nil
}

// Solid returns a 3-channel image filled with a single color.
func Solid(width, height int, r, g, b uint8) *Image {
	img := &Image{Width: width, Height: height, Channels: 3, Pix: make([]uint8, width*height*3)}
	for i := 0; i < len(img.Pix); i += 3 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2] = r, g, b
	}
	return img
}

// FromImage converts any decoded image to a 3-channel RGB raster.
func FromImage(src image.Image) *Image {
	nrgba := imaging.Clone(src)
	b := nrgba.Bounds()
	out := &Image{Width: b.Dx(), Height: b.Dy(), Channels: 3}
	out.Pix = make([]uint8, out.Width*out.Height*3)
	for y := 0; y < out.Height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+out.Width*4]
		dst := out.Pix[y*out.Width*3:]
		for x := 0; x < out.Width; x++ {
			dst[x*3] = row[x*4]
			dst[x*3+1] = row[x*4+1]
			dst[x*3+2] = row[x*4+2]
		}
	}
	return out
}

// ToImage converts the raster back to a standard library image.
// Grayscale rasters become *image.Gray, RGB rasters *image.NRGBA.
func (m *Image) ToImage() image.Image {
	r := image.Rect(0, 0, m.Width, m.Height)
	if m.Channels == 1 {
		g := image.NewGray(r)
		copy(g.Pix, m.Pix)
		return g
	}
	out := image.NewNRGBA(r)
	for i, j := 0, 0; i < len(m.Pix); i, j = i+3, j+4 {
		out.Pix[j] = m.Pix[i]
		out.Pix[j+1] = m.Pix[i+1]
		out.Pix[j+2] = m.Pix[i+2]
		out.Pix[j+3] = 0xff
	}
	return out
}

// At returns the value of channel c at (x, y).
func (m *Image) At(x, y, c int) uint8 {
	return m.Pix[(y*m.Width+x)*m.Channels+c]
}

// ColorAt returns the pixel at (x, y) as an RGB color. Gray pixels are replicated.
func (m *Image) ColorAt(x, y int) color.RGBA {
	i := (y*m.Width + x) * m.Channels
	if m.Channels == 1 {
		v := m.Pix[i]
		return color.RGBA{v, v, v, 0xff}
	}
	return color.RGBA{m.Pix[i], m.Pix[i+1], m.Pix[i+2], 0xff}
}

// SameShape reports whether two images have identical dimensions and channel count.
func (m *Image) SameShape(o *Image) bool {
	return m.Width == o.Width && m.Height == o.Height && m.Channels == o.Channels
}

// Equal reports whether two images have the same shape and pixels.
func (m *Image) Equal(o *Image) bool {
	if m == nil || o == nil {
		return m == o
	}
	if !m.SameShape(o) {
		return false
	}
	for i := range m.Pix {
		if m.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	out := *m
	out.Pix = append([]uint8(nil), m.Pix...)
	return &out
}

// Crop copies the w×h region whose top-left corner is (x, y).
func (m *Image) Crop(x, y, w, h int) (*Image, error) {
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > m.Width || y+h > m.Height {
		return nil, errors.New(errors.ErrCodeOutOfRange,
			"crop %dx%d+%d+%d outside %dx%d image", w, h, x, y, m.Width, m.Height)
	}
	out := &Image{Width: w, Height: h, Channels: m.Channels, Pix: make([]uint8, w*h*m.Channels)}
	rowLen := w * m.Channels
	for r := 0; r < h; r++ {
		src := ((y+r)*m.Width + x) * m.Channels
		copy(out.Pix[r*rowLen:(r+1)*rowLen], m.Pix[src:src+rowLen])
	}
	return out, nil
}

// Paste copies src into m with its top-left corner at (x, y). Shapes must fit.
func (m *Image) Paste(src *Image, x, y int) error {
	if src.Channels != m.Channels {
		return errors.New(errors.ErrCodeShapeMismatch,
			"cannot paste %d-channel block into %d-channel image", src.Channels, m.Channels)
	}
	if x < 0 || y < 0 || x+src.Width > m.Width || y+src.Height > m.Height {
		return errors.New(errors.ErrCodeShapeMismatch,
			"block %dx%d at (%d,%d) does not fit %dx%d image", src.Width, src.Height, x, y, m.Width, m.Height)
	}
	rowLen := src.Width * src.Channels
	for r := 0; r < src.Height; r++ {
		dst := ((y+r)*m.Width + x) * m.Channels
		copy(m.Pix[dst:dst+rowLen], src.Pix[r*rowLen:(r+1)*rowLen])
	}
	return nil
}

// Grayscale returns a single-channel copy using BT.601 luma weights.
// A grayscale image is returned as a clone.
func (m *Image) Grayscale() *Image {
	if m.Channels == 1 {
		return m.Clone()
	}
	out := &Image{Width: m.Width, Height: m.Height, Channels: 1, Pix: make([]uint8, m.Width*m.Height)}
	for i := range out.Pix {
		r := float64(m.Pix[i*3])
		g := float64(m.Pix[i*3+1])
		b := float64(m.Pix[i*3+2])
		out.Pix[i] = uint8(0.299*r + 0.587*g + 0.114*b + 0.5)
	}
	return out
}

// Channel extracts one channel as float64 samples in row-major order.
func (m *Image) Channel(c int) []float64 {
	out := make([]float64, m.Width*m.Height)
	for i := range out {
		out[i] = float64(m.Pix[i*m.Channels+c])
	}
	return out
}

// Normalized returns every sample scaled to [0, 1].
func (m *Image) Normalized() []float64 {
	out := make([]float64, len(m.Pix))
	for i, v := range m.Pix {
		out[i] = float64(v) / 255
	}
	return out
}
