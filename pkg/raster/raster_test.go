package raster

import (
	"image"
	"image/color"
	"testing"

	"github.com/matzehuels/blockseg/pkg/errors"
)

func gradient(w, h int) *Image {
	img := &Image{Width: w, Height: h, Channels: 3, Pix: make([]uint8, w*h*3)}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 3
			img.Pix[i] = uint8(x)
			img.Pix[i+1] = uint8(y)
			img.Pix[i+2] = uint8(x + y)
		}
	}
	return img
}

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		w, h, c  int
		wantCode errors.Code
	}{
		{"rgb", 4, 3, 3, ""},
		{"gray", 4, 3, 1, ""},
		{"zero width", 0, 3, 3, errors.ErrCodeInvalidInput},
		{"two channels", 4, 3, 2, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := New(tt.w, tt.h, tt.c)
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("New() error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if len(img.Pix) != tt.w*tt.h*tt.c {
				t.Errorf("len(Pix) = %d, want %d", len(img.Pix), tt.w*tt.h*tt.c)
			}
		})
	}
}

func TestFromImageRoundTrip(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	src.Set(0, 0, color.NRGBA{10, 20, 30, 255})
	src.Set(2, 1, color.NRGBA{200, 100, 50, 255})

	img := FromImage(src)
	if img.Width != 3 || img.Height != 2 || img.Channels != 3 {
		t.Fatalf("shape = %dx%dx%d", img.Width, img.Height, img.Channels)
	}
	if got := img.ColorAt(0, 0); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("ColorAt(0,0) = %v", got)
	}

	back := FromImage(img.ToImage())
	if !back.Equal(img) {
		t.Error("ToImage/FromImage did not round-trip")
	}
}

func TestFromImageOffsetBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 7, 7))
	src.Set(5, 5, color.RGBA{1, 2, 3, 255})
	img := FromImage(src)
	if img.Width != 2 || img.Height != 2 {
		t.Fatalf("shape = %dx%d, want 2x2", img.Width, img.Height)
	}
	if img.At(0, 0, 2) != 3 {
		t.Errorf("At(0,0,2) = %d, want 3", img.At(0, 0, 2))
	}
}

func TestCropPaste(t *testing.T) {
	src := gradient(10, 8)

	block, err := src.Crop(4, 2, 3, 5)
	if err != nil {
		t.Fatalf("Crop() error = %v", err)
	}
	if block.At(0, 0, 0) != 4 || block.At(0, 0, 1) != 2 {
		t.Errorf("top-left = (%d,%d), want (4,2)", block.At(0, 0, 0), block.At(0, 0, 1))
	}

	dst, _ := New(10, 8, 3)
	if err := dst.Paste(block, 4, 2); err != nil {
		t.Fatalf("Paste() error = %v", err)
	}
	if dst.At(6, 6, 2) != src.At(6, 6, 2) {
		t.Error("pasted pixel differs from source")
	}

	if _, err := src.Crop(8, 0, 3, 1); !errors.Is(err, errors.ErrCodeOutOfRange) {
		t.Errorf("Crop outside bounds error = %v, want OUT_OF_RANGE", err)
	}
	if err := dst.Paste(block.Grayscale(), 0, 0); !errors.Is(err, errors.ErrCodeShapeMismatch) {
		t.Errorf("Paste gray into rgb error = %v, want SHAPE_MISMATCH", err)
	}
	if err := dst.Paste(block, 9, 0); !errors.Is(err, errors.ErrCodeShapeMismatch) {
		t.Errorf("Paste overflow error = %v, want SHAPE_MISMATCH", err)
	}
}

func TestGrayscale(t *testing.T) {
	img := Solid(2, 2, 255, 255, 255)
	g := img.Grayscale()
	if g.Channels != 1 || g.At(1, 1, 0) != 255 {
		t.Errorf("white grayscale = %d channels, value %d", g.Channels, g.At(1, 1, 0))
	}

	red := Solid(1, 1, 255, 0, 0).Grayscale()
	if red.Pix[0] != 76 {
		t.Errorf("red luma = %d, want 76", red.Pix[0])
	}

	again := g.Grayscale()
	again.Pix[0] = 0
	if g.Pix[0] == 0 {
		t.Error("Grayscale of gray image must return a copy")
	}
}

func TestNormalized(t *testing.T) {
	img := Solid(1, 1, 255, 0, 51)
	n := img.Normalized()
	want := []float64{1, 0, 0.2}
	for i := range want {
		if n[i] != want[i] {
			t.Errorf("Normalized()[%d] = %v, want %v", i, n[i], want[i])
		}
	}
}

func TestChannel(t *testing.T) {
	img := gradient(3, 2)
	ch := img.Channel(1)
	if len(ch) != 6 || ch[3] != 1 {
		t.Errorf("Channel(1) = %v", ch)
	}
}

func TestEqual(t *testing.T) {
	a := gradient(4, 4)
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatal("clone not equal")
	}
	b.Pix[5]++
	if a.Equal(b) {
		t.Error("modified clone still equal")
	}
	if a.Equal(nil) {
		t.Error("Equal(nil) = true")
	}
}
