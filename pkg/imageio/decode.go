package imageio

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/ftrvxmtrx/tga"
	"github.com/gen2brain/go-fitz"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/matzehuels/blockseg/pkg/errors"
)

// DefaultDPI is the rasterisation resolution for PDF pages.
const DefaultDPI = 150

// MaxDPI bounds the PDF rasterisation resolution.
const MaxDPI = 1200

// DefaultMaxPixels caps the decoded size of an input (64 megapixels).
const DefaultMaxPixels = 64 << 20

// DecodeOptions selects what to extract from multi-page inputs.
type DecodeOptions struct {
	Page int     // zero-based PDF page
	DPI  float64 // PDF rasterisation resolution

	// MaxPixels rejects inputs whose width*height exceeds it. The check
	// reads only the header, before any pixel buffer is allocated.
	// Zero means DefaultMaxPixels.
	MaxPixels int
}

func (o DecodeOptions) maxPixels() int64 {
	if o.MaxPixels <= 0 {
		return DefaultMaxPixels
	}
	return int64(o.MaxPixels)
}

type decoder func(io.Reader) (image.Image, error)

type configDecoder func(io.Reader) (image.Config, error)

type signature struct {
	name   string
	match  func([]byte) bool
	decode decoder
	config configDecoder
}

func prefix(p string) func([]byte) bool {
	return func(b []byte) bool { return bytes.HasPrefix(b, []byte(p)) }
}

var signatures = []signature{
	{"png", prefix("\x89PNG\r\n\x1a\n"), png.Decode, png.DecodeConfig},
	{"jpeg", prefix("\xff\xd8"), jpeg.Decode, jpeg.DecodeConfig},
	{"gif", prefix("GIF8"), gif.Decode, gif.DecodeConfig},
	{"bmp", prefix("BM"), bmp.Decode, bmp.DecodeConfig},
	{"tiff", func(b []byte) bool { return bytes.HasPrefix(b, []byte("II*\x00")) || bytes.HasPrefix(b, []byte("MM\x00*")) }, tiff.Decode, tiff.DecodeConfig},
	{"webp", func(b []byte) bool { return len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WEBP" }, webp.Decode, webp.DecodeConfig},
}

var tgaFormat = signature{name: "tga", decode: tga.Decode, config: tga.DecodeConfig}

// checkSize rejects dimensions above limit with INVALID_INPUT.
func checkSize(name string, w, h int, limit int64) error {
	if w <= 0 || h <= 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "%s has empty dimensions %dx%d", name, w, h)
	}
	if int64(w)*int64(h) > limit {
		return errors.New(errors.ErrCodeInvalidInput, "%s is %dx%d, above the %d pixel limit", name, w, h, limit)
	}
	return nil
}

func (s signature) run(data []byte, limit int64) (image.Image, error) {
	cfg, err := s.config(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s header", s.name)
	}
	if err := checkSize(s.name, cfg.Width, cfg.Height, limit); err != nil {
		return nil, err
	}
	img, err := s.decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", s.name)
	}
	return img, nil
}

// Decode decodes an image held in memory. name is only consulted for
// formats without a signature (TGA). It returns the image and the detected
// format name. Inputs larger than opts.MaxPixels are rejected from their
// header alone.
func Decode(data []byte, name string, opts DecodeOptions) (image.Image, string, error) {
	if len(data) == 0 {
		return nil, "", errors.New(errors.ErrCodeInvalidInput, "empty image data")
	}
	if bytes.HasPrefix(data, []byte("%PDF-")) {
		img, err := decodePDF(data, opts)
		return img, "pdf", err
	}
	for _, s := range signatures {
		if !s.match(data) {
			continue
		}
		img, err := s.run(data, opts.maxPixels())
		return img, s.name, err
	}
	if extOf(name) == "tga" {
		img, err := tgaFormat.run(data, opts.maxPixels())
		return img, "tga", err
	}
	return nil, "", errors.New(errors.ErrCodeInvalidFormat, "unrecognized image data")
}

// DecodeFile reads and decodes the image at path.
func DecodeFile(path string, opts DecodeOptions) (image.Image, string, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", errors.Wrap(errors.ErrCodeFileNotFound, err, "image %s", path)
		}
		return nil, "", errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return Decode(data, path, opts)
}

func decodePDF(data []byte, opts DecodeOptions) (image.Image, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "open pdf")
	}
	defer doc.Close()

	if opts.Page < 0 || opts.Page >= doc.NumPage() {
		return nil, errors.New(errors.ErrCodeOutOfRange, "page %d outside document of %d pages", opts.Page, doc.NumPage())
	}
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	if dpi > MaxDPI {
		return nil, errors.New(errors.ErrCodeInvalidInput, "dpi %v above maximum %d", dpi, MaxDPI)
	}
	// Bound is in points (1/72 in).
	bounds, err := doc.Bound(opts.Page)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "read pdf page %d", opts.Page)
	}
	scale := dpi / 72
	w := int(float64(bounds.Dx())*scale + 0.5)
	h := int(float64(bounds.Dy())*scale + 0.5)
	if err := checkSize("pdf page", w, h, opts.maxPixels()); err != nil {
		return nil, err
	}
	img, err := doc.ImageDPI(opts.Page, dpi)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "render pdf page %d", opts.Page)
	}
	return img, nil
}
