package imageio

import (
	"bytes"
	"image"
	"io"

	"github.com/HugoSmits86/nativewebp"
	"github.com/disintegration/imaging"

	"github.com/matzehuels/blockseg/pkg/errors"
)

// DefaultJPEGQuality is used when EncodeOptions.Quality is zero.
const DefaultJPEGQuality = 95

// EncodeOptions tunes lossy encoders.
type EncodeOptions struct {
	Quality int // JPEG quality, 1-100
}

// Encode writes img to w in the given format. WebP output is lossless.
func Encode(w io.Writer, img image.Image, f Format, opts EncodeOptions) error {
	var err error
	switch f {
	case PNG:
		err = imaging.Encode(w, img, imaging.PNG)
	case JPEG:
		q := opts.Quality
		if q <= 0 || q > 100 {
			q = DefaultJPEGQuality
		}
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(q))
	case GIF:
		err = imaging.Encode(w, img, imaging.GIF)
	case BMP:
		err = imaging.Encode(w, img, imaging.BMP)
	case TIFF:
		err = imaging.Encode(w, img, imaging.TIFF)
	case WebP:
		err = nativewebp.Encode(w, img, nil)
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q", f)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", f)
	}
	return nil
}

// EncodeBytes is Encode into a fresh buffer.
func EncodeBytes(img image.Image, f Format, opts EncodeOptions) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
