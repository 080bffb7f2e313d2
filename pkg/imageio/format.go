// Package imageio decodes source images and encodes segmentation output.
//
// Inputs are identified by their leading bytes rather than the file
// extension: PNG, JPEG, GIF, BMP, TIFF, WebP and PDF (one page rasterised).
// TGA has no signature and is accepted when the name ends in ".tga".
package imageio

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/blockseg/pkg/errors"
)

// Format is an encodable image format.
type Format string

// Supported output formats.
const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
	GIF  Format = "gif"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
	WebP Format = "webp"
)

var formats = []Format{PNG, JPEG, GIF, BMP, TIFF, WebP}

// Formats returns all encodable formats.
func Formats() []Format {
	return append([]Format(nil), formats...)
}

// ParseFormat resolves a format name or file extension ("jpg", ".tif").
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(s), ".") {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	case "gif":
		return GIF, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	case "webp":
		return WebP, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported image format %q", s)
}

// IsFormat reports whether s names an encodable image format.
func IsFormat(s string) bool {
	_, err := ParseFormat(s)
	return err == nil
}

// Ext returns the canonical file extension, without the dot.
func (f Format) Ext() string {
	if f == JPEG {
		return "jpg"
	}
	return string(f)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	return "image/" + string(f)
}

func extOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}
