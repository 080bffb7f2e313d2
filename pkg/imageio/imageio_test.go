package imageio

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/blockseg/pkg/errors"
)

func sample() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.NRGBA{uint8(x * 30), uint8(y * 40), 128, 255})
		}
	}
	return img
}

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		format   Format
		detected string
		lossless bool
	}{
		{PNG, "png", true},
		{JPEG, "jpeg", false},
		{GIF, "gif", false},
		{BMP, "bmp", true},
		{TIFF, "tiff", true},
		{WebP, "webp", true},
	}

	src := sample()
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			data, err := EncodeBytes(src, tt.format, EncodeOptions{})
			if err != nil {
				t.Fatalf("EncodeBytes() error = %v", err)
			}
			img, name, err := Decode(data, "", DecodeOptions{})
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if name != tt.detected {
				t.Errorf("detected %q, want %q", name, tt.detected)
			}
			if img.Bounds().Size() != src.Bounds().Size() {
				t.Errorf("size = %v, want %v", img.Bounds().Size(), src.Bounds().Size())
			}
			if tt.lossless {
				got := color.NRGBAModel.Convert(img.At(3, 2)).(color.NRGBA)
				if got != src.NRGBAAt(3, 2) {
					t.Errorf("pixel = %v, want %v", got, src.NRGBAAt(3, 2))
				}
			}
		})
	}
}

func TestEncodeUnsupported(t *testing.T) {
	if _, err := EncodeBytes(sample(), "xcf", EncodeOptions{}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestDecodeTGA(t *testing.T) {
	// Uncompressed true-color, 2x1, top-left origin, BGR pixel order.
	header := []byte{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2, 0, 1, 0, 24, 0x20}
	data := append(header, 0, 0, 255, 255, 0, 0)

	img, name, err := Decode(data, "tile.TGA", DecodeOptions{})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if name != "tga" || img.Bounds().Dx() != 2 || img.Bounds().Dy() != 1 {
		t.Errorf("got %s %v", name, img.Bounds())
	}

	if _, _, err := Decode(data, "tile.dat", DecodeOptions{}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unknown data error = %v, want INVALID_FORMAT", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		code errors.Code
	}{
		{"empty", nil, errors.ErrCodeInvalidInput},
		{"garbage", []byte("hello world"), errors.ErrCodeInvalidFormat},
		{"truncated png", []byte("\x89PNG\r\n\x1a\n\x00\x00"), errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Decode(tt.data, "x.png", DecodeOptions{}); !errors.Is(err, tt.code) {
				t.Errorf("Decode() error = %v, want %s", err, tt.code)
			}
		})
	}
}

// pngHeader returns a PNG holding only an IHDR chunk for a w x h grayscale image.
func pngHeader(w, h uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], w)
	binary.BigEndian.PutUint32(ihdr[4:], h)
	ihdr[8] = 8 // bit depth; color type, compression, filter and interlace stay 0

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestDecodeSizeLimit(t *testing.T) {
	small, err := EncodeBytes(sample(), PNG, EncodeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	tga := append([]byte{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2, 0, 1, 0, 24, 0x20}, 0, 0, 255, 255, 0, 0)

	tests := []struct {
		name    string
		data    []byte
		file    string
		max     int
		wantErr bool
	}{
		{"within limit", small, "x.png", 48, false},
		{"above explicit limit", small, "x.png", 47, true},
		{"header only, 12000x12000", pngHeader(12000, 12000), "x.png", 0, true},
		{"tga above limit", tga, "x.tga", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.data, tt.file, DecodeOptions{MaxPixels: tt.max})
			if !tt.wantErr {
				if err != nil {
					t.Errorf("Decode() error = %v", err)
				}
				return
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("Decode() error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestDecodeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.png")
	var buf bytes.Buffer
	if err := Encode(&buf, sample(), PNG, EncodeOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	img, name, err := DecodeFile(path, DecodeOptions{})
	if err != nil || name != "png" || img.Bounds().Dx() != 8 {
		t.Errorf("DecodeFile() = %v, %q, %v", img.Bounds(), name, err)
	}

	if _, _, err := DecodeFile(filepath.Join(dir, "missing.png"), DecodeOptions{}); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
	if _, _, err := DecodeFile("", DecodeOptions{}); !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("empty path error = %v", err)
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"png", PNG, true},
		{"JPG", JPEG, true},
		{".jpeg", JPEG, true},
		{"tif", TIFF, true},
		{"webp", WebP, true},
		{"svg", "", false},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
		if IsFormat(tt.in) != tt.ok {
			t.Errorf("IsFormat(%q) = %v", tt.in, !tt.ok)
		}
	}
	if JPEG.Ext() != "jpg" || PNG.ContentType() != "image/png" {
		t.Error("Ext/ContentType mismatch")
	}
	if len(Formats()) != 6 {
		t.Errorf("Formats() = %v", Formats())
	}
}
