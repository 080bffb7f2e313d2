package pipeline

import (
	"context"
	"image"
	"os"
	"path/filepath"

	"github.com/matzehuels/blockseg/pkg/cache"
	"github.com/matzehuels/blockseg/pkg/errors"
	"github.com/matzehuels/blockseg/pkg/imageio"
	"github.com/matzehuels/blockseg/pkg/raster"
)

// Source is a decoded input image.
type Source struct {
	// Image is the decoded image as returned by the decoder.
	Image image.Image

	// Raster holds the 3-channel pixels used for segmentation.
	Raster *raster.Image

	// Hash is the content hash of the undecoded input bytes.
	Hash string

	// Format is the detected input format (png, jpeg, pdf, ...).
	Format string
}

// Width returns the source width in pixels.
func (s *Source) Width() int { return s.Raster.Width }

// Height returns the source height in pixels.
func (s *Source) Height() int { return s.Raster.Height }

// Load reads and decodes the input named by opts.
// Data takes precedence over Input when both are set.
func (r *Runner) Load(ctx context.Context, opts Options) (*Source, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)
	return Load(ctx, opts)
}

// Load reads and decodes the input named by opts without a runner.
func Load(ctx context.Context, opts Options) (*Source, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, name := opts.Data, opts.Name
	if len(data) == 0 {
		b, err := os.ReadFile(opts.Input)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", opts.Input)
			}
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", opts.Input)
		}
		data = b
		if name == "" {
			name = filepath.Base(opts.Input)
		}
	}

	img, format, err := imageio.Decode(data, name, opts.DecodeOptions())
	if err != nil {
		return nil, err
	}

	return &Source{
		Image:  img,
		Raster: raster.FromImage(img),
		Hash:   cache.Hash(data),
		Format: format,
	}, nil
}

// SourceName describes the input for logs, hooks and run records.
func (o *Options) SourceName() string {
	switch {
	case o.Name != "":
		return o.Name
	case o.Input != "":
		return o.Input
	default:
		return "<upload>"
	}
}
