// Package pipeline provides the segmentation pipeline shared by the CLI and
// the HTTP API.
//
// This package implements the complete load → segment → render pipeline so
// every entry point applies the same defaults, validation and caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Decode the source image (file or bytes) into a raster
//  2. Segment: Slice the raster into blocks, score neighbors and propagate labels
//  3. Render: Compose the labeled grid and encode the requested artifacts
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:       "cat.png",
//	    BlockHeight: 50,
//	    BlockWidth:  50,
//	    Formats:     []string{"png", "json"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["png"]
//
// Run individual stages:
//
//	src, err := runner.Load(ctx, opts)
//	seg, err := runner.Segment(ctx, src, opts)
//	artifacts, err := runner.Render(ctx, src, seg, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockseg/pkg/cache"
	"github.com/matzehuels/blockseg/pkg/errors"
	"github.com/matzehuels/blockseg/pkg/grid"
	"github.com/matzehuels/blockseg/pkg/imageio"
	"github.com/matzehuels/blockseg/pkg/render"
	"github.com/matzehuels/blockseg/pkg/segment"
	"github.com/matzehuels/blockseg/pkg/similarity"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultBlockSize is the default block height and width in pixels.
	DefaultBlockSize = 100

	// DefaultSeed is the default random seed for label colors.
	DefaultSeed = uint64(42)

	// DefaultOracle is the default similarity metric.
	DefaultOracle = similarity.OracleSSIM
)

// Format constants for non-image outputs. Image formats are the names
// accepted by imageio.ParseFormat.
const (
	FormatPNG       = "png"
	FormatJSON      = "json"
	FormatDOT       = "dot"
	FormatSVG       = "svg"
	FormatAnnotated = "annotated"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	"png":           true,
	"jpeg":          true,
	"gif":           true,
	"bmp":           true,
	"tiff":          true,
	"webp":          true,
	FormatJSON:      true,
	FormatDOT:       true,
	FormatSVG:       true,
	FormatAnnotated: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the segmentation pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Input string  `json:"-"`              // Path of the source image (CLI)
	Data  []byte  `json:"-"`              // Source image bytes (API); wins over Input
	Name  string  `json:"name,omitempty"` // File name hint for formats without a signature
	Page  int     `json:"page,omitempty"` // PDF page (zero-based)
	DPI   float64 `json:"dpi,omitempty"`  // PDF rasterisation resolution

	// MaxPixels caps the decoded input size (0 = imageio.DefaultMaxPixels).
	// Not settable from API requests.
	MaxPixels int `json:"-"`

	// Grid options
	BlockHeight int  `json:"block_height,omitempty"`
	BlockWidth  int  `json:"block_width,omitempty"`
	Grayscale   bool `json:"grayscale,omitempty"`

	// Segment options
	Threshold    float64 `json:"threshold,omitempty"`
	ColorShading bool    `json:"color_shading,omitempty"`
	ShadeWeight  float64 `json:"shade_weight,omitempty"`
	ShadingFloor float64 `json:"shading_floor,omitempty"`
	Seed         uint64  `json:"seed,omitempty"`
	Oracle       string  `json:"oracle,omitempty"`
	Workers      int     `json:"workers,omitempty"`
	Refresh      bool    `json:"refresh,omitempty"`

	// Render options
	Formats         []string `json:"formats,omitempty"`
	SkipMaterialize bool     `json:"skip_materialize,omitempty"` // Keep block pixels instead of label colors
	Overlay         float64  `json:"overlay,omitempty"`          // Blend output over the source (0 disables)
	Quality         int      `json:"quality,omitempty"`          // JPEG quality

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Grid is the labeled block grid.
	Grid *grid.Grid

	// Labels is the serializable label state of Grid.
	Labels *render.LabelMap

	// ImageHash is the content hash of the source bytes.
	ImageHash string

	// LabelHash is the content hash of the label map JSON.
	LabelHash string

	// SourceFormat is the detected input format.
	SourceFormat string

	// Segment holds the propagation counters.
	Segment segment.Stats

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Width       int
	Height      int
	Rows        int
	Cols        int
	LoadTime    time.Duration
	SegmentTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SegmentHit bool // Whether labels came from cache
	RenderHit  bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: png, jpeg, gif, bmp, tiff, webp, json, dot, svg, annotated)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// IsImageFormat reports whether format is an encoded image of the segmentation.
func IsImageFormat(format string) bool {
	return format != FormatAnnotated && imageio.IsFormat(format)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForSegment(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks the input fields.
func (o *Options) ValidateForLoad() error {
	if len(o.Data) == 0 {
		if o.Input == "" {
			return errors.New(errors.ErrCodeInvalidInput, "input image is required")
		}
		if err := errors.ValidatePath(o.Input); err != nil {
			return err
		}
	}
	if o.Page < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "page must not be negative")
	}
	if o.DPI < 0 || o.DPI > imageio.MaxDPI {
		return errors.New(errors.ErrCodeInvalidInput, "dpi must be in [0, %d], got %v", imageio.MaxDPI, o.DPI)
	}
	if o.MaxPixels < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max pixels must not be negative")
	}
	if o.DPI == 0 {
		o.DPI = imageio.DefaultDPI
	}
	o.setLogger()
	return nil
}

// SetSegmentDefaults sets default values for grid construction and propagation.
func (o *Options) SetSegmentDefaults() {
	if o.BlockHeight == 0 {
		o.BlockHeight = DefaultBlockSize
	}
	if o.BlockWidth == 0 {
		o.BlockWidth = DefaultBlockSize
	}
	if o.Threshold == 0 {
		o.Threshold = segment.DefaultThreshold
	}
	if o.ShadeWeight == 0 {
		o.ShadeWeight = segment.DefaultShadeWeight
	}
	if o.ShadingFloor == 0 {
		o.ShadingFloor = segment.DefaultShadingFloor
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Oracle == "" {
		o.Oracle = DefaultOracle
	}
	o.setLogger()
}

// ValidateForSegment validates and sets defaults for segmentation.
func (o *Options) ValidateForSegment() error {
	o.SetSegmentDefaults()
	if err := errors.ValidateBlockSize(o.BlockHeight, o.BlockWidth); err != nil {
		return err
	}
	if err := o.SegmentOptions().Validate(); err != nil {
		return err
	}
	if o.Workers < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "workers must not be negative")
	}
	_, err := similarity.NewOracle(o.Oracle)
	return err
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.Quality == 0 {
		o.Quality = imageio.DefaultJPEGQuality
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Quality < 1 || o.Quality > 100 {
		return errors.New(errors.ErrCodeInvalidInput, "quality must be in [1, 100], got %d", o.Quality)
	}
	return errors.ValidateWeight("overlay", o.Overlay)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Clone returns a copy of o that does not share slices with it and must be
// validated again.
func (o Options) Clone() Options {
	o.Formats = append([]string(nil), o.Formats...)
	o.Data = append([]byte(nil), o.Data...)
	o.validated = false
	return o
}

// ShouldMaterialize returns whether labeled blocks are painted with their color.
func (o *Options) ShouldMaterialize() bool {
	return !o.SkipMaterialize
}

// ShouldOverlay returns whether the output is blended over the source image.
func (o *Options) ShouldOverlay() bool {
	return o.Overlay > 0
}

// NeedsRegionGraph returns true if a requested format renders the region graph.
func (o *Options) NeedsRegionGraph() bool {
	for _, f := range o.Formats {
		if f == FormatDOT || f == FormatSVG {
			return true
		}
	}
	return false
}

// SegmentOptions returns the propagation options.
func (o *Options) SegmentOptions() segment.Options {
	return segment.Options{
		Threshold:    o.Threshold,
		ColorShading: o.ColorShading,
		ShadeWeight:  o.ShadeWeight,
		ShadingFloor: o.ShadingFloor,
	}
}

// BuildOptions returns the grid construction options.
func (o *Options) BuildOptions() []grid.BuildOption {
	if o.Grayscale {
		return []grid.BuildOption{grid.WithGrayscale()}
	}
	return nil
}

// DecodeOptions returns the image decoding options.
func (o *Options) DecodeOptions() imageio.DecodeOptions {
	return imageio.DecodeOptions{Page: o.Page, DPI: o.DPI, MaxPixels: o.MaxPixels}
}

// SegmentKeyOpts returns cache key options for segmentation.
func (o *Options) SegmentKeyOpts() cache.SegmentKeyOpts {
	return cache.SegmentKeyOpts{
		BlockHeight:  o.BlockHeight,
		BlockWidth:   o.BlockWidth,
		Grayscale:    o.Grayscale,
		ColorShading: o.ColorShading,
		Threshold:    o.Threshold,
		ShadeWeight:  o.ShadeWeight,
		ShadingFloor: o.ShadingFloor,
		Seed:         o.Seed,
		Oracle:       o.Oracle,
		Page:         o.Page,
		DPI:          o.DPI,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:      format,
		Materialize: o.ShouldMaterialize(),
		Overlay:     o.Overlay,
		Quality:     o.Quality,
	}
}
