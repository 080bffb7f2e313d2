package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/blockseg/pkg/cache"
	"github.com/matzehuels/blockseg/pkg/observability"
	"github.com/matzehuels/blockseg/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → segment → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)
	hooks := observability.Pipeline()

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	hooks.OnLoadStart(ctx, opts.SourceName())
	src, err := r.Load(ctx, opts)
	result.Stats.LoadTime = time.Since(loadStart)
	if err != nil {
		hooks.OnLoadComplete(ctx, opts.SourceName(), 0, 0, result.Stats.LoadTime, err)
		return nil, fmt.Errorf("load: %w", err)
	}
	hooks.OnLoadComplete(ctx, opts.SourceName(), src.Width(), src.Height(), result.Stats.LoadTime, nil)
	result.ImageHash = src.Hash
	result.SourceFormat = src.Format
	result.Stats.Width = src.Width()
	result.Stats.Height = src.Height()

	r.Logger.Info("loaded image",
		"source", opts.SourceName(),
		"format", src.Format,
		"width", src.Width(),
		"height", src.Height(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Segment
	segmentStart := time.Now()
	hooks.OnSegmentStart(ctx, expectedBlocks(src, opts))
	seg, segmentHit, err := r.SegmentWithCacheInfo(ctx, src, opts)
	result.Stats.SegmentTime = time.Since(segmentStart)
	if err != nil {
		hooks.OnSegmentComplete(ctx, 0, result.Stats.SegmentTime, err)
		return nil, fmt.Errorf("segment: %w", err)
	}
	hooks.OnSegmentComplete(ctx, seg.Stats.Regions, result.Stats.SegmentTime, nil)
	result.Grid = seg.Grid
	result.Labels = seg.Labels
	result.LabelHash = seg.LabelHash
	result.Segment = seg.Stats
	result.Stats.Rows = seg.Grid.Rows
	result.Stats.Cols = seg.Grid.Cols
	result.CacheInfo.SegmentHit = segmentHit

	r.Logger.Info("segmented grid",
		"rows", seg.Grid.Rows,
		"cols", seg.Grid.Cols,
		"regions", seg.Stats.Regions,
		"cached", segmentHit,
		"duration", result.Stats.SegmentTime)

	// Stage 3: Render
	renderStart := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, src, seg, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SegmentWithCacheInfo labels the grid of src with caching and returns cache hit info.
//
// The cache holds the label map keyed by the source hash and the segmentation
// options. A hit rebuilds the grid from src and reapplies the cached labels.
func (r *Runner) SegmentWithCacheInfo(ctx context.Context, src *Source, opts Options) (*Segmentation, bool, error) {
	if err := opts.ValidateForSegment(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.SegmentKey(src.Hash, opts.SegmentKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if seg, ok := r.segmentFromCache(ctx, cacheKey, src, opts); ok {
			return seg, true, nil
		}
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeSegment)

	seg, err := Segment(ctx, src, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := marshalSegmentEntry(seg); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLSegment); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeSegment, len(data))
		} else {
			r.Logger.Debug("cache write failed", "key", cacheKey, "error", err)
		}
	}

	return seg, false, nil
}

func (r *Runner) segmentFromCache(ctx context.Context, key string, src *Source, opts Options) (*Segmentation, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		return nil, false
	}
	entry, err := unmarshalSegmentEntry(data)
	if err != nil {
		return nil, false
	}
	g, err := BuildGrid(src, opts)
	if err != nil {
		return nil, false
	}
	if err := entry.Labels.Apply(g); err != nil {
		// Stale or foreign entry; recompute.
		return nil, false
	}
	labelData, err := entry.Labels.JSON()
	if err != nil {
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeSegment)
	return &Segmentation{
		Grid:      g,
		Labels:    entry.Labels,
		LabelHash: cache.Hash(labelData),
		Stats:     entry.Stats,
	}, true
}

// Segment is a convenience wrapper that calls SegmentWithCacheInfo and discards the cache hit info.
func (r *Runner) Segment(ctx context.Context, src *Source, opts Options) (*Segmentation, error) {
	seg, _, err := r.SegmentWithCacheInfo(ctx, src, opts)
	return seg, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, src *Source, seg *Segmentation, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(r.artifactHash(src, seg, format), opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, keyTypeArtifact)
		return artifacts, true, nil // All artifacts from cache
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeArtifact)

	// Render all formats
	rendered, err := Render(ctx, src, seg, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(r.artifactHash(src, seg, format), opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeArtifact, len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, src *Source, seg *Segmentation, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, src, seg, opts)
	return artifacts, err
}

// artifactHash returns the content hash an artifact depends on. Outputs that
// draw source pixels (kept blocks, overlays, annotations) also depend on the
// image, not only on the labels.
func (r *Runner) artifactHash(src *Source, seg *Segmentation, format string) string {
	if format == FormatJSON || format == FormatDOT || format == FormatSVG {
		return seg.LabelHash
	}
	return cache.Hash([]byte(src.Hash + ":" + seg.LabelHash))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// Cache key types reported to observability hooks.
const (
	keyTypeSegment  = "segment"
	keyTypeArtifact = "artifact"
)

// expectedBlocks returns the block count of src under opts, or 0 when the
// block size does not divide the image.
func expectedBlocks(src *Source, opts Options) int {
	if src.Height()%opts.BlockHeight != 0 || src.Width()%opts.BlockWidth != 0 {
		return 0
	}
	return (src.Height() / opts.BlockHeight) * (src.Width() / opts.BlockWidth)
}

// labelsOf is shared by the segment stage and cache reloads.
func labelsOf(seg *Segmentation) (*render.LabelMap, string, error) {
	lm := render.NewLabelMap(seg.Grid)
	data, err := lm.JSON()
	if err != nil {
		return nil, "", fmt.Errorf("encode labels: %w", err)
	}
	return lm, cache.Hash(data), nil
}
