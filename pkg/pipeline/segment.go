package pipeline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/blockseg/pkg/grid"
	"github.com/matzehuels/blockseg/pkg/render"
	"github.com/matzehuels/blockseg/pkg/segment"
	"github.com/matzehuels/blockseg/pkg/similarity"
)

// Segmentation is the labeled grid produced by the segment stage.
type Segmentation struct {
	Grid      *grid.Grid
	Labels    *render.LabelMap
	LabelHash string
	Stats     segment.Stats

	// Similarities holds the precomputed neighbor scores. It is nil when the
	// labels came from cache; Render computes them on demand.
	Similarities similarity.Provider
}

// Segment builds the block grid of src and runs label propagation.
func Segment(ctx context.Context, src *Source, opts Options) (*Segmentation, error) {
	g, err := BuildGrid(src, opts)
	if err != nil {
		return nil, err
	}

	table, err := Precompute(ctx, g, opts)
	if err != nil {
		return nil, err
	}

	eng, err := segment.New(opts.SegmentOptions(), segment.NewRandomColors(opts.Seed), table)
	if err != nil {
		return nil, err
	}
	stats, err := eng.Run(g)
	if err != nil {
		return nil, err
	}

	seg := &Segmentation{Grid: g, Stats: stats, Similarities: table}
	seg.Labels, seg.LabelHash, err = labelsOf(seg)
	if err != nil {
		return nil, err
	}
	return seg, nil
}

// BuildGrid slices the source raster into the block grid described by opts.
func BuildGrid(src *Source, opts Options) (*grid.Grid, error) {
	return grid.Build(src.Raster, opts.BlockHeight, opts.BlockWidth, opts.BuildOptions()...)
}

// Precompute scores every block of g against its neighbors with the oracle
// named by opts.
func Precompute(ctx context.Context, g *grid.Grid, opts Options) (*similarity.Table, error) {
	oracle, err := similarity.NewOracle(opts.Oracle)
	if err != nil {
		return nil, err
	}
	return similarity.NewEngine(oracle).Precompute(ctx, g, opts.Workers)
}

// segmentEntry is the cached form of a segmentation.
type segmentEntry struct {
	Labels *render.LabelMap `json:"labels"`
	Stats  segment.Stats    `json:"stats"`
}

func marshalSegmentEntry(seg *Segmentation) ([]byte, error) {
	return json.Marshal(segmentEntry{Labels: seg.Labels, Stats: seg.Stats})
}

func unmarshalSegmentEntry(data []byte) (*segmentEntry, error) {
	var e segmentEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode segment entry: %w", err)
	}
	if e.Labels == nil {
		return nil, fmt.Errorf("decode segment entry: missing labels")
	}
	return &e, nil
}
