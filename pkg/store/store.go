// Package store persists records of completed segmentation runs.
//
// A run record captures what was segmented (source name and content hash),
// with which parameters, and what came out (grid geometry, propagation
// counters, rendered formats). Artifacts themselves are not stored; they
// live in the cache and can be regenerated from the parameters.
//
// Two backends are provided:
//
//   - [FileStore]: one JSON file per run under a directory (CLI default)
//   - [MongoStore]: a MongoDB collection (server deployments)
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/blockseg/pkg/pipeline"
	"github.com/matzehuels/blockseg/pkg/segment"
)

// DefaultListLimit bounds List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Store saves and retrieves run records.
//
// Get returns a NOT_FOUND error for unknown IDs. List returns the most
// recent runs first.
type Store interface {
	Save(ctx context.Context, run *Run) error
	Get(ctx context.Context, id string) (*Run, error)
	List(ctx context.Context, limit int) ([]*Run, error)
	Close() error
}

// Run is the persisted record of one pipeline execution.
type Run struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Source    string    `json:"source" bson:"source"`
	ImageHash string    `json:"image_hash" bson:"image_hash"`
	LabelHash string    `json:"label_hash" bson:"label_hash"`

	Params  Params        `json:"params" bson:"params"`
	Width   int           `json:"width" bson:"width"`
	Height  int           `json:"height" bson:"height"`
	Rows    int           `json:"rows" bson:"rows"`
	Cols    int           `json:"cols" bson:"cols"`
	Segment segment.Stats `json:"segment" bson:"segment"`
	Formats []string      `json:"formats" bson:"formats"`

	DurationMS int64 `json:"duration_ms" bson:"duration_ms"`
}

// Params are the pipeline options that determine a run's output.
type Params struct {
	BlockHeight  int     `json:"block_height" bson:"block_height"`
	BlockWidth   int     `json:"block_width" bson:"block_width"`
	Grayscale    bool    `json:"grayscale" bson:"grayscale"`
	ColorShading bool    `json:"color_shading" bson:"color_shading"`
	Threshold    float64 `json:"threshold" bson:"threshold"`
	ShadeWeight  float64 `json:"shade_weight" bson:"shade_weight"`
	ShadingFloor float64 `json:"shading_floor" bson:"shading_floor"`
	Seed         uint64  `json:"seed" bson:"seed"`
	Oracle       string  `json:"oracle" bson:"oracle"`
	Materialize  bool    `json:"materialize" bson:"materialize"`
	Overlay      float64 `json:"overlay" bson:"overlay"`
}

// NewRun builds a record for a finished pipeline run with a fresh ID.
// opts should be the options the run was executed with.
func NewRun(opts pipeline.Options, result *pipeline.Result) *Run {
	total := result.Stats.LoadTime + result.Stats.SegmentTime + result.Stats.RenderTime
	return &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Source:    opts.SourceName(),
		ImageHash: result.ImageHash,
		LabelHash: result.LabelHash,
		Params: Params{
			BlockHeight:  opts.BlockHeight,
			BlockWidth:   opts.BlockWidth,
			Grayscale:    opts.Grayscale,
			ColorShading: opts.ColorShading,
			Threshold:    opts.Threshold,
			ShadeWeight:  opts.ShadeWeight,
			ShadingFloor: opts.ShadingFloor,
			Seed:         opts.Seed,
			Oracle:       opts.Oracle,
			Materialize:  opts.ShouldMaterialize(),
			Overlay:      opts.Overlay,
		},
		Width:      result.Stats.Width,
		Height:     result.Stats.Height,
		Rows:       result.Stats.Rows,
		Cols:       result.Stats.Cols,
		Segment:    result.Segment,
		Formats:    append([]string(nil), opts.Formats...),
		DurationMS: total.Milliseconds(),
	}
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
