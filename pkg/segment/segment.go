// Package segment grows color-labeled regions over a block grid.
//
// A single row-major pass visits every block. An unlabeled block becomes a
// seed with a fresh color; its neighbors then take over (or are recolored
// from) that color when their similarity clears the threshold:
//
//   - Unlabeled neighbor with score >= param: labeled from the current
//     block and its LastAccepted set to the score.
//   - Labeled neighbor with score >= Threshold and >= its LastAccepted:
//     recolored from the current block. LastAccepted is left alone.
//
// param is ShadingFloor when color shading is on, else Threshold. Mutations
// are in place and visible to every later step of the pass.
package segment

import (
	"github.com/matzehuels/blockseg/pkg/errors"
	"github.com/matzehuels/blockseg/pkg/grid"
	"github.com/matzehuels/blockseg/pkg/similarity"
)

// Stats summarizes one propagation pass.
type Stats struct {
	Blocks      int `json:"blocks"`
	Seeds       int `json:"seeds"`
	Assigned    int `json:"assigned"`
	Overwritten int `json:"overwritten"`
	Regions     int `json:"regions"`
}

// Engine runs the propagation pass.
type Engine struct {
	opts   Options
	colors ColorSource
	sims   similarity.Provider
}

// New validates opts and returns an engine. Zero option fields take defaults.
func New(opts Options, colors ColorSource, sims similarity.Provider) (*Engine, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if colors == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "color source is required")
	}
	if sims == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "similarity provider is required")
	}
	return &Engine{opts: opts, colors: colors, sims: sims}, nil
}

// Options returns the effective options.
func (e *Engine) Options() Options { return e.opts }

// Run labels every block of g. Any error from the similarity provider
// aborts the pass; blocks already labeled keep their colors.
func (e *Engine) Run(g *grid.Grid) (Stats, error) {
	st := Stats{Blocks: g.Len()}

	param := e.opts.Threshold
	if e.opts.ColorShading {
		param = e.opts.ShadingFloor
	}

	for _, b := range g.Blocks() {
		if b.Color == nil {
			c := e.colors.Next()
			b.Color = &c
			st.Seeds++
		}

		sims, err := e.sims.Similarities(g, b.Pos)
		if err != nil {
			return st, err
		}

		for _, n := range sims {
			nb, err := g.At(n.Pos)
			if err != nil {
				return st, err
			}
			switch {
			case nb.Color == nil && n.Score >= param:
				c := e.derive(*b.Color, n.Score)
				nb.Color = &c
				nb.LastAccepted = n.Score
				st.Assigned++
			case nb.Color != nil && n.Score >= e.opts.Threshold && n.Score >= nb.LastAccepted:
				c := e.derive(*b.Color, n.Score)
				nb.Color = &c
				st.Overwritten++
			}
		}
	}

	st.Regions = Regions(g)
	return st, nil
}

func (e *Engine) derive(c grid.RGB, score float64) grid.RGB {
	if !e.opts.ColorShading {
		return c
	}
	delta := int(score*10) - int(e.opts.Threshold*10)
	return Shade(c, delta, e.opts.ShadeWeight)
}

// Shade scales each channel by (1 + delta*weight), clamped to [0, 255] and truncated.
func Shade(c grid.RGB, delta int, weight float64) grid.RGB {
	f := 1 + float64(delta)*weight
	scale := func(v uint8) uint8 {
		return uint8(min(max(float64(v)*f, 0), 255))
	}
	return grid.RGB{R: scale(c.R), G: scale(c.G), B: scale(c.B)}
}

// Regions counts the distinct label colors in g.
func Regions(g *grid.Grid) int {
	seen := make(map[grid.RGB]struct{})
	for _, b := range g.Blocks() {
		if b.Color != nil {
			seen[*b.Color] = struct{}{}
		}
	}
	return len(seen)
}
