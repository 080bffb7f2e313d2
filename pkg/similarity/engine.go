package similarity

import (
	"math"

	"github.com/matzehuels/blockseg/pkg/errors"
	"github.com/matzehuels/blockseg/pkg/grid"
)

// Neighbor is one entry of a similarity map.
type Neighbor struct {
	Pos   grid.Pos `json:"pos"`
	Score float64  `json:"score"`
}

// Map holds the similarity of a block to each of its neighbors, in
// neighbor scan order.
type Map []Neighbor

// Lookup returns the score for the neighbor at p.
func (m Map) Lookup(p grid.Pos) (float64, bool) {
	for _, n := range m {
		if n.Pos == p {
			return n.Score, true
		}
	}
	return 0, false
}

// Provider yields the similarity map of a block.
type Provider interface {
	Similarities(g *grid.Grid, p grid.Pos) (Map, error)
}

// Engine computes similarity maps on demand with an oracle.
type Engine struct {
	oracle Oracle
}

// NewEngine returns an engine using o. A nil oracle selects the default SSIM.
func NewEngine(o Oracle) *Engine {
	if o == nil {
		o = DefaultSSIM()
	}
	return &Engine{oracle: o}
}

// Oracle returns the engine's oracle.
func (e *Engine) Oracle() Oracle { return e.oracle }

// Similarities scores the block at p against each of its neighbors.
// Scores are rounded to 4 decimal places. The grid is not modified.
func (e *Engine) Similarities(g *grid.Grid, p grid.Pos) (Map, error) {
	center, err := g.At(p)
	if err != nil {
		return nil, err
	}
	neighbors, err := g.Neighbors(p)
	if err != nil {
		return nil, err
	}
	out := make(Map, 0, len(neighbors))
	for _, np := range neighbors {
		nb, err := g.At(np)
		if err != nil {
			return nil, err
		}
		s, err := e.score(center, nb)
		if err != nil {
			return nil, err
		}
		out = append(out, Neighbor{Pos: np, Score: s})
	}
	return out, nil
}

func (e *Engine) score(a, b *grid.Block) (float64, error) {
	if !a.Pixels.SameShape(b.Pixels) {
		return 0, errors.New(errors.ErrCodeShapeMismatch, "blocks %s and %s differ in shape", a.Pos, b.Pos)
	}
	s, err := e.oracle.Similarity(a.Pixels, b.Pixels)
	if err != nil {
		return 0, err
	}
	return Round(s), nil
}

// Round rounds v to 4 decimal places, half away from zero.
func Round(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
