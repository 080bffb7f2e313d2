package segment

import (
	"math/rand/v2"

	"github.com/matzehuels/blockseg/pkg/grid"
)

// ColorSource supplies seed colors for new regions.
type ColorSource interface {
	Next() grid.RGB
}

// RandomColors draws uniformly distributed RGB colors from a seeded PCG stream.
type RandomColors struct {
	rng *rand.Rand
}

// NewRandomColors returns a deterministic color source for seed.
func NewRandomColors(seed uint64) *RandomColors {
	return &RandomColors{rng: rand.New(rand.NewPCG(seed, seed^0xdeadbeef))}
}

// Next implements ColorSource.
func (r *RandomColors) Next() grid.RGB {
	return grid.RGB{
		R: uint8(r.rng.IntN(256)),
		G: uint8(r.rng.IntN(256)),
		B: uint8(r.rng.IntN(256)),
	}
}

// Palette cycles through a fixed list of colors.
type Palette struct {
	Colors []grid.RGB
	next   int
}

// Next implements ColorSource.
func (p *Palette) Next() grid.RGB {
	c := p.Colors[p.next%len(p.Colors)]
	p.next++
	return c
}
