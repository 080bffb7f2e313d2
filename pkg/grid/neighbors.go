package grid

import "github.com/matzehuels/blockseg/pkg/errors"

// neighborOffsets lists (dRow, dCol) in scan order. The order matters: the
// segmentation pass visits neighbors in exactly this sequence.
var neighborOffsets = func() []Pos {
	var offs []Pos
	for i := -1; i <= 1; i++ {
		for j := -1; j <= 1; j++ {
			if i == 0 && j == 0 {
				continue
			}
			offs = append(offs, Pos{Row: -i, Col: -j})
		}
	}
	return offs
}()

// Neighbors returns the in-bounds 8-connected neighbors of p.
//
// Order: (+1,+1) (+1,0) (+1,-1) (0,+1) (0,-1) (-1,+1) (-1,0) (-1,-1)
// relative to p, skipping positions outside the grid. There is no wraparound,
// so corners have 3 neighbors, edges 5 and interior blocks 8.
func (g *Grid) Neighbors(p Pos) ([]Pos, error) {
	if !g.Contains(p) {
		return nil, errors.New(errors.ErrCodeOutOfRange, "position %s outside %dx%d grid", p, g.Rows, g.Cols)
	}
	out := make([]Pos, 0, len(neighborOffsets))
	for _, d := range neighborOffsets {
		n := Pos{Row: p.Row + d.Row, Col: p.Col + d.Col}
		if g.Contains(n) {
			out = append(out, n)
		}
	}
	return out, nil
}
