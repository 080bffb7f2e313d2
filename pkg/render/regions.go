package render

import (
	"slices"

	"github.com/matzehuels/blockseg/pkg/grid"
	"github.com/matzehuels/blockseg/pkg/similarity"
)

// Region is a set of blocks sharing one label color.
type Region struct {
	ID     int        `json:"id"`
	Color  grid.RGB   `json:"-"`
	Hex    string     `json:"color"`
	Blocks []grid.Pos `json:"blocks"`
}

// RegionEdge joins two touching regions. Score is the highest similarity
// between any pair of adjacent blocks across the border.
type RegionEdge struct {
	From  int     `json:"from"`
	To    int     `json:"to"`
	Score float64 `json:"score"`
}

// RegionGraph is the adjacency structure of a segmentation.
type RegionGraph struct {
	Regions []Region     `json:"regions"`
	Edges   []RegionEdge `json:"edges"`
}

// BuildRegionGraph groups the blocks of g by color and links adjacent
// regions. Regions are numbered in order of their first block (row-major);
// unlabeled blocks are skipped.
func BuildRegionGraph(g *grid.Grid, sims similarity.Provider) (*RegionGraph, error) {
	rg := &RegionGraph{}
	byColor := make(map[grid.RGB]int)
	regionOf := make(map[grid.Pos]int)

	for _, b := range g.Blocks() {
		if b.Color == nil {
			continue
		}
		id, ok := byColor[*b.Color]
		if !ok {
			id = len(rg.Regions)
			byColor[*b.Color] = id
			rg.Regions = append(rg.Regions, Region{ID: id, Color: *b.Color, Hex: b.Color.Hex()})
		}
		rg.Regions[id].Blocks = append(rg.Regions[id].Blocks, b.Pos)
		regionOf[b.Pos] = id
	}

	best := make(map[[2]int]float64)
	for _, b := range g.Blocks() {
		from, ok := regionOf[b.Pos]
		if !ok {
			continue
		}
		m, err := sims.Similarities(g, b.Pos)
		if err != nil {
			return nil, err
		}
		for _, n := range m {
			to, ok := regionOf[n.Pos]
			if !ok || to == from {
				continue
			}
			key := [2]int{min(from, to), max(from, to)}
			if s, seen := best[key]; !seen || n.Score > s {
				best[key] = n.Score
			}
		}
	}

	for k, s := range best {
		rg.Edges = append(rg.Edges, RegionEdge{From: k[0], To: k[1], Score: s})
	}
	slices.SortFunc(rg.Edges, func(a, b RegionEdge) int {
		if a.From != b.From {
			return a.From - b.From
		}
		return a.To - b.To
	})
	return rg, nil
}
