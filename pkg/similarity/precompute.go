package similarity

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/blockseg/pkg/errors"
	"github.com/matzehuels/blockseg/pkg/grid"
)

// Table is a precomputed Provider for one grid.
type Table struct {
	maps map[grid.Pos]Map
}

// Similarities implements Provider. The grid argument is ignored beyond
// bounds: the table answers for the grid it was computed from.
func (t *Table) Similarities(_ *grid.Grid, p grid.Pos) (Map, error) {
	m, ok := t.maps[p]
	if !ok {
		return nil, errors.New(errors.ErrCodeOutOfRange, "no similarities for position %s", p)
	}
	return m, nil
}

// Len returns the number of blocks in the table.
func (t *Table) Len() int { return len(t.maps) }

type pair struct {
	a, b  *grid.Block
	score float64
}

// Precompute scores every adjacent block pair of g with up to workers
// goroutines. Each unordered pair is scored once and mirrored, since oracles
// are symmetric. workers <= 0 uses GOMAXPROCS.
func (e *Engine) Precompute(ctx context.Context, g *grid.Grid, workers int) (*Table, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	index := func(p grid.Pos) int { return p.Row*g.Cols + p.Col }

	var pairs []*pair
	lookup := make(map[[2]grid.Pos]*pair)
	for _, b := range g.Blocks() {
		ns, err := g.Neighbors(b.Pos)
		if err != nil {
			return nil, err
		}
		for _, np := range ns {
			if index(np) < index(b.Pos) {
				continue
			}
			nb, err := g.At(np)
			if err != nil {
				return nil, err
			}
			pr := &pair{a: b, b: nb}
			pairs = append(pairs, pr)
			lookup[[2]grid.Pos{b.Pos, np}] = pr
		}
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, pr := range pairs {
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := e.score(pr.a, pr.b)
			if err != nil {
				return err
			}
			pr.score = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t := &Table{maps: make(map[grid.Pos]Map, g.Len())}
	for _, b := range g.Blocks() {
		ns, _ := g.Neighbors(b.Pos)
		m := make(Map, 0, len(ns))
		for _, np := range ns {
			key := [2]grid.Pos{b.Pos, np}
			if index(np) < index(b.Pos) {
				key = [2]grid.Pos{np, b.Pos}
			}
			m = append(m, Neighbor{Pos: np, Score: lookup[key].score})
		}
		t.maps[b.Pos] = m
	}
	return t, nil
}
