package grid

import (
	"testing"

	"github.com/matzehuels/blockseg/pkg/errors"
)

func TestNeighborCounts(t *testing.T) {
	g, _ := Build(testImage(40, 40), 10, 10)

	tests := []struct {
		pos  Pos
		want int
	}{
		{Pos{0, 0}, 3},
		{Pos{0, 3}, 3},
		{Pos{3, 0}, 3},
		{Pos{3, 3}, 3},
		{Pos{0, 1}, 5},
		{Pos{2, 0}, 5},
		{Pos{3, 2}, 5},
		{Pos{1, 3}, 5},
		{Pos{1, 1}, 8},
		{Pos{2, 2}, 8},
	}

	for _, tt := range tests {
		t.Run(tt.pos.String(), func(t *testing.T) {
			ns, err := g.Neighbors(tt.pos)
			if err != nil {
				t.Fatal(err)
			}
			if len(ns) != tt.want {
				t.Errorf("len(Neighbors) = %d, want %d", len(ns), tt.want)
			}
			for _, n := range ns {
				if n == tt.pos {
					t.Error("neighbor list contains the block itself")
				}
				if !g.Contains(n) {
					t.Errorf("neighbor %v out of bounds", n)
				}
			}
		})
	}
}

func TestNeighborsAllBlocks(t *testing.T) {
	g, _ := Build(testImage(50, 30), 10, 10)
	for _, b := range g.Blocks() {
		ns, err := g.Neighbors(b.Pos)
		if err != nil {
			t.Fatal(err)
		}
		seen := map[Pos]bool{}
		for _, n := range ns {
			if seen[n] {
				t.Errorf("%v: duplicate neighbor %v", b.Pos, n)
			}
			seen[n] = true
			dr, dc := n.Row-b.Pos.Row, n.Col-b.Pos.Col
			if dr < -1 || dr > 1 || dc < -1 || dc > 1 {
				t.Errorf("%v: %v is not adjacent", b.Pos, n)
			}
		}
	}
}

func TestNeighborOrder(t *testing.T) {
	g, _ := Build(testImage(30, 30), 10, 10)
	ns, _ := g.Neighbors(Pos{1, 1})
	want := []Pos{{2, 2}, {2, 1}, {2, 0}, {1, 2}, {1, 0}, {0, 2}, {0, 1}, {0, 0}}
	if len(ns) != len(want) {
		t.Fatalf("got %v", ns)
	}
	for i := range want {
		if ns[i] != want[i] {
			t.Errorf("Neighbors[%d] = %v, want %v", i, ns[i], want[i])
		}
	}

	corner, _ := g.Neighbors(Pos{0, 0})
	wantCorner := []Pos{{1, 1}, {1, 0}, {0, 1}}
	for i := range wantCorner {
		if corner[i] != wantCorner[i] {
			t.Errorf("corner Neighbors[%d] = %v, want %v", i, corner[i], wantCorner[i])
		}
	}
}

func TestNeighborsOutOfRange(t *testing.T) {
	g, _ := Build(testImage(20, 20), 10, 10)
	for _, p := range []Pos{{-1, 0}, {0, -1}, {2, 0}, {0, 2}} {
		if _, err := g.Neighbors(p); !errors.Is(err, errors.ErrCodeOutOfRange) {
			t.Errorf("Neighbors(%v) error = %v, want OUT_OF_RANGE", p, err)
		}
	}
}

func TestNeighborsSingleBlock(t *testing.T) {
	g, _ := Build(testImage(10, 10), 10, 10)
	ns, err := g.Neighbors(Pos{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(ns) != 0 {
		t.Errorf("single block has neighbors %v", ns)
	}
}
