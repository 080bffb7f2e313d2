package cli

import (
	"testing"

	"github.com/matzehuels/blockseg/pkg/errors"
	"github.com/matzehuels/blockseg/pkg/grid"
	"github.com/matzehuels/blockseg/pkg/similarity"
)

func TestParsePos(t *testing.T) {
	tests := []struct {
		input   string
		want    grid.Pos
		wantErr bool
	}{
		{"0,0", grid.Pos{}, false},
		{"2,5", grid.Pos{Row: 2, Col: 5}, false},
		{" 3 , 4 ", grid.Pos{Row: 3, Col: 4}, false},
		{"1-7", grid.Pos{Row: 1, Col: 7}, false},

		{"", grid.Pos{}, true},
		{"1", grid.Pos{}, true},
		{"1,2,3", grid.Pos{}, true},
		{"a,b", grid.Pos{}, true},
		{"-1,2", grid.Pos{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parsePos(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parsePos(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errors.ErrCodeInvalidInput) {
					t.Errorf("expected INVALID_INPUT, got %v", errors.GetCode(err))
				}
				return
			}
			if got != tt.want {
				t.Errorf("parsePos(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNeighborRows(t *testing.T) {
	g := testGrid(t, 2, 3)
	positions := []grid.Pos{{Row: 0, Col: 0}, {Row: 1, Col: 1}}

	rows, err := neighborRows(g, similarity.NewEngine(nil), positions, 0.9)
	if err != nil {
		t.Fatal(err)
	}
	// Corner block has 3 neighbors, the bottom middle one 5.
	if len(rows) != 8 {
		t.Fatalf("got %d rows, want 8", len(rows))
	}
	for _, r := range rows {
		if r[2] != "1.0000" || r[3] != iconSuccess {
			t.Errorf("uniform grid row = %v, want identical and accepted", r)
		}
	}
	if rows[0][0] != "0-0" || rows[3][0] != "1-1" {
		t.Errorf("rows not grouped by block: %v", rows)
	}

	if _, err := neighborRows(g, similarity.NewEngine(nil), []grid.Pos{{Row: 9, Col: 9}}, 0.9); err == nil {
		t.Error("expected error for position outside the grid")
	}
}
