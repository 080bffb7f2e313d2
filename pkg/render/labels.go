package render

import (
	"encoding/json"

	"github.com/matzehuels/blockseg/pkg/errors"
	"github.com/matzehuels/blockseg/pkg/grid"
)

// LabelMap is the serializable label state of a grid.
type LabelMap struct {
	Rows        int          `json:"rows"`
	Cols        int          `json:"cols"`
	BlockHeight int          `json:"block_height"`
	BlockWidth  int          `json:"block_width"`
	Blocks      []LabelEntry `json:"blocks"`
}

// LabelEntry is one block of a LabelMap. Color is empty for unlabeled blocks.
type LabelEntry struct {
	Row          int     `json:"row"`
	Col          int     `json:"col"`
	Color        string  `json:"color,omitempty"`
	LastAccepted float64 `json:"last_accepted,omitempty"`
}

// NewLabelMap captures the labels of g in row-major order.
func NewLabelMap(g *grid.Grid) *LabelMap {
	lm := &LabelMap{
		Rows:        g.Rows,
		Cols:        g.Cols,
		BlockHeight: g.BlockHeight,
		BlockWidth:  g.BlockWidth,
		Blocks:      make([]LabelEntry, 0, g.Len()),
	}
	for _, b := range g.Blocks() {
		e := LabelEntry{Row: b.Pos.Row, Col: b.Pos.Col, LastAccepted: b.LastAccepted}
		if b.Color != nil {
			e.Color = b.Color.Hex()
		}
		lm.Blocks = append(lm.Blocks, e)
	}
	return lm
}

// JSON encodes the label map with indentation.
func (lm *LabelMap) JSON() ([]byte, error) {
	return json.MarshalIndent(lm, "", "  ")
}

// ParseLabelMap decodes a label map produced by JSON.
func ParseLabelMap(data []byte) (*LabelMap, error) {
	var lm LabelMap
	if err := json.Unmarshal(data, &lm); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse label map")
	}
	return &lm, nil
}

// Apply writes the labels onto g. The grid geometry must match.
func (lm *LabelMap) Apply(g *grid.Grid) error {
	if lm.Rows != g.Rows || lm.Cols != g.Cols || lm.BlockHeight != g.BlockHeight || lm.BlockWidth != g.BlockWidth {
		return errors.New(errors.ErrCodeShapeMismatch,
			"label map %dx%d (%dx%d blocks) does not fit grid %dx%d (%dx%d blocks)",
			lm.Rows, lm.Cols, lm.BlockHeight, lm.BlockWidth, g.Rows, g.Cols, g.BlockHeight, g.BlockWidth)
	}
	for _, e := range lm.Blocks {
		b, err := g.At(grid.Pos{Row: e.Row, Col: e.Col})
		if err != nil {
			return err
		}
		b.Color = nil
		if e.Color != "" {
			c, err := grid.ParseHex(e.Color)
			if err != nil {
				return err
			}
			b.Color = &c
		}
		b.LastAccepted = e.LastAccepted
	}
	return nil
}
