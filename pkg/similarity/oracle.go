// Package similarity scores how alike two equally shaped pixel blocks are and
// maps every block of a grid to the scores of its neighbors.
//
// An [Oracle] is the pairwise metric. [SSIM] is the default; [DeltaE] is a
// perceptual color-difference alternative. The [Engine] applies an oracle to
// a block and each of its 8-connected neighbors, and [Precompute] does the
// same for a whole grid in parallel.
package similarity

import (
	"slices"

	"github.com/matzehuels/blockseg/pkg/errors"
	"github.com/matzehuels/blockseg/pkg/raster"
)

// Oracle scores two pixel arrays of identical shape.
//
// Implementations must be reflexive (Similarity(a, a) == 1) and symmetric,
// and return a value in [-1, 1].
type Oracle interface {
	Similarity(a, b *raster.Image) (float64, error)
}

// Oracle names accepted by NewOracle.
const (
	OracleSSIM   = "ssim"
	OracleDeltaE = "deltae"
)

var oracles = map[string]func() Oracle{
	OracleSSIM:   func() Oracle { return DefaultSSIM() },
	OracleDeltaE: func() Oracle { return DeltaE{} },
}

// NewOracle returns the oracle registered under name. An empty name selects SSIM.
func NewOracle(name string) (Oracle, error) {
	if name == "" {
		name = OracleSSIM
	}
	f, ok := oracles[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidOracle, "unknown similarity oracle %q (available: %v)", name, OracleNames())
	}
	return f(), nil
}

// OracleNames lists the registered oracle names in sorted order.
func OracleNames() []string {
	names := make([]string, 0, len(oracles))
	for n := range oracles {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func checkShape(a, b *raster.Image) error {
	if a == nil || b == nil {
		return errors.New(errors.ErrCodeInvalidInput, "nil pixel array")
	}
	if !a.SameShape(b) {
		return errors.New(errors.ErrCodeShapeMismatch,
			"cannot compare %dx%dx%d with %dx%dx%d",
			a.Width, a.Height, a.Channels, b.Width, b.Height, b.Channels)
	}
	return nil
}
