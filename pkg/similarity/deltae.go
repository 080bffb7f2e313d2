package similarity

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/blockseg/pkg/raster"
)

// DeltaE scores blocks by perceptual color distance: one minus the mean
// CIEDE2000 difference of corresponding pixels, clamped to [0, 1].
// Grayscale pixels are compared as neutral grays.
type DeltaE struct{}

// Similarity implements Oracle.
func (DeltaE) Similarity(a, b *raster.Image) (float64, error) {
	if err := checkShape(a, b); err != nil {
		return 0, err
	}
	var total float64
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			ca, _ := colorful.MakeColor(a.ColorAt(x, y))
			cb, _ := colorful.MakeColor(b.ColorAt(x, y))
			// Averaged both ways so the score is exactly symmetric.
			total += (ca.DistanceCIEDE2000(cb) + cb.DistanceCIEDE2000(ca)) / 2
		}
	}
	sim := 1 - total/float64(a.Width*a.Height)
	return min(max(sim, 0), 1), nil
}
