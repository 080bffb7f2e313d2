package similarity

import (
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/blockseg/pkg/errors"
	"github.com/matzehuels/blockseg/pkg/raster"
)

// SSIM is the mean structural similarity index over all fully contained
// square windows, computed per channel and averaged across channels.
// Window statistics use the sample (n-1) variance and covariance.
type SSIM struct {
	WindowSize int
	K1, K2     float64
	DataRange  float64
}

// DefaultSSIM returns SSIM with a 7×7 window, K1=0.01, K2=0.03 and an 8-bit data range.
func DefaultSSIM() SSIM {
	return SSIM{WindowSize: 7, K1: 0.01, K2: 0.03, DataRange: 255}
}

// Similarity implements Oracle.
func (s SSIM) Similarity(a, b *raster.Image) (float64, error) {
	if err := checkShape(a, b); err != nil {
		return 0, err
	}
	win := s.WindowSize
	if win <= 0 || win%2 == 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "ssim window size must be odd and positive, got %d", win)
	}
	if a.Width < win || a.Height < win {
		return 0, errors.New(errors.ErrCodeInvalidInput,
			"block %dx%d is smaller than the %dx%d ssim window", a.Width, a.Height, win, win)
	}

	c1 := (s.K1 * s.DataRange) * (s.K1 * s.DataRange)
	c2 := (s.K2 * s.DataRange) * (s.K2 * s.DataRange)

	var total float64
	for c := 0; c < a.Channels; c++ {
		total += s.channel(a.Channel(c), b.Channel(c), a.Width, a.Height, c1, c2)
	}
	return total / float64(a.Channels), nil
}

func (s SSIM) channel(x, y []float64, w, h int, c1, c2 float64) float64 {
	win := s.WindowSize
	n := win * win
	wx := make([]float64, n)
	wy := make([]float64, n)

	var sum float64
	var count int
	for top := 0; top+win <= h; top++ {
		for left := 0; left+win <= w; left++ {
			for r := 0; r < win; r++ {
				off := (top+r)*w + left
				copy(wx[r*win:(r+1)*win], x[off:off+win])
				copy(wy[r*win:(r+1)*win], y[off:off+win])
			}
			ux := stat.Mean(wx, nil)
			uy := stat.Mean(wy, nil)
			vx := stat.Covariance(wx, wx, nil)
			vy := stat.Covariance(wy, wy, nil)
			vxy := stat.Covariance(wx, wy, nil)

			num := (2*ux*uy + c1) * (2*vxy + c2)
			den := (ux*ux + uy*uy + c1) * (vx + vy + c2)
			sum += num / den
			count++
		}
	}
	return sum / float64(count)
}
