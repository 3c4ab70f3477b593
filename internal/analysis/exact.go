package analysis

import (
	"fmt"
	"math"

	"github.com/san-kum/kepler/internal/kepler"
)

// PositionError returns the largest distance between the sampled path and
// the exact orbit of el at the same times. Non-finite samples make it +Inf.
func PositionError(el kepler.Elements, ts, xs, ys []float64) (float64, error) {
	if len(ts) == 0 || len(xs) != len(ts) || len(ys) != len(ts) {
		return 0, fmt.Errorf("path has %d times, %d x and %d y samples: %w", len(ts), len(xs), len(ys), ErrInsufficientData)
	}

	ex, ey, err := el.ExactPath(ts)
	if err != nil {
		return 0, err
	}

	worst := 0.0
	for i := range ts {
		d := math.Hypot(xs[i]-ex[i], ys[i]-ey[i])
		if math.IsNaN(d) {
			return math.Inf(1), nil
		}
		worst = math.Max(worst, d)
	}
	return worst, nil
}
