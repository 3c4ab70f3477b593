package analysis

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PeriodFromCrossings returns the mean spacing of upward zero crossings of
// ys, locating each crossing by linear interpolation between samples. At
// least two crossings are required.
func PeriodFromCrossings(ts, ys []float64) (float64, error) {
	if len(ts) != len(ys) {
		return 0, fmt.Errorf("%d times for %d samples: %w", len(ts), len(ys), ErrInsufficientData)
	}

	var crossings []float64
	for i := 1; i < len(ys); i++ {
		if ys[i-1] < 0 && ys[i] >= 0 {
			frac := -ys[i-1] / (ys[i] - ys[i-1])
			crossings = append(crossings, ts[i-1]+frac*(ts[i]-ts[i-1]))
		}
	}

	if len(crossings) < 2 {
		return 0, fmt.Errorf("found %d upward crossings: %w", len(crossings), ErrInsufficientData)
	}
	return (crossings[len(crossings)-1] - crossings[0]) / float64(len(crossings)-1), nil
}

// PowerSpectrum returns |X_k| for k = 0..n/2-1 of the mean-removed signal.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n == 0 {
		return nil
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	spec := fft.FFTReal(centered)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantPeriod estimates the period of the strongest oscillation in xs,
// sampled uniformly at ts. The peak bin is refined by parabolic
// interpolation, so the signal should span several periods.
func DominantPeriod(ts, xs []float64) (float64, error) {
	n := len(xs)
	if n < 4 || len(ts) != n {
		return 0, fmt.Errorf("need at least 4 aligned samples, got %d and %d: %w", len(ts), n, ErrInsufficientData)
	}
	dt := ts[1] - ts[0]
	if !(dt > 0) {
		return 0, fmt.Errorf("non-increasing sample times: %w", ErrInsufficientData)
	}

	ps := PowerSpectrum(xs)
	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] == 0 {
		return 0, fmt.Errorf("signal has no oscillating component: %w", ErrInsufficientData)
	}

	bin := float64(peak)
	if peak+1 < len(ps) {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if denom := a - 2*b + c; denom != 0 {
			bin += 0.5 * (a - c) / denom
		}
	}

	return float64(n) * dt / bin, nil
}
